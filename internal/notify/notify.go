// ABOUTME: Notification and confirmation collaborators used by the CRUD engine.
// ABOUTME: Notifications are fire-and-forget; a Queue buffers them as flash messages per session.

package notify

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Notifier shows user-facing messages. Implementations must not block.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Level is the severity of a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is one buffered message.
type Notification struct {
	ID      string
	Level   Level
	Message string
	At      time.Time
}

// Queue buffers notifications until the next page render drains them.
type Queue struct {
	mu    sync.Mutex
	items []Notification
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Success(message string) { q.push(LevelSuccess, message) }

func (q *Queue) Error(message string) { q.push(LevelError, message) }

func (q *Queue) push(level Level, message string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, Notification{
		ID:      uuid.NewString(),
		Level:   level,
		Message: message,
		At:      time.Now(),
	})
}

// Drain returns and clears the buffered notifications.
func (q *Queue) Drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}

// Len reports how many notifications are buffered.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Logger writes notifications to the process log; used by the CLI.
type Logger struct{}

func (Logger) Success(message string) { log.Printf("ok: %s", message) }

func (Logger) Error(message string) { log.Printf("error: %s", message) }

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(message string) bool
}

// ConfirmFunc adapts a function into a Confirmer.
type ConfirmFunc func(message string) bool

func (f ConfirmFunc) Confirm(message string) bool { return f(message) }

// Always confirms every prompt. The web UI asks in the browser before the
// request is sent, so the server side uses this.
var Always Confirmer = ConfirmFunc(func(string) bool { return true })
