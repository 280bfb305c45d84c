// ABOUTME: Browser sessions for the admin console.
// ABOUTME: Each session owns a flash queue and one entity manager per entity, mounted on first use.

package admin

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/2389/adminkit/internal/httpclient"
	"github.com/2389/adminkit/internal/manager"
	"github.com/2389/adminkit/internal/notify"
	"github.com/2389/adminkit/internal/schema"
	"github.com/google/uuid"
)

const (
	sessionCookie      = "adminkit_session"
	defaultIdleTimeout = 2 * time.Hour
)

type session struct {
	id       string
	flash    *notify.Queue
	managers map[string]*manager.Manager
	lastSeen time.Time
}

// Sessions tracks console sessions keyed by cookie.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]*session

	client   httpclient.Client
	pageSize int
	idle     time.Duration
	now      func() time.Time
}

// NewSessions creates a session table whose managers talk to client.
func NewSessions(client httpclient.Client, pageSize int) *Sessions {
	return &Sessions{
		sessions: make(map[string]*session),
		client:   client,
		pageSize: pageSize,
		idle:     defaultIdleTimeout,
		now:      time.Now,
	}
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// get returns the request's session, starting a new one (and setting the
// cookie) when the cookie is missing or expired.
func (s *Sessions) get(w http.ResponseWriter, r *http.Request) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.expire(now)

	if c, err := r.Cookie(sessionCookie); err == nil {
		if sess, ok := s.sessions[c.Value]; ok {
			sess.lastSeen = now
			return sess
		}
	}

	sess := &session{
		id:       uuid.NewString(),
		flash:    notify.NewQueue(),
		managers: make(map[string]*manager.Manager),
		lastSeen: now,
	}
	s.sessions[sess.id] = sess
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.id,
		Path:     "/admin",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

func (s *Sessions) expire(now time.Time) {
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.idle {
			delete(s.sessions, id)
		}
	}
}

// manager returns the session's manager for cfg, mounting it on first use.
// mounted reports whether this call did the mount (and so the first fetch).
// Mounting runs without the lock held.
func (s *Sessions) manager(ctx context.Context, sess *session, cfg *schema.EntityConfig) (m *manager.Manager, mounted bool) {
	key := cfg.Key()

	s.mu.Lock()
	m, ok := sess.managers[key]
	s.mu.Unlock()
	if ok {
		return m, false
	}

	m = manager.Mount(ctx, cfg, s.client,
		manager.WithNotifier(sess.flash),
		manager.WithConfirmer(notify.Always),
		manager.WithPageSize(s.pageSize),
	)

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := sess.managers[key]; ok {
		return existing, false
	}
	sess.managers[key] = m
	return m, true
}
