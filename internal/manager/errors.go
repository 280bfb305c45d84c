// ABOUTME: Flow-control errors returned by manager operations to in-process callers.
// ABOUTME: User-facing reporting happens through the notifier, never through these values.

package manager

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrBusy means a submit is already in flight for the open form.
	ErrBusy = errors.New("a submit is already in progress")
	// ErrVetoed means a before-hook declined the operation.
	ErrVetoed = errors.New("operation vetoed by hook")
	// ErrCancelled means the user declined the confirmation.
	ErrCancelled = errors.New("operation cancelled")
	// ErrNoForm means submit was called with no create or edit form open.
	ErrNoForm = errors.New("no form is open")
	// ErrNotAllowed means the entity's capabilities exclude the operation.
	ErrNotAllowed = errors.New("operation not allowed for this entity")
	// ErrNotFound means the record is neither loaded nor retrievable from the API.
	ErrNotFound = errors.New("record not found")
)

// ValidationError carries the per-field messages of a blocked submit.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "validation failed: " + strings.Join(names, ", ")
}
