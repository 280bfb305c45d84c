// ABOUTME: Scripted in-memory Client for engine tests.
// ABOUTME: Records every call and answers from per-request handlers.

package httpclienttest

import (
	"context"
	"net/url"
	"sync"

	"github.com/2389/adminkit/internal/httpclient"
)

// Call is one recorded request.
type Call struct {
	Method string
	Path   string
	Params url.Values
	Body   any
}

// Handler answers one request.
type Handler func(call Call) (any, error)

// Fake implements httpclient.Client. Handlers are keyed by method; an unset
// method answers nil, nil.
type Fake struct {
	mu       sync.Mutex
	calls    []Call
	handlers map[string]Handler
}

var _ httpclient.Client = (*Fake)(nil)

// New creates a Fake with no handlers.
func New() *Fake {
	return &Fake{handlers: make(map[string]Handler)}
}

// On sets the handler for a method ("GET", "POST", "PUT", "DELETE").
func (f *Fake) On(method string, h Handler) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[method] = h
	return f
}

// Calls returns a copy of the recorded calls.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallsFor returns recorded calls with the given method.
func (f *Fake) CallsFor(method string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Reset clears recorded calls.
func (f *Fake) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func (f *Fake) Get(ctx context.Context, path string, params url.Values) (any, error) {
	return f.serve(Call{Method: "GET", Path: path, Params: params})
}

func (f *Fake) Post(ctx context.Context, path string, body any) (any, error) {
	return f.serve(Call{Method: "POST", Path: path, Body: body})
}

func (f *Fake) Put(ctx context.Context, path string, body any) (any, error) {
	return f.serve(Call{Method: "PUT", Path: path, Body: body})
}

func (f *Fake) Delete(ctx context.Context, path string) (any, error) {
	return f.serve(Call{Method: "DELETE", Path: path})
}

func (f *Fake) serve(call Call) (any, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	h := f.handlers[call.Method]
	f.mu.Unlock()

	if h == nil {
		return nil, nil
	}
	return h(call)
}
