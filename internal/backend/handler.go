// ABOUTME: Router assembly for the demo backend and an in-process transport to reach it.
// ABOUTME: Lets the console and CLI call the embedded API without a network hop.

package backend

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"

	"github.com/2389/adminkit/internal/auth"
)

// Handler returns the collection routes behind token authentication. An
// empty token leaves the API open.
func (s *Server) Handler(token string) http.Handler {
	r := chi.NewRouter()
	r.Use(auth.Middleware)
	r.Use(auth.RequireToken(token))
	s.RegisterRoutes(r)
	return r
}

// InProcess is an http.RoundTripper that serves requests with h directly.
type InProcess struct {
	Handler http.Handler
}

func (t InProcess) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := req.Context().Err(); err != nil {
		return nil, err
	}
	// Calls made while handling a console request inherit its chi routing
	// state; chi would route on that instead of this request's path.
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, nil))

	rec := httptest.NewRecorder()
	t.Handler.ServeHTTP(rec, req)
	resp := rec.Result()
	resp.Request = req
	return resp, nil
}
