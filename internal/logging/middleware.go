// ABOUTME: HTTP request logging middleware for the demo REST backend.
// ABOUTME: Captures method, path, status, duration, request/response bodies, and stores in database.

package logging

import (
	"bufio"
	"bytes"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/2389/adminkit/internal/auth"
	"github.com/2389/adminkit/internal/store"
)

const maxBodySize = 10 * 1024 // 10KB limit for body capture

// Recorder persists one request log entry. *store.Store satisfies it.
type Recorder interface {
	LogRequest(entry *store.RequestLog) error
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
	body       *bytes.Buffer
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.statusCode = http.StatusOK
		rw.written = true
	}
	capture(rw.body, b)
	return rw.ResponseWriter.Write(b)
}

// Hijack implements http.Hijacker for handlers that take over the connection.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	return h.Hijack()
}

// capture appends b to buf up to maxBodySize.
func capture(buf *bytes.Buffer, b []byte) {
	if buf.Len() >= maxBodySize {
		return
	}
	n := len(b)
	if buf.Len()+n > maxBodySize {
		n = maxBodySize - buf.Len()
	}
	buf.Write(b[:n])
}

// prefixedBody replays the captured prefix before the unread remainder.
type prefixedBody struct {
	io.Reader
	io.Closer
}

// Middleware logs inbound requests to the database. Logging happens after
// the response is written and never delays or fails the request.
func Middleware(rec Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip logging for health checks and the console itself
			if r.URL.Path == "/healthz" || strings.HasPrefix(r.URL.Path, "/admin/") {
				next.ServeHTTP(w, r)
				return
			}

			// Only the logged prefix is buffered; the handler streams the rest.
			var requestBody string
			if r.Body != nil {
				head, _ := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
				requestBody = string(head)
				r.Body = prefixedBody{Reader: io.MultiReader(bytes.NewReader(head), r.Body), Closer: r.Body}
			}

			start := time.Now()
			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
				body:           &bytes.Buffer{},
			}

			next.ServeHTTP(wrapped, r)

			// Get client IP
			ip := r.RemoteAddr
			if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
				ip = strings.TrimSpace(strings.Split(forwarded, ",")[0])
			}

			entry := &store.RequestLog{
				Direction:    store.DirectionInbound,
				Entity:       EntityFromPath(r.URL.Path),
				Method:       r.Method,
				Path:         r.URL.Path,
				StatusCode:   wrapped.statusCode,
				DurationMs:   int(time.Since(start).Milliseconds()),
				UserID:       auth.UserFromContext(r.Context()),
				IPAddress:    ip,
				UserAgent:    r.Header.Get("User-Agent"),
				RequestBody:  requestBody,
				ResponseBody: wrapped.body.String(),
			}

			// Log to database (fire and forget)
			go func() {
				if err := rec.LogRequest(entry); err != nil {
					log.Printf("request log: %v", err)
				}
			}()
		})
	}
}
