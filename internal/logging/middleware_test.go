// ABOUTME: Tests for HTTP request logging middleware.
// ABOUTME: Verifies body buffering limits, status capture, skipped paths and the stored log entry.

package logging

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/2389/adminkit/internal/store"
)

// memRecorder collects log entries in memory.
type memRecorder struct {
	mu      sync.Mutex
	entries []*store.RequestLog
	added   chan struct{}
}

func newMemRecorder() *memRecorder {
	return &memRecorder{added: make(chan struct{}, 16)}
}

func (m *memRecorder) LogRequest(entry *store.RequestLog) error {
	m.mu.Lock()
	m.entries = append(m.entries, entry)
	m.mu.Unlock()
	m.added <- struct{}{}
	return nil
}

func (m *memRecorder) wait(t *testing.T) *store.RequestLog {
	t.Helper()
	select {
	case <-m.added:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for request log")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[len(m.entries)-1]
}

func (m *memRecorder) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func TestResponseWriter_BuffersResponseBody(t *testing.T) {
	tests := []struct {
		name           string
		responseBody   string
		expectedCapped bool
	}{
		{"small response", "Hello, World!", false},
		{"response at limit", strings.Repeat("x", maxBodySize), false},
		{"response exceeds limit", strings.Repeat("x", maxBodySize+1000), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			wrapped := &responseWriter{ResponseWriter: rr, statusCode: 200, body: &bytes.Buffer{}}

			n, err := wrapped.Write([]byte(tt.responseBody))
			if err != nil {
				t.Fatalf("Write() error = %v", err)
			}
			if n != len(tt.responseBody) {
				t.Errorf("Write() returned %d, want %d", n, len(tt.responseBody))
			}
			if rr.Body.Len() != len(tt.responseBody) {
				t.Errorf("client received %d bytes, want %d", rr.Body.Len(), len(tt.responseBody))
			}

			buffered := wrapped.body.String()
			if len(buffered) > maxBodySize {
				t.Errorf("Buffered body size %d exceeds maxBodySize %d", len(buffered), maxBodySize)
			}
			if tt.expectedCapped && len(buffered) != maxBodySize {
				t.Errorf("Expected buffered body to be capped at %d, got %d", maxBodySize, len(buffered))
			}
		})
	}
}

func TestResponseWriter_CapturesStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		explicit bool
		code     int
	}{
		{"explicit status", true, http.StatusCreated},
		{"implicit status", false, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := &responseWriter{ResponseWriter: httptest.NewRecorder(), statusCode: 200, body: &bytes.Buffer{}}
			if tt.explicit {
				wrapped.WriteHeader(tt.code)
			}
			wrapped.Write([]byte("body"))

			if wrapped.statusCode != tt.code {
				t.Errorf("statusCode = %d, want %d", wrapped.statusCode, tt.code)
			}
		})
	}
}

func TestResponseWriter_Hijack(t *testing.T) {
	wrapped := &responseWriter{ResponseWriter: httptest.NewRecorder(), statusCode: 200, body: &bytes.Buffer{}}

	// httptest.ResponseRecorder doesn't implement Hijacker, should return error
	if _, _, err := wrapped.Hijack(); err != http.ErrNotSupported {
		t.Errorf("Hijack() error = %v, want %v", err, http.ErrNotSupported)
	}
}

func TestMiddleware_RecordsInboundRequest(t *testing.T) {
	rec := newMemRecorder()
	handler := Middleware(rec)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":1}`))
	}))

	req := httptest.NewRequest("POST", "/api/products", strings.NewReader(`{"name":"Widget"}`))
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")
	req.Header.Set("User-Agent", "adminkit-test")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	entry := rec.wait(t)
	if entry.Direction != store.DirectionInbound {
		t.Errorf("Direction = %q, want inbound", entry.Direction)
	}
	if entry.Entity != "products" || entry.Method != "POST" || entry.Path != "/api/products" {
		t.Errorf("unexpected entry: %+v", entry)
	}
	if entry.StatusCode != http.StatusCreated {
		t.Errorf("StatusCode = %d, want 201", entry.StatusCode)
	}
	if entry.RequestBody != `{"name":"Widget"}` || entry.ResponseBody != `{"id":1}` {
		t.Errorf("bodies = %q / %q", entry.RequestBody, entry.ResponseBody)
	}
	if entry.IPAddress != "10.0.0.1" || entry.UserAgent != "adminkit-test" {
		t.Errorf("client = %q / %q", entry.IPAddress, entry.UserAgent)
	}
	if entry.UserID != "anonymous" {
		t.Errorf("UserID = %q, want anonymous", entry.UserID)
	}
}

func TestMiddleware_RequestBodySizeLimit(t *testing.T) {
	rec := newMemRecorder()
	var handlerRead int

	handler := Middleware(rec)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		handlerRead = len(body)
		w.WriteHeader(http.StatusOK)
	}))

	largeBody := strings.Repeat("x", maxBodySize+1000)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/api/products", strings.NewReader(largeBody)))

	if rr.Code != http.StatusOK {
		t.Errorf("Status code = %d, want %d", rr.Code, http.StatusOK)
	}
	if handlerRead != len(largeBody) {
		t.Errorf("handler read %d bytes, want the full %d", handlerRead, len(largeBody))
	}
	if entry := rec.wait(t); len(entry.RequestBody) != maxBodySize {
		t.Errorf("logged request body = %d bytes, want %d", len(entry.RequestBody), maxBodySize)
	}
}

// countingReader counts bytes consumed from an endless stream of 'x'.
type countingReader struct {
	n, limit int
}

func (c *countingReader) Read(p []byte) (int, error) {
	if c.n >= c.limit {
		return 0, io.EOF
	}
	if len(p) > c.limit-c.n {
		p = p[:c.limit-c.n]
	}
	for i := range p {
		p[i] = 'x'
	}
	c.n += len(p)
	return len(p), nil
}

func TestMiddleware_DoesNotBufferWholeBody(t *testing.T) {
	rec := newMemRecorder()
	body := &countingReader{limit: 4 << 20}
	var readBeforeHandler, handlerRead int

	handler := Middleware(rec)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		readBeforeHandler = body.n
		n, _ := io.Copy(io.Discard, r.Body)
		handlerRead = int(n)
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/api/products", body))

	if readBeforeHandler > maxBodySize {
		t.Errorf("middleware consumed %d bytes before the handler, want at most %d", readBeforeHandler, maxBodySize)
	}
	if handlerRead != body.limit {
		t.Errorf("handler read %d bytes, want %d", handlerRead, body.limit)
	}
	if entry := rec.wait(t); len(entry.RequestBody) != maxBodySize {
		t.Errorf("logged request body = %d bytes, want %d", len(entry.RequestBody), maxBodySize)
	}
}

func TestMiddleware_SkipsUnloggedPaths(t *testing.T) {
	for _, path := range []string{"/healthz", "/admin/products"} {
		t.Run(path, func(t *testing.T) {
			rec := newMemRecorder()
			handler := Middleware(rec)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest("GET", path, nil))

			if rr.Code != http.StatusOK {
				t.Errorf("Status code = %d, want %d", rr.Code, http.StatusOK)
			}
			time.Sleep(20 * time.Millisecond)
			if rec.count() != 0 {
				t.Errorf("%s should not be logged", path)
			}
		})
	}
}

func TestMiddleware_WritesToStore(t *testing.T) {
	s, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	handler := Middleware(s)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/categories/9", nil))

	deadline := time.Now().Add(2 * time.Second)
	for {
		logs, err := s.GetRequestLogs(&store.RequestLogQuery{Entity: "categories"})
		if err != nil {
			t.Fatalf("GetRequestLogs() error = %v", err)
		}
		if len(logs) == 1 {
			if logs[0].StatusCode != http.StatusNotFound {
				t.Errorf("StatusCode = %d, want 404", logs[0].StatusCode)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("request was never logged")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
