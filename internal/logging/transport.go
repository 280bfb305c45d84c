// ABOUTME: Outbound request logging for the console's API client.
// ABOUTME: Wraps an http.RoundTripper and records every call it makes in the request log.

package logging

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/2389/adminkit/internal/store"
)

// Transport records each outgoing request. Base defaults to
// http.DefaultTransport.
type Transport struct {
	Recorder Recorder
	Base     http.RoundTripper
	// User is stored as the log's user id, e.g. the console operator.
	User string
}

// NewTransport wraps base with outbound logging.
func NewTransport(rec Recorder, base http.RoundTripper) *Transport {
	return &Transport{Recorder: rec, Base: base, User: "console"}
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	entry := &store.RequestLog{
		Direction: store.DirectionOutbound,
		Entity:    EntityFromPath(req.URL.Path),
		Method:    req.Method,
		Path:      req.URL.Path,
		UserID:    t.User,
		UserAgent: req.Header.Get("User-Agent"),
	}
	if req.GetBody != nil {
		if body, err := req.GetBody(); err == nil {
			data, _ := io.ReadAll(io.LimitReader(body, maxBodySize))
			body.Close()
			entry.RequestBody = string(data)
		}
	}

	start := time.Now()
	resp, err := t.base().RoundTrip(req)
	entry.DurationMs = int(time.Since(start).Milliseconds())

	if err != nil {
		entry.Error = err.Error()
		t.record(entry)
		return nil, err
	}

	entry.StatusCode = resp.StatusCode
	if resp.Body != nil {
		head, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		entry.ResponseBody = string(head)
		if readErr != nil {
			entry.Error = readErr.Error()
		}
		// Hand the caller the bytes already consumed followed by the rest.
		resp.Body = struct {
			io.Reader
			io.Closer
		}{io.MultiReader(bytes.NewReader(head), resp.Body), resp.Body}
	}
	if resp.StatusCode >= 400 && entry.Error == "" {
		entry.Error = http.StatusText(resp.StatusCode)
	}
	t.record(entry)
	return resp, nil
}

func (t *Transport) record(entry *store.RequestLog) {
	if t.Recorder == nil {
		return
	}
	if err := t.Recorder.LogRequest(entry); err != nil {
		log.Printf("outbound request log: %v", err)
	}
}
