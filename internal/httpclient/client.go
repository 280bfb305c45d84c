// ABOUTME: Minimal REST client used by the admin console to reach entity endpoints.
// ABOUTME: Decodes JSON responses generically and reports failures as *APIError.

package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apierrors "github.com/2389/adminkit/internal/errors"
)

// Client is the HTTP contract the engine depends on. Results are decoded
// JSON values (objects, arrays, scalars or nil for an empty body).
type Client interface {
	Get(ctx context.Context, path string, params url.Values) (any, error)
	Post(ctx context.Context, path string, body any) (any, error)
	Put(ctx context.Context, path string, body any) (any, error)
	Delete(ctx context.Context, path string) (any, error)
}

// CredentialProvider supplies the bearer token for each request. An empty
// token sends no Authorization header.
type CredentialProvider interface {
	Token(ctx context.Context) (string, error)
}

// APIError is returned when the backend answers with a non-2xx status.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: request failed with status %d", e.Method, e.Path, e.Status)
}

// MessageOf returns the server-provided message carried by err, if any.
func MessageOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// REST implements Client over net/http.
type REST struct {
	baseURL string
	http    *http.Client
	creds   CredentialProvider
}

// Option configures a REST client.
type Option func(*REST)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(r *REST) { r.http = c }
}

// WithTimeout sets the per-request timeout on the underlying client.
func WithTimeout(d time.Duration) Option {
	return func(r *REST) { r.http.Timeout = d }
}

// WithTransport sets the round tripper, e.g. a logging transport.
func WithTransport(t http.RoundTripper) Option {
	return func(r *REST) { r.http.Transport = t }
}

// WithCredentials injects the credential provider.
func WithCredentials(p CredentialProvider) Option {
	return func(r *REST) { r.creds = p }
}

// New creates a client rooted at baseURL (e.g. "http://localhost:9100/api").
func New(baseURL string, opts ...Option) *REST {
	r := &REST{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *REST) Get(ctx context.Context, path string, params url.Values) (any, error) {
	return r.do(ctx, http.MethodGet, path, params, nil)
}

func (r *REST) Post(ctx context.Context, path string, body any) (any, error) {
	return r.do(ctx, http.MethodPost, path, nil, body)
}

func (r *REST) Put(ctx context.Context, path string, body any) (any, error) {
	return r.do(ctx, http.MethodPut, path, nil, body)
}

func (r *REST) Delete(ctx context.Context, path string) (any, error) {
	return r.do(ctx, http.MethodDelete, path, nil, nil)
}

func (r *REST) do(ctx context.Context, method, path string, params url.Values, body any) (any, error) {
	target := r.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.creds != nil {
		token, err := r.creds.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("credentials: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s %s response: %w", method, path, err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Method: method, Path: path, Status: resp.StatusCode}
		if parsed, ok := apierrors.Parse(data); ok {
			apiErr.Code = parsed.Code
			apiErr.Message = parsed.Message
		}
		return nil, apiErr
	}

	return decode(data)
}

func decode(data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return v, nil
}
