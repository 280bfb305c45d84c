// ABOUTME: Tests for the REST client contract.
// ABOUTME: Covers query encoding, bearer credentials, JSON decoding and error mapping.

package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	apierrors "github.com/2389/adminkit/internal/errors"
)

type staticToken string

func (s staticToken) Token(ctx context.Context) (string, error) { return string(s), nil }

func TestREST_GetEncodesParamsAndToken(t *testing.T) {
	var gotQuery url.Values
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[{"id":1}],"totalCount":1}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithCredentials(staticToken("secret")))
	got, err := c.Get(context.Background(), "/products", url.Values{"page": {"2"}, "search": {"lamp"}})
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if gotQuery.Get("page") != "2" || gotQuery.Get("search") != "lamp" {
		t.Errorf("query = %v", gotQuery)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q", gotAuth)
	}

	obj, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("expected object, got %T", got)
	}
	if n, ok := obj["totalCount"].(json.Number); !ok || n.String() != "1" {
		t.Errorf("totalCount = %#v, want json.Number(1)", obj["totalCount"])
	}
}

func TestREST_PostSendsJSON(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		data, _ := io.ReadAll(r.Body)
		json.Unmarshal(data, &body)
		w.WriteHeader(http.StatusCreated)
		w.Write(data)
	}))
	defer srv.Close()

	c := New(srv.URL)
	got, err := c.Post(context.Background(), "products", map[string]any{"name": "Lamp", "hasVariants": false})
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if body["hasVariants"] != false {
		t.Errorf("server saw hasVariants = %v", body["hasVariants"])
	}
	if got.(map[string]any)["name"] != "Lamp" {
		t.Errorf("result = %v", got)
	}
}

func TestREST_EmptyBodyDecodesToNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	got, err := New(srv.URL).Delete(context.Background(), "/products/1")
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if got != nil {
		t.Errorf("expected nil result, got %v", got)
	}
}

func TestREST_ErrorCarriesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apierrors.WriteErrorWithField(w, http.StatusConflict, "conflict", "SKU already exists", "sku")
	}))
	defer srv.Close()

	_, err := New(srv.URL).Put(context.Background(), "/products/1", map[string]any{})
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Status != http.StatusConflict {
		t.Errorf("Status = %d", apiErr.Status)
	}
	if MessageOf(err) != "SKU already exists" {
		t.Errorf("MessageOf() = %q", MessageOf(err))
	}
	if StatusOf(err) != http.StatusConflict {
		t.Errorf("StatusOf() = %d", StatusOf(err))
	}
}

func TestREST_ErrorWithoutBodyHasNoMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Get(context.Background(), "/products", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if MessageOf(err) != "" {
		t.Errorf("MessageOf() = %q, want empty", MessageOf(err))
	}
	if StatusOf(err) != http.StatusBadGateway {
		t.Errorf("StatusOf() = %d", StatusOf(err))
	}
}

func TestREST_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := New(srv.URL).Get(context.Background(), "/products", nil)
	if err == nil {
		t.Fatal("expected transport error")
	}
	if StatusOf(err) != 0 {
		t.Errorf("StatusOf() = %d, want 0 for transport errors", StatusOf(err))
	}
}
