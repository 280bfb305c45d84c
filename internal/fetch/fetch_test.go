// ABOUTME: Tests for the resilient fetch protocol.
// ABOUTME: Covers shape sniffing, the fallback chain and the single-notification failure path.

package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apierrors "github.com/2389/adminkit/internal/errors"
	"github.com/2389/adminkit/internal/httpclient"
	"github.com/2389/adminkit/internal/httpclient/httpclienttest"
	"github.com/2389/adminkit/internal/notify"
)

func TestInterpret(t *testing.T) {
	tests := []struct {
		name      string
		payload   any
		wantItems int
		wantTotal int
		wantErr   bool
	}{
		{
			name: "paged envelope",
			payload: map[string]any{
				"items":      []any{map[string]any{"id": json.Number("1"), "name": "x"}},
				"totalCount": json.Number("1"),
				"page":       json.Number("1"),
			},
			wantItems: 1,
			wantTotal: 1,
		},
		{
			name: "envelope with larger total",
			payload: map[string]any{
				"items":      []any{map[string]any{"id": 1.0}, map[string]any{"id": 2.0}},
				"totalCount": 57.0,
			},
			wantItems: 2,
			wantTotal: 57,
		},
		{
			name:      "envelope without total",
			payload:   map[string]any{"items": []any{map[string]any{"id": 1.0}}},
			wantItems: 1,
			wantTotal: 0,
		},
		{
			name:      "envelope with null items",
			payload:   map[string]any{"items": nil, "totalCount": 0.0},
			wantItems: 0,
			wantTotal: 0,
		},
		{
			name:      "bare array",
			payload:   []any{map[string]any{"id": 1.0}, map[string]any{"id": 2.0}},
			wantItems: 2,
			wantTotal: 2,
		},
		{
			name:      "single object",
			payload:   map[string]any{"id": 9.0, "name": "only"},
			wantItems: 1,
			wantTotal: 1,
		},
		{name: "items not a list", payload: map[string]any{"items": "nope"}, wantErr: true},
		{name: "array of scalars", payload: []any{1.0, 2.0}, wantErr: true},
		{name: "null payload", payload: nil, wantErr: true},
		{name: "string payload", payload: "ok", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := Interpret(tt.payload)
			if tt.wantErr {
				if !errors.Is(err, ErrShapeMismatch) {
					t.Fatalf("Interpret() error = %v, want ErrShapeMismatch", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Interpret() error = %v", err)
			}
			if len(page.Items) != tt.wantItems {
				t.Errorf("items = %d, want %d", len(page.Items), tt.wantItems)
			}
			if page.TotalCount != tt.wantTotal {
				t.Errorf("totalCount = %d, want %d", page.TotalCount, tt.wantTotal)
			}
		})
	}
}

func TestFetch_PagedRequestParams(t *testing.T) {
	client := httpclienttest.New().On("GET", func(c httpclienttest.Call) (any, error) {
		return map[string]any{"items": []any{}, "totalCount": 0.0}, nil
	})
	q := notify.NewQueue()

	New(client, q).Fetch(context.Background(), "/products", "Products", Query{Page: 3, PageSize: 10, Search: "lamp"})

	calls := client.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 request, got %d", len(calls))
	}
	p := calls[0].Params
	if p.Get("page") != "3" || p.Get("pageSize") != "10" || p.Get("search") != "lamp" {
		t.Errorf("params = %v", p)
	}
	if q.Len() != 0 {
		t.Errorf("expected no notifications, got %d", q.Len())
	}
}

func TestFetch_OmitsEmptySearch(t *testing.T) {
	client := httpclienttest.New().On("GET", func(c httpclienttest.Call) (any, error) {
		return []any{}, nil
	})
	New(client, nil).Fetch(context.Background(), "/products", "Products", Query{Page: 1, PageSize: 10})

	if _, ok := client.Calls()[0].Params["search"]; ok {
		t.Error("search param should be omitted when empty")
	}
}

func TestFetch_FallsBackToUnpaged(t *testing.T) {
	client := httpclienttest.New().On("GET", func(c httpclienttest.Call) (any, error) {
		if c.Params.Get("page") != "" {
			return nil, &httpclient.APIError{Status: 400, Message: "unknown parameter page"}
		}
		return []any{map[string]any{"id": 1.0}, map[string]any{"id": 2.0}}, nil
	})
	q := notify.NewQueue()

	page := New(client, q).Fetch(context.Background(), "/tags", "Tags", Query{Page: 2, PageSize: 10, Search: "re"})

	calls := client.Calls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(calls))
	}
	second := calls[1].Params
	if second.Get("search") != "re" || second.Get("page") != "" || second.Get("pageSize") != "" {
		t.Errorf("fallback params = %v, want search only", second)
	}
	if len(page.Items) != 2 || page.TotalCount != 2 || page.Degraded {
		t.Errorf("page = %+v", page)
	}
	if q.Len() != 0 {
		t.Errorf("fallback success should not notify, got %d", q.Len())
	}
}

func TestFetch_ShapeMismatchTriggersFallback(t *testing.T) {
	n := 0
	client := httpclienttest.New().On("GET", func(c httpclienttest.Call) (any, error) {
		n++
		if n == 1 {
			return "unexpected", nil
		}
		return map[string]any{"id": 5.0}, nil
	})

	page := New(client, nil).Fetch(context.Background(), "/settings", "Settings", Query{Page: 1, PageSize: 10})
	if len(page.Items) != 1 || page.TotalCount != 1 {
		t.Errorf("page = %+v, want single item", page)
	}
}

func TestFetch_AllAttemptsFail(t *testing.T) {
	client := httpclienttest.New().On("GET", func(c httpclienttest.Call) (any, error) {
		return nil, &httpclient.APIError{Status: 500}
	})
	q := notify.NewQueue()

	page := New(client, q).Fetch(context.Background(), "/products", "Products", Query{Page: 1, PageSize: 10})

	if !page.Degraded {
		t.Error("expected degraded page")
	}
	if page.Items == nil || len(page.Items) != 0 || page.TotalCount != 0 {
		t.Errorf("expected well-formed empty page, got %+v", page)
	}
	items := q.Drain()
	if len(items) != 1 {
		t.Fatalf("expected exactly 1 notification, got %d", len(items))
	}
	if items[0].Level != notify.LevelError || items[0].Message != "Failed to load Products" {
		t.Errorf("notification = %+v", items[0])
	}
}

func TestFetch_CancelledContextDoesNotNotify(t *testing.T) {
	client := httpclienttest.New().On("GET", func(c httpclienttest.Call) (any, error) {
		return nil, context.Canceled
	})
	q := notify.NewQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	page := New(client, q).Fetch(ctx, "/products", "Products", Query{Page: 1, PageSize: 10})
	if !page.Degraded {
		t.Error("expected degraded page")
	}
	if q.Len() != 0 {
		t.Errorf("expected no notification for cancelled request, got %d", q.Len())
	}
}

func TestFetch_AgainstRESTBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "" {
			apierrors.WriteError(w, http.StatusBadRequest, apierrors.ErrInvalidRequest, "pagination not supported")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":1,"name":"a"},{"id":2,"name":"b"},{"id":3,"name":"c"}]`))
	}))
	defer srv.Close()

	page := New(httpclient.New(srv.URL), nil).Fetch(context.Background(), "/things", "Things", Query{Page: 1, PageSize: 2})
	if len(page.Items) != 3 || page.TotalCount != 3 {
		t.Errorf("page = %+v", page)
	}
	if id, _ := page.Items[0].ID(); id != "1" {
		t.Errorf("first id = %q, want 1", id)
	}
}
