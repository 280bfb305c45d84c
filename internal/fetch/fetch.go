// ABOUTME: Resilient paged list retrieval against inconsistent backend list endpoints.
// ABOUTME: Falls back from paged to unpaged requests and sniffs envelope, array and single-object shapes.

package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/2389/adminkit/internal/httpclient"
	"github.com/2389/adminkit/internal/notify"
	"github.com/2389/adminkit/internal/schema"
)

// ErrShapeMismatch means a list response was neither an envelope, an array
// nor a single object.
var ErrShapeMismatch = errors.New("unrecognized list response shape")

// Query is one logical list request.
type Query struct {
	Page     int
	PageSize int
	Search   string
}

// Page is the normalised result. Degraded is set when every attempt failed
// and Items is the empty fallback.
type Page struct {
	Items      []schema.Record
	TotalCount int
	Degraded   bool
}

// Fetcher runs the fallback chain. It never returns an error: failures end in
// an empty page and one error notification.
type Fetcher struct {
	client   httpclient.Client
	notifier notify.Notifier
}

// New creates a Fetcher.
func New(client httpclient.Client, notifier notify.Notifier) *Fetcher {
	return &Fetcher{client: client, notifier: notifier}
}

// Fetch retrieves one page of endpoint. label names the resource in the
// user-facing error, e.g. "Products".
func (f *Fetcher) Fetch(ctx context.Context, endpoint, label string, q Query) Page {
	paged := url.Values{}
	if q.Page > 0 {
		paged.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		paged.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	if q.Search != "" {
		paged.Set("search", q.Search)
	}

	page, err := f.attempt(ctx, endpoint, paged)
	if err == nil {
		return page
	}
	log.Printf("fetch %s: paged request failed, retrying without pagination: %v", endpoint, err)

	unpaged := url.Values{}
	if q.Search != "" {
		unpaged.Set("search", q.Search)
	}
	page, err = f.attempt(ctx, endpoint, unpaged)
	if err == nil {
		return page
	}
	log.Printf("fetch %s: unpaged request failed: %v", endpoint, err)

	if ctx.Err() != nil {
		return Page{Items: []schema.Record{}, Degraded: true}
	}
	if f.notifier != nil {
		f.notifier.Error(fmt.Sprintf("Failed to load %s", label))
	}
	return Page{Items: []schema.Record{}, Degraded: true}
}

func (f *Fetcher) attempt(ctx context.Context, endpoint string, params url.Values) (Page, error) {
	payload, err := f.client.Get(ctx, endpoint, params)
	if err != nil {
		return Page{}, err
	}
	return Interpret(payload)
}

// Interpret normalises a decoded list response:
//   - an object with "items" is a paged envelope (totalCount defaults to 0)
//   - an array is the full list, totalCount = len
//   - any other object is a one-item result
func Interpret(payload any) (Page, error) {
	switch v := payload.(type) {
	case map[string]any:
		raw, ok := v["items"]
		if !ok {
			return Page{Items: []schema.Record{schema.Record(v)}, TotalCount: 1}, nil
		}
		var list []any
		if raw != nil {
			list, ok = raw.([]any)
			if !ok {
				return Page{}, fmt.Errorf("%w: items is %T", ErrShapeMismatch, raw)
			}
		}
		items, err := records(list)
		if err != nil {
			return Page{}, err
		}
		return Page{Items: items, TotalCount: toInt(v["totalCount"])}, nil
	case []any:
		items, err := records(v)
		if err != nil {
			return Page{}, err
		}
		return Page{Items: items, TotalCount: len(items)}, nil
	default:
		return Page{}, fmt.Errorf("%w: %T", ErrShapeMismatch, payload)
	}
}

func records(list []any) ([]schema.Record, error) {
	items := make([]schema.Record, 0, len(list))
	for i, el := range list {
		rec, ok := schema.AsRecord(el)
		if !ok {
			return nil, fmt.Errorf("%w: item %d is %T", ErrShapeMismatch, i, el)
		}
		items = append(items, rec)
	}
	return items, nil
}

func toInt(v any) int {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
		if f, err := n.Float64(); err == nil {
			return int(f)
		}
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i
		}
	}
	return 0
}
