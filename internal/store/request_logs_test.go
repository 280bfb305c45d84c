// ABOUTME: Tests for request log storage operations.
// ABOUTME: Covers per-entity metrics, filtered queries and ordering of recent requests.

package store

import (
	"testing"
	"time"
)

func insertLogs(t *testing.T, s *Store, logs []*RequestLog) {
	t.Helper()
	for _, l := range logs {
		direction := l.Direction
		if direction == "" {
			direction = DirectionInbound
		}
		_, err := s.db.Exec(`
			INSERT INTO request_logs (direction, entity, method, path, status_code, duration_ms, timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, direction, l.Entity, l.Method, l.Path, l.StatusCode, l.DurationMs, l.Timestamp)
		if err != nil {
			t.Fatalf("Failed to insert test log: %v", err)
		}
	}
}

func TestGetEntityRequestCount(t *testing.T) {
	s := setupTestDB(t)
	defer s.Close()

	now := time.Now().UTC()
	yesterday := now.Add(-24 * time.Hour)

	insertLogs(t, s, []*RequestLog{
		{Entity: "products", Method: "GET", Path: "/api/products", StatusCode: 200, DurationMs: 10, Timestamp: now},
		{Entity: "products", Method: "POST", Path: "/api/products", StatusCode: 201, DurationMs: 20, Timestamp: yesterday.Add(2 * time.Hour)},
		{Entity: "products", Method: "GET", Path: "/api/products", StatusCode: 200, DurationMs: 5, Timestamp: now.Add(-48 * time.Hour)},
		{Entity: "categories", Method: "GET", Path: "/api/categories", StatusCode: 200, DurationMs: 8, Timestamp: now.Add(-time.Hour)},
	})

	tests := []struct {
		entity string
		want   int
	}{
		{"products", 2},
		{"categories", 1},
		{"nonexistent", 0},
	}
	for _, tt := range tests {
		count, err := s.GetEntityRequestCount(tt.entity, yesterday)
		if err != nil {
			t.Fatalf("GetEntityRequestCount(%q) failed: %v", tt.entity, err)
		}
		if count != tt.want {
			t.Errorf("GetEntityRequestCount(%q) = %d, want %d", tt.entity, count, tt.want)
		}
	}
}

func TestGetEntityErrorRate(t *testing.T) {
	s := setupTestDB(t)
	defer s.Close()

	yesterday := time.Now().UTC().Add(-24 * time.Hour)

	insertLogs(t, s, []*RequestLog{
		{Entity: "products", Method: "GET", Path: "/api/products", StatusCode: 200, Timestamp: yesterday.Add(1 * time.Hour)},
		{Entity: "products", Method: "GET", Path: "/api/products", StatusCode: 400, Timestamp: yesterday.Add(2 * time.Hour)},
		{Entity: "products", Method: "PUT", Path: "/api/products/1", StatusCode: 200, Timestamp: yesterday.Add(3 * time.Hour)},
		{Entity: "products", Method: "DELETE", Path: "/api/products/1", StatusCode: 500, Timestamp: yesterday.Add(4 * time.Hour)},
	})

	rate, err := s.GetEntityErrorRate("products", yesterday)
	if err != nil {
		t.Fatalf("GetEntityErrorRate failed: %v", err)
	}
	if rate != 50.0 {
		t.Errorf("Expected 50%% error rate for products, got %.2f%%", rate)
	}

	rate, err = s.GetEntityErrorRate("nonexistent", yesterday)
	if err != nil {
		t.Fatalf("GetEntityErrorRate failed: %v", err)
	}
	if rate != 0 {
		t.Errorf("Expected 0%% error rate for an entity with no requests, got %.2f%%", rate)
	}
}

func TestGetRequestLogs_Filters(t *testing.T) {
	s := setupTestDB(t)
	defer s.Close()

	if err := s.LogRequest(&RequestLog{Entity: "products", Method: "GET", Path: "/api/products", StatusCode: 200}); err != nil {
		t.Fatalf("LogRequest failed: %v", err)
	}
	if err := s.LogRequest(&RequestLog{Direction: DirectionOutbound, Entity: "products", Method: "POST", Path: "/api/products", StatusCode: 400, Error: "name is required"}); err != nil {
		t.Fatalf("LogRequest failed: %v", err)
	}
	if err := s.LogRequest(&RequestLog{Entity: "categories", Method: "GET", Path: "/api/categories_x", StatusCode: 200}); err != nil {
		t.Fatalf("LogRequest failed: %v", err)
	}

	tests := []struct {
		name  string
		query RequestLogQuery
		want  int
	}{
		{"all", RequestLogQuery{}, 3},
		{"outbound only", RequestLogQuery{Direction: DirectionOutbound}, 1},
		{"by entity", RequestLogQuery{Entity: "products"}, 2},
		{"by method", RequestLogQuery{Method: "POST"}, 1},
		{"by status", RequestLogQuery{StatusCode: 400}, 1},
		{"path prefix escapes wildcards", RequestLogQuery{PathPrefix: "/api/categories_"}, 1},
		{"path prefix underscore is literal", RequestLogQuery{PathPrefix: "/api/product_"}, 0},
		{"limit", RequestLogQuery{Limit: 2}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs, err := s.GetRequestLogs(&tt.query)
			if err != nil {
				t.Fatalf("GetRequestLogs failed: %v", err)
			}
			if len(logs) != tt.want {
				t.Errorf("got %d logs, want %d", len(logs), tt.want)
			}
		})
	}

	logs, _ := s.GetRequestLogs(&RequestLogQuery{Direction: DirectionOutbound})
	if len(logs) == 1 && (logs[0].Error != "name is required" || logs[0].Timestamp.IsZero()) {
		t.Errorf("outbound log not read back intact: %+v", logs[0])
	}
}

func TestGetRecentRequests(t *testing.T) {
	s := setupTestDB(t)
	defer s.Close()

	now := time.Now().UTC()
	insertLogs(t, s, []*RequestLog{
		{Entity: "products", Method: "GET", Path: "/api/products/5", StatusCode: 200, Timestamp: now.Add(-1 * time.Minute)},
		{Entity: "products", Method: "POST", Path: "/api/products", StatusCode: 201, Timestamp: now.Add(-2 * time.Minute)},
		{Entity: "categories", Method: "GET", Path: "/api/categories", StatusCode: 200, Timestamp: now.Add(-3 * time.Minute)},
		{Entity: "products", Method: "DELETE", Path: "/api/products/1", StatusCode: 500, Timestamp: now.Add(-4 * time.Minute)},
	})

	logs, err := s.GetRecentRequests("products", 2)
	if err != nil {
		t.Fatalf("GetRecentRequests failed: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("Expected 2 recent requests, got %d", len(logs))
	}
	if logs[0].Path != "/api/products/5" {
		t.Errorf("Expected most recent request to be /api/products/5, got %s", logs[0].Path)
	}

	logs, err = s.GetRecentRequests("nonexistent", 5)
	if err != nil {
		t.Fatalf("GetRecentRequests failed: %v", err)
	}
	if len(logs) != 0 {
		t.Errorf("Expected 0 requests for nonexistent entity, got %d", len(logs))
	}
}

func TestGetRequestLogStatsAndTopEndpoints(t *testing.T) {
	s := setupTestDB(t)
	defer s.Close()

	for i := 0; i < 3; i++ {
		s.LogRequest(&RequestLog{Method: "GET", Path: "/api/products", StatusCode: 200, DurationMs: 10, UserID: "api"})
	}
	s.LogRequest(&RequestLog{Method: "GET", Path: "/api/categories", StatusCode: 404, DurationMs: 30, UserID: "alice"})

	stats, err := s.GetRequestLogStats()
	if err != nil {
		t.Fatalf("GetRequestLogStats failed: %v", err)
	}
	if stats.TotalRequests != 4 || stats.ErrorRequests != 1 || stats.UniqueEndpoints != 2 || stats.UniqueUsers != 2 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.AvgDurationMs != 15 {
		t.Errorf("AvgDurationMs = %d, want 15", stats.AvgDurationMs)
	}

	top, err := s.GetTopEndpoints(1)
	if err != nil {
		t.Fatalf("GetTopEndpoints failed: %v", err)
	}
	if len(top) != 1 || top[0].Path != "/api/products" || top[0].Count != 3 || top[0].AvgMs != 10 {
		t.Errorf("unexpected top endpoints: %+v", top)
	}
}

// Helper to setup a test database
func setupTestDB(t *testing.T) *Store {
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	return s
}
