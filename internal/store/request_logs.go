// ABOUTME: Request log storage operations.
// ABOUTME: Records inbound backend requests and outbound console API calls, and queries them for the log page.

package store

import "time"

// Directions of a logged request.
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// RequestLog represents an HTTP request log entry
type RequestLog struct {
	ID           int64
	Timestamp    time.Time
	Direction    string
	Entity       string
	Method       string
	Path         string
	StatusCode   int
	DurationMs   int
	UserID       string
	IPAddress    string
	UserAgent    string
	Error        string
	RequestBody  string
	ResponseBody string
}

// LogRequest inserts a request log entry
func (s *Store) LogRequest(log *RequestLog) error {
	direction := log.Direction
	if direction == "" {
		direction = DirectionInbound
	}
	_, err := s.db.Exec(`
		INSERT INTO request_logs (direction, entity, method, path, status_code, duration_ms, user_id, ip_address, user_agent, error, request_body, response_body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, direction, log.Entity, log.Method, log.Path, log.StatusCode, log.DurationMs, log.UserID, log.IPAddress, log.UserAgent, log.Error, log.RequestBody, log.ResponseBody)
	return err
}

// RequestLogQuery represents filters for request logs
type RequestLogQuery struct {
	Limit      int
	Offset     int
	Direction  string
	Entity     string
	Method     string
	PathPrefix string
	StatusCode int
	UserID     string
}

// RequestLogStats represents aggregate statistics
type RequestLogStats struct {
	TotalRequests   int
	TodayRequests   int
	ErrorRequests   int
	AvgDurationMs   int
	UniqueEndpoints int
	UniqueUsers     int
}

const requestLogColumns = `id, timestamp, direction, COALESCE(entity, ''), method, path, COALESCE(status_code, 0), COALESCE(duration_ms, 0),
	          COALESCE(user_id, ''), COALESCE(ip_address, ''), COALESCE(user_agent, ''), COALESCE(error, ''),
	          COALESCE(request_body, ''), COALESCE(response_body, '')`

// GetRequestLogs retrieves request logs with filtering
func (s *Store) GetRequestLogs(q *RequestLogQuery) ([]*RequestLog, error) {
	query := `SELECT ` + requestLogColumns + ` FROM request_logs WHERE 1=1`
	args := []any{}

	if q.Direction != "" {
		query += " AND direction = ?"
		args = append(args, q.Direction)
	}
	if q.Entity != "" {
		query += " AND entity = ?"
		args = append(args, q.Entity)
	}
	if q.Method != "" {
		query += " AND method = ?"
		args = append(args, q.Method)
	}
	if q.PathPrefix != "" {
		query += ` AND path LIKE ? ESCAPE '\'`
		args = append(args, prefixPattern(q.PathPrefix))
	}
	if q.StatusCode > 0 {
		query += " AND status_code = ?"
		args = append(args, q.StatusCode)
	}
	if q.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, q.UserID)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " ORDER BY timestamp DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, q.Offset)

	return s.queryLogs(query, args...)
}

func (s *Store) queryLogs(query string, args ...any) ([]*RequestLog, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*RequestLog
	for rows.Next() {
		log := &RequestLog{}
		var timestamp string
		if err := rows.Scan(&log.ID, &timestamp, &log.Direction, &log.Entity, &log.Method, &log.Path, &log.StatusCode,
			&log.DurationMs, &log.UserID, &log.IPAddress, &log.UserAgent, &log.Error,
			&log.RequestBody, &log.ResponseBody); err != nil {
			return nil, err
		}
		log.Timestamp = parseTimestamp(timestamp)
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

func parseTimestamp(v string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

// GetRequestLogStats returns aggregate statistics
func (s *Store) GetRequestLogStats() (*RequestLogStats, error) {
	stats := &RequestLogStats{}

	if err := s.db.QueryRow("SELECT COUNT(*) FROM request_logs").Scan(&stats.TotalRequests); err != nil {
		return nil, err
	}

	today := time.Now().UTC().Format("2006-01-02")
	s.db.QueryRow("SELECT COUNT(*) FROM request_logs WHERE date(timestamp) = ?", today).Scan(&stats.TodayRequests)
	s.db.QueryRow("SELECT COUNT(*) FROM request_logs WHERE status_code >= 400").Scan(&stats.ErrorRequests)
	s.db.QueryRow("SELECT CAST(COALESCE(AVG(duration_ms), 0) AS INTEGER) FROM request_logs").Scan(&stats.AvgDurationMs)
	s.db.QueryRow("SELECT COUNT(DISTINCT path) FROM request_logs").Scan(&stats.UniqueEndpoints)
	s.db.QueryRow("SELECT COUNT(DISTINCT user_id) FROM request_logs WHERE user_id != ''").Scan(&stats.UniqueUsers)

	return stats, nil
}

// EndpointCount is one row of GetTopEndpoints.
type EndpointCount struct {
	Path  string
	Count int
	AvgMs int
}

// GetTopEndpoints returns the most frequently requested endpoints
func (s *Store) GetTopEndpoints(limit int) ([]EndpointCount, error) {
	rows, err := s.db.Query(`
		SELECT path, COUNT(*) as count, AVG(duration_ms) as avg_ms
		FROM request_logs
		GROUP BY path
		ORDER BY count DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var endpoints []EndpointCount
	for rows.Next() {
		var e EndpointCount
		var avgMs float64
		if err := rows.Scan(&e.Path, &e.Count, &avgMs); err != nil {
			return nil, err
		}
		e.AvgMs = int(avgMs)
		endpoints = append(endpoints, e)
	}
	return endpoints, rows.Err()
}

// GetEntityRequestCount returns the number of requests for an entity since a given time
func (s *Store) GetEntityRequestCount(entity string, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*)
		FROM request_logs
		WHERE entity = ? AND timestamp >= ?
	`, entity, since).Scan(&count)
	return count, err
}

// GetEntityErrorRate returns the error rate percentage for an entity since a given time
func (s *Store) GetEntityErrorRate(entity string, since time.Time) (float64, error) {
	var totalCount, errorCount int

	err := s.db.QueryRow(`
		SELECT COUNT(*)
		FROM request_logs
		WHERE entity = ? AND timestamp >= ?
	`, entity, since).Scan(&totalCount)
	if err != nil {
		return 0, err
	}

	if totalCount == 0 {
		return 0, nil
	}

	err = s.db.QueryRow(`
		SELECT COUNT(*)
		FROM request_logs
		WHERE entity = ? AND timestamp >= ? AND status_code >= 400
	`, entity, since).Scan(&errorCount)
	if err != nil {
		return 0, err
	}

	return (float64(errorCount) / float64(totalCount)) * 100.0, nil
}

// GetRecentRequests returns the most recent requests for an entity
func (s *Store) GetRecentRequests(entity string, limit int) ([]*RequestLog, error) {
	query := `SELECT ` + requestLogColumns + `
	          FROM request_logs
	          WHERE entity = ?
	          ORDER BY timestamp DESC, id DESC
	          LIMIT ?`
	return s.queryLogs(query, entity, limit)
}
