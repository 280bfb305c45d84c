// ABOUTME: JSON record storage for the demo REST backend.
// ABOUTME: Records are schemaless objects grouped by collection, with integer id counters and text search.

package store

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
)

// RecordQuery filters and pages a collection listing. Limit <= 0 returns
// every match.
type RecordQuery struct {
	Search string
	Limit  int
	Offset int
}

// CollectionCount is the number of records in one collection.
type CollectionCount struct {
	Collection string
	Count      int
}

// NextRecordID reserves the next integer id for a collection.
func (s *Store) NextRecordID(collection string) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO record_counters (collection, next_id) VALUES (?, 1)
		ON CONFLICT(collection) DO UPDATE SET next_id = next_id + 1
	`, collection); err != nil {
		return 0, err
	}

	var id int64
	if err := tx.QueryRow("SELECT next_id FROM record_counters WHERE collection = ?", collection).Scan(&id); err != nil {
		return 0, err
	}
	return id, tx.Commit()
}

// CreateRecord inserts a record under id.
func (s *Store) CreateRecord(collection, id string, data map[string]any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	_, err = s.db.Exec(
		"INSERT INTO records (collection, id, data) VALUES (?, ?, ?)",
		collection, id, string(raw),
	)
	return err
}

// GetRecord loads one record.
func (s *Store) GetRecord(collection, id string) (map[string]any, error) {
	var raw string
	err := s.db.QueryRow(
		"SELECT data FROM records WHERE collection = ? AND id = ?",
		collection, id,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("record %s/%s: %w", collection, id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return decodeRecord(raw)
}

// UpdateRecord replaces a record's data.
func (s *Store) UpdateRecord(collection, id string, data map[string]any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	res, err := s.db.Exec(
		"UPDATE records SET data = ?, updated_at = CURRENT_TIMESTAMP WHERE collection = ? AND id = ?",
		string(raw), collection, id,
	)
	if err != nil {
		return err
	}
	return expectOne(res, collection, id)
}

// DeleteRecord removes a record.
func (s *Store) DeleteRecord(collection, id string) error {
	res, err := s.db.Exec("DELETE FROM records WHERE collection = ? AND id = ?", collection, id)
	if err != nil {
		return err
	}
	return expectOne(res, collection, id)
}

func expectOne(res sql.Result, collection, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("record %s/%s: %w", collection, id, ErrNotFound)
	}
	return nil
}

// ListRecords returns one page of a collection in insertion order plus the
// total number of matches. Search matches any string value, case-insensitively.
func (s *Store) ListRecords(collection string, q RecordQuery) ([]map[string]any, int, error) {
	where := "collection = ?"
	args := []any{collection}
	if q.Search != "" {
		where += ` AND EXISTS (SELECT 1 FROM json_each(records.data) WHERE json_each.type = 'text' AND json_each.value LIKE ? ESCAPE '\')`
		args = append(args, containsPattern(q.Search))
	}

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM records WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT data FROM records WHERE " + where + " ORDER BY rowid ASC"
	if q.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, q.Limit, q.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []map[string]any{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, 0, err
		}
		rec, err := decodeRecord(raw)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rec)
	}
	return items, total, rows.Err()
}

// ResetCollection deletes every record of a collection and its id counter.
func (s *Store) ResetCollection(collection string) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec("DELETE FROM records WHERE collection = ?", collection)
	if err != nil {
		return 0, err
	}
	if _, err := tx.Exec("DELETE FROM record_counters WHERE collection = ?", collection); err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, tx.Commit()
}

// CollectionCounts returns the record count of every non-empty collection.
func (s *Store) CollectionCounts() ([]CollectionCount, error) {
	rows, err := s.db.Query("SELECT collection, COUNT(*) FROM records GROUP BY collection ORDER BY collection")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CollectionCount
	for rows.Next() {
		var c CollectionCount
		if err := rows.Scan(&c.Collection, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// decodeRecord keeps numbers as json.Number so integer ids survive intact.
func decodeRecord(raw string) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewBufferString(raw))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return out, nil
}
