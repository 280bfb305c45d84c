// ABOUTME: Table state primitives: tri-state column sort, id-keyed row selection and row actions.
// ABOUTME: The table never reorders or fetches data; callers own sort and selection state.

package table

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/2389/adminkit/internal/schema"
)

// Direction is a sort direction. The zero value means unsorted.
type Direction string

const (
	Unsorted Direction = ""
	Asc      Direction = "asc"
	Desc     Direction = "desc"
)

// Sort is a requested column sort.
type Sort struct {
	Key string
	Dir Direction
}

// Active reports whether a column sort is requested.
func (s Sort) Active() bool {
	return s.Key != "" && s.Dir != Unsorted
}

// Next returns the sort after a click on key: a new column starts ascending,
// the same column alternates asc and desc.
func (s Sort) Next(key string) Sort {
	if key != s.Key || s.Dir == Unsorted {
		return Sort{Key: key, Dir: Asc}
	}
	if s.Dir == Asc {
		return Sort{Key: key, Dir: Desc}
	}
	return Sort{Key: key, Dir: Asc}
}

// SortRows stably sorts rows in place. Numbers compare numerically, other
// values by their text; missing values sort first.
func SortRows(rows []schema.Record, s Sort) {
	if !s.Active() {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, _ := schema.Lookup(rows[i], s.Key)
		b, _ := schema.Lookup(rows[j], s.Key)
		c := compare(a, b)
		if s.Dir == Desc {
			return c > 0
		}
		return c < 0
	})
}

func compare(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	fa, okA := number(a)
	fb, okB := number(b)
	if okA && okB {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	return strings.Compare(strings.ToLower(FormatCell(a)), strings.ToLower(FormatCell(b)))
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// Selection is a set of selected row ids, kept in selection order.
type Selection struct {
	ids   map[string]bool
	order []string
}

// NewSelection creates an empty selection.
func NewSelection() *Selection {
	return &Selection{ids: map[string]bool{}}
}

// Has reports whether id is selected.
func (s *Selection) Has(id string) bool {
	return s.ids[id]
}

// Len is the number of selected ids.
func (s *Selection) Len() int {
	return len(s.order)
}

// IDs returns the selected ids in selection order.
func (s *Selection) IDs() []string {
	return append([]string(nil), s.order...)
}

// Toggle flips membership of id and reports whether it is now selected.
func (s *Selection) Toggle(id string) bool {
	if s.ids[id] {
		s.remove(id)
		return false
	}
	s.add(id)
	return true
}

// AllSelected reports whether every visible id is selected.
func (s *Selection) AllSelected(visible []string) bool {
	if len(visible) == 0 {
		return false
	}
	for _, id := range visible {
		if !s.ids[id] {
			return false
		}
	}
	return true
}

// ToggleAll selects every visible row, or clears them when all are
// already selected.
func (s *Selection) ToggleAll(visible []string) {
	if s.AllSelected(visible) {
		for _, id := range visible {
			s.remove(id)
		}
		return
	}
	for _, id := range visible {
		if !s.ids[id] {
			s.add(id)
		}
	}
}

// Clear drops every selected id.
func (s *Selection) Clear() {
	s.ids = map[string]bool{}
	s.order = nil
}

// Prune keeps only ids present in keep.
func (s *Selection) Prune(keep []string) {
	allowed := make(map[string]bool, len(keep))
	for _, id := range keep {
		allowed[id] = true
	}
	for _, id := range s.IDs() {
		if !allowed[id] {
			s.remove(id)
		}
	}
}

func (s *Selection) add(id string) {
	s.ids[id] = true
	s.order = append(s.order, id)
}

func (s *Selection) remove(id string) {
	delete(s.ids, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// RowIDs returns the ids of rows that have one.
func RowIDs(rows []schema.Record) []string {
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		if id, ok := row.ID(); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Action is one button in a row's action cluster. Endpoint may contain
// "{id}", replaced with the row id.
type Action struct {
	Name     string
	Label    string
	Method   string
	Endpoint string
	Confirm  string
	Danger   bool
	// Show hides the action for rows where it returns false.
	Show func(row schema.Record) bool
}

// VisibleActions filters actions by their Show predicate.
func VisibleActions(actions []Action, row schema.Record) []Action {
	out := make([]Action, 0, len(actions))
	for _, a := range actions {
		if a.Show != nil && !a.Show(row) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// TotalPages returns the number of pages for total rows, never less than 1.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// FormatCell renders a raw value as plain cell text.
func FormatCell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "Yes"
		}
		return "No"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case []any:
		parts := make([]string, 0, len(t))
		for _, el := range t {
			if _, isMap := schema.AsRecord(el); isMap {
				return strconv.Itoa(len(t)) + " items"
			}
			parts = append(parts, FormatCell(el))
		}
		return strings.Join(parts, ", ")
	case map[string]any, schema.Record:
		if rec, ok := schema.AsRecord(t); ok {
			if name, ok := rec["name"].(string); ok {
				return name
			}
		}
		return ""
	default:
		return fmt.Sprint(t)
	}
}
