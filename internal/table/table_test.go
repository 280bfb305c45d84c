// ABOUTME: Tests for table sort cycling, row sorting, selection and action filtering.
// ABOUTME: Table-driven where the cases are regular.

package table

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/2389/adminkit/internal/schema"
)

func TestSort_Next(t *testing.T) {
	tests := []struct {
		name string
		from Sort
		key  string
		want Sort
	}{
		{"unsorted to asc", Sort{}, "name", Sort{Key: "name", Dir: Asc}},
		{"asc to desc", Sort{Key: "name", Dir: Asc}, "name", Sort{Key: "name", Dir: Desc}},
		{"desc back to asc", Sort{Key: "name", Dir: Desc}, "name", Sort{Key: "name", Dir: Asc}},
		{"new column starts asc", Sort{Key: "name", Dir: Desc}, "price", Sort{Key: "price", Dir: Asc}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.Next(tt.key); got != tt.want {
				t.Errorf("Next(%q) = %+v, want %+v", tt.key, got, tt.want)
			}
		})
	}
}

func TestSortRows(t *testing.T) {
	rows := []schema.Record{
		{"id": 1, "name": "banana", "price": json.Number("10")},
		{"id": 2, "name": "Apple", "price": json.Number("2.5")},
		{"id": 3, "name": "cherry"},
		{"id": 4, "name": "apple", "price": json.Number("10")},
	}

	SortRows(rows, Sort{Key: "price", Dir: Asc})
	if got := ids(rows); !reflect.DeepEqual(got, []string{"3", "2", "1", "4"}) {
		t.Errorf("price asc = %v", got)
	}

	SortRows(rows, Sort{Key: "name", Dir: Desc})
	if got := ids(rows); !reflect.DeepEqual(got, []string{"3", "1", "2", "4"}) {
		t.Errorf("name desc = %v", got)
	}

	before := ids(rows)
	SortRows(rows, Sort{})
	if got := ids(rows); !reflect.DeepEqual(got, before) {
		t.Errorf("unsorted request reordered rows: %v", got)
	}
}

func ids(rows []schema.Record) []string {
	return RowIDs(rows)
}

func TestSelection(t *testing.T) {
	s := NewSelection()

	if !s.Toggle("1") || !s.Has("1") {
		t.Fatal("toggle should select 1")
	}
	if s.Toggle("1") || s.Has("1") {
		t.Fatal("second toggle should deselect 1")
	}

	visible := []string{"1", "2", "3"}
	s.Toggle("2")
	s.ToggleAll(visible)
	if !s.AllSelected(visible) {
		t.Fatalf("toggle all should select every visible row, got %v", s.IDs())
	}
	if !reflect.DeepEqual(s.IDs(), []string{"2", "1", "3"}) {
		t.Errorf("selection order = %v", s.IDs())
	}

	s.ToggleAll(visible)
	if s.Len() != 0 {
		t.Errorf("toggle all on a fully selected page should clear it, got %v", s.IDs())
	}

	s.Toggle("1")
	s.Toggle("9")
	s.Prune([]string{"1", "2"})
	if !reflect.DeepEqual(s.IDs(), []string{"1"}) {
		t.Errorf("prune kept %v", s.IDs())
	}

	s.Clear()
	if s.Len() != 0 || s.Has("1") {
		t.Error("clear left selected ids")
	}
}

func TestSelection_AllSelectedEmptyPage(t *testing.T) {
	if NewSelection().AllSelected(nil) {
		t.Error("an empty page is never fully selected")
	}
}

func TestVisibleActions(t *testing.T) {
	actions := []Action{
		{Name: "edit"},
		{Name: "publish", Show: func(row schema.Record) bool { return row["status"] == "draft" }},
		{Name: "delete"},
	}

	got := VisibleActions(actions, schema.Record{"status": "live"})
	if len(got) != 2 || got[0].Name != "edit" || got[1].Name != "delete" {
		t.Errorf("live row actions = %+v", got)
	}

	got = VisibleActions(actions, schema.Record{"status": "draft"})
	if len(got) != 3 {
		t.Errorf("draft row actions = %+v", got)
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total, size, want int
	}{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
		{57, 10, 6},
		{5, 0, 1},
	}
	for _, tt := range tests {
		if got := TotalPages(tt.total, tt.size); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.total, tt.size, got, tt.want)
		}
	}
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{true, "Yes"},
		{false, "No"},
		{19.5, "19.5"},
		{json.Number("7"), "7"},
		{[]any{"a", "b"}, "a, b"},
		{[]any{map[string]any{"id": 1}, map[string]any{"id": 2}}, "2 items"},
		{map[string]any{"name": "Shoes"}, "Shoes"},
		{42, "42"},
	}
	for _, tt := range tests {
		if got := FormatCell(tt.in); got != tt.want {
			t.Errorf("FormatCell(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
