// ABOUTME: Tests for entity detection from request paths.
// ABOUTME: Covers backend paths, bare paths and paths without a collection.

package logging

import "testing"

func TestEntityFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/products", "products"},
		{"/api/products/", "products"},
		{"/api/products/42", "products"},
		{"/api/categories/01HZX3/children", "categories"},
		{"/products/7", "products"},
		{"/apiary/hives", "apiary"},
		{"/api", "unknown"},
		{"/api/", "unknown"},
		{"/", "unknown"},
		{"", "unknown"},
	}
	for _, tt := range tests {
		if got := EntityFromPath(tt.path); got != tt.want {
			t.Errorf("EntityFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
