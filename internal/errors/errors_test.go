// ABOUTME: Unit tests for standardized error response helpers
// ABOUTME: Validates the written format and parsing it back on the client side

package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		code    string
		message string
	}{
		{"bad request", http.StatusBadRequest, ErrInvalidBody, "Request body is malformed"},
		{"not found", http.StatusNotFound, ErrNotFound, "Resource not found"},
		{"database", http.StatusInternalServerError, ErrDatabaseError, "Failed to load products"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.status, tt.code, tt.message)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}

			var resp ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Code != tt.code || resp.Message != tt.message || resp.Status != tt.status {
				t.Errorf("got %+v", resp)
			}
		})
	}
}

func TestWriteErrorWithField(t *testing.T) {
	w := httptest.NewRecorder()
	WriteErrorWithField(w, http.StatusBadRequest, ErrMissingField, "Name is required", "name")

	resp, ok := Parse(w.Body.Bytes())
	if !ok {
		t.Fatal("Parse() ok = false")
	}
	if resp.Field != "name" {
		t.Errorf("Field = %q, want name", resp.Field)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
		wantOK  bool
	}{
		{"standard body", `{"code":"conflict","message":"SKU already exists","status":409}`, "SKU already exists", true},
		{"error key", `{"error":"invalid UUID","code":"INVALID_ID"}`, "invalid UUID", true},
		{"code only", `{"code":"internal_error"}`, "", true},
		{"empty object", `{}`, "", false},
		{"not json", `<html>502 Bad Gateway</html>`, "", false},
		{"empty", ``, "", false},
		{"array", `[1,2]`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, ok := Parse([]byte(tt.body))
			if ok != tt.wantOK {
				t.Fatalf("Parse() ok = %v, want %v", ok, tt.wantOK)
			}
			if resp.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", resp.Message, tt.wantMsg)
			}
		})
	}
}
