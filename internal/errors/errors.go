// ABOUTME: Standardized JSON error bodies shared by the demo backend and the API client.
// ABOUTME: The "message" field is what the admin console shows users on a failed request.

package errors

import (
	"encoding/json"
	"net/http"
	"strings"
)

// ErrorResponse is the error body written by the backend and read back by
// the client.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}

// WriteError writes a standardized error response.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	writeErrorResponse(w, ErrorResponse{
		Code:    code,
		Message: message,
		Status:  status,
	})
}

// WriteErrorWithField writes an error pointing at the field that caused it.
func WriteErrorWithField(w http.ResponseWriter, status int, code, message, field string) {
	writeErrorResponse(w, ErrorResponse{
		Code:    code,
		Message: message,
		Status:  status,
		Field:   field,
	})
}

func writeErrorResponse(w http.ResponseWriter, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	json.NewEncoder(w).Encode(resp)
}

// Parse extracts an error body from a failed response. Bodies that are not
// JSON objects, or carry neither a message nor a code, yield ok=false.
// Backends that use "error" instead of "message" are accepted too.
func Parse(body []byte) (ErrorResponse, bool) {
	var raw struct {
		ErrorResponse
		Error string `json:"error"`
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return ErrorResponse{}, false
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return ErrorResponse{}, false
	}
	resp := raw.ErrorResponse
	if resp.Message == "" {
		resp.Message = raw.Error
	}
	if resp.Message == "" && resp.Code == "" {
		return ErrorResponse{}, false
	}
	return resp, true
}

// Error codes written by the demo backend.
const (
	// Client errors (4xx)
	ErrInvalidRequest = "invalid_request"
	ErrInvalidBody    = "invalid_request_body"
	ErrMissingField   = "missing_field"
	ErrNotFound       = "not_found"
	ErrUnauthorized   = "unauthorized"

	// Server errors (5xx)
	ErrDatabaseError = "database_error"
)
