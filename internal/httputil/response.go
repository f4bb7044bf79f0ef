// Package httputil holds the JSON request and response helpers shared by
// the phonekit HTTP handlers.
package httputil

import (
	"encoding/json"
	"net/http"
)

// MaxBodySize caps request bodies at 1 MiB. A batch of max_batch numbers
// fits comfortably.
const MaxBodySize = 1 << 20

// DecodeJSON decodes the request body into v, rejecting unknown fields.
// On failure it writes a 400 and returns false.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes an error envelope with no detail.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteErrorData(w, status, message, nil)
}

// WriteErrorData writes an error envelope with extra detail under "data".
func WriteErrorData(w http.ResponseWriter, status int, message string, data map[string]any) {
	WriteJSON(w, status, ErrorResponse{Code: status, Message: message, Data: data})
}

// WriteFieldError reports a single invalid request field under "data".
func WriteFieldError(w http.ResponseWriter, status int, message string, field, fieldCode, fieldMsg string) {
	WriteErrorData(w, status, message, map[string]any{
		field: map[string]string{"code": fieldCode, "message": fieldMsg},
	})
}
