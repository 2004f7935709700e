// Package httpx holds the JSON envelope, request decoding and validation shared
// by every HTTP handler.
//
// Every response body has the shape the mobile client expects:
//
//	{"success": bool, "data"?: any, "message"?: string, "error"?: string, "code"?: string, "details"?: [...]}
package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// FieldError is one entry of a validation failure's details.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Envelope is the wire shape of every response.
type Envelope struct {
	Success bool         `json:"success"`
	Data    any          `json:"data,omitempty"`
	Message string       `json:"message,omitempty"`
	Error   string       `json:"error,omitempty"`
	Code    string       `json:"code,omitempty"`
	Details []FieldError `json:"details,omitempty"`
}

var jsonNull = json.RawMessage("null")

// WriteJSON writes v as JSON with no-store caching.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData writes a success envelope. A nil data is sent as an explicit null.
func WriteData(w http.ResponseWriter, status int, data any) {
	WriteDataMessage(w, status, data, "")
}

// WriteDataMessage writes a success envelope with data and a message.
func WriteDataMessage(w http.ResponseWriter, status int, data any, msg string) {
	if data == nil {
		data = jsonNull
	}
	WriteJSON(w, status, Envelope{Success: true, Data: data, Message: msg})
}

// WriteMessage writes a success envelope carrying only a message.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, Envelope{Success: true, Message: msg})
}

// WriteError writes a failure envelope.
func WriteError(w http.ResponseWriter, status int, code, msg string) {
	WriteJSON(w, status, Envelope{Success: false, Error: msg, Code: code})
}

// WriteValidation writes a 400 with per-field details.
func WriteValidation(w http.ResponseWriter, details []FieldError) {
	WriteJSON(w, http.StatusBadRequest, Envelope{
		Success: false,
		Error:   "Validation failed",
		Code:    CodeValidationFailed,
		Details: details,
	})
}

// WriteInternal logs err under event and writes a generic 500.
// The error text never reaches the client.
func WriteInternal(w http.ResponseWriter, log *slog.Logger, event string, err error) {
	if log == nil {
		log = slog.Default()
	}
	log.Error(event, "err", err)
	WriteError(w, http.StatusInternalServerError, CodeInternal, "Internal server error")
}

// Stable machine-readable error codes.
const (
	CodeValidationFailed   = "validation_failed"
	CodeInvalidJSON        = "invalid_json"
	CodeIdentityConflict   = "identity_conflict"
	CodeInvalidCredentials = "invalid_credentials"
	CodeUnauthorized       = "unauthorized"
	CodeInvalidToken       = "invalid_token"
	CodeNotFound           = "not_found"
	CodeMethodNotAllowed   = "method_not_allowed"
	CodeInternal           = "server_error"
)
