package pkg

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

var ContentType = struct {
	JSON string
}{
	JSON: "application/json",
}

// error labels used in the "error" field of the API response envelope
const (
	ErrLabelBadRequest       = "Bad request"
	ErrLabelUnauthorized     = "Unauthorized"
	ErrLabelNotFound         = "Not found"
	ErrLabelMethodNotAllowed = "Method not allowed"
	ErrLabelConflict         = "Conflict"
	ErrLabelTooManyRequests  = "Too many requests"
	ErrLabelInternal         = "Internal server error"
)

// ApiResponse is the envelope of every JSON response under /api
type ApiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func WriteResponse(w http.ResponseWriter, contentType, message string, statusCode int) {
	WriteResponseBytes(w, contentType, []byte(message), statusCode)
}

func WriteResponseBytes(w http.ResponseWriter, contentType string, message []byte, statusCode int) {
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(statusCode)

	if _, err := w.Write(message); err != nil {
		log.Errorf("failed to write response [%s]: %s", message, err)
	}
}

func WriteResponseBytesOK(w http.ResponseWriter, contentType string, message []byte) {
	WriteResponseBytes(w, contentType, message, http.StatusOK)
}

func WriteJSON(w http.ResponseWriter, statusCode int, payload any) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("marshal response payload: %s", err)
		WriteResponse(
			w,
			ContentType.JSON,
			`{"success":false,"error":"Internal server error"}`,
			http.StatusInternalServerError,
		)
		return
	}
	WriteResponseBytes(w, ContentType.JSON, payloadBytes, statusCode)
}

// WriteSuccess writes {"success": true, "data": data}; data is omitted when nil
func WriteSuccess(w http.ResponseWriter, statusCode int, data any) {
	WriteJSON(w, statusCode, ApiResponse{
		Success: true,
		Data:    data,
	})
}

func WriteError(w http.ResponseWriter, statusCode int, errLabel, message string) {
	WriteJSON(w, statusCode, ApiResponse{
		Success: false,
		Error:   errLabel,
		Message: message,
	})
}

func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, ErrLabelBadRequest, message)
}

func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, ErrLabelUnauthorized, message)
}

func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, ErrLabelNotFound, message)
}

func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, ErrLabelInternal, message)
}
