package utils

import (
	"encoding/json"
	"net/http"
)

// ErrorEnvelope is the uniform error body every failed request returns,
// with the HTTP status mirrored in statusCode.
type ErrorEnvelope struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorEnvelope{
		Success:    false,
		StatusCode: status,
		Message:    message,
	})
}
