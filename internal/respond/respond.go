// Package respond writes JSON API responses.
package respond

import (
	"encoding/json"
	"net/http"
)

// JSON writes data as a JSON response with the given status code.
func JSON(w http.ResponseWriter, data interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"error":"encode failed"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response of the form {"error": msg}.
func Error(w http.ResponseWriter, msg string, code int) {
	JSON(w, map[string]string{"error": msg}, code)
}
