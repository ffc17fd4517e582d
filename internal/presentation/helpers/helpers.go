package helpers

import (
	"encoding/json"
	"net/http"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func HttpError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"error": msg})
}

// HttpErrorDetails is HttpError with a list of field-level details.
func HttpErrorDetails(w http.ResponseWriter, status int, msg string, details any) {
	WriteJSON(w, status, map[string]any{"error": msg, "details": details})
}
