package middleware

import (
	"encoding/json"
	"net/http"
)

// writeError sends a {"error": msg} body. Middleware sits in front of a
// JSON API, so failures answer in the same shape as the handlers do.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
