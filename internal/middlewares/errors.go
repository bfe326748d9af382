package middlewares

import (
	"encoding/json"
	"net/http"
)

// writeJSONError answers with the service's {success:false, message} envelope.
func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
	})
}
