package json

import (
	"encoding/json"
	"net/http"
)

// WriteJSON encodes response as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		// Status is already on the wire; nothing more to salvage.
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
