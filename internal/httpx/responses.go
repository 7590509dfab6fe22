package httpx

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes payload as the response body with the given status.
// HTML escaping is disabled so non-ASCII titles and authors stay literal.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}
