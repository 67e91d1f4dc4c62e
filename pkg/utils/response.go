package utils

import (
	"log"
	"net/http"

	"github.com/goccy/go-json"
)

// RespondJSON writes payload as UTF-8 JSON. HTML escaping is disabled so
// non-Latin text reaches the client verbatim.
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// RespondReply writes the {"reply": ...} shape used for user-facing
// validation and error messages.
func RespondReply(w http.ResponseWriter, status int, reply string) {
	RespondJSON(w, status, map[string]string{"reply": reply})
}
