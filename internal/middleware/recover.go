package middleware

import (
	"log"
	"net/http"

	"github.com/moodflick/backend/pkg/utils"
)

// RecoverJSON converts panics into the generic JSON error body instead
// of chi's plain-text 500, so clients always see well-formed JSON.
func RecoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic serving %s %s: %v", r.Method, r.URL.Path, rec)
				utils.RespondReply(w, http.StatusInternalServerError, "서버에서 오류가 발생했어요")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
