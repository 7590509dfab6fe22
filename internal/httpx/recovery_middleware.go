package httpx

import (
	"log"
	"net/http"
	"runtime/debug"
)

// RecoveryMiddleware turns panics into 500 responses instead of dropped
// connections.
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("panic recovered: request_id=%s error=%v stack=%s", RequestIDFrom(r), err, string(debug.Stack()))

				var wroteHeader bool
				if rw, ok := w.(*responseWriter); ok {
					wroteHeader = rw.wroteHeader()
				}

				if !wroteHeader {
					WriteJSON(w, http.StatusInternalServerError, map[string]string{
						"error": "internal server error",
					})
				}
			}
		}()
		next.ServeHTTP(w, r)
	})
}
