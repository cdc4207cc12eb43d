package health

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gorilla/mux"

	"github.com/jonwraymond/healthgate/observe"
)

// recoverer turns a panic in the handler chain into a 503 with an empty
// JSON body, so monitors never observe a 500 or a reset connection.
func recoverer(logger observe.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if p := recover(); p != nil {
					if p == http.ErrAbortHandler {
						panic(p)
					}
					logger.Error(r.Context(), "recovering from health check handler panic",
						observe.Field{Key: "panic", Value: fmt.Sprint(p)},
						observe.Field{Key: "stack", Value: string(debug.Stack())},
					)
					// Headers may already be out; the write is best effort.
					writeJSON(w, http.StatusServiceUnavailable, emptyBody)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
