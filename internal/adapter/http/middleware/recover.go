package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
)

func (app *Middleware) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				err := fmt.Errorf("panic: %v", p)
				app.log.Error(r.Context(), "recovered from panic", err, "stack", string(debug.Stack()))
				w.Header().Set("Connection", "close")
				errorResponse(w, http.StatusInternalServerError, "internal server error")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
