package middleware

import (
	"net/http"

	"github.com/Temutjin2k/skytrack/internal/domain/types"
	wrap "github.com/Temutjin2k/skytrack/pkg/logger/wrapper"
	"github.com/google/uuid"
)

// RequestID reuses the caller's X-Request-ID or mints one, and puts it in the log context.
func (m *Middleware) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(types.RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}

		w.Header().Set(types.RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(wrap.WithRequestID(r.Context(), id)))
	})
}
