package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Temutjin2k/skytrack/internal/domain/models"
	"github.com/Temutjin2k/skytrack/internal/domain/types"
	wrap "github.com/Temutjin2k/skytrack/pkg/logger/wrapper"
)

// --- base auth middleware ---

// Auth validates a bearer token and injects the feeder into context.
// Requests without a token pass through anonymously; protected routes add RequireFeeder.
func (h *Middleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		token, err := extractBearerToken(header)
		if err != nil {
			errorResponse(w, http.StatusUnauthorized, err.Error())
			return
		}

		if h.auth == nil {
			h.log.Error(ctx, "token validator is not configured", errors.New("nil token validator"))
			errorResponse(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		feeder, err := h.auth.Validate(ctx, token)
		if err != nil || feeder == nil {
			h.log.Warn(wrap.ErrorCtx(ctx, err), "failed to authenticate feeder", "error", fmt.Sprint(err))
			errorResponse(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		ctx = wrap.WithFeederID(ctx, feeder.ID)
		next.ServeHTTP(w, r.WithContext(models.WithFeeder(ctx, feeder)))
	})
}

// RequireFeeder allows only requests authenticated as a feeder.
// Usage: mux.Handle("POST /ingest/messages", h.RequireFeeder(ingestHandler))
func (h *Middleware) RequireFeeder(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		feeder := models.FeederFromContext(r.Context())
		if feeder == nil {
			errorResponse(w, http.StatusUnauthorized, "authorization required")
			return
		}
		if feeder.Role != types.RoleFeeder {
			errorResponse(w, http.StatusForbidden, "forbidden: insufficient role")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// --- header parser ---
func extractBearerToken(header string) (string, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", fmt.Errorf("invalid Authorization header format")
	}
	return parts[1], nil
}
