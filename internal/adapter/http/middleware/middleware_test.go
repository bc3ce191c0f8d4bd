package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Temutjin2k/skytrack/internal/domain/models"
	"github.com/Temutjin2k/skytrack/internal/domain/types"
	"github.com/Temutjin2k/skytrack/pkg/logger"
	wrap "github.com/Temutjin2k/skytrack/pkg/logger/wrapper"
)

type fakeValidator struct{}

func (fakeValidator) Validate(_ context.Context, token string) (*models.Feeder, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &models.Feeder{ID: "pi", Role: types.RoleFeeder}, nil
}

func protected(m *Middleware) http.Handler {
	return m.Auth(m.RequireFeeder(func(w http.ResponseWriter, r *http.Request) {
		f := models.FeederFromContext(r.Context())
		if wrap.FromContext(r.Context()).FeederID != f.ID {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
}

func TestAuth(t *testing.T) {
	m := NewMiddleware(fakeValidator{}, logger.Discard())
	h := protected(m)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", "Bearer good", http.StatusNoContent},
		{"case insensitive scheme", "bearer good", http.StatusNoContent},
		{"no header", "", http.StatusUnauthorized},
		{"bad token", "Bearer bad", http.StatusUnauthorized},
		{"bad scheme", "Basic Zm9v", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/ingest/messages", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestAuth_NoValidator(t *testing.T) {
	h := protected(NewMiddleware(nil, logger.Discard()))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRequestID(t *testing.T) {
	m := NewMiddleware(nil, logger.Discard())
	var seen string
	h := m.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = wrap.FromContext(r.Context()).RequestID
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(types.RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen != "abc-123" || rec.Header().Get(types.RequestIDHeader) != "abc-123" {
		t.Fatalf("request id not propagated: %q", seen)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || rec.Header().Get(types.RequestIDHeader) != seen {
		t.Fatalf("request id not generated")
	}
}

func TestRecover(t *testing.T) {
	m := NewMiddleware(nil, logger.Discard())
	h := m.Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
}
