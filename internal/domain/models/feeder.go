package models

import (
	"context"
	"time"

	"github.com/Temutjin2k/skytrack/internal/domain/types"
)

// Feeder is a remote receiver allowed to upload position messages.
type Feeder struct {
	ID        string
	Role      types.UserRole
	ExpiresAt time.Time
}

type feederCtxKey struct{}

// WithFeeder stores the authenticated feeder in ctx.
func WithFeeder(ctx context.Context, f *Feeder) context.Context {
	return context.WithValue(ctx, feederCtxKey{}, f)
}

// FeederFromContext returns the authenticated feeder, or nil.
func FeederFromContext(ctx context.Context) *Feeder {
	f, _ := ctx.Value(feederCtxKey{}).(*Feeder)
	return f
}
