package wrap

import (
	"context"
)

type (
	// LogCtx holds contextual information for logging
	LogCtx struct {
		Action      string
		RequestID   string
		IcaoAddress string
		FeederID    string
	}

	// logCtxKeyStruct is an unexported type for context keys defined in this package.
	logCtxKeyStruct struct{}
)

// LogCtxKey is the key for log context values
var LogCtxKey = &logCtxKeyStruct{}

// WithLogCtx returns a new context with the provided LogCtx
func WithLogCtx(ctx context.Context, newLc LogCtx) context.Context {
	// Check if there's an existing LogCtx and merge values
	if lc, ok := ctx.Value(LogCtxKey).(LogCtx); ok {
		if newLc.Action == "" {
			newLc.Action = lc.Action
		}
		if newLc.RequestID == "" {
			newLc.RequestID = lc.RequestID
		}
		if newLc.IcaoAddress == "" {
			newLc.IcaoAddress = lc.IcaoAddress
		}
		if newLc.FeederID == "" {
			newLc.FeederID = lc.FeederID
		}
	}
	return context.WithValue(ctx, LogCtxKey, newLc)
}

// FromContext returns the LogCtx stored in ctx, or a zero value.
func FromContext(ctx context.Context) LogCtx {
	lc, _ := ctx.Value(LogCtxKey).(LogCtx)
	return lc
}

// WithRequestID adds or updates the RequestID in the LogCtx within the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	lc := FromContext(ctx)
	lc.RequestID = requestID
	return context.WithValue(ctx, LogCtxKey, lc)
}

// WithIcaoAddress adds or updates the aircraft address in the LogCtx within the context
func WithIcaoAddress(ctx context.Context, icao string) context.Context {
	lc := FromContext(ctx)
	lc.IcaoAddress = icao
	return context.WithValue(ctx, LogCtxKey, lc)
}

// WithFeederID adds or updates the FeederID in the LogCtx within the context
func WithFeederID(ctx context.Context, feederID string) context.Context {
	lc := FromContext(ctx)
	lc.FeederID = feederID
	return context.WithValue(ctx, LogCtxKey, lc)
}

// WithAction adds or updates the Action in the LogCtx within the context
func WithAction(ctx context.Context, action string) context.Context {
	lc := FromContext(ctx)
	lc.Action = action
	return context.WithValue(ctx, LogCtxKey, lc)
}
