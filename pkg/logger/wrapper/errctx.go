package wrap

import (
	"context"
	"errors"
)

type errorWithLogCtx struct {
	err    error
	logCtx LogCtx
}

func (e *errorWithLogCtx) Error() string {
	return e.err.Error()
}

func (e *errorWithLogCtx) Unwrap() error {
	return e.err
}

// ErrorCtx returns ctx enriched with the LogCtx captured in err, if any.
// Fields captured where the error happened take precedence over the caller's.
func ErrorCtx(ctx context.Context, err error) context.Context {
	var e *errorWithLogCtx
	if errors.As(err, &e) && e != nil {
		return context.WithValue(ctx, LogCtxKey, mergeLogCtx(FromContext(ctx), e.logCtx))
	}
	return ctx
}
