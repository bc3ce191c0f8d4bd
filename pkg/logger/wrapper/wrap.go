package wrap

import (
	"context"
	"errors"
)

// Error wraps err with the LogCtx currently stored in ctx.
// An error that already carries a LogCtx gets it replaced by the one from ctx.
func Error(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	var e *errorWithLogCtx
	if errors.As(err, &e) {
		return &errorWithLogCtx{
			err:    err,
			logCtx: mergeLogCtx(e.logCtx, FromContext(ctx)),
		}
	}

	return &errorWithLogCtx{
		err:    err,
		logCtx: FromContext(ctx),
	}
}

// mergeLogCtx overlays the non-empty fields of top on base.
func mergeLogCtx(base, top LogCtx) LogCtx {
	if top.Action != "" {
		base.Action = top.Action
	}
	if top.RequestID != "" {
		base.RequestID = top.RequestID
	}
	if top.IcaoAddress != "" {
		base.IcaoAddress = top.IcaoAddress
	}
	if top.FeederID != "" {
		base.FeederID = top.FeederID
	}
	return base
}
