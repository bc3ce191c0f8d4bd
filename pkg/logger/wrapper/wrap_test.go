package wrap

import (
	"context"
	"errors"
	"testing"
)

func TestWithLogCtx_Merges(t *testing.T) {
	ctx := WithAction(context.Background(), "poll")
	ctx = WithLogCtx(ctx, LogCtx{IcaoAddress: "4840D6"})

	got := FromContext(ctx)
	if got.Action != "poll" || got.IcaoAddress != "4840D6" {
		t.Fatalf("unexpected log ctx: %+v", got)
	}
}

func TestError_CarriesContext(t *testing.T) {
	base := errors.New("boom")
	ctx := WithAction(context.Background(), "fetch_snapshot")

	err := Error(ctx, base)
	if !errors.Is(err, base) {
		t.Fatalf("wrapped error must unwrap to the original")
	}

	out := ErrorCtx(WithRequestID(context.Background(), "req-1"), err)
	lc := FromContext(out)
	if lc.Action != "fetch_snapshot" {
		t.Fatalf("expected action from error, got %q", lc.Action)
	}
	if lc.RequestID != "req-1" {
		t.Fatalf("caller fields must survive, got %q", lc.RequestID)
	}
}

func TestError_Nil(t *testing.T) {
	if Error(context.Background(), nil) != nil {
		t.Fatalf("nil error must stay nil")
	}
}

func TestError_RewrapKeepsInnerFields(t *testing.T) {
	inner := Error(WithIcaoAddress(context.Background(), "ABC123"), errors.New("db down"))
	outer := Error(WithAction(context.Background(), "apply_message"), inner)

	lc := FromContext(ErrorCtx(context.Background(), outer))
	if lc.IcaoAddress != "ABC123" || lc.Action != "apply_message" {
		t.Fatalf("unexpected merged ctx: %+v", lc)
	}
}
