package sbs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/Temutjin2k/skytrack/internal/domain/models"
	"github.com/Temutjin2k/skytrack/internal/domain/types"
	"github.com/Temutjin2k/skytrack/pkg/logger"
	wrap "github.com/Temutjin2k/skytrack/pkg/logger/wrapper"
)

// Handler receives every decoded message.
type Handler func(ctx context.Context, msg models.PositionMessage) error

// Reader keeps a TCP connection to dump1090 and decodes its line stream.
type Reader struct {
	address string
	backoff time.Duration
	dialer  net.Dialer
	l       logger.Logger
}

func NewReader(address string, backoff time.Duration, l logger.Logger) *Reader {
	return &Reader{
		address: address,
		backoff: backoff,
		dialer:  net.Dialer{Timeout: 10 * time.Second},
		l:       l,
	}
}

// Run reads until ctx is done, reconnecting after every failure.
func (r *Reader) Run(ctx context.Context, handle Handler) error {
	ctx = wrap.WithAction(ctx, types.ActionReadSBS)

	for {
		err := r.readOnce(ctx, handle)
		if ctx.Err() != nil {
			r.l.Info(ctx, "sbs reader stopped")
			return nil
		}
		r.l.Error(wrap.ErrorCtx(ctx, err), "sbs stream interrupted, reconnecting", err, "address", r.address, "backoff", r.backoff.String())

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(r.backoff):
		}
	}
}

func (r *Reader) readOnce(ctx context.Context, handle Handler) error {
	const op = "Reader.readOnce"

	conn, err := r.dialer.DialContext(ctx, "tcp", r.address)
	if err != nil {
		return fmt.Errorf("%s: dial: %w", op, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	r.l.Info(ctx, "connected to dump1090", "address", r.address)

	return r.scan(ctx, conn, handle)
}

// scan decodes lines from conn until it is closed.
func (r *Reader) scan(ctx context.Context, conn net.Conn, handle Handler) error {
	const op = "Reader.scan"

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		msg, err := Transform(line)
		if err != nil {
			r.l.Debug(ctx, "skipping line", "error", err.Error())
			continue
		}
		if err := handle(ctx, msg); err != nil && !errors.Is(err, types.ErrNothingToPublish) {
			r.l.Warn(wrap.WithIcaoAddress(ctx, msg.IcaoAddress), "failed to handle message", "error", err.Error())
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: connection closed by peer", op)
}
