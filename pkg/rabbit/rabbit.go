package rabbit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Temutjin2k/skytrack/internal/domain/types"
	"github.com/Temutjin2k/skytrack/pkg/logger"
	wrap "github.com/Temutjin2k/skytrack/pkg/logger/wrapper"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	heartbeat         = 10 * time.Second
	reconnectAttempts = 5
)

type RabbitMQ struct {
	Conn     *amqp.Connection
	Channel  *amqp.Channel
	isClosed bool
	mu       sync.Mutex
	dsn      string

	log logger.Logger
}

// New creates rabbitMQ client
func New(ctx context.Context, dsn string, log logger.Logger) (*RabbitMQ, error) {
	conn, ch, err := dial(dsn)
	if err != nil {
		return nil, err
	}

	r := &RabbitMQ{
		Conn:    conn,
		Channel: ch,
		dsn:     dsn,
		log:     log,
	}
	r.watch(conn, ch)

	log.Info(wrap.WithAction(ctx, types.ActionRabbitMQConnected), "connected to rabbitMQ")

	return r, nil
}

func dial(dsn string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.DialConfig(dsn, amqp.Config{Heartbeat: heartbeat})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	return conn, ch, nil
}

// watch marks the client closed as soon as the connection or the channel goes away.
func (r *RabbitMQ) watch(conn *amqp.Connection, ch *amqp.Channel) {
	connClose := conn.NotifyClose(make(chan *amqp.Error, 1))
	chClose := ch.NotifyClose(make(chan *amqp.Error, 1))

	go func() {
		var closeErr *amqp.Error
		select {
		case closeErr = <-connClose:
		case closeErr = <-chClose:
		}

		r.mu.Lock()
		// a newer connection may already be in place
		if r.Conn == conn {
			r.isClosed = true
		}
		r.mu.Unlock()

		ctx := wrap.WithAction(context.Background(), types.ActionRabbitConnectionClosed)
		if closeErr != nil {
			r.log.Error(ctx, "RabbitMQ connection closed with error", closeErr)
		} else {
			r.log.Debug(ctx, "RabbitMQ connection closed gracefully")
		}
	}()
}

// IsConnectionClosed checks if the connection is closed
func (r *RabbitMQ) IsConnectionClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Conn == nil || r.Channel == nil {
		return true
	}
	return r.isClosed || r.Conn.IsClosed() || r.Channel.IsClosed()
}

// Close closes channel and connection, giving up when ctx is done.
func (r *RabbitMQ) Close(ctx context.Context) error {
	ctx = wrap.WithAction(ctx, types.ActionRabbitConnectionClosing)

	r.mu.Lock()
	if r.isClosed && r.Conn == nil {
		r.mu.Unlock()
		return nil
	}
	r.isClosed = true
	ch, conn := r.Channel, r.Conn
	r.Channel, r.Conn = nil, nil
	r.mu.Unlock()

	if ch != nil {
		if err := closeWithCtxFunc(ctx, ch.Close); err != nil && ctx.Err() == nil {
			r.log.Debug(ctx, "error closing channel", "error", err.Error())
		}
	}

	if conn != nil {
		if err := closeWithCtxFunc(ctx, conn.Close); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("failed to close connection: %w", err)
		}
	}

	r.log.Info(wrap.WithAction(ctx, types.ActionRabbitConnectionClosed), "rabbitMQ closed")
	return nil
}

// helper to close a resource with context cancellation safely
func closeWithCtxFunc(ctx context.Context, fn func() error) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- fn()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reconnect dials again with a linear backoff. It is a no-op while the
// current connection is healthy.
func (r *RabbitMQ) Reconnect(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.dsn == "" {
		return fmt.Errorf("dsn is empty: can't reconnect")
	}

	if !r.isClosed && r.Conn != nil && !r.Conn.IsClosed() && r.Channel != nil && !r.Channel.IsClosed() {
		return nil
	}

	var (
		conn *amqp.Connection
		ch   *amqp.Channel
		err  error
	)
	for i := range reconnectAttempts {
		conn, ch, err = dial(r.dsn)
		if err == nil {
			break
		}

		wait := time.Duration(i+1) * 2 * time.Second
		r.log.Debug(ctx, "reconnect attempt failed", "attempt", i+1, "retry_in", wait.String())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	if err != nil {
		return fmt.Errorf("failed to reconnect to RabbitMQ: %w", err)
	}

	r.Conn = conn
	r.Channel = ch
	r.isClosed = false
	r.watch(conn, ch)

	r.log.Info(wrap.WithAction(ctx, types.ActionRabbitReconnected), "RabbitMQ reconnected successfully")

	return nil
}

func (r *RabbitMQ) EnsureConnection(ctx context.Context) error {
	if r.IsConnectionClosed() {
		r.log.Warn(ctx, "rabbit connection closed, reconnecting...")
		if err := r.Reconnect(ctx); err != nil {
			return fmt.Errorf("failed to reconnect to RabbitMQ: %w", err)
		}
	}
	return nil
}

// DeclareTopic declares a durable topic exchange.
func (r *RabbitMQ) DeclareTopic(name string) error {
	r.mu.Lock()
	ch := r.Channel
	r.mu.Unlock()

	if ch == nil {
		return fmt.Errorf("declare exchange %s: channel is closed", name)
	}
	if err := ch.ExchangeDeclare(name, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", name, err)
	}
	return nil
}

// CurrentChannel returns the channel in use, or nil when disconnected.
func (r *RabbitMQ) CurrentChannel() *amqp.Channel {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Channel
}
