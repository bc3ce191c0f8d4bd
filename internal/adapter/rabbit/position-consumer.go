package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Temutjin2k/skytrack/internal/domain/models"
	"github.com/Temutjin2k/skytrack/pkg/logger"
	wrap "github.com/Temutjin2k/skytrack/pkg/logger/wrapper"
	"github.com/Temutjin2k/skytrack/pkg/metrics"
	"github.com/Temutjin2k/skytrack/pkg/rabbit"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/remeh/sizedwaitgroup"
)

type PositionConsumer struct {
	client  *rabbit.RabbitMQ
	workers int
	service string
	l       logger.Logger
}

func NewPositionConsumer(client *rabbit.RabbitMQ, workers int, service string, l logger.Logger) *PositionConsumer {
	if workers < 1 {
		workers = 1
	}
	return &PositionConsumer{client: client, workers: workers, service: service, l: l}
}

type PositionHandler func(ctx context.Context, msg models.PositionMessage) error

// declareAndBindQueue объявляет и привязывает очередь к exchange.
func (c *PositionConsumer) declareAndBindQueue(ctx context.Context, ch *amqp.Channel) (amqp.Queue, error) {
	const op = "PositionConsumer.declareAndBindQueue"

	if err := ch.ExchangeDeclare(AircraftExchange, "topic", true, false, false, false, nil); err != nil {
		return amqp.Queue{}, wrap.Error(ctx, fmt.Errorf("%s: declare exchange failed: %w", op, err))
	}

	q, err := ch.QueueDeclare(QueueAircraftPositions, true, false, false, false, nil)
	if err != nil {
		return q, wrap.Error(ctx, fmt.Errorf("%s: declare queue failed: %w", op, err))
	}

	if err := ch.QueueBind(q.Name, PositionBindingKey, AircraftExchange, false, nil); err != nil {
		return q, wrap.Error(ctx, fmt.Errorf("%s: bind queue failed: %w", op, err))
	}

	// no more unacked deliveries than workers
	if err := ch.Qos(c.workers, 0, false); err != nil {
		return q, wrap.Error(ctx, fmt.Errorf("%s: qos failed: %w", op, err))
	}

	return q, nil
}

// Consume reads aircraft.position.* messages and hands each to fn, at most
// workers at a time. It returns once ctx is done and in-flight messages are settled.
func (c *PositionConsumer) Consume(ctx context.Context, fn PositionHandler) error {
	const op = "PositionConsumer.Consume"
	ctx = wrap.WithAction(ctx, "rabbitmq_consume_positions")

	swg := sizedwaitgroup.New(c.workers)
	defer swg.Wait()

	for {
		if ctx.Err() != nil {
			c.l.Debug(ctx, "consume positions stopped by context")
			return nil
		}

		if err := c.client.EnsureConnection(ctx); err != nil {
			c.l.Error(ctx, "ensure connection failed", err, "op", op)
			sleepCtx(ctx, reconnectDelay)
			continue
		}

		ch := c.client.CurrentChannel()
		if ch == nil {
			sleepCtx(ctx, reconnectDelay)
			continue
		}

		q, err := c.declareAndBindQueue(ctx, ch)
		if err != nil {
			c.l.Error(ctx, "declare queue failed", err, "op", op)
			sleepCtx(ctx, reconnectDelay)
			continue
		}

		msgs, err := ch.Consume(q.Name, "", false, false, false, false, nil)
		if err != nil {
			c.l.Error(ctx, "consume failed", err, "op", op)
			sleepCtx(ctx, reconnectDelay)
			continue
		}

		c.l.Info(ctx, "start consuming positions", "queue", q.Name, "workers", c.workers)

	consumeLoop:
		for {
			select {
			case <-ctx.Done():
				c.l.Info(ctx, "position consumer shutting down", "op", op)
				return nil

			case d, ok := <-msgs:
				if !ok {
					c.l.Warn(ctx, "message channel closed, reconnecting...", "op", op)
					sleepCtx(ctx, reconnectDelay)
					break consumeLoop
				}

				swg.Add()
				go func(d amqp.Delivery) {
					defer swg.Done()
					c.handleDelivery(ctx, fn, d)
				}(d)
			}
		}
	}
}

// handleDelivery settles d: ack on success or on a message that can never
// be applied, requeue on recoverable errors, reject otherwise.
func (c *PositionConsumer) handleDelivery(ctx context.Context, fn PositionHandler, d amqp.Delivery) {
	const op = "PositionConsumer.handleDelivery"

	var msg models.PositionMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		c.l.Error(ctx, "decode failed", err, "op", op)
		metrics.RecordRabbitMQConsume(c.service, QueueAircraftPositions, err)
		_ = d.Reject(false)
		return
	}

	if d.CorrelationId != "" {
		ctx = wrap.WithRequestID(ctx, d.CorrelationId)
	}
	ctx = wrap.WithIcaoAddress(ctx, msg.IcaoAddress)

	err := fn(ctx, msg)
	metrics.RecordRabbitMQConsume(c.service, QueueAircraftPositions, err)

	switch {
	case err == nil, isSettledError(err):
		if err := d.Ack(false); err != nil {
			c.l.Warn(ctx, "ack failed", "error", err.Error(), "op", op)
		}
	case isRecoverableError(err):
		c.l.Error(wrap.ErrorCtx(ctx, err), "handler failed, requeueing", err, "op", op)
		_ = d.Nack(false, true)
	default:
		c.l.Error(wrap.ErrorCtx(ctx, err), "handler failed, dropping message", err, "op", op)
		_ = d.Reject(false)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
