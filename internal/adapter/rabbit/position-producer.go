package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Temutjin2k/skytrack/internal/domain/models"
	"github.com/Temutjin2k/skytrack/internal/domain/types"
	"github.com/Temutjin2k/skytrack/pkg/logger"
	wrap "github.com/Temutjin2k/skytrack/pkg/logger/wrapper"
	"github.com/Temutjin2k/skytrack/pkg/metrics"
	"github.com/Temutjin2k/skytrack/pkg/rabbit"
	amqp "github.com/rabbitmq/amqp091-go"
)

type PositionProducer struct {
	client   *rabbit.RabbitMQ
	exchange string
	service  string

	l logger.Logger
}

func NewPositionProducer(ctx context.Context, client *rabbit.RabbitMQ, service string, l logger.Logger) (*PositionProducer, error) {
	if err := client.DeclareTopic(AircraftExchange); err != nil {
		return nil, wrap.Error(ctx, err)
	}

	return &PositionProducer{
		client:   client,
		exchange: AircraftExchange,
		service:  service,
		l:        l,
	}, nil
}

// Publish sends msg to 'aircraft_topic' with the key 'aircraft.position.{icao}'.
func (p *PositionProducer) Publish(ctx context.Context, msg models.PositionMessage) (err error) {
	ctx = wrap.WithAction(wrap.WithIcaoAddress(ctx, msg.IcaoAddress), "rabbitmq_publish_position")
	defer func() { metrics.RecordRabbitMQPublish(p.service, p.exchange, err) }()

	if err := p.client.EnsureConnection(ctx); err != nil {
		return wrap.Error(ctx, fmt.Errorf("%w: %v", types.ErrPublishFailed, err))
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("failed to marshal message: %w", err))
	}

	key := fmt.Sprintf(PositionRoutingKeyFmt, strings.ToUpper(msg.IcaoAddress))
	requestID := wrap.FromContext(ctx).RequestID

	if err := retry(publishAttempts, publishRetryDelay, func() error {
		ch := p.client.CurrentChannel()
		if ch == nil {
			return fmt.Errorf("channel is closed")
		}
		return ch.PublishWithContext(
			ctx,
			p.exchange, // exchange
			key,        // routing key
			false,      // mandatory
			false,      // immediate
			amqp.Publishing{
				ContentType:   "application/json",
				DeliveryMode:  amqp.Persistent,
				CorrelationId: requestID,
				Body:          body,
				Timestamp:     time.Now(),
			},
		)
	}); err != nil {
		return wrap.Error(ctx, fmt.Errorf("%w: %v", types.ErrPublishFailed, err))
	}

	return nil
}
