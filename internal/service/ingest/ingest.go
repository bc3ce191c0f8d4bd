// Package ingest validates position messages from dump1090 and remote
// feeders and publishes them for the store.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Temutjin2k/skytrack/internal/domain/models"
	"github.com/Temutjin2k/skytrack/internal/domain/types"
	"github.com/Temutjin2k/skytrack/pkg/logger"
	wrap "github.com/Temutjin2k/skytrack/pkg/logger/wrapper"
	"github.com/Temutjin2k/skytrack/pkg/metrics"
	"github.com/Temutjin2k/skytrack/pkg/validator"
)

type Publisher interface {
	Publish(ctx context.Context, msg models.PositionMessage) error
}

type Service struct {
	pub Publisher
	l   logger.Logger
}

func NewService(pub Publisher, l logger.Logger) *Service {
	return &Service{pub: pub, l: l}
}

// Accept publishes msg. A message carrying nothing but its address is
// dropped with ErrNothingToPublish, an invalid one with ErrInvalidMessage.
func (s *Service) Accept(ctx context.Context, source types.MessageSource, msg models.PositionMessage) (err error) {
	const op = "ingest.Accept"

	msg.IcaoAddress = strings.ToUpper(strings.TrimSpace(msg.IcaoAddress))
	ctx = wrap.WithAction(wrap.WithIcaoAddress(ctx, msg.IcaoAddress), types.ActionIngest)
	defer func() { metrics.RecordIngest(string(source), err) }()

	if !msg.HasAttributes() {
		return fmt.Errorf("%s: %w", op, types.ErrNothingToPublish)
	}

	v := validator.New()
	v.Struct(msg)
	if !v.Valid() {
		return wrap.Error(ctx, fmt.Errorf("%s: %w: %v", op, types.ErrInvalidMessage, v.Err()))
	}

	if err := s.pub.Publish(ctx, msg); err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	s.l.Debug(ctx, "message published", "source", source)
	return nil
}

// BatchResult counts the outcome of AcceptBatch.
type BatchResult struct {
	Accepted int            `json:"accepted"`
	Dropped  int            `json:"dropped"`
	Errors   map[int]string `json:"errors,omitempty"`
}

// AcceptBatch accepts each message in order. Invalid and empty messages are
// counted as dropped. A publish failure stops the batch and is returned.
func (s *Service) AcceptBatch(ctx context.Context, source types.MessageSource, msgs []models.PositionMessage) (BatchResult, error) {
	res := BatchResult{}
	for i, msg := range msgs {
		err := s.Accept(ctx, source, msg)
		switch {
		case err == nil:
			res.Accepted++
		case isDropped(err):
			res.Dropped++
			if res.Errors == nil {
				res.Errors = make(map[int]string)
			}
			res.Errors[i] = err.Error()
		default:
			return res, err
		}
	}
	return res, nil
}

func isDropped(err error) bool {
	return errors.Is(err, types.ErrNothingToPublish) || errors.Is(err, types.ErrInvalidMessage)
}
