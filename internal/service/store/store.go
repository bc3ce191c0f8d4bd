// Package store applies queued position messages to the latest-state table
// and the measure time series.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Temutjin2k/skytrack/internal/domain/models"
	"github.com/Temutjin2k/skytrack/internal/domain/types"
	"github.com/Temutjin2k/skytrack/pkg/logger"
	wrap "github.com/Temutjin2k/skytrack/pkg/logger/wrapper"
	"github.com/Temutjin2k/skytrack/pkg/metrics"
	"github.com/Temutjin2k/skytrack/pkg/postgres"
)

// MessageTimeLayout is the SBS generated date and time followed by a UTC offset.
const MessageTimeLayout = "2006/01/02 15:04:05.999 -0700"

// Store outcomes
const (
	statusStored   = "stored"
	statusOutdated = "outdated"
	statusDropped  = "dropped"
	statusError    = "error"
)

type Service struct {
	aircraft  AircraftRepo
	measures  MeasureRepo
	txManager TxManager
	utcOffset string
	l         logger.Logger
}

func NewService(aircraft AircraftRepo, measures MeasureRepo, txManager TxManager, utcOffset string, l logger.Logger) *Service {
	return &Service{
		aircraft:  aircraft,
		measures:  measures,
		txManager: txManager,
		utcOffset: utcOffset,
		l:         l,
	}
}

// Apply stores one message. Messages without an address, date or time are
// dropped with ErrMissingAttributes. The latest state is only changed when
// no attribute in msg was written later; otherwise ErrOutdated is returned
// after the measures have been appended.
func (s *Service) Apply(ctx context.Context, msg models.PositionMessage) (err error) {
	const op = "store.Apply"
	ctx = wrap.WithAction(wrap.WithIcaoAddress(ctx, msg.IcaoAddress), types.ActionApplyMessage)

	status := statusStored
	defer func() { metrics.RecordStore(status) }()

	if msg.IcaoAddress == "" || msg.Date == "" || msg.Time == "" {
		status = statusDropped
		s.l.Debug(ctx, "message misses required attributes, dropped")
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, types.ErrMissingAttributes))
	}

	at, err := s.MessageTime(msg)
	if err != nil {
		status = statusDropped
		return wrap.Error(ctx, fmt.Errorf("%s: %w: %v", op, types.ErrInvalidMessage, err))
	}

	if !msg.HasAttributes() {
		status = statusDropped
		s.l.Debug(ctx, "message carries no attributes, dropped")
		return nil
	}

	var applied bool
	if err := s.txManager.Do(ctx, func(ctx context.Context) error {
		if err := s.aircraft.Ensure(ctx, msg.IcaoAddress); err != nil {
			return err
		}

		ok, err := s.aircraft.ApplyState(ctx, msg, at)
		if err != nil {
			return err
		}
		applied = ok

		return s.measures.InsertBatch(ctx, Measures(msg, at))
	}); err != nil {
		status = statusError
		if postgres.IsDataException(err) {
			return wrap.Error(ctx, fmt.Errorf("%s: %w: %v", op, types.ErrInvalidMessage, err))
		}
		return wrap.Error(ctx, fmt.Errorf("%s: %w: %v", op, types.ErrDatabaseFailed, err))
	}

	if !applied {
		status = statusOutdated
		s.l.Info(ctx, "message is out-dated", "message_time", at.Format(time.RFC3339Nano))
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, types.ErrOutdated))
	}

	s.l.Debug(ctx, "aircraft state updated", "message_time", at.Format(time.RFC3339Nano))
	return nil
}

// MessageTime parses the message date and time in the configured UTC offset.
func (s *Service) MessageTime(msg models.PositionMessage) (time.Time, error) {
	raw := strings.Join([]string{strings.TrimSpace(msg.Date), strings.TrimSpace(msg.Time), s.utcOffset}, " ")
	t, err := time.Parse(MessageTimeLayout, raw)
	if err != nil {
		return time.Time{}, errors.New("unparsable date/time " + raw)
	}
	return t, nil
}

// Measures returns the time series samples msg contributes.
func Measures(msg models.PositionMessage, at time.Time) []models.Measure {
	var out []models.Measure
	add := func(name types.MeasureName, v float64) {
		out = append(out, models.Measure{IcaoAddress: msg.IcaoAddress, Name: string(name), Value: v, Time: at})
	}

	if msg.FlightLevel != nil {
		add(types.MeasureFlightLevel, float64(*msg.FlightLevel))
	}
	if msg.Heading != nil {
		add(types.MeasureHeading, *msg.Heading)
	}
	if msg.Latitude != nil {
		add(types.MeasureLatitude, *msg.Latitude)
	}
	if msg.Longitude != nil {
		add(types.MeasureLongitude, *msg.Longitude)
	}
	return out
}
