package store

import (
	"context"
	"time"

	"github.com/Temutjin2k/skytrack/internal/domain/models"
)

type AircraftRepo interface {
	Ensure(ctx context.Context, icao string) error
	ApplyState(ctx context.Context, msg models.PositionMessage, at time.Time) (bool, error)
}

type MeasureRepo interface {
	InsertBatch(ctx context.Context, measures []models.Measure) error
}

type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
