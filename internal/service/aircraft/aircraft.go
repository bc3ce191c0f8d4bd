// Package aircraft serves the aircraft snapshot the map polls.
package aircraft

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Temutjin2k/skytrack/internal/domain/models"
	"github.com/Temutjin2k/skytrack/internal/domain/types"
	"github.com/Temutjin2k/skytrack/internal/service/geo"
	wrap "github.com/Temutjin2k/skytrack/pkg/logger/wrapper"
)

type PositionReader interface {
	LatestPositions(ctx context.Context, since time.Time) ([]models.AircraftPosition, error)
}

type StateReader interface {
	Get(ctx context.Context, icao string) (*models.AircraftState, error)
}

type Service struct {
	positions PositionReader
	states    StateReader
	window    time.Duration
	now       func() time.Time
}

func NewService(positions PositionReader, states StateReader, window time.Duration) *Service {
	return &Service{
		positions: positions,
		states:    states,
		window:    window,
		now:       time.Now,
	}
}

// Snapshot returns every aircraft that reported a latitude, a longitude and
// a heading within the window.
func (s *Service) Snapshot(ctx context.Context) ([]models.AircraftPosition, error) {
	const op = "aircraft.Snapshot"
	ctx = wrap.WithAction(ctx, "aircraft_snapshot")

	positions, err := s.positions.LatestPositions(ctx, s.now().Add(-s.window))
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	if positions == nil {
		positions = []models.AircraftPosition{}
	}
	return positions, nil
}

// SnapshotNear is Snapshot restricted to aircraft at most radiusKm from center.
func (s *Service) SnapshotNear(ctx context.Context, center models.Position, radiusKm float64) ([]models.AircraftPosition, error) {
	positions, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	near := positions[:0]
	for _, p := range positions {
		if geo.Within(center, models.Position{Latitude: p.Latitude, Longitude: p.Longitude}, radiusKm) {
			near = append(near, p)
		}
	}
	return near, nil
}

// Get returns the latest state of one aircraft.
func (s *Service) Get(ctx context.Context, icao string) (*models.AircraftState, error) {
	const op = "aircraft.Get"
	icao = strings.ToUpper(strings.TrimSpace(icao))
	ctx = wrap.WithAction(wrap.WithIcaoAddress(ctx, icao), "aircraft_get")

	if icao == "" {
		return nil, types.ErrNotFound
	}

	state, err := s.states.Get(ctx, icao)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return state, nil
}
