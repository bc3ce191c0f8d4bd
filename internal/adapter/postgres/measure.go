package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Temutjin2k/skytrack/internal/domain/models"
	"github.com/Temutjin2k/skytrack/internal/domain/types"
	wrap "github.com/Temutjin2k/skytrack/pkg/logger/wrapper"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MeasureRepo struct {
	db      *pgxpool.Pool
	service string
}

func NewMeasureRepo(db *pgxpool.Pool, service string) *MeasureRepo {
	return &MeasureRepo{
		db:      db,
		service: service,
	}
}

// InsertBatch appends measures in a single round trip.
func (r *MeasureRepo) InsertBatch(ctx context.Context, measures []models.Measure) (err error) {
	const op = "MeasureRepo.InsertBatch"
	if len(measures) == 0 {
		return nil
	}
	defer recordQuery(r.service, op, time.Now(), &err)

	query := `
		INSERT INTO aircraft_measures (icao_address, name, value, measured_at)
		VALUES ($1, $2, $3, $4);`

	batch := &pgx.Batch{}
	for _, m := range measures {
		batch.Queue(query, m.IcaoAddress, m.Name, m.Value, m.Time)
	}

	if err := TxorDB(ctx, r.db).SendBatch(ctx, batch).Close(); err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return nil
}

// LatestPositions returns aircraft whose latest Latitude, Longitude and
// Heading measures were all taken at or after since, sorted by address.
func (r *MeasureRepo) LatestPositions(ctx context.Context, since time.Time) (positions []models.AircraftPosition, err error) {
	const op = "MeasureRepo.LatestPositions"
	defer recordQuery(r.service, op, time.Now(), &err)

	query := `
		WITH latest AS (
			SELECT DISTINCT ON (icao_address, name) icao_address, name, value
			FROM aircraft_measures
			WHERE name IN ($2, $3, $4) AND measured_at >= $1
			ORDER BY icao_address, name, measured_at DESC
		)
		SELECT icao_address,
			MAX(value) FILTER (WHERE name = $3) AS longitude,
			MAX(value) FILTER (WHERE name = $2) AS latitude,
			MAX(value) FILTER (WHERE name = $4) AS heading
		FROM latest
		GROUP BY icao_address
		HAVING COUNT(*) = 3
		ORDER BY icao_address;`

	rows, err := TxorDB(ctx, r.db).Query(ctx, query,
		since,
		string(types.MeasureLatitude),
		string(types.MeasureLongitude),
		string(types.MeasureHeading),
	)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	defer rows.Close()

	positions = make([]models.AircraftPosition, 0)
	for rows.Next() {
		var p models.AircraftPosition
		if err := rows.Scan(&p.IcaoAddress, &p.Longitude, &p.Latitude, &p.Heading); err != nil {
			return nil, wrap.Error(ctx, fmt.Errorf("%s: scan: %w", op, err))
		}
		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	return positions, nil
}
