package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Temutjin2k/skytrack/internal/domain/models"
	"github.com/Temutjin2k/skytrack/internal/domain/types"
	wrap "github.com/Temutjin2k/skytrack/pkg/logger/wrapper"
	"github.com/Temutjin2k/skytrack/pkg/metrics"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AircraftRepo struct {
	db      *pgxpool.Pool
	service string
}

func NewAircraftRepo(db *pgxpool.Pool, service string) *AircraftRepo {
	return &AircraftRepo{
		db:      db,
		service: service,
	}
}

// Ensure creates an empty row for icao if there is none.
func (r *AircraftRepo) Ensure(ctx context.Context, icao string) (err error) {
	const op = "AircraftRepo.Ensure"
	defer recordQuery(r.service, op, time.Now(), &err)

	query := `
		INSERT INTO aircraft (icao_address)
		VALUES ($1)
		ON CONFLICT (icao_address) DO NOTHING;`

	if _, err := TxorDB(ctx, r.db).Exec(ctx, query, icao); err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return nil
}

// ApplyState writes every attribute msg carries together with its update
// time, but only when none of those attributes was written later than at.
// Returns false when the row was left alone because the message is out-dated.
func (r *AircraftRepo) ApplyState(ctx context.Context, msg models.PositionMessage, at time.Time) (applied bool, err error) {
	const op = "AircraftRepo.ApplyState"
	defer recordQuery(r.service, op, time.Now(), &err)

	query := `
		UPDATE aircraft SET
			last_updated         = GREATEST(last_updated, $2::timestamptz),
			flight_code          = COALESCE($3::text, flight_code),
			flight_code_updated  = CASE WHEN $3::text IS NULL THEN flight_code_updated ELSE $2::timestamptz END,
			flight_level         = COALESCE($4::bigint, flight_level),
			flight_level_updated = CASE WHEN $4::bigint IS NULL THEN flight_level_updated ELSE $2::timestamptz END,
			air_speed            = COALESCE($5::double precision, air_speed),
			air_speed_updated    = CASE WHEN $5::double precision IS NULL THEN air_speed_updated ELSE $2::timestamptz END,
			heading              = COALESCE($6::double precision, heading),
			heading_updated      = CASE WHEN $6::double precision IS NULL THEN heading_updated ELSE $2::timestamptz END,
			latitude             = COALESCE($7::double precision, latitude),
			latitude_updated     = CASE WHEN $7::double precision IS NULL THEN latitude_updated ELSE $2::timestamptz END,
			longitude            = COALESCE($8::double precision, longitude),
			longitude_updated    = CASE WHEN $8::double precision IS NULL THEN longitude_updated ELSE $2::timestamptz END,
			squawk               = COALESCE($9::text, squawk),
			squawk_updated       = CASE WHEN $9::text IS NULL THEN squawk_updated ELSE $2::timestamptz END
		WHERE icao_address = $1
			AND ($3::text IS NULL OR flight_code_updated IS NULL OR flight_code_updated <= $2::timestamptz)
			AND ($4::bigint IS NULL OR flight_level_updated IS NULL OR flight_level_updated <= $2::timestamptz)
			AND ($5::double precision IS NULL OR air_speed_updated IS NULL OR air_speed_updated <= $2::timestamptz)
			AND ($6::double precision IS NULL OR heading_updated IS NULL OR heading_updated <= $2::timestamptz)
			AND ($7::double precision IS NULL OR latitude_updated IS NULL OR latitude_updated <= $2::timestamptz)
			AND ($8::double precision IS NULL OR longitude_updated IS NULL OR longitude_updated <= $2::timestamptz)
			AND ($9::text IS NULL OR squawk_updated IS NULL OR squawk_updated <= $2::timestamptz);`

	tag, err := TxorDB(ctx, r.db).Exec(ctx, query,
		msg.IcaoAddress,
		at,
		msg.FlightCode,
		msg.FlightLevel,
		msg.AirSpeed,
		msg.Heading,
		msg.Latitude,
		msg.Longitude,
		msg.Squawk,
	)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return false, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	return tag.RowsAffected() == 1, nil
}

// Get returns the latest state of icao, or types.ErrNotFound.
func (r *AircraftRepo) Get(ctx context.Context, icao string) (state *models.AircraftState, err error) {
	const op = "AircraftRepo.Get"
	defer recordQuery(r.service, op, time.Now(), &err)

	query := `
		SELECT icao_address, last_updated,
			flight_code, flight_code_updated,
			flight_level, flight_level_updated,
			air_speed, air_speed_updated,
			heading, heading_updated,
			latitude, latitude_updated,
			longitude, longitude_updated,
			squawk, squawk_updated
		FROM aircraft
		WHERE icao_address = $1;`

	var (
		s           models.AircraftState
		lastUpdated *time.Time
	)
	if err := TxorDB(ctx, r.db).QueryRow(ctx, query, icao).Scan(
		&s.IcaoAddress, &lastUpdated,
		&s.FlightCode, &s.FlightCodeLastUpdated,
		&s.FlightLevel, &s.FlightLevelLastUpdated,
		&s.AirSpeed, &s.AirSpeedLastUpdated,
		&s.Heading, &s.HeadingLastUpdated,
		&s.Latitude, &s.LatitudeLastUpdated,
		&s.Longitude, &s.LongitudeLastUpdated,
		&s.Squawk, &s.SquawkLastUpdated,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	if lastUpdated != nil {
		s.LastUpdated = *lastUpdated
	}

	return &s, nil
}

func recordQuery(service, op string, start time.Time, err *error) {
	var e error
	if err != nil && !errors.Is(*err, types.ErrNotFound) {
		e = *err
	}
	metrics.RecordDatabaseQuery(service, op, e, time.Since(start))
}
