package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// IsDataException reports whether err is a PostgreSQL data exception (SQLSTATE class 22),
// such as a numeric value out of range. Retrying such a statement never helps.
//
// Works with wrapped errors through errors.As.
func IsDataException(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.SQLState(), "22")
	}
	return false
}
