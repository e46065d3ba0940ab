package postgresql

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/kenzahr/workforce-ledger-go/internal/pkg/database"
)

const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
)

// mapError translates driver-level conflict classes into database.ErrConflict
// and leaves everything else untouched.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation, codeSerializationFailure:
			return errors.Join(database.ErrConflict, err)
		}
	}
	return err
}

// IsUniqueViolation reports whether err is a unique-constraint failure.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}
