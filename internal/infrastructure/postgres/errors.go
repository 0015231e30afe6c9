package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/edugrant/internal/domain/repository"
)

const (
	pgUniqueViolation  = "23505"
	pgInvalidTextValue = "22P02"
)

// isDuplicateConstraintError reports a unique violation on the named constraint.
func isDuplicateConstraintError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == constraintName
}

// notFound maps a missing row, or an id that is not a valid uuid, to repository.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgInvalidTextValue {
		return repository.ErrNotFound
	}
	return err
}
