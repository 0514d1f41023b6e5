package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes the repositories translate into domain errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// Domain errors surfaced by the repositories. Services wrap these into
// their own sentinels; repositories never swallow anything else.
var (
	// ErrNotFound means no row matched the given id.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateCPF means an insert or update violated the unique
	// constraint on leads.cpf.
	ErrDuplicateCPF = errors.New("cpf already registered")

	// ErrLeadReference means a property referenced a lead that does
	// not exist.
	ErrLeadReference = errors.New("referenced lead does not exist")

	// ErrCheckViolation means the database rejected a value by check
	// constraint (e.g. non-positive area).
	ErrCheckViolation = errors.New("check constraint violated")
)

// mapPgError translates constraint violations reported by PostgreSQL
// into domain errors. Anything else passes through unchanged so callers
// can decide whether it is transient.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		// leads.cpf carries the only application-level unique constraint
		return ErrDuplicateCPF
	case pgForeignKeyViolation:
		return ErrLeadReference
	case pgCheckViolation:
		return ErrCheckViolation
	}

	return err
}
