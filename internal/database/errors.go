package database

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

// ErrUniqueViolation marks inserts or updates rejected by a unique
// constraint, so callers can surface a conflict instead of a server error.
var ErrUniqueViolation = errors.New("unique constraint violation")

// ErrInsufficientSlots marks a slot reservation rejected inside the
// booking transaction because the attraction's locked row held fewer
// slots than requested.
var ErrInsufficientSlots = errors.New("not enough available slots")

const pqUniqueViolationCode = "23505"

// IsUniqueViolation reports whether err is a Postgres unique constraint
// violation (directly or wrapped).
func IsUniqueViolation(err error) bool {
	if errors.Is(err, ErrUniqueViolation) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolationCode
	}
	return false
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
