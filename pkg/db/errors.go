package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgCheckViolation       = "23514"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

// IsUniqueViolation reports whether the provided error references a unique
// constraint violation. When constraintName is provided, the helper looks
// for the constraint text in the error message.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	if pgCode(err) == pgUniqueViolation {
		return true
	}
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "UNIQUE constraint failed")
}

// IsForeignKeyViolation reports whether a write was rejected by a foreign key.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if pgCode(err) == pgForeignKeyViolation {
		return true
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// IsCheckViolation reports whether a write was rejected by a CHECK constraint.
func IsCheckViolation(err error) bool {
	if err == nil {
		return false
	}
	if pgCode(err) == pgCheckViolation {
		return true
	}
	return strings.Contains(err.Error(), "CHECK constraint failed")
}

// IsSerializationFailure reports whether Postgres aborted the transaction because
// of a concurrent writer (serialization failure, deadlock, or lock timeout).
func IsSerializationFailure(err error) bool {
	switch pgCode(err) {
	case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
		return true
	}
	return false
}

func pgCode(err error) string {
	if err == nil {
		return ""
	}
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}
