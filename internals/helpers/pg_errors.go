package helper

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"thesis_backend/internals/helpers/apperr"
)

const pgUniqueViolation = "23505"

// IsUniqueViolation mengenali pelanggaran unique dari gorm, pgx, lib/pq, maupun sqlite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// MapStoreError: not found → NotFound, unique → Conflict, selainnya Internal.
func MapStoreError(err error, notFoundMsg, conflictMsg, internalMsg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound(notFoundMsg)
	case IsUniqueViolation(err):
		return apperr.Conflict(conflictMsg)
	default:
		return apperr.Internal(internalMsg, err)
	}
}
