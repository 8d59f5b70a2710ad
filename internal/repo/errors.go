package repo

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a row does not exist in the caller's organization.
	ErrNotFound = errors.New("repo: not found")
	// ErrSlotTaken is returned when a write would overlap another live appointment of the
	// same professional (the appointments_no_overlap exclusion constraint).
	ErrSlotTaken = errors.New("repo: slot already taken")
	// ErrDuplicate is returned on a unique violation other than the slot constraint.
	ErrDuplicate = errors.New("repo: duplicate")
)

const (
	sqlStateExclusionViolation = "23P01"
	sqlStateUniqueViolation    = "23505"
)

// mapWriteError turns PostgreSQL constraint violations into package sentinels.
func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateExclusionViolation:
			return ErrSlotTaken
		case sqlStateUniqueViolation:
			return ErrDuplicate
		}
	}
	return err
}
