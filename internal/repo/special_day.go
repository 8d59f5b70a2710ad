package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// SpecialDay is a stored calendar-date override. OpensAt/ClosesAt are "HH:MM:SS" text, set
// only for kind special_hours.
type SpecialDay struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	ProfessionalID *uuid.UUID
	Day            time.Time
	Kind           string
	OpensAt        *string `gorm:"column:opens_at"`
	ClosesAt       *string `gorm:"column:closes_at"`
	Reason         string
}

const specialDayColumns = `id, organization_id, professional_id, day, kind, opens_at::text AS opens_at, closes_at::text AS closes_at, reason`

// ListSpecialDays returns the organization-wide special days plus, when professionalID is
// set, that professional's own. Professional rows come first for each date so the first
// match gives them precedence.
func ListSpecialDays(ctx context.Context, db *gorm.DB, orgID uuid.UUID, professionalID *uuid.UUID) ([]SpecialDay, error) {
	q := `SELECT ` + specialDayColumns + ` FROM special_days WHERE organization_id = ?`
	args := []interface{}{orgID}
	if professionalID != nil {
		q += ` AND (professional_id IS NULL OR professional_id = ?)`
		args = append(args, *professionalID)
	} else {
		q += ` AND professional_id IS NULL`
	}
	q += ` ORDER BY day, (professional_id IS NULL), created_at`
	var list []SpecialDay
	err := db.WithContext(ctx).Raw(q, args...).Scan(&list).Error
	return list, err
}

// ListAllSpecialDays returns every special day of the organization in [from, to], for management screens.
func ListAllSpecialDays(ctx context.Context, db *gorm.DB, orgID uuid.UUID, from, to time.Time) ([]SpecialDay, error) {
	var list []SpecialDay
	err := db.WithContext(ctx).Raw(`SELECT `+specialDayColumns+`
		FROM special_days
		WHERE organization_id = ? AND day >= ?::date AND day <= ?::date
		ORDER BY day, (professional_id IS NULL), created_at
	`, orgID, from.Format(dateLayout), to.Format(dateLayout)).Scan(&list).Error
	return list, err
}

// UpsertSpecialDay creates the special day, or replaces the one with the same scope and date.
func UpsertSpecialDay(ctx context.Context, db *gorm.DB, d *SpecialDay) (uuid.UUID, error) {
	var res struct{ ID uuid.UUID }
	err := db.WithContext(ctx).Raw(`
		INSERT INTO special_days (organization_id, professional_id, day, kind, opens_at, closes_at, reason)
		VALUES (?, ?, ?::date, ?, ?::time, ?::time, ?)
		ON CONFLICT (organization_id, COALESCE(professional_id, '00000000-0000-0000-0000-000000000000'::uuid), day)
		DO UPDATE SET kind = EXCLUDED.kind, opens_at = EXCLUDED.opens_at, closes_at = EXCLUDED.closes_at, reason = EXCLUDED.reason
		RETURNING id
	`, d.OrganizationID, d.ProfessionalID, d.Day.Format(dateLayout), d.Kind, d.OpensAt, d.ClosesAt, d.Reason).Scan(&res).Error
	if err != nil {
		return uuid.Nil, mapWriteError(err)
	}
	return res.ID, nil
}

func DeleteSpecialDay(ctx context.Context, db *gorm.DB, id, orgID uuid.UUID) error {
	res := db.WithContext(ctx).Exec(`DELETE FROM special_days WHERE id = ? AND organization_id = ?`, id, orgID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
