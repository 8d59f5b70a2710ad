package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Organization struct {
	ID       uuid.UUID
	Name     string
	OpensAt  *string `gorm:"column:opens_at;type:time"`
	ClosesAt *string `gorm:"column:closes_at;type:time"`
}

func OrganizationByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*Organization, error) {
	var o Organization
	err := db.WithContext(ctx).Raw(`
		SELECT id, name, opens_at::text AS opens_at, closes_at::text AS closes_at
		FROM organizations WHERE id = ?
	`, id).Scan(&o).Error
	if err != nil {
		return nil, err
	}
	if o.ID == uuid.Nil {
		return nil, ErrNotFound
	}
	return &o, nil
}

func CreateOrganization(ctx context.Context, db *gorm.DB, name string) (uuid.UUID, error) {
	var res struct{ ID uuid.UUID }
	err := db.WithContext(ctx).Raw(`INSERT INTO organizations (name) VALUES (?) RETURNING id`, name).Scan(&res).Error
	return res.ID, err
}

// UpdateOrganizationHours sets the standard opening hours. Passing nil for both clears them,
// so the service default applies again.
func UpdateOrganizationHours(ctx context.Context, db *gorm.DB, id uuid.UUID, opens, closes *string) error {
	res := db.WithContext(ctx).Exec(`
		UPDATE organizations SET opens_at = ?::time, closes_at = ?::time, updated_at = now() WHERE id = ?
	`, opens, closes, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
