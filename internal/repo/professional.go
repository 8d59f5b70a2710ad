package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Professional struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	FullName       string
	Status         string
}

func ProfessionalByIDAndOrganization(ctx context.Context, db *gorm.DB, id, orgID uuid.UUID) (*Professional, error) {
	var p Professional
	err := db.WithContext(ctx).Raw(`
		SELECT id, organization_id, full_name, status
		FROM professionals WHERE id = ? AND organization_id = ?
	`, id, orgID).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == uuid.Nil {
		return nil, ErrNotFound
	}
	return &p, nil
}

func CreateProfessional(ctx context.Context, db *gorm.DB, orgID uuid.UUID, fullName string) (uuid.UUID, error) {
	var res struct{ ID uuid.UUID }
	err := db.WithContext(ctx).Raw(`
		INSERT INTO professionals (organization_id, full_name) VALUES (?, ?) RETURNING id
	`, orgID, fullName).Scan(&res).Error
	return res.ID, err
}
