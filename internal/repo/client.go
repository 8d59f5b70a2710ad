package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client is a customer of an organization. Phone is stored as entered, so the same number
// may appear as "612345678", "+34612345678", "0034612345678" or "34612345678".
type Client struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	FirstName      string
	LastName       string
	Phone          string
}

// FindClientByPhone returns the oldest live client of the organization whose stored phone is
// exactly phone, or ErrNotFound.
func FindClientByPhone(ctx context.Context, db *gorm.DB, orgID uuid.UUID, phone string) (*Client, error) {
	var c Client
	err := db.WithContext(ctx).Raw(`
		SELECT id, organization_id, first_name, last_name, phone
		FROM clients
		WHERE organization_id = ? AND phone = ? AND deleted_at IS NULL
		ORDER BY created_at
		LIMIT 1
	`, orgID, phone).Scan(&c).Error
	if err != nil {
		return nil, err
	}
	if c.ID == uuid.Nil {
		return nil, ErrNotFound
	}
	return &c, nil
}

func CreateClient(ctx context.Context, db *gorm.DB, orgID uuid.UUID, firstName, lastName, phone string) (uuid.UUID, error) {
	var res struct{ ID uuid.UUID }
	err := db.WithContext(ctx).Raw(`
		INSERT INTO clients (organization_id, first_name, last_name, phone) VALUES (?, ?, ?, ?) RETURNING id
	`, orgID, firstName, lastName, phone).Scan(&res).Error
	return res.ID, err
}
