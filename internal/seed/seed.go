// Package seed fills an empty database with a demo organization for local development.
package seed

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/physia/backend/internal/repo"
)

// Result lists what Run created, so the caller can print ids for the token command.
type Result struct {
	OrganizationID uuid.UUID
	Professionals  []uuid.UUID
	Skipped        bool
}

// demoClients keeps the phones in the different formats clients end up stored in.
var demoClients = []struct{ first, last, phone string }{
	{"Lucía", "Martín", "612345678"},
	{"Javier", "Gómez", "+34699000111"},
	{"Carmen", "López", "0034655443322"},
	{"Pablo", "Sánchez", "34 622 111 333"},
}

// Run creates the demo organization unless one already exists. today anchors the sample
// appointments and special days.
func Run(ctx context.Context, db *gorm.DB, today time.Time, log zerolog.Logger) (Result, error) {
	var n int64
	if err := db.WithContext(ctx).Raw("SELECT COUNT(*) FROM organizations").Scan(&n).Error; err != nil {
		return Result{}, err
	}
	if n > 0 {
		log.Info().Str("component", "seed").Msg("organizations exist, skipping seed")
		return Result{Skipped: true}, nil
	}

	var res Result
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orgID, err := repo.CreateOrganization(ctx, tx, "Fisioterapia Centro")
		if err != nil {
			return err
		}
		res.OrganizationID = orgID
		opens, closes := "09:00", "19:00"
		if err := repo.UpdateOrganizationHours(ctx, tx, orgID, &opens, &closes); err != nil {
			return err
		}
		for _, name := range []string{"Elena Vega", "Marcos Ruiz"} {
			id, err := repo.CreateProfessional(ctx, tx, orgID, name)
			if err != nil {
				return err
			}
			res.Professionals = append(res.Professionals, id)
		}
		var clientIDs []uuid.UUID
		for _, c := range demoClients {
			id, err := repo.CreateClient(ctx, tx, orgID, c.first, c.last, c.phone)
			if err != nil {
				return err
			}
			clientIDs = append(clientIDs, id)
		}

		tomorrow := today.AddDate(0, 0, 1)
		for i, slot := range []struct{ start, end string }{{"10:00", "10:45"}, {"11:00", "11:45"}, {"16:30", "17:15"}} {
			client := clientIDs[i]
			if _, err := repo.CreateAppointment(ctx, tx, repo.NewAppointment{
				OrganizationID: orgID,
				ProfessionalID: res.Professionals[i%2],
				ClientID:       &client,
				Date:           tomorrow,
				Start:          slot.start,
				End:            slot.end,
			}); err != nil {
				return err
			}
		}

		if _, err := repo.UpsertSpecialDay(ctx, tx, &repo.SpecialDay{
			OrganizationID: orgID,
			Day:            today.AddDate(0, 0, 7),
			Kind:           "closed",
			Reason:         "Festivo local",
		}); err != nil {
			return err
		}
		so, sc := "10:00", "14:00"
		prof := res.Professionals[1]
		_, err = repo.UpsertSpecialDay(ctx, tx, &repo.SpecialDay{
			OrganizationID: orgID,
			ProfessionalID: &prof,
			Day:            today.AddDate(0, 0, 3),
			Kind:           "special_hours",
			OpensAt:        &so,
			ClosesAt:       &sc,
			Reason:         "Formación",
		})
		return err
	})
	if err != nil {
		return Result{}, err
	}
	log.Info().
		Str("component", "seed").
		Str("organization_id", res.OrganizationID.String()).
		Int("professionals", len(res.Professionals)).
		Int("clients", len(demoClients)).
		Msg("demo data created")
	return res, nil
}
