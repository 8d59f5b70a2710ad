//go:build integration

package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/physia/backend/internal/schedule"
	"github.com/physia/backend/internal/testutil"
)

type fixture struct {
	org, prof, client uuid.UUID
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()
	db, _ := testutil.OpenDB(ctx)
	if db == nil {
		t.Skip("DATABASE_URL not set")
	}
	if err := testutil.MustMigrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newFixture(t *testing.T, db *gorm.DB) fixture {
	t.Helper()
	ctx := context.Background()
	org, err := CreateOrganization(ctx, db, "Test "+uuid.NewString()[:8])
	if err != nil {
		t.Fatalf("CreateOrganization: %v", err)
	}
	prof, err := CreateProfessional(ctx, db, org, "Dr. Ruiz")
	if err != nil {
		t.Fatalf("CreateProfessional: %v", err)
	}
	client, err := CreateClient(ctx, db, org, "Ana", "García", "+34612345678")
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	return fixture{org: org, prof: prof, client: client}
}

func TestIntegration_ExclusionConstraintMapsToSlotTaken(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	f := newFixture(t, db)
	date := time.Date(2030, 6, 10, 0, 0, 0, 0, time.UTC)

	first, err := CreateAppointment(ctx, db, NewAppointment{OrganizationID: f.org, ProfessionalID: f.prof, ClientID: &f.client, Date: date, Start: "09:00", End: "10:00"})
	if err != nil {
		t.Fatalf("CreateAppointment: %v", err)
	}
	_, err = CreateAppointment(ctx, db, NewAppointment{OrganizationID: f.org, ProfessionalID: f.prof, Date: date, Start: "09:30", End: "09:45"})
	if !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("overlapping insert err = %v, want ErrSlotTaken", err)
	}
	if _, err := CreateAppointment(ctx, db, NewAppointment{OrganizationID: f.org, ProfessionalID: f.prof, Date: date, Start: "10:00", End: "10:30"}); err != nil {
		t.Errorf("back-to-back insert: %v", err)
	}
	if _, err := CreateAppointment(ctx, db, NewAppointment{OrganizationID: f.org, ProfessionalID: f.prof, Date: date, Start: "09:15", End: "09:45", Overbooked: true}); err != nil {
		t.Errorf("overbooked insert: %v", err)
	}

	cancelled := schedule.StatusCancelled
	if err := UpdateAppointment(ctx, db, first, f.org, AppointmentChanges{Status: &cancelled}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := CreateAppointment(ctx, db, NewAppointment{OrganizationID: f.org, ProfessionalID: f.prof, Date: date, Start: "09:00", End: "09:30"}); err != nil {
		t.Errorf("insert over cancelled slot: %v", err)
	}
}

func TestIntegration_StoreListOverlapping(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	f := newFixture(t, db)
	date := time.Date(2030, 6, 11, 0, 0, 0, 0, time.UTC)
	id, err := CreateAppointment(ctx, db, NewAppointment{OrganizationID: f.org, ProfessionalID: f.prof, ClientID: &f.client, Date: date, Start: "09:15", End: "09:45", Status: schedule.StatusConfirmed})
	if err != nil {
		t.Fatalf("CreateAppointment: %v", err)
	}
	d := schedule.NewConflictDetector(NewStore(db))
	c := schedule.Candidate{OrganizationID: f.org, ProfessionalID: f.prof, Date: date, StartTime: "09:00", DurationMinutes: 30}
	got, err := d.FindConflicts(ctx, c)
	if err != nil || len(got) != 1 || got[0].ID != id {
		t.Fatalf("conflicts = %+v, %v", got, err)
	}
	if got[0].ClientName != "Ana García" || got[0].ProfessionalName != "Dr. Ruiz" || got[0].StartTime != "09:15" {
		t.Errorf("conflict = %+v", got[0])
	}
	c.ExcludeAppointmentID = &id
	if got, err := d.FindConflicts(ctx, c); err != nil || len(got) != 0 {
		t.Errorf("with exclusion = %+v, %v", got, err)
	}
}

func TestIntegration_SpecialDaysProfessionalFirst(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	f := newFixture(t, db)
	day := time.Date(2030, 12, 24, 0, 0, 0, 0, time.UTC)
	if _, err := UpsertSpecialDay(ctx, db, &SpecialDay{OrganizationID: f.org, Day: day, Kind: "closed", Reason: "Nochebuena"}); err != nil {
		t.Fatalf("org-wide: %v", err)
	}
	opens, closes := "10:00", "13:00"
	if _, err := UpsertSpecialDay(ctx, db, &SpecialDay{OrganizationID: f.org, ProfessionalID: &f.prof, Day: day, Kind: "special_hours", OpensAt: &opens, ClosesAt: &closes}); err != nil {
		t.Fatalf("professional: %v", err)
	}
	days, err := NewStore(db).ListSpecialDays(ctx, f.org, &f.prof)
	if err != nil || len(days) != 2 {
		t.Fatalf("days = %+v, %v", days, err)
	}
	res := schedule.ResolveSpecialDay(day, days)
	if res.Kind != schedule.KindSpecialHours || res.Opens != "10:00" {
		t.Errorf("resolution = %+v, want the professional's special hours", res)
	}
	orgOnly, err := NewStore(db).ListSpecialDays(ctx, f.org, nil)
	if err != nil || len(orgOnly) != 1 || orgOnly[0].Kind != schedule.SpecialDayClosed {
		t.Errorf("org-wide days = %+v, %v", orgOnly, err)
	}
}

func TestIntegration_OrganizationHours(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	f := newFixture(t, db)
	s := NewStore(db)
	if h, err := s.OrganizationHours(ctx, f.org); err != nil || h != nil {
		t.Fatalf("unset hours = %+v, %v", h, err)
	}
	opens, closes := "07:30", "15:00"
	if err := UpdateOrganizationHours(ctx, db, f.org, &opens, &closes); err != nil {
		t.Fatal(err)
	}
	h, err := s.OrganizationHours(ctx, f.org)
	if err != nil || h == nil || h.Opens != "07:30" || h.Closes != "15:00" {
		t.Errorf("hours = %+v, %v", h, err)
	}
}

func TestIntegration_FindClientByPhone(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	f := newFixture(t, db)
	c, err := FindClientByPhone(ctx, db, f.org, "+34612345678")
	if err != nil || c.ID != f.client {
		t.Fatalf("client = %+v, %v", c, err)
	}
	if _, err := FindClientByPhone(ctx, db, f.org, "612345678"); !errors.Is(err, ErrNotFound) {
		t.Errorf("exact lookup of another format err = %v, want ErrNotFound", err)
	}
}
