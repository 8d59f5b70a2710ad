package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/physia/backend/internal/schedule"
)

// Store adapts the query functions to the schedule read interfaces.
type Store struct {
	DB *gorm.DB
}

func NewStore(db *gorm.DB) *Store { return &Store{DB: db} }

func (s *Store) ListOverlapping(ctx context.Context, q schedule.AppointmentQuery) ([]schedule.ExistingAppointment, error) {
	rows, err := ListOverlappingAppointments(ctx, s.DB, q.OrganizationID, q.ProfessionalID, q.Date, q.StartMinutes, q.EndMinutes, q.ExcludeID)
	if err != nil {
		return nil, err
	}
	out := make([]schedule.ExistingAppointment, 0, len(rows))
	for _, r := range rows {
		start, err := schedule.ParseTimeOfDay(r.StartTime)
		if err != nil {
			return nil, err
		}
		end, err := schedule.ParseTimeOfDay(r.EndTime)
		if err != nil {
			return nil, err
		}
		out = append(out, schedule.ExistingAppointment{
			ID:               r.ID,
			Date:             r.AppointmentDate,
			StartTime:        start,
			EndTime:          end,
			ProfessionalID:   r.ProfessionalID,
			Status:           r.Status,
			ClientName:       r.ClientName,
			ProfessionalName: r.ProfessionalName,
		})
	}
	return out, nil
}

func (s *Store) ListSpecialDays(ctx context.Context, orgID uuid.UUID, professionalID *uuid.UUID) ([]schedule.SpecialDay, error) {
	rows, err := ListSpecialDays(ctx, s.DB, orgID, professionalID)
	if err != nil {
		return nil, err
	}
	out := make([]schedule.SpecialDay, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ToSchedule())
	}
	return out, nil
}

// ToSchedule converts the row. Unparseable times are left empty, which the resolver treats
// as a malformed special_hours day.
func (d SpecialDay) ToSchedule() schedule.SpecialDay {
	return schedule.SpecialDay{
		ID:             d.ID,
		OrganizationID: d.OrganizationID,
		ProfessionalID: d.ProfessionalID,
		Date:           d.Day,
		Kind:           schedule.SpecialDayKind(d.Kind),
		Opens:          optionalTime(d.OpensAt),
		Closes:         optionalTime(d.ClosesAt),
		Reason:         d.Reason,
	}
}

func optionalTime(s *string) schedule.TimeOfDay {
	if s == nil {
		return ""
	}
	t, err := schedule.ParseTimeOfDay(*s)
	if err != nil {
		return ""
	}
	return t
}

func (s *Store) OrganizationHours(ctx context.Context, orgID uuid.UUID) (*schedule.Hours, error) {
	o, err := OrganizationByID(ctx, s.DB, orgID)
	if err != nil {
		return nil, err
	}
	opens, closes := optionalTime(o.OpensAt), optionalTime(o.ClosesAt)
	if opens == "" || closes == "" {
		return nil, nil
	}
	return &schedule.Hours{Opens: opens, Closes: closes}, nil
}

func (s *Store) FindClientByPhone(ctx context.Context, orgID uuid.UUID, phone string) (*Client, error) {
	return FindClientByPhone(ctx, s.DB, orgID, phone)
}

func (s *Store) ListAppointmentsForReminder(ctx context.Context, date time.Time) ([]AppointmentReminderRow, error) {
	return ListAppointmentsForReminder(ctx, s.DB, date)
}

func (s *Store) MarkReminderSent(ctx context.Context, appointmentID uuid.UUID) error {
	return MarkReminderSent(ctx, s.DB, appointmentID)
}

func (s *Store) OrganizationByID(ctx context.Context, id uuid.UUID) (*Organization, error) {
	return OrganizationByID(ctx, s.DB, id)
}

func (s *Store) UpdateOrganizationHours(ctx context.Context, orgID uuid.UUID, opens, closes *string) error {
	return UpdateOrganizationHours(ctx, s.DB, orgID, opens, closes)
}

func (s *Store) ProfessionalByID(ctx context.Context, id, orgID uuid.UUID) (*Professional, error) {
	return ProfessionalByIDAndOrganization(ctx, s.DB, id, orgID)
}

func (s *Store) AppointmentByID(ctx context.Context, id, orgID uuid.UUID) (*Appointment, error) {
	return AppointmentByIDAndOrganization(ctx, s.DB, id, orgID)
}

func (s *Store) ListAppointmentsByDay(ctx context.Context, orgID uuid.UUID, professionalID *uuid.UUID, date time.Time) ([]AppointmentWithNames, error) {
	return ListAppointmentsByDay(ctx, s.DB, orgID, professionalID, date)
}

func (s *Store) CreateAppointment(ctx context.Context, in NewAppointment) (uuid.UUID, error) {
	return CreateAppointment(ctx, s.DB, in)
}

func (s *Store) UpdateAppointment(ctx context.Context, id, orgID uuid.UUID, ch AppointmentChanges) error {
	return UpdateAppointment(ctx, s.DB, id, orgID, ch)
}

func (s *Store) ListAllSpecialDays(ctx context.Context, orgID uuid.UUID, from, to time.Time) ([]SpecialDay, error) {
	return ListAllSpecialDays(ctx, s.DB, orgID, from, to)
}

func (s *Store) UpsertSpecialDay(ctx context.Context, d *SpecialDay) (uuid.UUID, error) {
	return UpsertSpecialDay(ctx, s.DB, d)
}

func (s *Store) DeleteSpecialDay(ctx context.Context, id, orgID uuid.UUID) error {
	return DeleteSpecialDay(ctx, s.DB, id, orgID)
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
