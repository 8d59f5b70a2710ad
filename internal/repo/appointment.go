package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Appointment is an agenda appointment.
// StartTime and EndTime are "HH:MM:SS" strings; PostgreSQL TIME is selected as text.
type Appointment struct {
	ID              uuid.UUID
	OrganizationID  uuid.UUID
	ProfessionalID  uuid.UUID
	ClientID        *uuid.UUID
	AppointmentDate time.Time
	StartTime       string `gorm:"column:start_time"`
	EndTime         string `gorm:"column:end_time"`
	Status          string
	Overbooked      bool
	Notes           *string
}

// AppointmentWithNames is an appointment with the joined client and professional names
// (empty when the join finds nothing).
type AppointmentWithNames struct {
	Appointment
	ClientName       string
	ProfessionalName string
}

const appointmentColumns = `a.id, a.organization_id, a.professional_id, a.client_id, a.appointment_date,
	a.start_time::text AS start_time, a.end_time::text AS end_time, a.status, a.overbooked, a.notes`

const appointmentNameColumns = `,
	COALESCE(NULLIF(TRIM(c.first_name || ' ' || c.last_name), ''), '') AS client_name,
	COALESCE(p.full_name, '') AS professional_name`

const appointmentJoins = `
	LEFT JOIN clients c ON c.id = a.client_id AND c.deleted_at IS NULL
	LEFT JOIN professionals p ON p.id = a.professional_id`

// NewAppointment is the input of CreateAppointment. Start and End are "HH:MM".
type NewAppointment struct {
	OrganizationID uuid.UUID
	ProfessionalID uuid.UUID
	ClientID       *uuid.UUID
	Date           time.Time
	Start          string
	End            string
	Status         string
	Overbooked     bool
	Notes          string
}

// CreateAppointment inserts an appointment. An overlap with a live appointment of the same
// professional returns ErrSlotTaken unless Overbooked is set.
func CreateAppointment(ctx context.Context, db *gorm.DB, in NewAppointment) (uuid.UUID, error) {
	var notes *string
	if in.Notes != "" {
		notes = &in.Notes
	}
	status := in.Status
	if status == "" {
		status = "scheduled"
	}
	var res struct{ ID uuid.UUID }
	err := db.WithContext(ctx).Raw(`
		INSERT INTO appointments (organization_id, professional_id, client_id, appointment_date, start_time, end_time, status, overbooked, notes)
		VALUES (?, ?, ?, ?::date, ?::time, ?::time, ?, ?, ?) RETURNING id
	`, in.OrganizationID, in.ProfessionalID, in.ClientID, in.Date.Format(dateLayout), in.Start, in.End, status, in.Overbooked, notes).Scan(&res).Error
	if err != nil {
		return uuid.Nil, mapWriteError(err)
	}
	return res.ID, nil
}

// AppointmentChanges lists the fields UpdateAppointment sets; nil fields are left unchanged.
type AppointmentChanges struct {
	Date       *time.Time
	Start      *string
	End        *string
	Status     *string
	Overbooked *bool
	Notes      *string
}

func UpdateAppointment(ctx context.Context, db *gorm.DB, id, orgID uuid.UUID, ch AppointmentChanges) error {
	updates := map[string]interface{}{"updated_at": gorm.Expr("now()")}
	if ch.Date != nil {
		updates["appointment_date"] = ch.Date.Format(dateLayout)
	}
	if ch.Start != nil {
		updates["start_time"] = *ch.Start
	}
	if ch.End != nil {
		updates["end_time"] = *ch.End
	}
	if ch.Status != nil {
		updates["status"] = *ch.Status
	}
	if ch.Overbooked != nil {
		updates["overbooked"] = *ch.Overbooked
	}
	if ch.Notes != nil {
		updates["notes"] = *ch.Notes
	}
	res := db.WithContext(ctx).Table("appointments").Where("id = ? AND organization_id = ?", id, orgID).Updates(updates)
	if res.Error != nil {
		return mapWriteError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func AppointmentByIDAndOrganization(ctx context.Context, db *gorm.DB, id, orgID uuid.UUID) (*Appointment, error) {
	var a Appointment
	err := db.WithContext(ctx).Raw(`SELECT `+appointmentColumns+` FROM appointments a WHERE a.id = ? AND a.organization_id = ?`, id, orgID).Scan(&a).Error
	if err != nil {
		return nil, err
	}
	if a.ID == uuid.Nil {
		return nil, ErrNotFound
	}
	return &a, nil
}

// ListOverlappingAppointments returns the live appointments of professionalID on date whose
// interval overlaps [startMin, endMin) in minutes since midnight. endMin may exceed 1440.
func ListOverlappingAppointments(ctx context.Context, db *gorm.DB, orgID, professionalID uuid.UUID, date time.Time, startMin, endMin int, excludeID *uuid.UUID) ([]AppointmentWithNames, error) {
	q := `SELECT ` + appointmentColumns + appointmentNameColumns + `
		FROM appointments a` + appointmentJoins + `
		WHERE a.organization_id = ? AND a.professional_id = ? AND a.appointment_date = ?::date
		  AND a.status <> 'cancelled'
		  AND EXTRACT(EPOCH FROM a.start_time)::int / 60 < ?
		  AND EXTRACT(EPOCH FROM a.end_time)::int / 60 > ?`
	args := []interface{}{orgID, professionalID, date.Format(dateLayout), endMin, startMin}
	if excludeID != nil {
		q += ` AND a.id <> ?`
		args = append(args, *excludeID)
	}
	q += ` ORDER BY a.start_time`
	var list []AppointmentWithNames
	err := db.WithContext(ctx).Raw(q, args...).Scan(&list).Error
	return list, err
}

// ListAppointmentsByDay returns the live appointments of the organization on date, optionally
// restricted to one professional, ordered by start time.
func ListAppointmentsByDay(ctx context.Context, db *gorm.DB, orgID uuid.UUID, professionalID *uuid.UUID, date time.Time) ([]AppointmentWithNames, error) {
	q := `SELECT ` + appointmentColumns + appointmentNameColumns + `
		FROM appointments a` + appointmentJoins + `
		WHERE a.organization_id = ? AND a.appointment_date = ?::date AND a.status <> 'cancelled'`
	args := []interface{}{orgID, date.Format(dateLayout)}
	if professionalID != nil {
		q += ` AND a.professional_id = ?`
		args = append(args, *professionalID)
	}
	q += ` ORDER BY a.start_time, p.full_name`
	var list []AppointmentWithNames
	err := db.WithContext(ctx).Raw(q, args...).Scan(&list).Error
	return list, err
}

// AppointmentReminderRow holds what one reminder message needs.
type AppointmentReminderRow struct {
	AppointmentID    uuid.UUID
	OrganizationName string
	ClientName       string
	ClientPhone      string
	ProfessionalName string
	AppointmentDate  time.Time
	StartTime        string
}

// ListAppointmentsForReminder returns scheduled or confirmed appointments on date whose client
// has a phone and that have not been reminded yet.
func ListAppointmentsForReminder(ctx context.Context, db *gorm.DB, date time.Time) ([]AppointmentReminderRow, error) {
	var list []AppointmentReminderRow
	err := db.WithContext(ctx).Raw(`
		SELECT a.id AS appointment_id, o.name AS organization_name, c.first_name AS client_name,
		       TRIM(c.phone) AS client_phone, COALESCE(p.full_name, '') AS professional_name,
		       a.appointment_date, a.start_time::text AS start_time
		FROM appointments a
		JOIN organizations o ON o.id = a.organization_id
		JOIN clients c ON c.id = a.client_id AND c.deleted_at IS NULL
		LEFT JOIN professionals p ON p.id = a.professional_id
		WHERE a.appointment_date = ?::date
		  AND a.status IN ('scheduled', 'confirmed')
		  AND a.reminder_sent_at IS NULL
		  AND TRIM(c.phone) <> ''
		ORDER BY a.start_time, c.first_name
	`, date.Format(dateLayout)).Scan(&list).Error
	return list, err
}

func MarkReminderSent(ctx context.Context, db *gorm.DB, appointmentID uuid.UUID) error {
	return db.WithContext(ctx).Exec(`UPDATE appointments SET reminder_sent_at = now() WHERE id = ?`, appointmentID).Error
}
