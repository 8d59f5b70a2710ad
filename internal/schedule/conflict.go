package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Appointment statuses. Only cancelled appointments free their slot.
const (
	StatusScheduled = "scheduled"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusNoShow    = "no_show"
	StatusCancelled = "cancelled"
)

// ValidStatus reports whether s is a known appointment status.
func ValidStatus(s string) bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusCompleted, StatusNoShow, StatusCancelled:
		return true
	}
	return false
}

// Placeholders for joined names the store could not resolve.
const (
	UnknownClient       = "Unknown client"
	UnknownProfessional = "Unknown professional"
)

var (
	// ErrConflictCheckFailed means the store could not be read: availability is unknown,
	// which is not the same as "no conflicts".
	ErrConflictCheckFailed = errors.New("schedule: conflict check failed")
	ErrIncompleteCandidate = errors.New("schedule: candidate is missing required fields")
	ErrCrossesMidnight     = errors.New("schedule: appointment ends after the end of the day")
)

// Candidate is an appointment about to be created or moved.
type Candidate struct {
	OrganizationID  uuid.UUID
	ProfessionalID  uuid.UUID
	Date            time.Time
	StartTime       TimeOfDay
	DurationMinutes int
	// ExcludeAppointmentID is the appointment being edited, which must not conflict with itself.
	ExcludeAppointmentID *uuid.UUID
}

func (c Candidate) complete() bool {
	if c.OrganizationID == uuid.Nil || c.ProfessionalID == uuid.Nil || c.Date.IsZero() || c.DurationMinutes <= 0 {
		return false
	}
	_, err := ParseTimeOfDay(string(c.StartTime))
	return err == nil
}

func (c Candidate) endMinutes() int {
	return c.StartTime.Minutes() + c.DurationMinutes
}

// EndTime is StartTime plus the duration.
func (c Candidate) EndTime() TimeOfDay {
	return AddDuration(c.StartTime, c.DurationMinutes)
}

// Validate is the strict check used before writing: every field present and the
// appointment ending within the same day.
func (c Candidate) Validate() error {
	if !c.complete() {
		return ErrIncompleteCandidate
	}
	if c.endMinutes() >= MinutesPerDay {
		return ErrCrossesMidnight
	}
	return nil
}

// ExistingAppointment is a stored appointment as the store returns it.
type ExistingAppointment struct {
	ID               uuid.UUID
	Date             time.Time
	StartTime        TimeOfDay
	EndTime          TimeOfDay
	ProfessionalID   uuid.UUID
	Status           string
	ClientName       string
	ProfessionalName string
}

// AppointmentQuery scopes the store read of a conflict check.
type AppointmentQuery struct {
	OrganizationID uuid.UUID
	ProfessionalID uuid.UUID
	Date           time.Time
	// Start and End narrow the read to rows that may overlap [Start, End).
	// End may be past 24:00; stores compare minutes, not wall-clock strings.
	StartMinutes int
	EndMinutes   int
	ExcludeID    *uuid.UUID
}

// AppointmentReader is the appointment store. Implementations return the non-cancelled
// appointments of the professional on the date, without the excluded id.
type AppointmentReader interface {
	ListOverlapping(ctx context.Context, q AppointmentQuery) ([]ExistingAppointment, error)
}

// Conflict is an existing appointment overlapping a candidate.
type Conflict struct {
	ID               uuid.UUID `json:"id"`
	ClientName       string    `json:"client_name"`
	StartTime        TimeOfDay `json:"start_time"`
	EndTime          TimeOfDay `json:"end_time"`
	ProfessionalName string    `json:"professional_name"`
	Status           string    `json:"status"`
}

// ConflictDetector finds the appointments a candidate would double-book. It is advisory:
// two concurrent callers can both see no conflict, exclusivity is enforced by the store.
type ConflictDetector struct {
	store AppointmentReader
}

func NewConflictDetector(store AppointmentReader) *ConflictDetector {
	return &ConflictDetector{store: store}
}

// FindConflicts returns the non-cancelled appointments of the candidate's professional
// overlapping [start, start+duration). An incomplete candidate yields no conflicts without
// reading the store. A store failure yields an error wrapping ErrConflictCheckFailed.
func (d *ConflictDetector) FindConflicts(ctx context.Context, c Candidate) ([]Conflict, error) {
	if !c.complete() {
		return []Conflict{}, nil
	}
	start, end := c.StartTime.Minutes(), c.endMinutes()
	rows, err := d.store.ListOverlapping(ctx, AppointmentQuery{
		OrganizationID: c.OrganizationID,
		ProfessionalID: c.ProfessionalID,
		Date:           c.Date,
		StartMinutes:   start,
		EndMinutes:     end,
		ExcludeID:      c.ExcludeAppointmentID,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConflictCheckFailed, err)
	}
	out := make([]Conflict, 0, len(rows))
	for _, a := range rows {
		if a.Status == StatusCancelled {
			continue
		}
		if c.ExcludeAppointmentID != nil && a.ID == *c.ExcludeAppointmentID {
			continue
		}
		if !Overlaps(a.StartTime.Minutes(), a.EndTime.Minutes(), start, end) {
			continue
		}
		out = append(out, Conflict{
			ID:               a.ID,
			ClientName:       orPlaceholder(a.ClientName, UnknownClient),
			StartTime:        a.StartTime,
			EndTime:          a.EndTime,
			ProfessionalName: orPlaceholder(a.ProfessionalName, UnknownProfessional),
			Status:           a.Status,
		})
	}
	return out, nil
}

func orPlaceholder(s, placeholder string) string {
	if s == "" {
		return placeholder
	}
	return s
}
