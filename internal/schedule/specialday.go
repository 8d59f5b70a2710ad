package schedule

import (
	"time"

	"github.com/google/uuid"
)

// SpecialDayKind is the type of a calendar-date override.
type SpecialDayKind string

const (
	SpecialDayClosed       SpecialDayKind = "closed"
	SpecialDaySpecialHours SpecialDayKind = "special_hours"
)

// Valid reports whether k is a known kind.
func (k SpecialDayKind) Valid() bool {
	return k == SpecialDayClosed || k == SpecialDaySpecialHours
}

// SpecialDay overrides the standard hours of an organization (or of one professional when
// ProfessionalID is set) on one calendar date.
type SpecialDay struct {
	ID             uuid.UUID      `json:"id"`
	OrganizationID uuid.UUID      `json:"organization_id"`
	ProfessionalID *uuid.UUID     `json:"professional_id,omitempty"`
	Date           time.Time      `json:"date"`
	Kind           SpecialDayKind `json:"kind"`
	Opens          TimeOfDay      `json:"opens,omitempty"`
	Closes         TimeOfDay      `json:"closes,omitempty"`
	Reason         string         `json:"reason,omitempty"`
}

// ResolutionKind is the outcome of resolving a date against the special days.
type ResolutionKind int

const (
	// KindDefault means the organization's standard hours apply.
	KindDefault ResolutionKind = iota
	KindClosed
	KindSpecialHours
)

func (k ResolutionKind) String() string {
	switch k {
	case KindClosed:
		return "closed"
	case KindSpecialHours:
		return "special_hours"
	default:
		return "default"
	}
}

// Resolution is what a date resolves to.
type Resolution struct {
	Kind   ResolutionKind
	Opens  TimeOfDay // KindSpecialHours only
	Closes TimeOfDay // KindSpecialHours only
	Reason string
	// Matches is how many special days carried the date. More than one means duplicate rows;
	// the first one won.
	Matches int
	// Malformed is set when the winning row is special_hours without both times, or with
	// closes not after opens; it resolves as closed.
	Malformed bool
}

// ResolveSpecialDay looks date up by exact calendar-date match. The first matching entry
// wins, so callers order days by precedence (professional-specific rows first).
func ResolveSpecialDay(date time.Time, days []SpecialDay) Resolution {
	var res Resolution
	var winner *SpecialDay
	for i := range days {
		if !SameDate(days[i].Date, date) {
			continue
		}
		res.Matches++
		if winner == nil {
			winner = &days[i]
		}
	}
	if winner == nil {
		return res
	}
	res.Reason = winner.Reason
	switch {
	case winner.Kind == SpecialDaySpecialHours && winner.Opens != "" && winner.Closes != "" &&
		winner.Opens.Minutes() < winner.Closes.Minutes():
		res.Kind = KindSpecialHours
		res.Opens = winner.Opens
		res.Closes = winner.Closes
	case winner.Kind == SpecialDaySpecialHours:
		res.Kind = KindClosed
		res.Malformed = true
	default:
		res.Kind = KindClosed
	}
	return res
}
