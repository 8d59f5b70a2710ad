package schedule

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Hours is an opening window [Opens, Closes).
type Hours struct {
	Opens  TimeOfDay `json:"opens"`
	Closes TimeOfDay `json:"closes"`
}

// DefaultHours applies when an organization has not configured its standard hours.
var DefaultHours = Hours{Opens: "08:00", Closes: "20:00"}

// OpenInterval is one bookable window of a date.
type OpenInterval struct {
	Opens      TimeOfDay `json:"opens"`
	Closes     TimeOfDay `json:"closes"`
	IsOverride bool      `json:"is_override"`
}

// Contains reports whether start falls in [Opens, Closes).
func (i OpenInterval) Contains(start TimeOfDay) bool {
	m := start.Minutes()
	return i.Opens.Minutes() <= m && m < i.Closes.Minutes()
}

// EligibilityReason tells apart why a start time is not bookable.
type EligibilityReason string

const (
	ReasonNone                 EligibilityReason = ""
	ReasonClosed               EligibilityReason = "closed"
	ReasonOutsideSpecialHours  EligibilityReason = "outside_special_hours"
	ReasonOutsideBusinessHours EligibilityReason = "outside_business_hours"
)

// Eligibility is the answer to "is the business open at this start time".
type Eligibility struct {
	Eligible  bool              `json:"eligible"`
	Reason    EligibilityReason `json:"reason,omitempty"`
	Message   string            `json:"message,omitempty"`
	Intervals []OpenInterval    `json:"intervals"`
}

// Resolver folds special days into an organization's standard hours. It does not look at
// appointments; slot-level freedom is the ConflictDetector's job.
type Resolver struct {
	Hours Hours
	log   zerolog.Logger
}

// NewResolver returns a Resolver for the given standard hours.
func NewResolver(hours Hours, logger zerolog.Logger) *Resolver {
	return &Resolver{Hours: hours, log: logger}
}

// Resolve resolves date and warns about duplicate or malformed special-day rows.
func (r *Resolver) Resolve(date time.Time, days []SpecialDay) Resolution {
	res := ResolveSpecialDay(date, days)
	if res.Matches > 1 {
		r.log.Warn().
			Str("date", date.Format(DateLayout)).
			Int("matches", res.Matches).
			Msg("duplicate special days for date, using the first one")
	}
	if res.Malformed {
		r.log.Warn().
			Str("date", date.Format(DateLayout)).
			Msg("special_hours day without a valid opening window, treating as closed")
	}
	return res
}

// OpenIntervals returns the bookable windows of date: none when closed, the override
// window for special hours, the standard hours otherwise.
func (r *Resolver) OpenIntervals(date time.Time, days []SpecialDay) []OpenInterval {
	return r.intervals(r.Resolve(date, days))
}

func (r *Resolver) intervals(res Resolution) []OpenInterval {
	switch res.Kind {
	case KindClosed:
		return []OpenInterval{}
	case KindSpecialHours:
		return []OpenInterval{{Opens: res.Opens, Closes: res.Closes, IsOverride: true}}
	default:
		return []OpenInterval{{Opens: r.Hours.Opens, Closes: r.Hours.Closes}}
	}
}

// CheckEligibility reports whether start on date falls inside an open interval.
// A closed day and a start outside special hours produce different reasons and messages.
func (r *Resolver) CheckEligibility(date time.Time, start TimeOfDay, days []SpecialDay) Eligibility {
	res := r.Resolve(date, days)
	out := Eligibility{Intervals: r.intervals(res)}
	for _, iv := range out.Intervals {
		if iv.Contains(start) {
			out.Eligible = true
			return out
		}
	}
	switch res.Kind {
	case KindClosed:
		out.Reason = ReasonClosed
		out.Message = fmt.Sprintf("closed all day on %s", date.Format(DateLayout))
		if res.Reason != "" {
			out.Message += ": " + res.Reason
		}
	case KindSpecialHours:
		out.Reason = ReasonOutsideSpecialHours
		out.Message = fmt.Sprintf("outside special hours %s-%s", res.Opens, res.Closes)
		if res.Reason != "" {
			out.Message += " (" + res.Reason + ")"
		}
	default:
		out.Reason = ReasonOutsideBusinessHours
		out.Message = fmt.Sprintf("outside business hours %s-%s", r.Hours.Opens, r.Hours.Closes)
	}
	return out
}
