package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/physia/backend/internal/cache"
	"github.com/physia/backend/internal/metrics"
)

// SpecialDayReader returns the special days of an organization. When professionalID is set,
// rows scoped to that professional come first, then organization-wide rows.
type SpecialDayReader interface {
	ListSpecialDays(ctx context.Context, orgID uuid.UUID, professionalID *uuid.UUID) ([]SpecialDay, error)
}

// HoursReader returns the configured standard hours of an organization, nil when unset.
type HoursReader interface {
	OrganizationHours(ctx context.Context, orgID uuid.UUID) (*Hours, error)
}

// Report is the combined pre-booking check of a candidate.
type Report struct {
	Eligibility Eligibility `json:"eligibility"`
	Conflicts   []Conflict  `json:"conflicts"`
}

// Service wires the resolvers to the stores. Special days and hours are cached per scope;
// writers call InvalidateSpecialDays / InvalidateHours after changing them.
type Service struct {
	appointments AppointmentReader
	specialDays  SpecialDayReader
	hours        HoursReader
	cache        cache.Store
	defaults     Hours
	detector     *ConflictDetector
	log          zerolog.Logger
}

// Options configures NewService. Cache may be nil.
type Options struct {
	Appointments AppointmentReader
	SpecialDays  SpecialDayReader
	Hours        HoursReader
	Cache        cache.Store
	DefaultHours Hours
	Logger       zerolog.Logger
}

func NewService(o Options) *Service {
	def := o.DefaultHours
	if def.Opens == "" || def.Closes == "" {
		def = DefaultHours
	}
	return &Service{
		appointments: o.Appointments,
		specialDays:  o.SpecialDays,
		hours:        o.Hours,
		cache:        o.Cache,
		defaults:     def,
		detector:     NewConflictDetector(o.Appointments),
		log:          o.Logger.With().Str("component", "schedule").Logger(),
	}
}

func specialDaysKey(orgID uuid.UUID, professionalID *uuid.UUID) string {
	scope := "*"
	if professionalID != nil {
		scope = professionalID.String()
	}
	return "specialdays:" + orgID.String() + ":" + scope
}

func hoursKey(orgID uuid.UUID) string { return "hours:" + orgID.String() }

// InvalidateSpecialDays drops every cached special-day list of the organization.
func (s *Service) InvalidateSpecialDays(ctx context.Context, orgID uuid.UUID) {
	if s.cache != nil {
		s.cache.DeletePrefix(ctx, "specialdays:"+orgID.String()+":")
	}
}

// InvalidateHours drops the cached standard hours of the organization.
func (s *Service) InvalidateHours(ctx context.Context, orgID uuid.UUID) {
	if s.cache != nil {
		s.cache.Delete(ctx, hoursKey(orgID))
	}
}

// SpecialDays returns the special days that apply to professionalID (nil for organization-wide only).
func (s *Service) SpecialDays(ctx context.Context, orgID uuid.UUID, professionalID *uuid.UUID) ([]SpecialDay, error) {
	key := specialDaysKey(orgID, professionalID)
	if s.cache != nil {
		if b := s.cache.Get(ctx, key); b != nil {
			var days []SpecialDay
			if err := json.Unmarshal(b, &days); err == nil {
				return days, nil
			}
		}
	}
	days, err := s.specialDays.ListSpecialDays(ctx, orgID, professionalID)
	if err != nil {
		return nil, fmt.Errorf("list special days: %w", err)
	}
	if s.cache != nil {
		if b, err := json.Marshal(days); err == nil {
			s.cache.Set(ctx, key, b)
		}
	}
	return days, nil
}

// StandardHours returns the organization's configured hours, or the service default.
func (s *Service) StandardHours(ctx context.Context, orgID uuid.UUID) (Hours, error) {
	key := hoursKey(orgID)
	if s.cache != nil {
		if b := s.cache.Get(ctx, key); b != nil {
			var h Hours
			if err := json.Unmarshal(b, &h); err == nil {
				return h, nil
			}
		}
	}
	h := s.defaults
	if s.hours != nil {
		configured, err := s.hours.OrganizationHours(ctx, orgID)
		if err != nil {
			return Hours{}, fmt.Errorf("organization hours: %w", err)
		}
		if configured != nil && configured.Opens != "" && configured.Closes != "" {
			h = *configured
		}
	}
	if s.cache != nil {
		if b, err := json.Marshal(h); err == nil {
			s.cache.Set(ctx, key, b)
		}
	}
	return h, nil
}

func (s *Service) resolver(ctx context.Context, orgID uuid.UUID) (*Resolver, error) {
	h, err := s.StandardHours(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return NewResolver(h, s.log), nil
}

// ResolveDay resolves date for a professional (nil for organization-wide hours) and returns the
// resolution with its bookable windows.
func (s *Service) ResolveDay(ctx context.Context, orgID uuid.UUID, professionalID *uuid.UUID, date time.Time) (Resolution, []OpenInterval, error) {
	r, err := s.resolver(ctx, orgID)
	if err != nil {
		return Resolution{}, nil, err
	}
	days, err := s.SpecialDays(ctx, orgID, professionalID)
	if err != nil {
		return Resolution{}, nil, err
	}
	res := r.Resolve(date, days)
	return res, r.intervals(res), nil
}

// OpenIntervalsFor returns the bookable windows of a professional on date.
func (s *Service) OpenIntervalsFor(ctx context.Context, orgID uuid.UUID, professionalID *uuid.UUID, date time.Time) ([]OpenInterval, error) {
	_, intervals, err := s.ResolveDay(ctx, orgID, professionalID, date)
	return intervals, err
}

// CheckEligibilityFor reports whether start on date is inside the professional's open hours.
func (s *Service) CheckEligibilityFor(ctx context.Context, orgID uuid.UUID, professionalID *uuid.UUID, date time.Time, start TimeOfDay) (Eligibility, error) {
	r, err := s.resolver(ctx, orgID)
	if err != nil {
		return Eligibility{}, err
	}
	days, err := s.SpecialDays(ctx, orgID, professionalID)
	if err != nil {
		return Eligibility{}, err
	}
	e := r.CheckEligibility(date, start, days)
	if e.Eligible {
		metrics.EligibilityChecks.WithLabelValues("ok").Inc()
	} else {
		metrics.EligibilityChecks.WithLabelValues(string(e.Reason)).Inc()
	}
	return e, nil
}

// FindConflicts runs the conflict detector and records the outcome.
func (s *Service) FindConflicts(ctx context.Context, c Candidate) ([]Conflict, error) {
	if !c.complete() {
		metrics.ConflictChecks.WithLabelValues(metrics.OutcomeSkipped).Inc()
		return []Conflict{}, nil
	}
	out, err := s.detector.FindConflicts(ctx, c)
	switch {
	case err != nil:
		metrics.ConflictChecks.WithLabelValues(metrics.OutcomeFailed).Inc()
		s.log.Error().Err(err).
			Str("professional_id", c.ProfessionalID.String()).
			Str("date", c.Date.Format(DateLayout)).
			Msg("conflict check failed")
		return nil, err
	case len(out) > 0:
		metrics.ConflictChecks.WithLabelValues(metrics.OutcomeConflict).Inc()
	default:
		metrics.ConflictChecks.WithLabelValues(metrics.OutcomeClear).Inc()
	}
	return out, nil
}

// CheckCandidate validates c, then checks eligibility and conflicts. Validation errors
// (ErrIncompleteCandidate, ErrCrossesMidnight) are returned as-is; a store failure while
// reading appointments wraps ErrConflictCheckFailed.
func (s *Service) CheckCandidate(ctx context.Context, c Candidate) (Report, error) {
	if err := c.Validate(); err != nil {
		return Report{}, err
	}
	prof := c.ProfessionalID
	elig, err := s.CheckEligibilityFor(ctx, c.OrganizationID, &prof, c.Date, c.StartTime)
	if err != nil {
		return Report{}, err
	}
	conflicts, err := s.FindConflicts(ctx, c)
	if err != nil {
		return Report{Eligibility: elig}, err
	}
	return Report{Eligibility: elig, Conflicts: conflicts}, nil
}

// IsValidationError reports whether err came from Candidate.Validate.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrIncompleteCandidate) || errors.Is(err, ErrCrossesMidnight)
}
