package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/physia/backend/internal/auth"
	"github.com/physia/backend/internal/schedule"
)

// GetAvailability returns the open intervals of a date: GET /api/availability?date=&professional_id=
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	orgID := auth.OrganizationIDFrom(r.Context())
	date, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
		return
	}
	profID, err := h.professionalScope(r.Context(), orgID, r.URL.Query().Get("professional_id"))
	if err != nil {
		h.writeScopeError(w, r, err)
		return
	}
	res, intervals, err := h.Schedule.ResolveDay(r.Context(), orgID, profID, date)
	if err != nil {
		h.Log.Error().Err(err).Str("organization_id", orgID.String()).Msg("availability")
		writeError(w, http.StatusInternalServerError, "internal", "")
		return
	}
	out := map[string]interface{}{
		"date":      date.Format(schedule.DateLayout),
		"kind":      res.Kind.String(),
		"intervals": intervals,
	}
	if res.Reason != "" {
		out["reason"] = res.Reason
	}
	writeJSON(w, http.StatusOK, out)
}

type candidateRequest struct {
	ProfessionalID  string `json:"professional_id"`
	Date            string `json:"date"`
	StartTime       string `json:"start_time"`
	DurationMinutes int    `json:"duration_minutes"`
	ExcludeID       string `json:"exclude_appointment_id"`
}

// candidate builds a schedule.Candidate from the request. Empty fields stay zero so the
// caller decides between the lenient (conflict preview) and strict (write) paths; malformed
// non-empty fields are errors.
func (h *Handler) candidate(r *http.Request, req candidateRequest) (schedule.Candidate, error) {
	ctx := r.Context()
	orgID := auth.OrganizationIDFrom(ctx)
	c := schedule.Candidate{OrganizationID: orgID, DurationMinutes: req.DurationMinutes}
	profID, err := h.professionalScope(ctx, orgID, req.ProfessionalID)
	if err != nil {
		return c, err
	}
	if profID != nil {
		c.ProfessionalID = *profID
	}
	if strings.TrimSpace(req.Date) != "" {
		d, err := parseDate(req.Date)
		if err != nil {
			return c, errInvalidDate
		}
		c.Date = d
	}
	if strings.TrimSpace(req.StartTime) != "" {
		t, err := schedule.ParseTimeOfDay(req.StartTime)
		if err != nil {
			return c, err
		}
		c.StartTime = t
	}
	if req.ExcludeID != "" {
		id, err := uuid.Parse(req.ExcludeID)
		if err != nil {
			return c, errInvalidID
		}
		c.ExcludeAppointmentID = &id
	}
	return c, nil
}

var (
	errInvalidDate = errors.New("date must be YYYY-MM-DD")
	errInvalidID   = errors.New("invalid id")
)

// writeCandidateError answers errors from candidate and Candidate.Validate.
func (h *Handler) writeCandidateError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errInvalidDate):
		writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
	case errors.Is(err, errInvalidID):
		writeError(w, http.StatusBadRequest, "invalid_id", "")
	case errors.Is(err, schedule.ErrInvalidTimeOfDay):
		writeError(w, http.StatusBadRequest, "invalid_time", "start_time must be HH:MM")
	case errors.Is(err, schedule.ErrIncompleteCandidate):
		writeError(w, http.StatusBadRequest, "incomplete", "professional_id, date, start_time and duration_minutes are required")
	case errors.Is(err, schedule.ErrCrossesMidnight):
		writeError(w, http.StatusBadRequest, "crosses_midnight", "appointment must end before midnight")
	default:
		h.writeScopeError(w, r, err)
	}
}

// CheckEligibility answers POST /api/appointments/eligibility with the open intervals of
// the date and whether start_time falls inside one.
func (h *Handler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	var req candidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "")
		return
	}
	c, err := h.candidate(r, req)
	if err != nil {
		h.writeCandidateError(w, r, err)
		return
	}
	if c.Date.IsZero() || c.StartTime == "" {
		writeError(w, http.StatusBadRequest, "incomplete", "date and start_time are required")
		return
	}
	var profID *uuid.UUID
	if c.ProfessionalID != uuid.Nil {
		profID = &c.ProfessionalID
	}
	e, err := h.Schedule.CheckEligibilityFor(r.Context(), c.OrganizationID, profID, c.Date, c.StartTime)
	if err != nil {
		h.Log.Error().Err(err).Str("organization_id", c.OrganizationID.String()).Msg("eligibility")
		writeError(w, http.StatusInternalServerError, "internal", "")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// CheckConflicts answers POST /api/appointments/conflicts. An incomplete candidate gets an
// empty list so forms can call it while being filled in; a failed lookup is a 503, never an
// empty list.
func (h *Handler) CheckConflicts(w http.ResponseWriter, r *http.Request) {
	var req candidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "")
		return
	}
	c, err := h.candidate(r, req)
	if err != nil {
		h.writeCandidateError(w, r, err)
		return
	}
	conflicts, err := h.Schedule.FindConflicts(r.Context(), c)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "conflict_check_failed", "could not verify the agenda, try again")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"conflicts": conflicts})
}
