package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/physia/backend/internal/auth"
	"github.com/physia/backend/internal/repo"
	"github.com/physia/backend/internal/schedule"
)

type appointmentItem struct {
	ID               string  `json:"id"`
	ProfessionalID   string  `json:"professional_id"`
	ClientID         *string `json:"client_id,omitempty"`
	Date             string  `json:"date"`
	StartTime        string  `json:"start_time"`
	EndTime          string  `json:"end_time"`
	Status           string  `json:"status"`
	Overbooked       bool    `json:"overbooked"`
	Notes            *string `json:"notes,omitempty"`
	ClientName       string  `json:"client_name"`
	ProfessionalName string  `json:"professional_name"`
}

func toAppointmentItem(a repo.AppointmentWithNames) appointmentItem {
	it := appointmentItem{
		ID:               a.ID.String(),
		ProfessionalID:   a.ProfessionalID.String(),
		Date:             a.AppointmentDate.Format(schedule.DateLayout),
		StartTime:        hhmm(a.StartTime),
		EndTime:          hhmm(a.EndTime),
		Status:           a.Status,
		Overbooked:       a.Overbooked,
		Notes:            a.Notes,
		ClientName:       a.ClientName,
		ProfessionalName: a.ProfessionalName,
	}
	if a.ClientID != nil {
		s := a.ClientID.String()
		it.ClientID = &s
	}
	return it
}

// ListAppointments returns the live appointments of a day: GET /api/appointments?date=&professional_id=
func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
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
	list, err := h.Store.ListAppointmentsByDay(r.Context(), orgID, profID, date)
	if err != nil {
		h.Log.Error().Err(err).Str("organization_id", orgID.String()).Msg("list appointments")
		writeError(w, http.StatusInternalServerError, "internal", "")
		return
	}
	out := make([]appointmentItem, 0, len(list))
	for _, a := range list {
		out = append(out, toAppointmentItem(a))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"appointments": out})
}

type createAppointmentRequest struct {
	candidateRequest
	ClientID string `json:"client_id"`
	Notes    string `json:"notes"`
	// Force books over conflicting appointments (the new one is stored as overbooked).
	// It never overrides closed days or opening hours.
	Force bool `json:"force"`
}

// precheck runs the eligibility and conflict checks before a write. It answers the request
// itself and returns ok=false when the write must not happen; overbook tells whether the
// write goes through only because of force.
func (h *Handler) precheck(w http.ResponseWriter, r *http.Request, c schedule.Candidate, force bool) (overbook bool, ok bool) {
	if err := c.Validate(); err != nil {
		h.writeCandidateError(w, r, err)
		return false, false
	}
	report, err := h.Schedule.CheckCandidate(r.Context(), c)
	switch {
	case errors.Is(err, schedule.ErrConflictCheckFailed):
		writeError(w, http.StatusServiceUnavailable, "conflict_check_failed", "could not verify the agenda, try again")
		return false, false
	case err != nil:
		h.Log.Error().Err(err).Str("organization_id", c.OrganizationID.String()).Msg("appointment precheck")
		writeError(w, http.StatusInternalServerError, "internal", "")
		return false, false
	}
	if !report.Eligibility.Eligible {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":     "not_eligible",
			"reason":    report.Eligibility.Reason,
			"message":   report.Eligibility.Message,
			"intervals": report.Eligibility.Intervals,
		})
		return false, false
	}
	if len(report.Conflicts) > 0 {
		if !force {
			writeJSON(w, http.StatusConflict, map[string]interface{}{
				"error":     "slot_conflict",
				"conflicts": report.Conflicts,
			})
			return false, false
		}
		h.Log.Info().
			Str("user_id", auth.UserIDFrom(r.Context())).
			Str("professional_id", c.ProfessionalID.String()).
			Str("date", c.Date.Format(schedule.DateLayout)).
			Int("conflicts", len(report.Conflicts)).
			Msg("overbooking confirmed")
		return true, true
	}
	return false, true
}

// CreateAppointment books an appointment: POST /api/appointments
func (h *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req createAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "")
		return
	}
	c, err := h.candidate(r, req.candidateRequest)
	if err != nil {
		h.writeCandidateError(w, r, err)
		return
	}
	c.ExcludeAppointmentID = nil
	var clientID *uuid.UUID
	if s := strings.TrimSpace(req.ClientID); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_id", "")
			return
		}
		clientID = &id
	}
	overbook, ok := h.precheck(w, r, c, req.Force)
	if !ok {
		return
	}
	id, err := h.Store.CreateAppointment(r.Context(), repo.NewAppointment{
		OrganizationID: c.OrganizationID,
		ProfessionalID: c.ProfessionalID,
		ClientID:       clientID,
		Date:           c.Date,
		Start:          c.StartTime.String(),
		End:            c.EndTime().String(),
		Status:         schedule.StatusScheduled,
		Overbooked:     overbook,
		Notes:          strings.TrimSpace(req.Notes),
	})
	if err != nil {
		h.writeWriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"id": id.String(), "overbooked": overbook})
}

type updateAppointmentRequest struct {
	Date            *string `json:"date"`
	StartTime       *string `json:"start_time"`
	DurationMinutes *int    `json:"duration_minutes"`
	Status          *string `json:"status"`
	Notes           *string `json:"notes"`
	Force           bool    `json:"force"`
}

// UpdateAppointment reschedules or changes the status of an appointment: PATCH /api/appointments/{id}.
// Moving it (or reviving a cancelled one) runs the same checks as booking, with the appointment
// itself excluded from the conflict search.
func (h *Handler) UpdateAppointment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orgID := auth.OrganizationIDFrom(ctx)
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "")
		return
	}
	var req updateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "")
		return
	}
	cur, err := h.Store.AppointmentByID(ctx, id, orgID)
	if errors.Is(err, repo.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "")
		return
	}
	if err != nil {
		h.Log.Error().Err(err).Str("appointment_id", id.String()).Msg("load appointment")
		writeError(w, http.StatusInternalServerError, "internal", "")
		return
	}
	if !auth.IsStaff(ctx) {
		own := auth.ProfessionalIDFrom(ctx)
		if own == nil || *own != cur.ProfessionalID {
			writeError(w, http.StatusForbidden, "forbidden", "")
			return
		}
	}
	if req.Status != nil && !schedule.ValidStatus(*req.Status) {
		writeError(w, http.StatusBadRequest, "invalid_status", "")
		return
	}

	start, err := schedule.ParseTimeOfDay(cur.StartTime)
	if err != nil {
		h.Log.Error().Err(err).Str("appointment_id", id.String()).Msg("stored start time")
		writeError(w, http.StatusInternalServerError, "internal", "")
		return
	}
	end, err := schedule.ParseTimeOfDay(cur.EndTime)
	if err != nil {
		h.Log.Error().Err(err).Str("appointment_id", id.String()).Msg("stored end time")
		writeError(w, http.StatusInternalServerError, "internal", "")
		return
	}
	c := schedule.Candidate{
		OrganizationID:       orgID,
		ProfessionalID:       cur.ProfessionalID,
		Date:                 cur.AppointmentDate,
		StartTime:            start,
		DurationMinutes:      end.Minutes() - start.Minutes(),
		ExcludeAppointmentID: &id,
	}
	var ch repo.AppointmentChanges
	moved := false
	if req.Date != nil {
		d, err := parseDate(*req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", errInvalidDate.Error())
			return
		}
		c.Date = d
		ch.Date = &d
		moved = true
	}
	if req.StartTime != nil {
		t, err := schedule.ParseTimeOfDay(*req.StartTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_time", "start_time must be HH:MM")
			return
		}
		c.StartTime = t
		moved = true
	}
	if req.DurationMinutes != nil {
		c.DurationMinutes = *req.DurationMinutes
		moved = true
	}
	status := cur.Status
	if req.Status != nil {
		status = *req.Status
		ch.Status = req.Status
	}
	if moved {
		if err := c.Validate(); err != nil {
			h.writeCandidateError(w, r, err)
			return
		}
	}
	revived := cur.Status == schedule.StatusCancelled && status != schedule.StatusCancelled
	if (moved || revived) && status != schedule.StatusCancelled {
		overbook, ok := h.precheck(w, r, c, req.Force)
		if !ok {
			return
		}
		ch.Overbooked = &overbook
	}
	if moved {
		s, e := c.StartTime.String(), c.EndTime().String()
		ch.Start, ch.End = &s, &e
	}
	if req.Notes != nil {
		n := strings.TrimSpace(*req.Notes)
		ch.Notes = &n
	}
	if err := h.Store.UpdateAppointment(ctx, id, orgID, ch); err != nil {
		h.writeWriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": id.String(), "status": status})
}

// writeWriteError maps store write failures. ErrSlotTaken means another booking won the
// race between the check and the insert.
func (h *Handler) writeWriteError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repo.ErrSlotTaken):
		writeError(w, http.StatusConflict, "slot_taken", "the slot was booked by someone else, check the agenda again")
	case errors.Is(err, repo.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "")
	case errors.Is(err, repo.ErrDuplicate):
		writeError(w, http.StatusConflict, "duplicate", "")
	default:
		h.Log.Error().Err(err).Str("path", r.URL.Path).Msg("write appointment")
		writeError(w, http.StatusInternalServerError, "internal", "")
	}
}
