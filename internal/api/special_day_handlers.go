package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/physia/backend/internal/auth"
	"github.com/physia/backend/internal/repo"
	"github.com/physia/backend/internal/schedule"
)

// ListSpecialDays returns the special days in [from, to]: GET /api/special-days?from=&to=.
// The range defaults to today through one year ahead.
func (h *Handler) ListSpecialDays(w http.ResponseWriter, r *http.Request) {
	orgID := auth.OrganizationIDFrom(r.Context())
	today := h.now()
	from := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)
	q := r.URL.Query()
	if s := q.Get("from"); s != "" {
		d, err := parseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "from must be YYYY-MM-DD")
			return
		}
		from = d
	}
	if s := q.Get("to"); s != "" {
		d, err := parseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "to must be YYYY-MM-DD")
			return
		}
		to = d
	}
	if to.Before(from) {
		writeError(w, http.StatusBadRequest, "invalid_range", "to is before from")
		return
	}
	list, err := h.Store.ListAllSpecialDays(r.Context(), orgID, from, to)
	if err != nil {
		h.Log.Error().Err(err).Str("organization_id", orgID.String()).Msg("list special days")
		writeError(w, http.StatusInternalServerError, "internal", "")
		return
	}
	out := make([]schedule.SpecialDay, 0, len(list))
	for _, d := range list {
		out = append(out, d.ToSchedule())
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"special_days": out})
}

type specialDayRequest struct {
	ProfessionalID string `json:"professional_id"`
	Date           string `json:"date"`
	Kind           string `json:"kind"`
	Opens          string `json:"opens"`
	Closes         string `json:"closes"`
	Reason         string `json:"reason"`
}

// PutSpecialDay creates or replaces the special day of a date: PUT /api/special-days
func (h *Handler) PutSpecialDay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orgID := auth.OrganizationIDFrom(ctx)
	var req specialDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "")
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
		return
	}
	kind := schedule.SpecialDayKind(strings.TrimSpace(req.Kind))
	if !kind.Valid() {
		writeError(w, http.StatusBadRequest, "invalid_kind", "kind must be closed or special_hours")
		return
	}
	d := &repo.SpecialDay{
		OrganizationID: orgID,
		Day:            date,
		Kind:           string(kind),
		Reason:         strings.TrimSpace(req.Reason),
	}
	if s := strings.TrimSpace(req.ProfessionalID); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_id", "")
			return
		}
		if _, err := h.Store.ProfessionalByID(ctx, id, orgID); err != nil {
			h.writeScopeError(w, r, err)
			return
		}
		d.ProfessionalID = &id
	}
	if kind == schedule.SpecialDaySpecialHours {
		opens, errO := schedule.ParseTimeOfDay(req.Opens)
		closes, errC := schedule.ParseTimeOfDay(req.Closes)
		if errO != nil || errC != nil {
			writeError(w, http.StatusBadRequest, "invalid_time", "special_hours needs opens and closes as HH:MM")
			return
		}
		if opens.Minutes() >= closes.Minutes() {
			writeError(w, http.StatusBadRequest, "invalid_time", "opens must be before closes")
			return
		}
		o, c := opens.String(), closes.String()
		d.OpensAt, d.ClosesAt = &o, &c
	}
	id, err := h.Store.UpsertSpecialDay(ctx, d)
	if err != nil {
		h.Log.Error().Err(err).Str("organization_id", orgID.String()).Msg("upsert special day")
		writeError(w, http.StatusInternalServerError, "internal", "")
		return
	}
	h.Schedule.InvalidateSpecialDays(ctx, orgID)
	d.ID = id
	writeJSON(w, http.StatusOK, d.ToSchedule())
}

// DeleteSpecialDay removes a special day: DELETE /api/special-days/{id}
func (h *Handler) DeleteSpecialDay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orgID := auth.OrganizationIDFrom(ctx)
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "")
		return
	}
	if err := h.Store.DeleteSpecialDay(ctx, id, orgID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "")
			return
		}
		h.Log.Error().Err(err).Str("special_day_id", id.String()).Msg("delete special day")
		writeError(w, http.StatusInternalServerError, "internal", "")
		return
	}
	h.Schedule.InvalidateSpecialDays(ctx, orgID)
	w.WriteHeader(http.StatusNoContent)
}

type hoursRequest struct {
	Opens  string `json:"opens"`
	Closes string `json:"closes"`
}

// PutOrganizationHours sets the standard opening hours: PUT /api/organization/hours.
// Both fields empty clears them so the service default applies.
func (h *Handler) PutOrganizationHours(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orgID := auth.OrganizationIDFrom(ctx)
	var req hoursRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "")
		return
	}
	var opens, closes *string
	if strings.TrimSpace(req.Opens) != "" || strings.TrimSpace(req.Closes) != "" {
		o, errO := schedule.ParseTimeOfDay(req.Opens)
		c, errC := schedule.ParseTimeOfDay(req.Closes)
		if errO != nil || errC != nil {
			writeError(w, http.StatusBadRequest, "invalid_time", "opens and closes must be HH:MM")
			return
		}
		if o.Minutes() >= c.Minutes() {
			writeError(w, http.StatusBadRequest, "invalid_time", "opens must be before closes")
			return
		}
		ov, cv := o.String(), c.String()
		opens, closes = &ov, &cv
	}
	if err := h.Store.UpdateOrganizationHours(ctx, orgID, opens, closes); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "")
			return
		}
		h.Log.Error().Err(err).Str("organization_id", orgID.String()).Msg("update hours")
		writeError(w, http.StatusInternalServerError, "internal", "")
		return
	}
	h.Schedule.InvalidateHours(ctx, orgID)
	hours, err := h.Schedule.StandardHours(ctx, orgID)
	if err != nil {
		h.Log.Error().Err(err).Str("organization_id", orgID.String()).Msg("reload hours")
		writeError(w, http.StatusInternalServerError, "internal", "")
		return
	}
	writeJSON(w, http.StatusOK, hours)
}
