package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/physia/backend/internal/auth"
	"github.com/physia/backend/internal/pdf"
	"github.com/physia/backend/internal/repo"
	"github.com/physia/backend/internal/schedule"
)

// GetAgendaPDF prints the agenda of a day: GET /api/agenda/{date}.pdf?professional_id=
func (h *Handler) GetAgendaPDF(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orgID := auth.OrganizationIDFrom(ctx)
	dateStr := mux.Vars(r)["date"]
	date, err := parseDate(dateStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
		return
	}
	profID, err := h.professionalScope(ctx, orgID, r.URL.Query().Get("professional_id"))
	if err != nil {
		h.writeScopeError(w, r, err)
		return
	}
	org, err := h.Store.OrganizationByID(ctx, orgID)
	if errors.Is(err, repo.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "")
		return
	}
	if err != nil {
		h.Log.Error().Err(err).Str("organization_id", orgID.String()).Msg("agenda organization")
		writeError(w, http.StatusInternalServerError, "internal", "")
		return
	}
	res, intervals, err := h.Schedule.ResolveDay(ctx, orgID, profID, date)
	if err != nil {
		h.Log.Error().Err(err).Str("organization_id", orgID.String()).Msg("agenda hours")
		writeError(w, http.StatusInternalServerError, "internal", "")
		return
	}
	list, err := h.Store.ListAppointmentsByDay(ctx, orgID, profID, date)
	if err != nil {
		h.Log.Error().Err(err).Str("organization_id", orgID.String()).Msg("agenda appointments")
		writeError(w, http.StatusInternalServerError, "internal", "")
		return
	}

	a := pdf.Agenda{
		Organization: org.Name,
		Date:         formatDate(date.Format(schedule.DateLayout)),
		Hours:        hoursLine(res, intervals),
		Rows:         make([]pdf.AgendaRow, 0, len(list)),
	}
	if h.Cfg != nil && h.Cfg.AppPublicURL != "" {
		a.LinkURL = strings.TrimRight(h.Cfg.AppPublicURL, "/") + "/agenda/" + date.Format(schedule.DateLayout)
	}
	for _, it := range list {
		row := pdf.AgendaRow{
			Start:        hhmm(it.StartTime),
			End:          hhmm(it.EndTime),
			Client:       orDefault(it.ClientName, schedule.UnknownClient),
			Professional: orDefault(it.ProfessionalName, schedule.UnknownProfessional),
			Status:       it.Status,
		}
		if it.Overbooked {
			row.Status += " *"
		}
		if it.Notes != nil {
			row.Notes = *it.Notes
		}
		a.Rows = append(a.Rows, row)
	}
	b, err := pdf.BuildAgendaPDF(a)
	if err != nil {
		h.Log.Error().Err(err).Str("organization_id", orgID.String()).Msg("agenda pdf")
		writeError(w, http.StatusInternalServerError, "internal", "")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="agenda-%s.pdf"`, date.Format(schedule.DateLayout)))
	_, _ = w.Write(b)
}

// hoursLine describes the opening window printed under the agenda title.
func hoursLine(res schedule.Resolution, intervals []schedule.OpenInterval) string {
	if len(intervals) == 0 {
		if res.Reason != "" {
			return "Closed: " + res.Reason
		}
		return "Closed"
	}
	parts := make([]string, 0, len(intervals))
	for _, iv := range intervals {
		parts = append(parts, iv.Opens.String()+"-"+iv.Closes.String())
	}
	line := "Hours " + strings.Join(parts, ", ")
	if res.Kind == schedule.KindSpecialHours && res.Reason != "" {
		line += " (" + res.Reason + ")"
	}
	return line
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
