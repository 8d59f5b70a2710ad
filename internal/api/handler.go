package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/physia/backend/internal/auth"
	"github.com/physia/backend/internal/clients"
	"github.com/physia/backend/internal/config"
	"github.com/physia/backend/internal/repo"
	"github.com/physia/backend/internal/schedule"
)

// Store is what the handlers read and write besides the schedule service. *repo.Store implements it.
type Store interface {
	OrganizationByID(ctx context.Context, id uuid.UUID) (*repo.Organization, error)
	ProfessionalByID(ctx context.Context, id, orgID uuid.UUID) (*repo.Professional, error)
	AppointmentByID(ctx context.Context, id, orgID uuid.UUID) (*repo.Appointment, error)
	ListAppointmentsByDay(ctx context.Context, orgID uuid.UUID, professionalID *uuid.UUID, date time.Time) ([]repo.AppointmentWithNames, error)
	CreateAppointment(ctx context.Context, in repo.NewAppointment) (uuid.UUID, error)
	UpdateAppointment(ctx context.Context, id, orgID uuid.UUID, ch repo.AppointmentChanges) error
	ListAllSpecialDays(ctx context.Context, orgID uuid.UUID, from, to time.Time) ([]repo.SpecialDay, error)
	UpsertSpecialDay(ctx context.Context, d *repo.SpecialDay) (uuid.UUID, error)
	DeleteSpecialDay(ctx context.Context, id, orgID uuid.UUID) error
	UpdateOrganizationHours(ctx context.Context, orgID uuid.UUID, opens, closes *string) error
}

type Handler struct {
	Store    Store
	Schedule *schedule.Service
	Clients  *clients.Lookup
	Cfg      *config.Config
	Log      zerolog.Logger
	// Now is the clock used for default date ranges; time.Now when nil.
	Now func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	body := map[string]string{"error": code}
	if message != "" {
		body["message"] = message
	}
	writeJSON(w, status, body)
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(schedule.DateLayout, strings.TrimSpace(s))
}

// formatDate turns "2006-01-02" into "02/01/2006" for printed documents; invalid input gives "".
func formatDate(iso string) string {
	if iso == "" {
		return ""
	}
	t, err := time.Parse(schedule.DateLayout, iso)
	if err != nil {
		return ""
	}
	return t.Format("02/01/2006")
}

// hhmm trims a PostgreSQL "HH:MM:SS" time to "HH:MM".
func hhmm(s string) string {
	if len(s) >= 5 {
		return s[:5]
	}
	return s
}

var errForbiddenProfessional = errors.New("professional outside caller scope")

// professionalScope resolves which professional a request acts on. PROFESSIONAL tokens are
// pinned to their own professional; staff may name any professional of the organization, or
// none (raw == "") for organization-wide views.
func (h *Handler) professionalScope(ctx context.Context, orgID uuid.UUID, raw string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if !auth.IsStaff(ctx) {
		own := auth.ProfessionalIDFrom(ctx)
		if own == nil {
			return nil, errForbiddenProfessional
		}
		if raw != "" && raw != own.String() {
			return nil, errForbiddenProfessional
		}
		return own, nil
	}
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, repo.ErrNotFound
	}
	if _, err := h.Store.ProfessionalByID(ctx, id, orgID); err != nil {
		return nil, err
	}
	return &id, nil
}

// writeScopeError answers a professionalScope failure.
func (h *Handler) writeScopeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errForbiddenProfessional):
		writeError(w, http.StatusForbidden, "forbidden", "")
	case errors.Is(err, repo.ErrNotFound):
		writeError(w, http.StatusNotFound, "professional_not_found", "")
	default:
		h.Log.Error().Err(err).Str("path", r.URL.Path).Msg("resolve professional")
		writeError(w, http.StatusInternalServerError, "internal", "")
	}
}
