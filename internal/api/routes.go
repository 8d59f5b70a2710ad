package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/physia/backend/internal/auth"
	"github.com/physia/backend/internal/middleware"
)

// Register mounts the API under /api. Public routes go through limiter when it is not nil.
func (h *Handler) Register(r *mux.Router, secret []byte, limiter *middleware.RateLimiter) {
	public := r.PathPrefix("/api/public").Subrouter()
	if limiter != nil {
		public.Use(limiter.Middleware)
	}
	public.HandleFunc("/organizations/{orgId}/clients/lookup", h.LookupClientByPhone).Methods(http.MethodGet)

	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(middleware.RequireAuthMiddleware(secret))
	protected.HandleFunc("/availability", h.GetAvailability).Methods(http.MethodGet)
	protected.HandleFunc("/appointments", h.ListAppointments).Methods(http.MethodGet)
	protected.HandleFunc("/appointments", h.CreateAppointment).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/eligibility", h.CheckEligibility).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/conflicts", h.CheckConflicts).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{id}", h.UpdateAppointment).Methods(http.MethodPatch)
	protected.HandleFunc(`/agenda/{date:\d{4}-\d{2}-\d{2}}.pdf`, h.GetAgendaPDF).Methods(http.MethodGet)
	protected.Handle("/special-days", middleware.RequireStaff(http.HandlerFunc(h.ListSpecialDays))).Methods(http.MethodGet)
	protected.Handle("/special-days", middleware.RequireStaff(http.HandlerFunc(h.PutSpecialDay))).Methods(http.MethodPut)
	protected.Handle("/special-days/{id}", middleware.RequireStaff(http.HandlerFunc(h.DeleteSpecialDay))).Methods(http.MethodDelete)
	protected.Handle("/organization/hours", middleware.RequireRole(auth.RoleOwner)(http.HandlerFunc(h.PutOrganizationHours))).Methods(http.MethodPut)
}
