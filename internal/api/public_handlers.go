package api

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/physia/backend/internal/clients"
)

// LookupClientByPhone lets the public booking page recognize a returning client:
// GET /api/public/organizations/{orgId}/clients/lookup?phone=
// Only the id and first name are disclosed.
func (h *Handler) LookupClientByPhone(w http.ResponseWriter, r *http.Request) {
	orgID, err := uuid.Parse(mux.Vars(r)["orgId"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "")
		return
	}
	c, err := h.Clients.ByPhone(r.Context(), orgID, r.URL.Query().Get("phone"))
	switch {
	case errors.Is(err, clients.ErrInvalidPhone):
		writeError(w, http.StatusBadRequest, "invalid_phone", "phone must have 9 to 15 digits")
		return
	case errors.Is(err, clients.ErrNotFound):
		writeJSON(w, http.StatusOK, map[string]interface{}{"found": false})
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"found": true,
		"client": map[string]string{
			"id":         c.ID.String(),
			"first_name": c.FirstName,
		},
	})
}
