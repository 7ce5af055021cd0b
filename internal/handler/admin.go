package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/msomdec/campuscoders/internal/domain"
	"github.com/msomdec/campuscoders/internal/service"
)

// AdminHandler serves the roster dashboard and overrides.
type AdminHandler struct {
	admin *service.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(admin *service.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// HandleListUsers returns the roster and its stats.
// GET /api/admin/users
func (h *AdminHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	overview, err := h.admin.LoadUsers(r.Context())
	if err != nil {
		slog.Error("load users", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, AdminOverviewDTO{
		Users: toSessionDTOs(overview.Users),
		Stats: overview.Stats,
	})
}

// HandleUpdateRole overrides a user's role.
// PATCH /api/admin/users/{id}/role
// Request: {"role":"admin"}
func (h *AdminHandler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := readJSON(r, &req); err != nil {
		writeReadError(w, err)
		return
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	err = h.admin.UpdateUserRole(r.Context(), chi.URLParam(r, "id"), role)
	h.writeEditResult(w, err)
}

// HandleUpdateSubscription overrides a user's tier.
// PATCH /api/admin/users/{id}/subscription
// Request: {"subscription":"pro"}
func (h *AdminHandler) HandleUpdateSubscription(w http.ResponseWriter, r *http.Request) {
	var req tierRequest
	if err := readJSON(r, &req); err != nil {
		writeReadError(w, err)
		return
	}
	tier, err := domain.ParseTier(req.Subscription)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	err = h.admin.UpdateUserSubscription(r.Context(), chi.URLParam(r, "id"), tier)
	h.writeEditResult(w, err)
}

func (h *AdminHandler) writeEditResult(w http.ResponseWriter, err error) {
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found.")
			return
		}
		slog.Error("admin roster edit", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
