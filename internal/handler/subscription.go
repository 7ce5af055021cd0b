package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/msomdec/campuscoders/internal/domain"
	"github.com/msomdec/campuscoders/internal/service"
)

// SubscriptionHandler serves the plan catalog, tier changes and
// entitlement checks.
type SubscriptionHandler struct {
	sessions     *service.SessionManager
	entitlements *service.EntitlementResolver
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(sessions *service.SessionManager, entitlements *service.EntitlementResolver) *SubscriptionHandler {
	return &SubscriptionHandler{sessions: sessions, entitlements: entitlements}
}

// HandlePlans lists the plan catalog.
// GET /api/plans
func (h *SubscriptionHandler) HandlePlans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"plans": toPlanDTOs(h.entitlements.Plans()),
	})
}

// HandleCurrentPlan returns the caller's plan; anonymous callers get free.
// GET /api/subscription
func (h *SubscriptionHandler) HandleCurrentPlan(w http.ResponseWriter, r *http.Request) {
	plan := domain.PlanFor(domain.TierFree)
	if SessionFromContext(r.Context()) != nil {
		plan = h.entitlements.CurrentPlan()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"plan": toPlanDTO(plan),
	})
}

// HandleSubscribe moves the session to a plan after the payment delay and
// replies with the plan that was bought.
// POST /api/subscription
// Request:  {"planId":"premium"}
// Response: 200 {"plan": {...}} or 400
func (h *SubscriptionHandler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := readJSON(r, &req); err != nil {
		writeReadError(w, err)
		return
	}

	ok, err := h.entitlements.Subscribe(r.Context(), req.PlanID)
	if err != nil {
		slog.Error("subscribe", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	if !ok {
		writeError(w, http.StatusBadRequest, "Unable to subscribe to that plan.")
		return
	}

	// Subscribe accepted the id, so it parses.
	tier, _ := domain.ParseTier(req.PlanID)
	writeJSON(w, http.StatusOK, map[string]any{
		"plan": toPlanDTO(domain.PlanFor(tier)),
	})
}

// HandleCancel returns the session to the free tier.
// DELETE /api/subscription
// Response: 204 No Content
func (h *SubscriptionHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	if err := h.entitlements.CancelSubscription(r.Context()); err != nil {
		slog.Error("cancel subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleEntitlement reports whether the caller may see content gated at
// the given tier.
// GET /api/entitlements/{tier}
// Response: {"tier":"premium","granted":true}
func (h *SubscriptionHandler) HandleEntitlement(w http.ResponseWriter, r *http.Request) {
	tier, err := domain.ParseTier(chi.URLParam(r, "tier"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Unknown tier.")
		return
	}

	granted := SessionFromContext(r.Context()) != nil && h.sessions.HasSubscription(tier)
	writeJSON(w, http.StatusOK, map[string]any{
		"tier":    tier.String(),
		"granted": granted,
	})
}
