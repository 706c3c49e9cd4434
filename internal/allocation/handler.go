// internal/allocation/handler.go
package allocation

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"venuehub/internal/application"
	"venuehub/internal/calendar"
	"venuehub/internal/httputil"
	"venuehub/internal/identity"
	"venuehub/internal/inventory"
)

type Handler struct {
	coordinator Coordinator
}

func NewHandler(coordinator Coordinator) *Handler {
	return &Handler{coordinator: coordinator}
}

// RegisterReview mounts the reviewer-side decisions.
func (h *Handler) RegisterReview(r chi.Router) {
	r.Put("/applications/{id}/approve", h.handleApprove)
	r.Put("/applications/{id}/reject", h.handleReject)
}

// Register mounts the requester-side cancellation.
func (h *Handler) Register(r chi.Router) {
	r.Put("/{id}/cancel", h.handleCancel)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	p, id, ok := principalAndID(w, r)
	if !ok {
		return
	}
	a, err := h.coordinator.Approve(r.Context(), p, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, a, "application approved")
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	p, id, ok := principalAndID(w, r)
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Reason == "" {
		httputil.WriteError(w, http.StatusBadRequest, "rejection reason is required")
		return
	}
	a, err := h.coordinator.Reject(r.Context(), p, id, req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, a, "application rejected")
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	p, id, ok := principalAndID(w, r)
	if !ok {
		return
	}
	a, err := h.coordinator.Cancel(r.Context(), p, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, a, "application cancelled")
}

func principalAndID(w http.ResponseWriter, r *http.Request) (identity.Principal, uuid.UUID, bool) {
	p, found := identity.PrincipalFromContext(r.Context())
	if !found {
		httputil.WriteError(w, http.StatusUnauthorized, "missing principal")
		return identity.Principal{}, uuid.Nil, false
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid application ID")
		return identity.Principal{}, uuid.Nil, false
	}
	return p, id, true
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, inventory.ErrInvalidRelease):
		// Bookkeeping defect; never expose ledger internals.
		httputil.WriteError(w, http.StatusInternalServerError, "internal error")
	case errors.Is(err, ErrResourceBusy):
		httputil.WriteError(w, http.StatusServiceUnavailable, "resources busy, retry later")
	case errors.Is(err, ErrNotPermitted):
		httputil.WriteError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, application.ErrApplicationNotFound),
		errors.Is(err, calendar.ErrVenueNotFound),
		errors.Is(err, inventory.ErrMaterialNotFound):
		httputil.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, application.ErrInvalidTransition),
		errors.Is(err, calendar.ErrTimeConflict),
		errors.Is(err, inventory.ErrInsufficientStock):
		httputil.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, calendar.ErrInvalidInterval),
		errors.Is(err, calendar.ErrVenueUnavailable),
		errors.Is(err, inventory.ErrMaterialUnavailable):
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		httputil.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
