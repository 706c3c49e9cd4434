// internal/application/handler.go
package application

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"venuehub/internal/calendar"
	"venuehub/internal/httputil"
	"venuehub/internal/identity"
	"venuehub/internal/inventory"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the application submission and listing routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/", h.handleCreate)
	r.Get("/mine", h.handleListMine)
	r.Get("/{id}", h.handleGet)
}

// RegisterReview mounts the reviewer-side queue.
func (h *Handler) RegisterReview(r chi.Router) {
	r.Get("/pending", h.handleListPending)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	p, ok := identity.PrincipalFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "missing principal")
		return
	}
	var in CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	a, err := h.service.Create(r.Context(), p.ID, in)
	if err != nil {
		httputil.WriteError(w, statusFor(err), err.Error())
		return
	}
	httputil.WriteSuccess(w, http.StatusCreated, a, "application submitted")
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	p, ok := identity.PrincipalFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "missing principal")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid application ID")
		return
	}
	a, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, statusFor(err), err.Error())
		return
	}
	// Only the requester and review-capable roles may see details.
	if a.RequesterID != p.ID && !p.Role.CanReview() {
		httputil.WriteError(w, http.StatusForbidden, "not allowed to view this application")
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, a, "")
}

func (h *Handler) handleListMine(w http.ResponseWriter, r *http.Request) {
	p, ok := identity.PrincipalFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "missing principal")
		return
	}
	apps, err := h.service.ListByRequester(r.Context(), p.ID)
	if err != nil {
		httputil.WriteError(w, statusFor(err), err.Error())
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, apps, "")
}

func (h *Handler) handleListPending(w http.ResponseWriter, r *http.Request) {
	apps, err := h.service.ListPending(r.Context())
	if err != nil {
		httputil.WriteError(w, statusFor(err), err.Error())
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, apps, "")
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrApplicationNotFound),
		errors.Is(err, calendar.ErrVenueNotFound),
		errors.Is(err, inventory.ErrMaterialNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, ErrNoMaterials),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrDuplicateMaterial),
		errors.Is(err, ErrPastStartTime),
		errors.Is(err, calendar.ErrInvalidInterval),
		errors.Is(err, calendar.ErrVenueUnavailable),
		errors.Is(err, inventory.ErrMaterialUnavailable):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
