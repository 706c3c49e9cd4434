// internal/calendar/handler.go
package calendar

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"venuehub/internal/httputil"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the read-only venue routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/available", h.handleAvailable)
	r.Get("/{id}", h.handleGet)
}

// RegisterAdmin mounts the venue mutation routes.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/", h.handleAdd)
	r.Patch("/{id}", h.handleUpdate)
	r.Put("/{id}/status", h.handleSetStatus)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	venues, err := h.service.ListVenues(r.Context())
	if err != nil {
		httputil.WriteError(w, statusFor(err), err.Error())
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, venues, "")
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	var in AddVenueInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	v, err := h.service.AddVenue(r.Context(), in)
	if err != nil {
		httputil.WriteError(w, statusFor(err), err.Error())
		return
	}
	httputil.WriteSuccess(w, http.StatusCreated, v, "venue added")
}

// handleAvailable lists venues free for the whole window given by the
// start/end query parameters (RFC 3339).
func (h *Handler) handleAvailable(w http.ResponseWriter, r *http.Request) {
	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid start time")
		return
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid end time")
		return
	}
	venues, err := h.service.AvailableVenues(r.Context(), start, end)
	if err != nil {
		httputil.WriteError(w, statusFor(err), err.Error())
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, venues, "")
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid venue ID")
		return
	}
	v, err := h.service.GetVenue(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, statusFor(err), err.Error())
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, v, "")
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid venue ID")
		return
	}
	var in UpdateVenueInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	v, err := h.service.UpdateVenue(r.Context(), id, in)
	if err != nil {
		httputil.WriteError(w, statusFor(err), err.Error())
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, v, "venue updated")
}

func (h *Handler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid venue ID")
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.SetVenueStatus(r.Context(), id, req.Status); err != nil {
		httputil.WriteError(w, statusFor(err), err.Error())
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, nil, "venue status updated")
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrVenueNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInterval), errors.Is(err, ErrVenueUnavailable):
		return http.StatusBadRequest
	case errors.Is(err, ErrTimeConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
