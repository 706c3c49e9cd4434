// internal/inventory/handler.go
package inventory

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

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

// Register mounts the read-only material catalog routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/{id}", h.handleGet)
	r.Get("/{id}/availability", h.handleAvailability)
}

// RegisterAdmin mounts the catalog mutation routes.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/", h.handleAdd)
	r.Patch("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleRemove)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	materials, err := h.service.ListMaterials(r.Context())
	if err != nil {
		httputil.WriteError(w, statusFor(err), err.Error())
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, materials, "")
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	var in AddMaterialInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, err := h.service.AddMaterial(r.Context(), in)
	if err != nil {
		httputil.WriteError(w, statusFor(err), err.Error())
		return
	}
	httputil.WriteSuccess(w, http.StatusCreated, m, "material added")
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid material ID")
		return
	}
	m, err := h.service.GetMaterial(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, statusFor(err), err.Error())
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, m, "")
}

// handleAvailability reports whether the quantity given in the query can be
// reserved right now, with the stock level classified for display.
func (h *Handler) handleAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid material ID")
		return
	}
	quantity, err := strconv.Atoi(r.URL.Query().Get("quantity"))
	if err != nil || quantity <= 0 {
		httputil.WriteError(w, http.StatusBadRequest, "quantity must be a positive integer")
		return
	}
	ok, err := h.service.CheckAvailability(r.Context(), id, quantity)
	if err != nil {
		httputil.WriteError(w, statusFor(err), err.Error())
		return
	}
	m, err := h.service.GetMaterial(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, statusFor(err), err.Error())
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"available":          ok,
		"available_quantity": m.AvailableQuantity(),
		"stock_status":       m.StockStatus(quantity),
	}, "")
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid material ID")
		return
	}
	var in UpdateMaterialInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, err := h.service.UpdateMaterial(r.Context(), id, in)
	if err != nil {
		httputil.WriteError(w, statusFor(err), err.Error())
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, m, "material updated")
}

func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid material ID")
		return
	}
	if err := h.service.RemoveMaterial(r.Context(), id); err != nil {
		httputil.WriteError(w, statusFor(err), err.Error())
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, nil, "material retired")
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrMaterialNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrMaterialUnavailable):
		return http.StatusBadRequest
	case errors.Is(err, ErrInsufficientStock):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
