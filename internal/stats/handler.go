// internal/stats/handler.go
package stats

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"venuehub/internal/httputil"
	"venuehub/internal/identity"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the dashboard routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/me", h.handleMine)
}

// RegisterReview mounts the system-wide dashboard.
func (h *Handler) RegisterReview(r chi.Router) {
	r.Get("/usage", h.handleUsage)
}

func (h *Handler) handleUsage(w http.ResponseWriter, r *http.Request) {
	usage, err := h.service.Usage(r.Context())
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, usage, "")
}

func (h *Handler) handleMine(w http.ResponseWriter, r *http.Request) {
	p, ok := identity.PrincipalFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "missing principal")
		return
	}
	summary, err := h.service.UserSummary(r.Context(), p.ID)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, summary, "")
}
