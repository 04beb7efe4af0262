package tax

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/panafact/panafact/internal/platform/httpx"
	"github.com/panafact/panafact/internal/report"
	"github.com/panafact/panafact/internal/users"
)

// Handler manages tax projection endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers tax routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.projection)
}

func (h *Handler) projection(w http.ResponseWriter, r *http.Request) {
	user := users.FromContext(r.Context())

	rng := report.Range(r.URL.Query().Get("range"))
	if rng == "" {
		rng = report.Range12M
	}
	var start, end time.Time
	if v := r.URL.Query().Get("start"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "start must be YYYY-MM-DD")
			return
		}
		start = t
	}
	if v := r.URL.Query().Get("end"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "end must be YYYY-MM-DD")
			return
		}
		end = t
	}

	projection, err := h.service.Projection(r.Context(), user.ID, user.EntityType, rng, start, end)
	if err != nil {
		if errors.Is(err, report.ErrInvalidRange) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
		h.logger.Error("build tax projection", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, projection)
}
