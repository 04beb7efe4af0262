package report

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/panafact/panafact/internal/platform/httpx"
	"github.com/panafact/panafact/internal/users"
)

// Handler manages reporting endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/summary", h.summary)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	user := users.FromContext(r.Context())
	rng, start, end, err := parseWindowParams(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	summary, err := h.service.Summary(r.Context(), user.ID, rng, start, end)
	if err != nil {
		if errors.Is(err, ErrInvalidRange) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
		h.logger.Error("build report summary", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

// parseWindowParams reads range/start/end query parameters, defaulting to
// the 30-day window.
func parseWindowParams(r *http.Request) (Range, time.Time, time.Time, error) {
	rng := Range(r.URL.Query().Get("range"))
	if rng == "" {
		rng = Range30D
	}
	var start, end time.Time
	if v := r.URL.Query().Get("start"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return "", time.Time{}, time.Time{}, errors.New("start must be YYYY-MM-DD")
		}
		start = t
	}
	if v := r.URL.Query().Get("end"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return "", time.Time{}, time.Time{}, errors.New("end must be YYYY-MM-DD")
		}
		end = t
	}
	return rng, start, end, nil
}
