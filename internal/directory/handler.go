package directory

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/panafact/panafact/internal/platform/httpx"
	"github.com/panafact/panafact/internal/users"
)

// Handler manages client directory endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers directory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.aggregate)
	r.Get("/records", h.records)
	r.Post("/records", h.createRecord)
}

func (h *Handler) aggregate(w http.ResponseWriter, r *http.Request) {
	user := users.FromContext(r.Context())
	result, err := h.service.Load(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("aggregate clients", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) records(w http.ResponseWriter, r *http.Request) {
	user := users.FromContext(r.Context())
	clients, err := h.service.ListClients(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("list client records", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"clients": clients})
}

type createClientRequest struct {
	Name  string `json:"name" validate:"required"`
	TaxID string `json:"tax_id"`
}

func (h *Handler) createRecord(w http.ResponseWriter, r *http.Request) {
	user := users.FromContext(r.Context())
	var req createClientRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	client, err := h.service.CreateClient(r.Context(), user.ID, req.Name, req.TaxID)
	if err != nil {
		h.logger.Error("create client record", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusCreated, client)
}
