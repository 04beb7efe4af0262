package ai

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/panafact/panafact/internal/platform/httpx"
)

// Handler manages AI parsing endpoints.
type Handler struct {
	logger   *slog.Logger
	parser   Parser
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, parser Parser) *Handler {
	return &Handler{logger: logger, parser: parser, validate: validator.New()}
}

// MountRoutes registers AI routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/parse", h.parse)
}

type parseRequest struct {
	Text string `json:"text" validate:"required,max=4000"`
}

func (h *Handler) parse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	draft, err := h.parser.ParseDocument(r.Context(), req.Text)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			httpx.Problem(w, http.StatusServiceUnavailable, "Service Unavailable",
				"el análisis con IA no está configurado")
			return
		}
		h.logger.Error("parse document text", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Upstream Error",
			"no se pudo interpretar el texto")
		return
	}
	httpx.JSON(w, http.StatusOK, draft)
}
