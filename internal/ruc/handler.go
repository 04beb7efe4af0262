package ruc

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/panafact/panafact/internal/platform/httpx"
)

// Handler manages tax-ID lookup endpoints.
type Handler struct {
	logger *slog.Logger
	client *Client
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, client *Client) *Handler {
	return &Handler{logger: logger, client: client}
}

// MountRoutes registers lookup routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{id}", h.lookup)
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	taxpayer, err := h.client.Lookup(r.Context(), id)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "RUC no encontrado")
			return
		}
		h.logger.Error("lookup ruc", slog.String("ruc", id), slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Upstream Error",
			"no se pudo consultar el registro")
		return
	}
	httpx.JSON(w, http.StatusOK, taxpayer)
}
