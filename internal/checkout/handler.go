package checkout

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/panafact/panafact/internal/platform/httpx"
	"github.com/panafact/panafact/internal/users"
)

// Handler manages checkout endpoints.
type Handler struct {
	logger   *slog.Logger
	client   *Client
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, client *Client) *Handler {
	return &Handler{logger: logger, client: client, validate: validator.New()}
}

// MountRoutes registers checkout routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/session", h.createSession)
}

type createSessionRequest struct {
	Plan string `json:"plan" validate:"required,oneof=MENSUAL ANUAL"`
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	user := users.FromContext(r.Context())

	var req createSessionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	session, err := h.client.CreateSession(r.Context(), req.Plan, user.Email, user.ID)
	if err != nil {
		h.logger.Error("create checkout session",
			slog.Int64("user_id", user.ID), slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Upstream Error",
			"no se pudo iniciar el pago")
		return
	}
	httpx.JSON(w, http.StatusCreated, session)
}
