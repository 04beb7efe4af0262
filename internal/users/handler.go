package users

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/panafact/panafact/internal/platform/httpx"
)

// Handler manages profile endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers profile routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.profile)
	r.Put("/", h.update)
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	user := FromContext(r.Context())
	profile, err := h.service.Profile(r.Context(), user.ID)
	if err != nil {
		h.respondError(w, "get profile", err)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

type updateProfileRequest struct {
	Name       *string `json:"name"`
	TaxID      *string `json:"tax_id"`
	EntityType *string `json:"entity_type" validate:"omitempty,oneof=NATURAL JURIDICA"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	user := FromContext(r.Context())
	var req updateProfileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input := UpdateProfileInput{Name: req.Name, TaxID: req.TaxID}
	if req.EntityType != nil {
		entity := EntityType(*req.EntityType)
		input.EntityType = &entity
	}
	profile, err := h.service.UpdateProfile(r.Context(), user.ID, input)
	if err != nil {
		h.respondError(w, "update profile", err)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, ErrNotFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "user not found")
		return
	}
	h.logger.Error(op, slog.Any("error", err))
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
}
