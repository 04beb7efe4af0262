package document

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/panafact/panafact/internal/platform/httpx"
	"github.com/panafact/panafact/internal/users"
)

// EmailEnqueuer queues the send-document-email background task.
type EmailEnqueuer interface {
	EnqueueDocumentEmail(userID int64, docID, recipient, message string) error
}

// Handler manages document endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	renderer  DocumentRenderer
	enqueuer  EmailEnqueuer
	validator *validator.Validate
}

// DocumentRenderer renders a document to PDF bytes.
type DocumentRenderer interface {
	RenderDocument(ctx context.Context, doc Document) ([]byte, error)
}

// NewHandler builds Handler instance. renderer and enqueuer may be nil when
// PDF/email delivery is disabled.
func NewHandler(logger *slog.Logger, service *Service, renderer DocumentRenderer, enqueuer EmailEnqueuer) *Handler {
	return &Handler{logger: logger, service: service, renderer: renderer, enqueuer: enqueuer, validator: validator.New()}
}

// MountRoutes registers document routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/transition", h.transition)
	r.Post("/{id}/payment", h.payment)
	r.Post("/{id}/events", h.event)
	r.Get("/{id}/pdf", h.pdf)
	r.Post("/{id}/email", h.email)
}

type lineItemDTO struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity" validate:"gte=0"`
	Price       float64 `json:"price" validate:"gte=0"`
	TaxPercent  float64 `json:"tax_percent" validate:"gte=0"`
}

type createDocumentRequest struct {
	ClientID           *int64        `json:"client_id"`
	ClientName         string        `json:"client_name"`
	ClientTaxID        string        `json:"client_tax_id"`
	Type               string        `json:"type" validate:"required,oneof=INVOICE QUOTE EXPENSE"`
	Date               time.Time     `json:"date"`
	Items              []lineItemDTO `json:"items" validate:"dive"`
	Status             string        `json:"status" validate:"omitempty,oneof=Borrador Creada"`
	SuccessProbability *int          `json:"success_probability" validate:"omitempty,gte=0,lte=100"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	user := users.FromContext(r.Context())
	var req createDocumentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	items := make([]LineItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, LineItem(it))
	}

	doc, err := h.service.Create(r.Context(), CreateInput{
		UserID:             user.ID,
		ClientID:           req.ClientID,
		ClientName:         req.ClientName,
		ClientTaxID:        req.ClientTaxID,
		Type:               Type(req.Type),
		Date:               req.Date,
		Items:              items,
		Status:             Status(req.Status),
		SuccessProbability: req.SuccessProbability,
	})
	if err != nil {
		h.respondError(w, "create document", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, doc)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	user := users.FromContext(r.Context())
	filter := ListFilter{
		Type:   Type(r.URL.Query().Get("type")),
		Status: Status(r.URL.Query().Get("status")),
	}
	if v := r.URL.Query().Get("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.From = t
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.To = t
		}
	}
	docs, err := h.service.List(r.Context(), user.ID, filter)
	if err != nil {
		h.respondError(w, "list documents", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	user := users.FromContext(r.Context())
	doc, err := h.service.Get(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "get document", err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

type updateDocumentRequest struct {
	ClientID           *int64         `json:"client_id"`
	ClientName         *string        `json:"client_name"`
	ClientTaxID        *string        `json:"client_tax_id"`
	Date               *time.Time     `json:"date"`
	Items              *[]lineItemDTO `json:"items" validate:"omitempty,dive"`
	SuccessProbability *int           `json:"success_probability" validate:"omitempty,gte=0,lte=100"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	user := users.FromContext(r.Context())
	var req updateDocumentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	input := UpdateInput{
		ClientID:           req.ClientID,
		ClientName:         req.ClientName,
		ClientTaxID:        req.ClientTaxID,
		Date:               req.Date,
		SuccessProbability: req.SuccessProbability,
	}
	if req.Items != nil {
		items := make([]LineItem, 0, len(*req.Items))
		for _, it := range *req.Items {
			items = append(items, LineItem(it))
		}
		input.Items = &items
	}

	doc, err := h.service.Update(r.Context(), user.ID, chi.URLParam(r, "id"), input)
	if err != nil {
		h.respondError(w, "update document", err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	user := users.FromContext(r.Context())
	if err := h.service.Delete(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		h.respondError(w, "delete document", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type transitionRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request) {
	user := users.FromContext(r.Context())
	var req transitionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	doc, err := h.service.Transition(r.Context(), user.ID, chi.URLParam(r, "id"), Status(req.Status))
	if err != nil {
		h.respondError(w, "transition document", err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

type paymentRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

func (h *Handler) payment(w http.ResponseWriter, r *http.Request) {
	user := users.FromContext(r.Context())
	var req paymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	doc, err := h.service.RecordPayment(r.Context(), user.ID, chi.URLParam(r, "id"), req.Amount)
	if err != nil {
		h.respondError(w, "record payment", err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

type eventRequest struct {
	Kind string `json:"kind" validate:"required,oneof=OPENED FOLLOW_UP"`
}

func (h *Handler) event(w http.ResponseWriter, r *http.Request) {
	user := users.FromContext(r.Context())
	var req eventRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	doc, err := h.service.RecordEvent(r.Context(), user.ID, chi.URLParam(r, "id"), EventKind(req.Kind))
	if err != nil {
		h.respondError(w, "record event", err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) pdf(w http.ResponseWriter, r *http.Request) {
	if h.renderer == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Service Unavailable", "PDF rendering not configured")
		return
	}
	user := users.FromContext(r.Context())
	doc, err := h.service.Get(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "get document for pdf", err)
		return
	}
	data, err := h.renderer.RenderDocument(r.Context(), *doc)
	if err != nil {
		h.logger.Error("render document pdf", slog.Any("error", err), slog.String("id", doc.ID))
		httpx.Problem(w, http.StatusBadGateway, "Render Failed", "PDF service unavailable")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename="+doc.ID+".pdf")
	_, _ = w.Write(data)
}

type emailRequest struct {
	Recipient string `json:"recipient" validate:"required,email"`
	Message   string `json:"message"`
}

func (h *Handler) email(w http.ResponseWriter, r *http.Request) {
	if h.enqueuer == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Service Unavailable", "email delivery not configured")
		return
	}
	user := users.FromContext(r.Context())
	var req emailRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	id := chi.URLParam(r, "id")
	if _, err := h.service.Get(r.Context(), user.ID, id); err != nil {
		h.respondError(w, "get document for email", err)
		return
	}
	if err := h.enqueuer.EnqueueDocumentEmail(user.ID, id, req.Recipient, req.Message); err != nil {
		h.logger.Error("enqueue document email", slog.Any("error", err), slog.String("id", id))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "document not found")
	case errors.Is(err, ErrInvalidInput):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrInvalidTransition):
		httpx.Problem(w, http.StatusConflict, "Invalid Transition", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
