package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/panafact/panafact/internal/ai"
	"github.com/panafact/panafact/internal/checkout"
	"github.com/panafact/panafact/internal/directory"
	"github.com/panafact/panafact/internal/document"
	"github.com/panafact/panafact/internal/report"
	"github.com/panafact/panafact/internal/ruc"
	"github.com/panafact/panafact/internal/tax"
	"github.com/panafact/panafact/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	Auth users.AuthMiddleware

	DocumentHandler  *document.Handler
	DirectoryHandler *directory.Handler
	ReportHandler    *report.Handler
	TaxHandler       *tax.Handler
	UsersHandler     *users.Handler
	AIHandler        *ai.Handler
	RUCHandler       *ruc.Handler
	CheckoutHandler  *checkout.Handler
}

// NewRouter constructs the chi.Router for the API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(params.Auth.Require)

		r.Route("/documents", params.DocumentHandler.MountRoutes)
		r.Route("/clients", params.DirectoryHandler.MountRoutes)
		r.Route("/reports", func(r chi.Router) {
			params.ReportHandler.MountRoutes(r)
			r.Route("/tax", params.TaxHandler.MountRoutes)
		})
		r.Route("/profile", params.UsersHandler.MountRoutes)
		if params.AIHandler != nil {
			r.Route("/ai", params.AIHandler.MountRoutes)
		}
		if params.RUCHandler != nil {
			r.Route("/ruc", params.RUCHandler.MountRoutes)
		}
		if params.CheckoutHandler != nil {
			r.Route("/checkout", params.CheckoutHandler.MountRoutes)
		}
	})

	return r
}
