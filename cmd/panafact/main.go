package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/panafact/panafact/internal/ai"
	"github.com/panafact/panafact/internal/app"
	"github.com/panafact/panafact/internal/checkout"
	"github.com/panafact/panafact/internal/directory"
	"github.com/panafact/panafact/internal/document"
	"github.com/panafact/panafact/internal/platform/cache"
	"github.com/panafact/panafact/internal/platform/db"
	"github.com/panafact/panafact/internal/report"
	"github.com/panafact/panafact/internal/ruc"
	"github.com/panafact/panafact/internal/tax"
	"github.com/panafact/panafact/internal/users"
	"github.com/panafact/panafact/jobs"
	pdf "github.com/panafact/panafact/report"

	"github.com/hibiken/asynq"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	matcher := directory.FoldingMatcher{}

	reportCache := report.NewCache(redisClient, cfg.ReportCacheTTL)

	docRepo := document.NewRepository(pool)
	docService := document.NewService(docRepo, reportCache)

	reportService := report.NewService(docService, reportCache, matcher)
	reportHandler := report.NewHandler(logger, reportService)

	taxService := tax.NewService(docService)
	taxHandler := tax.NewHandler(logger, taxService)

	dirRepo := directory.NewRepository(pool)
	dirService := directory.NewService(docService, dirRepo, matcher)
	dirHandler := directory.NewHandler(logger, dirService)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService)
	authMiddleware := users.AuthMiddleware{Service: usersService, Logger: logger}

	pdfClient := pdf.NewClient(cfg.GotenbergURL)
	renderer := pdf.NewRenderer(pdfClient)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	docHandler := document.NewHandler(logger, docService, renderer, jobClient)

	parser := ai.NewOpenAIParser(cfg.OpenAIAPIKey, cfg.OpenAIModel, logger)
	aiHandler := ai.NewHandler(logger, parser)

	rucClient := ruc.NewClient(cfg.RUCLookupURL)
	rucHandler := ruc.NewHandler(logger, rucClient)

	checkoutClient := checkout.NewClient(cfg.CheckoutURL, cfg.CheckoutAPIKey)
	checkoutHandler := checkout.NewHandler(logger, checkoutClient)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Auth:             authMiddleware,
		DocumentHandler:  docHandler,
		DirectoryHandler: dirHandler,
		ReportHandler:    reportHandler,
		TaxHandler:       taxHandler,
		UsersHandler:     usersHandler,
		AIHandler:        aiHandler,
		RUCHandler:       rucHandler,
		CheckoutHandler:  checkoutHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", slog.Any("error", err))
	}
}
