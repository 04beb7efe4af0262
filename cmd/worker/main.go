package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/panafact/panafact/internal/app"
	"github.com/panafact/panafact/internal/directory"
	"github.com/panafact/panafact/internal/document"
	"github.com/panafact/panafact/internal/mail"
	"github.com/panafact/panafact/internal/platform/cache"
	"github.com/panafact/panafact/internal/platform/db"
	"github.com/panafact/panafact/internal/report"
	"github.com/panafact/panafact/jobs"
	pdf "github.com/panafact/panafact/report"
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
		logger.Error("connect database", slog.Any("error", err))
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

	pdfClient := pdf.NewClient(cfg.GotenbergURL)
	renderer := pdf.NewRenderer(pdfClient)
	sender := mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)

	emailJob := jobs.NewDocumentEmailJob(docService, renderer, sender, logger)
	warmupJob := jobs.NewReportWarmupJob(reportService, pool, logger)

	warmupTask, err := jobs.NewReportWarmupTask(jobs.ReportWarmupPayload{})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeDocumentEmail, Handler: emailJob.Handle},
			{Type: jobs.TaskTypeReportWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 3 * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
