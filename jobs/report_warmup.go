package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/panafact/panafact/internal/report"
)

// ReportWarmupJob pre-populates report caches so dashboards load from Redis.
type ReportWarmupJob struct {
	Reports *report.Service
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
}

// NewReportWarmupJob wires dependencies for the warmup handler.
func NewReportWarmupJob(reports *report.Service, pool *pgxpool.Pool, logger *slog.Logger) *ReportWarmupJob {
	return &ReportWarmupJob{Reports: reports, Pool: pool, Logger: logger}
}

// Handle processes TaskTypeReportWarmup tasks.
func (j *ReportWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("report warmup: handler not configured")
	}
	var payload ReportWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	logger := j.logger()
	started := time.Now()

	userIDs := []int64{payload.UserID}
	if payload.UserID == 0 {
		ids, err := j.fetchUserIDs(ctx)
		if err != nil {
			logger.Error("load warmup users", slog.Any("error", err))
			return err
		}
		userIDs = ids
	}
	if len(userIDs) == 0 {
		logger.Info("no users discovered for warmup")
		return nil
	}

	for _, userID := range userIDs {
		// Bound each user so a slow dataset cannot stall the whole run.
		userCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
		err := j.Reports.Warmup(userCtx, userID)
		cancel()
		if err != nil {
			logger.Error("warm user reports", slog.Int64("user_id", userID), slog.Any("error", err))
			return err
		}
	}

	logger.Info("completed report warmup",
		slog.Int("users", len(userIDs)),
		slog.Duration("duration", time.Since(started)))
	return nil
}

func (j *ReportWarmupJob) fetchUserIDs(ctx context.Context) ([]int64, error) {
	if j.Pool == nil {
		return nil, errors.New("report warmup: pool not configured")
	}
	rows, err := j.Pool.Query(ctx, `SELECT id FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (j *ReportWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTypeReportWarmup))
	}
	return slog.Default().With(slog.String("job", TaskTypeReportWarmup))
}
