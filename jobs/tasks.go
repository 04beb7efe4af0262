package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeDocumentEmail delivers a document to a recipient by email.
	TaskTypeDocumentEmail = "document:email"
	// TaskTypeReportWarmup precomputes report summaries ahead of dashboard
	// loads.
	TaskTypeReportWarmup = "report:warmup"
)

// DocumentEmailPayload identifies the document to deliver and where.
type DocumentEmailPayload struct {
	UserID     int64  `json:"user_id"`
	DocumentID string `json:"document_id"`
	Recipient  string `json:"recipient"`
	Message    string `json:"message"`
}

// NewDocumentEmailTask constructs an Asynq task.
func NewDocumentEmailTask(payload DocumentEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeDocumentEmail, data), nil
}

// ReportWarmupPayload scopes a warmup run. UserID 0 warms every user.
type ReportWarmupPayload struct {
	UserID int64 `json:"user_id"`
}

// NewReportWarmupTask constructs an Asynq task.
func NewReportWarmupTask(payload ReportWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeReportWarmup, data), nil
}
