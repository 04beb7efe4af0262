package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/panafact/panafact/internal/document"
	"github.com/panafact/panafact/internal/mail"
)

// DocumentEmailJob renders a document to PDF and delivers it by email. A
// successful delivery moves the document to Enviada when its current status
// allows the transition.
type DocumentEmailJob struct {
	Docs     *document.Service
	Renderer document.DocumentRenderer
	Sender   mail.Sender
	Logger   *slog.Logger
}

// NewDocumentEmailJob wires dependencies for the delivery handler.
func NewDocumentEmailJob(docs *document.Service, renderer document.DocumentRenderer, sender mail.Sender, logger *slog.Logger) *DocumentEmailJob {
	return &DocumentEmailJob{Docs: docs, Renderer: renderer, Sender: sender, Logger: logger}
}

// Handle processes TaskTypeDocumentEmail tasks.
func (j *DocumentEmailJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Docs == nil || j.Sender == nil {
		return errors.New("document email: handler not configured")
	}
	var payload DocumentEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	logger := j.logger().With(
		slog.Int64("user_id", payload.UserID),
		slog.String("document_id", payload.DocumentID))

	doc, err := j.Docs.Get(ctx, payload.UserID, payload.DocumentID)
	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			logger.Warn("document vanished before delivery")
			return asynq.SkipRetry
		}
		return err
	}

	msg := mail.Message{
		To:       payload.Recipient,
		Subject:  subjectFor(*doc),
		HTMLBody: bodyFor(*doc, payload.Message),
	}
	if j.Renderer != nil {
		pdf, err := j.Renderer.RenderDocument(ctx, *doc)
		if err != nil {
			return fmt.Errorf("render document pdf: %w", err)
		}
		msg.Attachments = append(msg.Attachments, mail.Attachment{
			Filename:    doc.ID + ".pdf",
			ContentType: "application/pdf",
			Data:        pdf,
		})
	}
	if err := j.Sender.Send(ctx, msg); err != nil {
		return err
	}
	logger.Info("document delivered", slog.String("recipient", payload.Recipient))

	if _, err := j.Docs.Transition(ctx, payload.UserID, doc.ID, document.StatusEnviada); err != nil {
		// Already sent, paid, etc. Delivery succeeded either way.
		if !errors.Is(err, document.ErrInvalidTransition) {
			logger.Warn("mark document sent", slog.Any("error", err))
		}
	}
	return nil
}

func subjectFor(doc document.Document) string {
	switch doc.Type {
	case document.TypeQuote:
		return fmt.Sprintf("Cotización de %s", doc.ClientName)
	default:
		return fmt.Sprintf("Factura %s", doc.ID)
	}
}

func bodyFor(doc document.Document, message string) string {
	if message == "" {
		message = "Adjuntamos el documento solicitado."
	}
	return fmt.Sprintf("<html><body><p>%s</p><p>Total: B/. %.2f</p></body></html>",
		html.EscapeString(message), doc.Total)
}

func (j *DocumentEmailJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTypeDocumentEmail))
	}
	return slog.Default().With(slog.String("job", TaskTypeDocumentEmail))
}
