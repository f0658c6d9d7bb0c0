// Package jobs runs background work over Redis via asynq. The only task
// today is transactional email delivery, which keeps slow SMTP
// round-trips off the HTTP request path.
package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/meridian-shop/meridian/internal/mailer"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
)

// NewSendEmailTask constructs an asynq task from a message.
func NewSendEmailTask(msg mailer.Message) (*asynq.Task, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// MailJob delivers queued messages with a real mailer.
type MailJob struct {
	mailer mailer.Mailer
	logger *slog.Logger
}

// NewMailJob constructs a MailJob.
func NewMailJob(m mailer.Mailer, logger *slog.Logger) *MailJob {
	return &MailJob{mailer: m, logger: logger}
}

// Handle processes TaskTypeSendEmail tasks. Transport errors are
// returned so asynq retries with backoff; a payload that cannot be
// decoded is dropped instead of retried forever.
func (j *MailJob) Handle(ctx context.Context, t *asynq.Task) error {
	var msg mailer.Message
	if err := json.Unmarshal(t.Payload(), &msg); err != nil {
		j.logger.Error("mail task payload undecodable", slog.Any("error", err))
		return asynq.SkipRetry
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := j.mailer.Send(ctx, msg); err != nil {
		j.logger.Warn("mail send failed, will retry",
			slog.String("to", msg.To),
			slog.Any("error", err))
		return err
	}
	return nil
}
