package jobs

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-shop/meridian/internal/mailer"
)

type fakeMailer struct {
	sent []mailer.Message
	err  error
}

func (f *fakeMailer) Send(ctx context.Context, msg mailer.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func TestSendEmailTaskRoundTrip(t *testing.T) {
	msg := mailer.Message{To: "a@b.com", Subject: "Hello", Text: "hi", HTML: "<p>hi</p>"}
	task, err := NewSendEmailTask(msg)
	require.NoError(t, err)
	require.Equal(t, TaskTypeSendEmail, task.Type())

	fm := &fakeMailer{}
	job := NewMailJob(fm, slog.Default())

	require.NoError(t, job.Handle(context.Background(), task))
	require.Len(t, fm.sent, 1)
	assert.Equal(t, msg, fm.sent[0])
}

func TestMailJobReturnsTransportErrorForRetry(t *testing.T) {
	task, err := NewSendEmailTask(mailer.Message{To: "a@b.com"})
	require.NoError(t, err)

	transportErr := errors.New("connection refused")
	job := NewMailJob(&fakeMailer{err: transportErr}, slog.Default())

	err = job.Handle(context.Background(), task)
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestMailJobDropsUndecodablePayload(t *testing.T) {
	task := asynq.NewTask(TaskTypeSendEmail, []byte("{not json"))
	fm := &fakeMailer{}
	job := NewMailJob(fm, slog.Default())

	err := job.Handle(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, fm.sent)
}
