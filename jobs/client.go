package jobs

import (
	"context"

	"github.com/hibiken/asynq"

	"github.com/meridian-shop/meridian/internal/mailer"
)

// Client submits jobs to the queue. It satisfies the account core's
// Dispatcher, so services enqueue and return without waiting on SMTP.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// Dispatch enqueues a send-email task.
func (c *Client) Dispatch(ctx context.Context, msg mailer.Message) error {
	task, err := NewSendEmailTask(msg)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault), asynq.MaxRetry(5))
	return err
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
