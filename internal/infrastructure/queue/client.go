package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

// uniqueWindow gộp các reconcile được yêu cầu liên tiếp thành một task
const uniqueWindow = 5 * time.Minute

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// Client enqueue task từ API process
type Client struct {
	client enqueuer
}

func NewClient(opt asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(opt)}
}

// EnqueueReconcile xếp một reconcile không prune. API chỉ báo cáo,
// việc xoá file mồ côi thuộc về lịch cron của worker.
func (c *Client) EnqueueReconcile(ctx context.Context, reason string) error {
	task, err := NewReconcileTask(ReconcilePayload{Reason: reason})
	if err != nil {
		return err
	}

	opts := append(reconcileOptions(), asynq.Unique(uniqueWindow))
	info, err := c.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		if errors.Is(err, asynq.ErrDuplicateTask) {
			return nil
		}
		return fmt.Errorf("enqueue %s: %w", TypeModelReconcile, err)
	}

	log.Info().
		Str("task_id", info.ID).
		Str("queue", info.Queue).
		Str("reason", reason).
		Msg("Reconcile task enqueued")
	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
