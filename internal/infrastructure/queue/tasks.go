package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"aksara-bali-backend/internal/config"

	"github.com/hibiken/asynq"
)

const (
	// TypeModelReconcile diff File Store với tên entry trong DB
	TypeModelReconcile = "model:reconcile"

	QueueMaintenance = "maintenance"
)

// ReconcilePayload - payload của task model:reconcile
type ReconcilePayload struct {
	Prune  bool   `json:"prune"`
	Reason string `json:"reason,omitempty"`
}

func NewReconcileTask(p ReconcilePayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal reconcile payload: %w", err)
	}
	return asynq.NewTask(TypeModelReconcile, payload), nil
}

func reconcileOptions() []asynq.Option {
	return []asynq.Option{
		asynq.Queue(QueueMaintenance),
		asynq.MaxRetry(2),
		asynq.Timeout(10 * time.Minute),
	}
}

// RedisOpt build asynq connection từ config
func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Host,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}
