package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"aksara-bali-backend/internal/domains/aksara/model"
	"aksara-bali-backend/internal/infrastructure/queue"
)

// Reconciler - phần service mà worker cần
type Reconciler interface {
	Reconcile(ctx context.Context, prune bool) (*model.ReconcileReport, error)
}

// ReconcileHandler xử lý task model:reconcile (cron hoặc do API enqueue)
type ReconcileHandler struct {
	reconciler Reconciler
}

func NewReconcileHandler(reconciler Reconciler) *ReconcileHandler {
	return &ReconcileHandler{reconciler: reconciler}
}

// ProcessTask diff File Store với DB, prune nếu payload yêu cầu
func (h *ReconcileHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload queue.ReconcilePayload
	if len(task.Payload()) > 0 {
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			log.Error().Err(err).Msg("Failed to unmarshal reconcile payload")
			// payload hỏng thì retry cũng vô ích
			return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
		}
	}

	log.Info().
		Bool("prune", payload.Prune).
		Str("reason", payload.Reason).
		Msg("Reconciling model files")

	report, err := h.reconciler.Reconcile(ctx, payload.Prune)
	if err != nil {
		log.Error().Err(err).Msg("Model reconciliation failed")
		return fmt.Errorf("reconcile: %w", err)
	}

	event := log.Info()
	if len(report.OrphanFiles) > 0 && !report.Pruned {
		event = log.Warn()
	}
	event.
		Int("store_files", report.StoreFiles).
		Int("entries", report.Entries).
		Int("entries_without_model", report.EntriesWithoutModel).
		Strs("orphan_files", report.OrphanFiles).
		Bool("pruned", report.Pruned).
		Msg("Model reconciliation completed")

	for _, se := range report.PruneResults {
		if se.Failed() {
			return fmt.Errorf("prune %s: %s", se.Key, se.Error)
		}
	}
	return nil
}
