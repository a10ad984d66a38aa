package queue

import (
	"time"

	"aksara-bali-backend/internal/config"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
	reconcile config.ReconcileConfig
}

func NewScheduler(opt asynq.RedisClientOpt, reconcile config.ReconcileConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		opt,
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		reconcile: reconcile,
	}
}

// ================================================
// JOB: Reconcile model files (default daily at 3 AM)
// ================================================
func (s *Scheduler) RegisterReconcileJob() error {
	task, err := NewReconcileTask(ReconcilePayload{
		Prune:  s.reconcile.Prune,
		Reason: "scheduled",
	})
	if err != nil {
		return err
	}

	entryID, err := s.scheduler.Register(s.reconcile.Cron, task, reconcileOptions()...)
	if err != nil {
		log.Error().Err(err).Str("cron", s.reconcile.Cron).Msg("Failed to register reconcile job")
		return err
	}

	log.Info().
		Str("entry_id", entryID).
		Str("cron", s.reconcile.Cron).
		Bool("prune", s.reconcile.Prune).
		Msg("✓ Registered model reconcile job")
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Start()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
