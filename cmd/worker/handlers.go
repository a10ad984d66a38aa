package main

import (
	"github.com/hibiken/asynq"

	aksaraJob "aksara-bali-backend/internal/domains/aksara/job"
	"aksara-bali-backend/internal/infrastructure/queue"
	"aksara-bali-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	reconcile *aksaraJob.ReconcileHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		reconcile: aksaraJob.NewReconcileHandler(c.AksaraService),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	// Maintenance tasks
	mux.HandleFunc(queue.TypeModelReconcile, h.reconcile.ProcessTask)
}
