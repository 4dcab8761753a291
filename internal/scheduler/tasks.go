package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/edgard/vkbot/internal/tokenstore"
)

// TaskFunc is the signature of every scheduled task.
type TaskFunc func(ctx context.Context) error

// Task names as used in the scheduler.tasks configuration section.
const (
	TaskTokenStoreMaintenance = "token_store_maintenance"
	TaskTokenStoreReport      = "token_store_report"
)

const taskTimeout = 5 * time.Minute

// TaskDeps contains the dependencies of scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Store  tokenstore.Store
}

// RegisterAllTasks returns every known task keyed by configuration name.
func RegisterAllTasks(deps TaskDeps) map[string]TaskFunc {
	return map[string]TaskFunc{
		TaskTokenStoreMaintenance: newMaintenanceTask(deps),
		TaskTokenStoreReport:      newReportTask(deps),
	}
}

func newMaintenanceTask(deps TaskDeps) TaskFunc {
	log := deps.Logger.With("task", TaskTokenStoreMaintenance)

	return func(ctx context.Context) error {
		m, ok := deps.Store.(tokenstore.Maintainer)
		if !ok {
			log.DebugContext(ctx, "Token store has no maintenance routine")
			return nil
		}

		ctx, cancel := context.WithTimeout(ctx, taskTimeout)
		defer cancel()

		if err := m.Maintain(ctx); err != nil {
			return fmt.Errorf("token store maintenance failed: %w", err)
		}
		return nil
	}
}

func newReportTask(deps TaskDeps) TaskFunc {
	log := deps.Logger.With("task", TaskTokenStoreReport)

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, taskTimeout)
		defer cancel()

		tokens, err := deps.Store.All(ctx)
		if err != nil {
			return fmt.Errorf("failed to list tokens: %w", err)
		}
		log.InfoContext(ctx, "Token store report", "tokens", len(tokens))
		return nil
	}
}
