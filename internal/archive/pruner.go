// Package archive trims old entries from the import queue, on demand or on a
// cron schedule.
package archive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/evcraddock/homefront/internal/importqueue"
)

// Queue is what the pruner trims. importqueue.Service satisfies it.
type Queue interface {
	Prune(ctx context.Context, retention time.Duration, includePending bool) (int, error)
}

// Pruner removes queue entries older than a retention window.
type Pruner struct {
	queue          Queue
	retention      time.Duration
	includePending bool
	cron           *cron.Cron
	running        bool
}

// NewPruner creates a pruner. Pending entries survive unless includePending
// is set.
func NewPruner(q Queue, retention time.Duration, includePending bool) *Pruner {
	return &Pruner{
		queue:          q,
		retention:      retention,
		includePending: includePending,
		cron:           cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
}

// RunOnce prunes the queue now. An unconfigured queue is skipped, not an
// error.
func (p *Pruner) RunOnce(ctx context.Context) (int, error) {
	n, err := p.queue.Prune(ctx, p.retention, p.includePending)
	if errors.Is(err, importqueue.ErrNotConfigured) {
		slog.Info("import queue not configured; nothing to prune")
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("pruning imports: %w", err)
	}

	slog.Info("pruned import queue", "removed", n, "retention", p.retention.String(), "include_pending", p.includePending)
	return n, nil
}

// Start runs RunOnce on the given cron spec (standard five fields or a
// descriptor such as @daily) until Stop.
func (p *Pruner) Start(spec string) error {
	_, err := p.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if _, err := p.RunOnce(ctx); err != nil {
			slog.Error("scheduled prune failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("parsing prune schedule %q: %w", spec, err)
	}

	p.cron.Start()
	p.running = true
	slog.Info("prune scheduler started", "schedule", spec)
	return nil
}

// Stop halts the schedule and waits for a running prune to finish.
func (p *Pruner) Stop() {
	if !p.running {
		return
	}
	<-p.cron.Stop().Done()
	p.running = false
	slog.Info("prune scheduler stopped")
}
