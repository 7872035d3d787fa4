// Package compaction schedules background compaction runs on a cron
// expression.
package compaction

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"relaylog/pkg/logger"
	"relaylog/pkg/store"
	"relaylog/pkg/telemetry"
)

// DefaultCron runs compaction daily at 02:00.
const DefaultCron = "0 2 * * *"

// Scheduler drives periodic compaction.
type Scheduler struct {
	compactor *store.Compactor
	cron      string
}

// New validates the cron expression and builds a scheduler. An empty
// expression falls back to DefaultCron.
func New(compactor *store.Compactor, cronExpr string) (*Scheduler, error) {
	if cronExpr == "" {
		cronExpr = DefaultCron
	}
	if !gronx.IsValid(cronExpr) {
		return nil, fmt.Errorf("invalid compaction cron expression: %s", cronExpr)
	}
	return &Scheduler{compactor: compactor, cron: cronExpr}, nil
}

// Start launches the scheduler goroutine. Returns a cancel func that stops
// it.
func (s *Scheduler) Start(ctx context.Context) context.CancelFunc {
	ctx2, cancel := context.WithCancel(ctx)
	logger.Info("compaction_scheduler_started", "cron", s.cron)
	go s.run(ctx2)
	return cancel
}

func (s *Scheduler) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("compaction_scheduler_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(s.cron, now, false)
		if err != nil {
			logger.Error("compaction_nexttick_failed", "cron", s.cron, "error", err)
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				logger.Info("compaction_scheduler_stopping")
				return
			}
			continue
		}

		select {
		case <-time.After(time.Until(next)):
			s.RunOnce()
		case <-ctx.Done():
			logger.Info("compaction_scheduler_stopping")
			return
		}
	}
}

// RunOnce triggers a single compaction pass with configured bounds.
func (s *Scheduler) RunOnce() {
	relocated, err := s.compactor.Compact(0, 0)
	telemetry.RecordCompaction(relocated, err)
	if err != nil {
		logger.Error("compaction_run_error", "relocated", relocated, "error", err)
		return
	}
	if relocated > 0 {
		logger.Info("compaction_run_complete", "relocated", relocated)
	}
}
