package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"treblle-hq/relay/pkg/config"
	"treblle-hq/relay/pkg/telemetry/logging"
)

// Scheduler prunes old audit rows on a cron schedule.
type Scheduler struct {
	store  *Store
	cfg    *config.AuditConfig
	cron   *cron.Cron
	logger *logging.Logger

	mu      sync.Mutex
	running bool
}

// NewScheduler creates a retention scheduler for the given store.
func NewScheduler(store *Store, cfg *config.AuditConfig, logger *logging.Logger) *Scheduler {
	return &Scheduler{
		store:  store,
		cfg:    cfg,
		cron:   cron.New(),
		logger: logger,
	}
}

// Start begins scheduled pruning. An empty PruneSchedule or zero
// RetentionDays disables the scheduler and Start returns nil.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg.PruneSchedule == "" || s.cfg.RetentionDays <= 0 {
		s.logger.Debug("audit retention disabled")
		return nil
	}

	if _, err := cron.ParseStandard(s.cfg.PruneSchedule); err != nil {
		return fmt.Errorf("audit: invalid prune schedule %q: %w", s.cfg.PruneSchedule, err)
	}

	if _, err := s.cron.AddFunc(s.cfg.PruneSchedule, func() {
		s.runPrune(ctx)
	}); err != nil {
		return fmt.Errorf("audit: schedule pruning: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("audit retention scheduler started",
		"schedule", s.cfg.PruneSchedule,
		"retention_days", s.cfg.RetentionDays,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop halts scheduled pruning. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.cron.Stop()
	s.running = false
	s.logger.Debug("audit retention scheduler stopped")
}

func (s *Scheduler) runPrune(ctx context.Context) {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.cfg.RetentionDays)

	deleted, err := s.store.PruneBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("audit pruning failed", "error", err)
		return
	}
	if deleted > 0 {
		s.logger.Info("audit rows pruned", "deleted", deleted, "cutoff", cutoff)
	}
}
