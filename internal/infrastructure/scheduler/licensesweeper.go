package scheduler

import (
	"context"
	"sync"
	"time"

	licenseUsecases "keygate/internal/application/license/usecases"
	"keygate/internal/shared/logger"
)

// LicenseSweeper periodically purges licenses whose expiry fell out of the
// retention window. Validation denies expired keys on its own; the sweep
// only keeps the table from growing without bound.
type LicenseSweeper struct {
	purgeUC  *licenseUsecases.PurgeExpiredLicensesUseCase
	logger   logger.Interface
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	interval time.Duration
}

// NewLicenseSweeper creates a new LicenseSweeper
func NewLicenseSweeper(
	purgeUC *licenseUsecases.PurgeExpiredLicensesUseCase,
	interval time.Duration,
	logger logger.Interface,
) *LicenseSweeper {
	return &LicenseSweeper{
		purgeUC:  purgeUC,
		logger:   logger,
		stopChan: make(chan struct{}),
		interval: interval,
	}
}

// Start starts the sweeper
func (s *LicenseSweeper) Start(ctx context.Context) {
	s.logger.Infow("starting license sweeper", "interval", s.interval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runLoop(ctx)
	}()
}

// Stop stops the sweeper gracefully
func (s *LicenseSweeper) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Infow("stopping license sweeper")
		close(s.stopChan)
		s.wg.Wait()
		s.logger.Infow("license sweeper stopped")
	})
}

func (s *LicenseSweeper) runLoop(ctx context.Context) {
	// Run immediately on startup to clear any backlog
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Infow("license sweeper stopped due to context cancellation")
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *LicenseSweeper) sweep(ctx context.Context) {
	startTime := time.Now()

	purged, err := s.purgeUC.Execute(ctx)
	if err != nil {
		s.logger.Errorw("license sweep failed",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	s.logger.Debugw("license sweep completed",
		"purged", purged,
		"duration", time.Since(startTime),
	)
}
