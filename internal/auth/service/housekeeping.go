package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/surveybasket/internal/auth/store"
)

// HousekeepingService periodically purges action codes that have expired or
// been used. Refresh tokens are history and are kept.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	// Retention keeps used or expired codes this long before deleting them.
	Retention time.Duration

	Now func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. A non-positive
// interval defaults to 1 hour.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:     store,
		Logger:    logger,
		Interval:  interval,
		Retention: 24 * time.Hour,
		Now:       time.Now,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start runs cleanup now and then on every tick until Stop.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup performs one purge pass and returns the number of deleted codes.
func (s *HousekeepingService) Cleanup(ctx context.Context) int64 {
	cutoff := s.Now().UTC().Add(-s.Retention)

	n, err := s.Store.ActionCodes().DeleteStaleActionCodes(ctx, cutoff)
	if err != nil {
		s.Logger.Error("failed to delete stale action codes", "error", err)
		return 0
	}
	s.Logger.Info("housekeeping cleanup completed", "deleted_action_codes", n)
	return n
}
