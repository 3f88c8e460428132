package service

import (
	"context"
	"time"

	"melodybot/internal/repository/kv"
	"melodybot/internal/storage"

	"go.uber.org/zap"
)

// JanitorService removes sessions that were abandoned mid-game
type JanitorService struct {
	store  storage.Store
	maxAge time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// NewJanitorService creates a new janitor service. A zero maxAge disables
// cleanup.
func NewJanitorService(store storage.Store, maxAge time.Duration, logger *zap.Logger) *JanitorService {
	return &JanitorService{
		store:  store,
		maxAge: maxAge,
		now:    time.Now,
		logger: logger,
	}
}

// CleanupStaleSessions removes sessions not written for longer than maxAge
func (s *JanitorService) CleanupStaleSessions(ctx context.Context) (int64, error) {
	if s.maxAge <= 0 {
		return 0, nil
	}

	sweeper, ok := s.store.(storage.Sweeper)
	if !ok {
		s.logger.Info("Store cannot sweep stale keys, skipping session cleanup")
		return 0, nil
	}

	s.logger.Info("Starting cleanup of stale sessions", zap.Duration("max_age", s.maxAge))

	removed, err := sweeper.Sweep(ctx, []byte(kv.SessionPrefix), s.now().Add(-s.maxAge))
	if err != nil {
		s.logger.Error("Failed to cleanup stale sessions", zap.Error(err))
		return 0, err
	}

	s.logger.Info("Cleanup completed successfully", zap.Int64("removed", removed))
	return removed, nil
}
