package service

import (
	"context"
	"time"

	"telegram_docbot/internal/domain"
)

type StatsRepo interface {
	Stats(ctx context.Context, since time.Time) (*domain.Stats, error)
}

// AdminService provides admin statistics
type AdminService struct {
	stats StatsRepo
	now   func() time.Time
}

// NewAdminService creates a new admin service
func NewAdminService(stats StatsRepo) *AdminService {
	return &AdminService{stats: stats, now: time.Now}
}

// GetStats returns the overview; "today" starts at UTC midnight
func (s *AdminService) GetStats(ctx context.Context) (*domain.Stats, error) {
	today := s.now().UTC().Truncate(24 * time.Hour)
	return s.stats.Stats(ctx, today)
}
