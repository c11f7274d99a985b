package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/RSPP-2025/paper-portal/internal/cache"
	"github.com/RSPP-2025/paper-portal/internal/models"
	"github.com/RSPP-2025/paper-portal/internal/repositories"
)

type dashboardService struct {
	repo         repositories.Repository
	db           *gorm.DB
	logger       *slog.Logger
	cacheManager *cache.CacheManager
}

func NewDashboardService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, cacheManager *cache.CacheManager) DashboardService {
	return &dashboardService{
		repo:         repo,
		db:           db,
		logger:       logger,
		cacheManager: cacheManager,
	}
}

func (s *dashboardService) GetStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats

	err := s.cacheManager.Stats.CacheOrExecute(ctx, "dashboard", &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		return s.collectStats(ctx)
	})
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

func (s *dashboardService) collectStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{
		UsersByRole:    make(map[models.UserRole]int64),
		PapersByStatus: make(map[models.PaperStatus]int64),
		GeneratedAt:    time.Now().UTC(),
	}

	roleCounts, err := s.repo.Dashboard().CountUsersByRole(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count users by role: %w", err)
	}
	for _, rc := range roleCounts {
		stats.UsersByRole[rc.Role] = rc.Count
	}

	statusCounts, err := s.repo.Dashboard().CountPapersByStatus(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count papers by status: %w", err)
	}
	for _, sc := range statusCounts {
		stats.PapersByStatus[sc.Status] = sc.Count
	}

	newsCount, err := s.repo.Dashboard().CountNews(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count news: %w", err)
	}
	stats.NewsCount = newsCount

	recent, err := s.repo.Dashboard().GetRecentPapers(ctx, nil, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent papers: %w", err)
	}
	stats.RecentPapers = recent

	return stats, nil
}
