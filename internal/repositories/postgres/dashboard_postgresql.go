package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/RSPP-2025/paper-portal/internal/models"
	"github.com/RSPP-2025/paper-portal/internal/repositories"
)

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) repositories.DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// ===== DASHBOARD STATS =====

func (r *dashboardRepository) CountUsersByRole(ctx context.Context, tx *gorm.DB) ([]repositories.RoleCountData, error) {
	db := r.getDB(tx)
	var counts []repositories.RoleCountData

	if err := db.WithContext(ctx).
		Model(&models.User{}).
		Select("role, COUNT(*) as count").
		Group("role").
		Scan(&counts).Error; err != nil {
		return nil, handleDBError(err, "count users by role")
	}

	return counts, nil
}

func (r *dashboardRepository) CountPapersByStatus(ctx context.Context, tx *gorm.DB) ([]repositories.StatusCountData, error) {
	db := r.getDB(tx)
	var counts []repositories.StatusCountData

	if err := db.WithContext(ctx).
		Model(&models.ResearchPaper{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, handleDBError(err, "count papers by status")
	}

	return counts, nil
}

func (r *dashboardRepository) CountNews(ctx context.Context, tx *gorm.DB) (int64, error) {
	db := r.getDB(tx)
	var count int64

	if err := db.WithContext(ctx).
		Model(&models.NewsItem{}).
		Count(&count).Error; err != nil {
		return 0, handleDBError(err, "count news items")
	}

	return count, nil
}

// ===== RECENT ACTIVITY =====

func (r *dashboardRepository) GetRecentPapers(ctx context.Context, tx *gorm.DB, limit int) ([]*models.ResearchPaper, error) {
	db := r.getDB(tx)
	var papers []*models.ResearchPaper

	if limit <= 0 {
		limit = 10
	}

	if err := db.WithContext(ctx).
		Preload("Submitter").
		Order("created_at DESC").
		Limit(limit).
		Find(&papers).Error; err != nil {
		return nil, handleDBError(err, "get recent papers")
	}

	return papers, nil
}
