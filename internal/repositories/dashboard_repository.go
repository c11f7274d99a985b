package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/RSPP-2025/paper-portal/internal/models"
)

// DashboardRepository interface for dashboard analytics operations
type DashboardRepository interface {
	// Totals
	CountUsersByRole(ctx context.Context, tx *gorm.DB) ([]RoleCountData, error)
	CountPapersByStatus(ctx context.Context, tx *gorm.DB) ([]StatusCountData, error)
	CountNews(ctx context.Context, tx *gorm.DB) (int64, error)

	// Recent activity
	GetRecentPapers(ctx context.Context, tx *gorm.DB, limit int) ([]*models.ResearchPaper, error)
}

// Data structures for dashboard responses

type RoleCountData struct {
	Role  models.UserRole `json:"role"`
	Count int64           `json:"count"`
}

type StatusCountData struct {
	Status models.PaperStatus `json:"status"`
	Count  int64              `json:"count"`
}
