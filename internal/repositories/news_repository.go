package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/RSPP-2025/paper-portal/internal/models"
)

// NewsFilters defines filters for news queries
type NewsFilters struct {
	HomePageOnly bool
	Limit        int
	Offset       int
}

// NewsRepository interface for announcement operations
type NewsRepository interface {
	Create(ctx context.Context, tx *gorm.DB, item *models.NewsItem) error
	Update(ctx context.Context, tx *gorm.DB, item *models.NewsItem) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.NewsItem, error)
	List(ctx context.Context, tx *gorm.DB, filters NewsFilters) ([]*models.NewsItem, int64, error)
	DeleteMany(ctx context.Context, tx *gorm.DB, ids []string) (int64, error)
}
