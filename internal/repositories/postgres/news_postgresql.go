package postgres

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/RSPP-2025/paper-portal/internal/cache"
	"github.com/RSPP-2025/paper-portal/internal/models"
	"github.com/RSPP-2025/paper-portal/internal/repositories"
)

type newsRepository struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewNewsPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.NewsRepository {
	return &newsRepository{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (r *newsRepository) Create(ctx context.Context, tx *gorm.DB, item *models.NewsItem) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(item).Error; err != nil {
		return r.handleDBError(err, "create news item")
	}

	cache.InvalidateNewsCache(ctx, r.cacheManager)
	return nil
}

func (r *newsRepository) Update(ctx context.Context, tx *gorm.DB, item *models.NewsItem) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Save(item).Error; err != nil {
		return r.handleDBError(err, "update news item")
	}

	cache.InvalidateNewsCache(ctx, r.cacheManager)
	return nil
}

func (r *newsRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.NewsItem, error) {
	db := r.getDB(tx)
	var item models.NewsItem

	if err := db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, r.handleDBError(err, "get news item by id")
	}

	return &item, nil
}

func (r *newsRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.NewsFilters) ([]*models.NewsItem, int64, error) {
	db := r.getDB(tx)
	var items []*models.NewsItem
	var total int64

	query := db.WithContext(ctx).Model(&models.NewsItem{})

	if filters.HomePageOnly {
		query = query.Where("home_page_visibility = true")
	}

	// Count total
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, r.handleDBError(err, "count news items")
	}

	// Newest first
	query = query.Order("created_at DESC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&items).Error; err != nil {
		return nil, 0, r.handleDBError(err, "list news items")
	}

	return items, total, nil
}

func (r *newsRepository) DeleteMany(ctx context.Context, tx *gorm.DB, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	db := r.getDB(tx)
	result := db.WithContext(ctx).Delete(&models.NewsItem{}, "id IN ?", ids)
	if result.Error != nil {
		return 0, r.handleDBError(result.Error, "delete news items")
	}

	cache.InvalidateNewsCache(ctx, r.cacheManager)
	return result.RowsAffected, nil
}

// ===== HELPER METHODS =====

func (r *newsRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *newsRepository) handleDBError(err error, operation string) error {
	return handleDBError(err, operation)
}
