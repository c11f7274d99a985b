package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/RSPP-2025/paper-portal/internal/cache"
	"github.com/RSPP-2025/paper-portal/internal/models"
	"github.com/RSPP-2025/paper-portal/internal/repositories"
)

type paperRepository struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewPaperPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.PaperRepository {
	return &paperRepository{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// ===== BASIC CRUD OPERATIONS =====

func (r *paperRepository) Create(ctx context.Context, tx *gorm.DB, paper *models.ResearchPaper) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(paper).Error; err != nil {
		return r.handleDBError(err, "create paper")
	}

	cache.SafeInvalidatePattern(ctx, r.cacheManager.Paper, "list:*")
	return nil
}

func (r *paperRepository) Update(ctx context.Context, tx *gorm.DB, paper *models.ResearchPaper) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Save(paper).Error; err != nil {
		return r.handleDBError(err, "update paper")
	}

	cache.InvalidatePaperCache(ctx, r.cacheManager, paper.ID)
	return nil
}

func (r *paperRepository) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Delete(&models.ResearchPaper{}, "id = ?", id).Error; err != nil {
		return r.handleDBError(err, "delete paper")
	}

	cache.InvalidatePaperCache(ctx, r.cacheManager, id)
	return nil
}

// ===== LOOKUP OPERATIONS =====

func (r *paperRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.ResearchPaper, error) {
	db := r.getDB(tx)
	var paper models.ResearchPaper

	if err := db.WithContext(ctx).First(&paper, "id = ?", id).Error; err != nil {
		return nil, r.handleDBError(err, "get paper by id")
	}

	return &paper, nil
}

func (r *paperRepository) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id string) (*models.ResearchPaper, error) {
	db := r.getDB(tx)
	var paper models.ResearchPaper

	// Skip cache inside transactions so reads see uncommitted writes
	if tx != nil {
		if err := r.preloadDetails(db.WithContext(ctx)).First(&paper, "id = ?", id).Error; err != nil {
			return nil, r.handleDBError(err, "get paper with details")
		}
		return &paper, nil
	}

	cacheKey := fmt.Sprintf("details:%s", id)
	err := r.cacheManager.Paper.CacheOrExecute(ctx, cacheKey, &paper, cache.PaperCacheConfig.TTL, func() (interface{}, error) {
		var dbPaper models.ResearchPaper
		if err := r.preloadDetails(db.WithContext(ctx)).First(&dbPaper, "id = ?", id).Error; err != nil {
			return nil, r.handleDBError(err, "get paper with details")
		}
		return &dbPaper, nil
	})
	if err != nil {
		return nil, err
	}

	return &paper, nil
}

func (r *paperRepository) preloadDetails(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Submitter").
		Preload("Reviewer").
		Preload("Advisors.Advisor").
		Preload("Contributors.User")
}

// ===== QUERY OPERATIONS =====

func (r *paperRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.PaperFilters) ([]*models.ResearchPaper, int64, error) {
	db := r.getDB(tx)
	var papers []*models.ResearchPaper
	var total int64

	query := db.WithContext(ctx).
		Model(&models.ResearchPaper{}).
		Preload("Submitter").
		Preload("Reviewer")

	// Apply filters
	query = r.applyPaperFilters(query, filters)

	// Count total
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, r.handleDBError(err, "count papers")
	}

	// Apply pagination and sorting
	query = r.applyPaginationAndSorting(query, filters.Limit, filters.Offset, filters.SortBy, filters.SortOrder)

	if err := query.Find(&papers).Error; err != nil {
		return nil, 0, r.handleDBError(err, "list papers")
	}

	return papers, total, nil
}

// ===== ADVISOR LINK OPERATIONS =====

func (r *paperRepository) CreateAdvisors(ctx context.Context, tx *gorm.DB, advisors []*models.PaperAdvisor) error {
	if len(advisors) == 0 {
		return nil
	}

	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(advisors).Error; err != nil {
		return r.handleDBError(err, "create paper advisors")
	}

	return nil
}

func (r *paperRepository) GetAdvisorLink(ctx context.Context, tx *gorm.DB, paperID, advisorID string) (*models.PaperAdvisor, error) {
	db := r.getDB(tx)
	var link models.PaperAdvisor

	if err := db.WithContext(ctx).
		First(&link, "paper_id = ? AND advisor_id = ?", paperID, advisorID).Error; err != nil {
		return nil, r.handleDBError(err, "get advisor link")
	}

	return &link, nil
}

func (r *paperRepository) UpdateAdvisorLink(ctx context.Context, tx *gorm.DB, link *models.PaperAdvisor) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Save(link).Error; err != nil {
		return r.handleDBError(err, "update advisor link")
	}

	cache.InvalidatePaperCache(ctx, r.cacheManager, link.PaperID)
	return nil
}

// ===== CONTRIBUTOR LINK OPERATIONS =====

func (r *paperRepository) CreateContributors(ctx context.Context, tx *gorm.DB, contributors []*models.PaperContributor) error {
	if len(contributors) == 0 {
		return nil
	}

	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(contributors).Error; err != nil {
		return r.handleDBError(err, "create paper contributors")
	}

	return nil
}

func (r *paperRepository) DeleteLinks(ctx context.Context, tx *gorm.DB, paperID string) error {
	db := r.getDB(tx)

	if err := db.WithContext(ctx).
		Where("paper_id = ?", paperID).
		Delete(&models.PaperAdvisor{}).Error; err != nil {
		return r.handleDBError(err, "delete paper advisor links")
	}

	if err := db.WithContext(ctx).
		Where("paper_id = ?", paperID).
		Delete(&models.PaperContributor{}).Error; err != nil {
		return r.handleDBError(err, "delete paper contributor links")
	}

	cache.InvalidatePaperCache(ctx, r.cacheManager, paperID)
	return nil
}

// ===== HELPER METHODS =====

func (r *paperRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *paperRepository) handleDBError(err error, operation string) error {
	return handleDBError(err, operation)
}

func (r *paperRepository) applyPaperFilters(query *gorm.DB, filters repositories.PaperFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.ReviewerID != nil {
		query = query.Where("reviewer_id = ?", *filters.ReviewerID)
	}
	if filters.SubmittedBy != nil {
		query = query.Where("submitted_by = ?", *filters.SubmittedBy)
	}
	if filters.AdvisorID != nil {
		query = query.Where(
			"id IN (?)",
			r.db.Model(&models.PaperAdvisor{}).Select("paper_id").Where("advisor_id = ?", *filters.AdvisorID),
		)
	}
	if filters.Search != "" {
		searchQuery := "%" + filters.Search + "%"
		query = query.Where("title ILIKE ? OR abstract ILIKE ?", searchQuery, searchQuery)
	}

	return query
}

func (r *paperRepository) applyPaginationAndSorting(query *gorm.DB, limit, offset int, sortBy, sortOrder string) *gorm.DB {
	// Whitelist allowed sort columns: map API keys to SQL identifiers
	sortKeyToColumn := map[string]string{
		"created_at": "created_at",
		"updated_at": "updated_at",
		"title":      "title",
		"status":     "status",
	}

	// Validate and set sort column (map API to SQL name, default if invalid)
	column, ok := sortKeyToColumn[sortBy]
	if !ok {
		column = "created_at"
	}

	// Validate and set sort order
	order := "DESC"
	if sortOrder == "asc" || sortOrder == "ASC" {
		order = "ASC"
	}

	// Use only mapped SQL column name and constant sort order
	query = query.Order(fmt.Sprintf("%s %s", column, order))

	// Apply pagination
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	return query
}

// handleDBError is a package-level helper for handling database errors
func handleDBError(err error, operation string) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s failed: %w", operation, err)
}
