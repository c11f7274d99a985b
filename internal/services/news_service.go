package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/RSPP-2025/paper-portal/internal/models"
	"github.com/RSPP-2025/paper-portal/internal/repositories"
	"github.com/RSPP-2025/paper-portal/internal/validator"
)

type newsService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewNewsService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) NewsService {
	return &newsService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

func (s *newsService) List(ctx context.Context, filters repositories.NewsFilters) (*NewsListResponse, error) {
	items, total, err := s.repo.News().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list news: %w", err)
	}

	page := 1
	if filters.Limit > 0 {
		page = filters.Offset/filters.Limit + 1
	}

	return &NewsListResponse{
		Items: items,
		Total: total,
		Page:  page,
		Size:  filters.Limit,
	}, nil
}

func (s *newsService) Create(ctx context.Context, req *NewsCreateRequest) (*models.NewsItem, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, validator.ToValidationErrors(err)
	}

	tags, err := marshalTags(req.Tags)
	if err != nil {
		return nil, err
	}

	item := &models.NewsItem{
		Title:              req.Title,
		Content:            req.Content,
		Tags:               tags,
		HomePageVisibility: req.HomePageVisibility,
	}

	if err := s.repo.News().Create(ctx, nil, item); err != nil {
		return nil, fmt.Errorf("failed to create news item: %w", err)
	}

	s.logger.Info("News item created", "news_id", item.ID)
	return item, nil
}

func (s *newsService) Update(ctx context.Context, req *NewsUpdateRequest) (*models.NewsItem, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, validator.ToValidationErrors(err)
	}

	item, err := s.repo.News().GetByID(ctx, nil, req.ID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNewsNotFound
		}
		return nil, fmt.Errorf("failed to get news item: %w", err)
	}

	if req.Title != nil {
		item.Title = *req.Title
	}
	if req.Content != nil {
		item.Content = *req.Content
	}
	if req.Tags != nil {
		tags, err := marshalTags(*req.Tags)
		if err != nil {
			return nil, err
		}
		item.Tags = tags
	}
	if req.HomePageVisibility != nil {
		item.HomePageVisibility = *req.HomePageVisibility
	}

	if err := s.repo.News().Update(ctx, nil, item); err != nil {
		return nil, fmt.Errorf("failed to update news item: %w", err)
	}

	s.logger.Info("News item updated", "news_id", item.ID)
	return item, nil
}

func (s *newsService) BulkDelete(ctx context.Context, req *NewsBulkDeleteRequest) (int64, error) {
	if err := s.validator.Validate(req); err != nil {
		return 0, validator.ToValidationErrors(err)
	}

	deleted, err := s.repo.News().DeleteMany(ctx, nil, req.IDs)
	if err != nil {
		return 0, fmt.Errorf("failed to delete news items: %w", err)
	}

	s.logger.Info("News items deleted", "requested", len(req.IDs), "deleted", deleted)
	return deleted, nil
}

func marshalTags(tags []string) (datatypes.JSON, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}
	return datatypes.JSON(data), nil
}
