package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/RSPP-2025/paper-portal/internal/models"
)

// PaperFilters defines filters for paper queries
type PaperFilters struct {
	Status      *models.PaperStatus
	ReviewerID  *string
	SubmittedBy *string
	AdvisorID   *string
	Search      string
	SortBy      string
	SortOrder   string
	Limit       int
	Offset      int
}

// PaperRepository interface for research paper operations
type PaperRepository interface {
	// Basic CRUD
	Create(ctx context.Context, tx *gorm.DB, paper *models.ResearchPaper) error
	Update(ctx context.Context, tx *gorm.DB, paper *models.ResearchPaper) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error

	// Lookups
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.ResearchPaper, error)
	GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id string) (*models.ResearchPaper, error)

	// List and search operations
	List(ctx context.Context, tx *gorm.DB, filters PaperFilters) ([]*models.ResearchPaper, int64, error)

	// Advisor links
	CreateAdvisors(ctx context.Context, tx *gorm.DB, advisors []*models.PaperAdvisor) error
	GetAdvisorLink(ctx context.Context, tx *gorm.DB, paperID, advisorID string) (*models.PaperAdvisor, error)
	UpdateAdvisorLink(ctx context.Context, tx *gorm.DB, link *models.PaperAdvisor) error

	// Contributor links
	CreateContributors(ctx context.Context, tx *gorm.DB, contributors []*models.PaperContributor) error
	DeleteLinks(ctx context.Context, tx *gorm.DB, paperID string) error
}
