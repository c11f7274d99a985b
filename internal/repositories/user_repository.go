package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/RSPP-2025/paper-portal/internal/models"
)

// UserFilters defines filters for user queries
type UserFilters struct {
	Query  string           // Search query for name or email
	Role   *models.UserRole // Filter by role
	Roles  []models.UserRole
	Limit  int // Page size
	Offset int // Offset for pagination
}

// UserRepository interface for account operations
type UserRepository interface {
	// Basic CRUD
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	Update(ctx context.Context, tx *gorm.DB, user *models.User) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error

	// Lookups
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)
	GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*models.User, error)
	GetByResetToken(ctx context.Context, tx *gorm.DB, token string) (*models.User, error)

	// List and search operations
	List(ctx context.Context, tx *gorm.DB, filters UserFilters) ([]*models.User, int64, error)

	// Validation and checks
	ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error)

	// Role assignments (source of truth for roles)
	GetRoleAssignment(ctx context.Context, tx *gorm.DB, email string) (*models.RoleAssignment, error)
	UpsertRoleAssignment(ctx context.Context, tx *gorm.DB, email string, role models.UserRole) error
}
