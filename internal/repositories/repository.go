package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repository aggregates all repository interfaces
type Repository interface {
	// User domain
	User() UserRepository

	// Paper domain
	Paper() PaperRepository

	// News domain
	News() NewsRepository

	// Dashboard domain
	Dashboard() DashboardRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}

// IsNotFoundError reports whether err is a missing-record error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
