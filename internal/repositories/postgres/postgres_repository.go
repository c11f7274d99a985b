package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/RSPP-2025/paper-portal/internal/cache"
	"github.com/RSPP-2025/paper-portal/internal/repositories"
)

// PostgreSQLRepository implements the main Repository interface
type PostgreSQLRepository struct {
	db           *gorm.DB
	redisClient  *redis.Client
	cacheManager *cache.CacheManager

	// Repository instances
	user      repositories.UserRepository
	paper     repositories.PaperRepository
	news      repositories.NewsRepository
	dashboard repositories.DashboardRepository
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client
}

// NewPostgreSQLRepository creates a new repository manager with all sub-repositories
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	cacheManager := cache.NewCacheManager(config.RedisClient)

	repo := &PostgreSQLRepository{
		db:           config.DB,
		redisClient:  config.RedisClient,
		cacheManager: cacheManager,
	}

	// Initialize sub-repositories with caching
	repo.user = NewUserPostgreSQL(config.DB, config.RedisClient)
	repo.paper = NewPaperPostgreSQL(config.DB, config.RedisClient)
	repo.news = NewNewsPostgreSQL(config.DB, config.RedisClient)
	repo.dashboard = NewDashboardRepository(config.DB)

	return repo
}

// User returns the user repository
func (r *PostgreSQLRepository) User() repositories.UserRepository {
	return r.user
}

// Paper returns the research paper repository
func (r *PostgreSQLRepository) Paper() repositories.PaperRepository {
	return r.paper
}

// News returns the news repository
func (r *PostgreSQLRepository) News() repositories.NewsRepository {
	return r.news
}

// Dashboard returns the dashboard repository
func (r *PostgreSQLRepository) Dashboard() repositories.DashboardRepository {
	return r.dashboard
}

// WithTransaction executes a function within a database transaction
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Create a new repository instance with the transaction
		txRepo := &PostgreSQLRepository{
			db:           tx,
			redisClient:  r.redisClient,
			cacheManager: r.cacheManager,
		}

		// Initialize sub-repositories with transaction
		txRepo.user = NewUserPostgreSQL(tx, r.redisClient)
		txRepo.paper = NewPaperPostgreSQL(tx, r.redisClient)
		txRepo.news = NewNewsPostgreSQL(tx, r.redisClient)
		txRepo.dashboard = NewDashboardRepository(tx)

		return fn(txRepo)
	})
}

// Ping checks the health of database and cache connections
func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	// Check database connection
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Check cache connection
	if r.redisClient != nil {
		if err := r.cacheManager.HealthCheck(ctx); err != nil {
			return fmt.Errorf("cache ping failed: %w", err)
		}
	}

	return nil
}

// Close closes all connections
func (r *PostgreSQLRepository) Close() error {
	// Close database connection
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	// Close Redis connection
	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			return fmt.Errorf("failed to close Redis: %w", err)
		}
	}

	return nil
}

// RepositoryManager implements the RepositoryManager interface
type RepositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

// NewRepositoryManager creates a new repository manager
func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &RepositoryManager{
		config: config,
	}
}

// Initialize initializes all repositories and connections
func (rm *RepositoryManager) Initialize() error {
	// Validate configuration
	if rm.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}

	// Test database connection
	sqlDB, err := rm.config.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	// Test Redis connection if provided
	if rm.config.RedisClient != nil {
		if _, err := rm.config.RedisClient.Ping(ctx).Result(); err != nil {
			return fmt.Errorf("Redis connection failed: %w", err)
		}
	}

	// Initialize repository
	rm.repo = NewPostgreSQLRepository(rm.config)

	return nil
}

// GetRepository returns the repository instance
func (rm *RepositoryManager) GetRepository() repositories.Repository {
	return rm.repo
}

// HealthCheck checks the health of all repository connections
func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return fmt.Errorf("repository not initialized")
	}

	return rm.repo.Ping(ctx)
}

// Shutdown gracefully shuts down all repository connections
func (rm *RepositoryManager) Shutdown(ctx context.Context) error {
	if rm.repo == nil {
		return nil
	}

	return rm.repo.Close()
}

// CacheStats returns cache statistics for monitoring
func (r *PostgreSQLRepository) CacheStats(ctx context.Context) (map[string]interface{}, error) {
	if r.redisClient == nil {
		return map[string]interface{}{
			"cache_enabled": false,
		}, nil
	}

	stats := make(map[string]interface{})
	stats["cache_enabled"] = true

	// Get Redis info
	info, err := r.redisClient.Info(ctx, "memory", "stats").Result()
	if err != nil {
		return stats, fmt.Errorf("failed to get cache info: %w", err)
	}

	stats["redis_info"] = info

	// Get key counts by prefix
	prefixes := []string{"user:", "paper:", "news:", "draft:", "stats:", "exists:", "fast:"}
	for _, prefix := range prefixes {
		keys, err := r.redisClient.Keys(ctx, prefix+"*").Result()
		if err == nil {
			stats[prefix+"count"] = len(keys)
		}
	}

	return stats, nil
}

// WarmupCache preloads frequently accessed data into cache
func (r *PostgreSQLRepository) WarmupCache(ctx context.Context) error {
	if r.cacheManager == nil {
		return nil
	}

	return r.cacheManager.WarmupCache(ctx)
}

// ClearCache clears all cache data (use with caution)
func (r *PostgreSQLRepository) ClearCache(ctx context.Context) error {
	if r.cacheManager == nil {
		return nil
	}

	return r.cacheManager.ClearAll(ctx)
}
