package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/RSPP-2025/paper-portal/internal/cache"
	"github.com/RSPP-2025/paper-portal/internal/events"
	"github.com/RSPP-2025/paper-portal/internal/mailer"
	"github.com/RSPP-2025/paper-portal/internal/repositories"
	"github.com/RSPP-2025/paper-portal/internal/storage"
	"github.com/RSPP-2025/paper-portal/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	// Logging configuration
	EnableDebugLogging bool
	LogLevel           slog.Level

	// Service-specific configurations
	Auth       ServiceConfig
	Submission ServiceConfig
	Paper      ServiceConfig
	User       ServiceConfig
	News       ServiceConfig

	// Global settings
	DefaultTimeout time.Duration
}

type ServiceConfig struct {
	Enabled         bool
	CacheEnabled    bool
	CacheTTL        time.Duration
	ValidationLevel ValidationLevel
}

type ValidationLevel int

const (
	ValidationBasic ValidationLevel = iota
	ValidationStrict
	ValidationFull
)

// ServiceManagerDeps bundles everything the services need
type ServiceManagerDeps struct {
	DB             *gorm.DB
	Repo           repositories.Repository
	Logger         *slog.Logger
	Validator      *validator.Validator
	CacheManager   *cache.CacheManager
	Mailer         mailer.Mailer
	Storage        storage.Storage
	EventPublisher events.EventPublisher
	AuthConfig     AuthConfig
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	deps   ServiceManagerDeps
	config ServiceManagerConfig

	// Service instances
	authService       AuthService
	submissionService SubmissionService
	paperService      PaperService
	userService       UserService
	newsService       NewsService
	dashboardService  DashboardService
	exportService     ExportService
	notifier          NotificationEventService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(deps ServiceManagerDeps, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		deps:   deps,
		config: config,
	}
}

// NewDefaultServiceManager creates a service manager with default configuration
func NewDefaultServiceManager(deps ServiceManagerDeps) ServiceManager {
	config := ServiceManagerConfig{
		EnableDebugLogging: false,
		LogLevel:           slog.LevelInfo,

		Auth: ServiceConfig{
			Enabled:         true,
			CacheEnabled:    false,
			ValidationLevel: ValidationStrict,
		},
		Submission: ServiceConfig{
			Enabled:         true,
			CacheEnabled:    true,
			CacheTTL:        24 * time.Hour,
			ValidationLevel: ValidationFull,
		},
		Paper: ServiceConfig{
			Enabled:         true,
			CacheEnabled:    true,
			CacheTTL:        5 * time.Minute,
			ValidationLevel: ValidationStrict,
		},
		User: ServiceConfig{
			Enabled:         true,
			CacheEnabled:    true,
			CacheTTL:        5 * time.Minute,
			ValidationLevel: ValidationStrict,
		},
		News: ServiceConfig{
			Enabled:         true,
			CacheEnabled:    true,
			CacheTTL:        5 * time.Minute,
			ValidationLevel: ValidationBasic,
		},

		DefaultTimeout: 30 * time.Second,
	}

	return NewServiceManager(deps, config)
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.deps.Logger.Info("Initializing service manager")

	if err := sm.initializeServices(ctx); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	sm.initialized = true
	sm.deps.Logger.Info("Service manager initialized successfully")

	return nil
}

func (sm *serviceManager) initializeServices(ctx context.Context) error {
	d := sm.deps

	// The event notifier is shared by every publishing service
	sm.notifier = NewNotificationEventService(d.Repo, d.EventPublisher, d.Logger, d.Validator)

	if sm.config.Auth.Enabled {
		sm.authService = NewAuthService(d.Repo, d.DB, d.Logger, d.Validator, d.Mailer, sm.notifier, d.AuthConfig)
		d.Logger.Info("Auth service initialized")
	}

	if sm.config.Submission.Enabled {
		sm.submissionService = NewSubmissionService(d.Repo, d.DB, d.Logger, d.Validator, d.CacheManager, d.Storage, sm.notifier)
		d.Logger.Info("Submission service initialized")
	}

	if sm.config.Paper.Enabled {
		sm.paperService = NewPaperService(d.Repo, d.DB, d.Logger, d.Validator, d.Storage, sm.notifier)
		d.Logger.Info("Paper service initialized")
	}

	if sm.config.User.Enabled {
		sm.userService = NewUserService(d.Repo, d.DB, d.Logger, d.Validator)
		d.Logger.Info("User service initialized")
	}

	if sm.config.News.Enabled {
		sm.newsService = NewNewsService(d.Repo, d.DB, d.Logger, d.Validator)
		d.Logger.Info("News service initialized")
	}

	sm.dashboardService = NewDashboardService(d.Repo, d.DB, d.Logger, d.CacheManager)
	d.Logger.Info("Dashboard service initialized")

	sm.exportService = NewExportService(d.Repo, d.Logger, d.Validator)
	d.Logger.Info("Export service initialized")

	return nil
}

// Service getters
func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Auth.Enabled && sm.authService != nil {
		return sm.authService
	}

	panic("auth service not enabled or not initialized")
}

func (sm *serviceManager) Submission() SubmissionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Submission.Enabled && sm.submissionService != nil {
		return sm.submissionService
	}

	panic("submission service not enabled or not initialized")
}

func (sm *serviceManager) Paper() PaperService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Paper.Enabled && sm.paperService != nil {
		return sm.paperService
	}

	panic("paper service not enabled or not initialized")
}

func (sm *serviceManager) User() UserService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.User.Enabled && sm.userService != nil {
		return sm.userService
	}

	panic("user service not enabled or not initialized")
}

func (sm *serviceManager) News() NewsService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.News.Enabled && sm.newsService != nil {
		return sm.newsService
	}

	panic("news service not enabled or not initialized")
}

func (sm *serviceManager) Dashboard() DashboardService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.dashboardService != nil {
		return sm.dashboardService
	}

	panic("dashboard service not initialized")
}

func (sm *serviceManager) Export() ExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.exportService != nil {
		return sm.exportService
	}

	panic("export service not initialized")
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.deps.Repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.deps.Logger.Info("Shutting down service manager")

	if sm.deps.EventPublisher != nil {
		if err := sm.deps.EventPublisher.Close(); err != nil {
			sm.deps.Logger.Error("Failed to close event publisher", "error", err)
		}
	}

	sm.shutdown = true
	sm.deps.Logger.Info("Service manager shut down completed")

	return nil
}

// ===== UTILITY METHODS =====

// GetConfig returns the service manager configuration
func (sm *serviceManager) GetConfig() ServiceManagerConfig {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.config
}

// IsInitialized returns whether the service manager has been initialized
func (sm *serviceManager) IsInitialized() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.initialized
}

// WithTimeout creates a context with the default timeout
func (sm *serviceManager) WithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, sm.config.DefaultTimeout)
}
