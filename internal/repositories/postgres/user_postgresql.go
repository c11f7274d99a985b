package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/RSPP-2025/paper-portal/internal/cache"
	"github.com/RSPP-2025/paper-portal/internal/models"
	"github.com/RSPP-2025/paper-portal/internal/repositories"
)

type userRepository struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewUserPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.UserRepository {
	return &userRepository{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// ===== BASIC CRUD OPERATIONS =====

func (r *userRepository) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(user).Error; err != nil {
		return r.handleDBError(err, "create user")
	}

	cache.SafeInvalidatePattern(ctx, r.cacheManager.User, "list:*")
	return nil
}

func (r *userRepository) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Save(user).Error; err != nil {
		return r.handleDBError(err, "update user")
	}

	cache.InvalidateUserCache(ctx, r.cacheManager, user.ID, user.Email)
	return nil
}

func (r *userRepository) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	db := r.getDB(tx)

	// Fetch before deleting so the email-keyed cache entry can be invalidated too
	var user models.User
	if err := db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return r.handleDBError(err, "get user before delete")
	}

	if err := db.WithContext(ctx).Delete(&models.User{}, "id = ?", id).Error; err != nil {
		return r.handleDBError(err, "delete user")
	}

	cache.InvalidateUserCache(ctx, r.cacheManager, user.ID, user.Email)
	return nil
}

// ===== LOOKUP OPERATIONS =====

func (r *userRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	db := r.getDB(tx)
	var user models.User

	// Skip cache inside transactions so reads see uncommitted writes
	if tx != nil {
		if err := db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
			return nil, r.handleDBError(err, "get user by id")
		}
		return &user, nil
	}

	cacheKey := fmt.Sprintf("id:%s", id)
	err := r.cacheManager.User.CacheOrExecute(ctx, cacheKey, &user, cache.UserCacheConfig.TTL, func() (interface{}, error) {
		var dbUser models.User
		if err := db.WithContext(ctx).First(&dbUser, "id = ?", id).Error; err != nil {
			return nil, r.handleDBError(err, "get user by id")
		}
		return &dbUser, nil
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// GetByEmail is intentionally uncached: the verification and login flows
// must always see the latest code, expiry and password hash.
func (r *userRepository) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	db := r.getDB(tx)
	var user models.User

	if err := db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, r.handleDBError(err, "get user by email")
	}

	return &user, nil
}

func (r *userRepository) GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*models.User, error) {
	db := r.getDB(tx)
	var users []*models.User

	if len(emails) == 0 {
		return users, nil
	}

	if err := db.WithContext(ctx).
		Where("email IN ?", emails).
		Find(&users).Error; err != nil {
		return nil, r.handleDBError(err, "get users by emails")
	}

	return users, nil
}

func (r *userRepository) GetByResetToken(ctx context.Context, tx *gorm.DB, token string) (*models.User, error) {
	db := r.getDB(tx)
	var user models.User

	if err := db.WithContext(ctx).
		First(&user, "reset_token = ?", token).Error; err != nil {
		return nil, r.handleDBError(err, "get user by reset token")
	}

	return &user, nil
}

// ===== QUERY OPERATIONS =====

func (r *userRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	db := r.getDB(tx)
	var users []*models.User
	var total int64

	query := db.WithContext(ctx).Model(&models.User{})

	// Apply filters
	query = r.applyUserFilters(query, filters)

	// Count total
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, r.handleDBError(err, "count users")
	}

	// Apply pagination and sorting
	query = query.Order("created_at DESC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&users).Error; err != nil {
		return nil, 0, r.handleDBError(err, "list users")
	}

	return users, total, nil
}

// ===== VALIDATION =====

func (r *userRepository) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	db := r.getDB(tx)
	var count int64

	if err := db.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, r.handleDBError(err, "check if email exists")
	}

	return count > 0, nil
}

// ===== ROLE ASSIGNMENTS =====

func (r *userRepository) GetRoleAssignment(ctx context.Context, tx *gorm.DB, email string) (*models.RoleAssignment, error) {
	db := r.getDB(tx)
	var assignment models.RoleAssignment

	if err := db.WithContext(ctx).
		First(&assignment, "email = ?", email).Error; err != nil {
		return nil, r.handleDBError(err, "get role assignment")
	}

	return &assignment, nil
}

func (r *userRepository) UpsertRoleAssignment(ctx context.Context, tx *gorm.DB, email string, role models.UserRole) error {
	db := r.getDB(tx)

	assignment := models.RoleAssignment{
		Email: email,
		Role:  role,
	}

	if err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"role"}),
		}).
		Create(&assignment).Error; err != nil {
		return r.handleDBError(err, "upsert role assignment")
	}

	return nil
}

// ===== HELPER METHODS =====

func (r *userRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *userRepository) handleDBError(err error, operation string) error {
	return handleDBError(err, operation)
}

func (r *userRepository) applyUserFilters(query *gorm.DB, filters repositories.UserFilters) *gorm.DB {
	if filters.Role != nil {
		query = query.Where("role = ?", *filters.Role)
	}
	if len(filters.Roles) > 0 {
		query = query.Where("role IN ?", filters.Roles)
	}
	if filters.Query != "" {
		searchQuery := "%" + filters.Query + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ?", searchQuery, searchQuery)
	}

	return query
}
