package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/RSPP-2025/paper-portal/internal/models"
	"github.com/RSPP-2025/paper-portal/internal/repositories"
	"github.com/RSPP-2025/paper-portal/internal/validator"
)

type userService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewUserService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) UserService {
	return &userService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

func (s *userService) List(ctx context.Context, filters repositories.UserFilters) (*UserListResponse, error) {
	users, total, err := s.repo.User().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	page := 1
	if filters.Limit > 0 {
		page = filters.Offset/filters.Limit + 1
	}

	return &UserListResponse{
		Users: users,
		Total: total,
		Page:  page,
		Size:  filters.Limit,
	}, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repo.User().GetByEmail(ctx, nil, email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, id string, req *UserUpdateRequest) (*models.User, error) {
	s.logger.Info("Updating user", "user_id", id)

	if err := s.validator.Validate(req); err != nil {
		return nil, validator.ToValidationErrors(err)
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Position != nil {
		user.Position = req.Position
	}
	if req.ProfileImage != nil {
		user.ProfileImage = *req.ProfileImage
	}

	// A role change goes through role_assignments so the next login
	// picks it up even if this row is later rebuilt
	if req.Role != nil {
		role := models.UserRole(*req.Role)
		user.Role = role
		if err := s.repo.User().UpsertRoleAssignment(ctx, nil, user.Email, role); err != nil {
			return nil, fmt.Errorf("failed to assign role: %w", err)
		}
	}

	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("User updated", "user_id", id)
	return user, nil
}

func (s *userService) Delete(ctx context.Context, id string) error {
	s.logger.Info("Deleting user", "user_id", id)

	if err := s.repo.User().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return nil
}

func (s *userService) AssignRole(ctx context.Context, req *AssignRoleRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return validator.ToValidationErrors(err)
	}

	role := models.UserRole(req.Role)
	if err := s.repo.User().UpsertRoleAssignment(ctx, nil, req.Email, role); err != nil {
		return fmt.Errorf("failed to assign role: %w", err)
	}

	// If the account already exists, update it in place too
	user, err := s.repo.User().GetByEmail(ctx, nil, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if user.Role != role {
		user.Role = role
		if err := s.repo.User().Update(ctx, nil, user); err != nil {
			return fmt.Errorf("failed to update user role: %w", err)
		}
	}

	s.logger.Info("Role assigned", "email", req.Email, "role", req.Role)
	return nil
}

func (s *userService) Roster(ctx context.Context) ([]*RosterEntry, error) {
	users, _, err := s.repo.User().List(ctx, nil, repositories.UserFilters{
		Roles: []models.UserRole{models.RoleStudent, models.RoleFaculty},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}

	roster := make([]*RosterEntry, 0, len(users))
	for _, user := range users {
		roster = append(roster, &RosterEntry{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Role:  user.Role,
		})
	}

	return roster, nil
}
