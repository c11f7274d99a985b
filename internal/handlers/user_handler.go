package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/RSPP-2025/paper-portal/internal/models"
	"github.com/RSPP-2025/paper-portal/internal/repositories"
	"github.com/RSPP-2025/paper-portal/internal/services"
	"github.com/RSPP-2025/paper-portal/internal/utils"
	"github.com/RSPP-2025/paper-portal/internal/validator"
)

// UserHandler handles account administration and the submission roster
type UserHandler struct {
	BaseHandler
	userService services.UserService
	validator   *validator.Validator
}

func NewUserHandler(userService services.UserService, validator *validator.Validator, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		userService: userService,
		validator:   validator,
	}
}

// ListUsers lists accounts with optional filtering
// @Summary List users
// @Description Get a paginated list of accounts, admin only
// @Tags users
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20, max: 100)"
// @Param q query string false "Search query (name or email)"
// @Param role query string false "Filter by role (STUDENT, FACULTY, ADMIN)"
// @Success 200 {object} SuccessResponse{data=services.UserListResponse}
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	h.LogRequest(c, "Listing users")

	filters := h.parseUserFilters(c)

	users, err := h.userService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// GetUser retrieves an account by ID
// @Summary Get user
// @Description Retrieves an account by its ID, admin only
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} SuccessResponse{data=models.User}
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	id := c.Param("id")

	h.LogRequest(c, "Getting user", "target_user_id", id)

	user, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateUser updates an account's profile or role
// @Summary Update user
// @Description Updates profile fields and role, admin only
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param user body services.UserUpdateRequest true "Fields to update"
// @Success 200 {object} SuccessResponse{data=models.User}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/users/{id} [patch]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id := c.Param("id")

	var req services.UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Updating user", "target_user_id", id)

	user, err := h.userService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// DeleteUser removes an account
// @Summary Delete user
// @Description Deletes an account, admin only
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id := c.Param("id")

	h.LogRequest(c, "Deleting user", "target_user_id", id)

	if err := h.userService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "User deleted",
	})
}

// AssignRole grants a role by email, ahead of or after signup
// @Summary Assign role
// @Description Upserts a role assignment by email so the next login picks it up, admin only
// @Tags users
// @Accept json
// @Produce json
// @Param assignment body services.AssignRoleRequest true "Email and role"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/users/assign-role [post]
func (h *UserHandler) AssignRole(c *gin.Context) {
	var req services.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Assigning role", "email", req.Email, "role", req.Role)

	if err := h.userService.AssignRole(c.Request.Context(), &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Role assigned",
	})
}

// Roster returns the people picker entries for the submission wizard
// @Summary Submission roster
// @Description Lists students and faculty for the submission people step
// @Tags users
// @Produce json
// @Success 200 {object} SuccessResponse{data=[]services.RosterEntry}
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /users/roster [get]
func (h *UserHandler) Roster(c *gin.Context) {
	h.LogRequest(c, "Getting submission roster")

	roster, err := h.userService.Roster(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, roster)
}

func (h *UserHandler) parseUserFilters(c *gin.Context) repositories.UserFilters {
	limit, offset := parsePagination(c)

	filters := repositories.UserFilters{
		Query:  c.Query("q"),
		Limit:  limit,
		Offset: offset,
	}

	if role := c.Query("role"); role != "" {
		r := models.UserRole(role)
		filters.Role = &r
	}

	return filters
}

func (h *UserHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Account not found",
		})
	default:
		h.LogError(c, err, "Unexpected user service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
