package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	uuid2 "github.com/google/uuid"

	"github.com/RSPP-2025/paper-portal/internal/services"
	"github.com/RSPP-2025/paper-portal/internal/utils"
	"github.com/RSPP-2025/paper-portal/internal/validator"
)

// AuthHandler handles signup, verification and sign-in requests
type AuthHandler struct {
	BaseHandler
	authService services.AuthService
	validator   *validator.Validator
}

func NewAuthHandler(authService services.AuthService, validator *validator.Validator, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		authService: authService,
		validator:   validator,
	}
}

// Signup registers a new account and sends a verification code
// @Summary Sign up
// @Description Registers a new account and emails a 6-digit verification code
// @Tags auth
// @Accept json
// @Produce json
// @Param signup body services.SignupRequest true "Signup data"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req services.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Signing up", "email", req.Email)

	user, err := h.authService.Signup(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Account created, verification code sent",
		Data:    gin.H{"user_id": user.ID, "email": user.Email},
	})
}

// VerifyEmail confirms the code sent to the account's email
// @Summary Verify email
// @Description Confirms the 6-digit verification code and activates the account
// @Tags auth
// @Accept json
// @Produce json
// @Param verification body services.VerifyEmailRequest true "Email and code"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/verify [post]
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req services.VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Verifying email", "email", req.Email)

	userID, err := h.authService.VerifyEmail(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Email verified",
		Data:    gin.H{"user_id": userID},
	})
}

// ResendCode issues a fresh verification code
// @Summary Resend verification code
// @Description Replaces the pending verification code and emails a new one
// @Tags auth
// @Accept json
// @Produce json
// @Param resend body services.ResendCodeRequest true "Account email"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/resend-code [post]
func (h *AuthHandler) ResendCode(c *gin.Context) {
	var req services.ResendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Resending verification code", "email", req.Email)

	if err := h.authService.ResendCode(c.Request.Context(), &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Verification code sent",
	})
}

// Login signs in with email and password
// @Summary Log in
// @Description Authenticates credentials and returns a signed token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body services.LoginRequest true "Credentials"
// @Success 200 {object} SuccessResponse{data=services.AuthResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Logging in", "email", req.Email)

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ForgotPassword starts the password reset flow
// @Summary Forgot password
// @Description Emails a reset link when the account exists
// @Tags auth
// @Accept json
// @Produce json
// @Param request body services.ForgotPasswordRequest true "Account email"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req services.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Requesting password reset", "email", req.Email)

	if err := h.authService.ForgotPassword(c.Request.Context(), &req); err != nil {
		// Whether the account exists is not leaked to the caller
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusOK, SuccessResponse{
				Message: "If the account exists, a reset link has been sent",
			})
			return
		}
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "If the account exists, a reset link has been sent",
	})
}

// ResetPassword sets a new password from a reset token
// @Summary Reset password
// @Description Sets a new password using the emailed reset token
// @Tags auth
// @Accept json
// @Produce json
// @Param reset body services.ResetPasswordRequest true "Token and new password"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req services.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Resetting password")

	if err := h.authService.ResetPassword(c.Request.Context(), &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Password updated",
	})
}

// GoogleLogin redirects to Google's consent page
// @Summary Google sign-in
// @Description Redirects the browser to Google's OAuth consent page
// @Tags auth
// @Produce json
// @Success 307
// @Router /auth/google [get]
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	state := uuid2.New().String()
	c.Redirect(http.StatusTemporaryRedirect, h.authService.GoogleAuthURL(state))
}

// GoogleCallback completes the Google sign-in exchange
// @Summary Google sign-in callback
// @Description Exchanges the OAuth code and returns a signed token
// @Tags auth
// @Produce json
// @Param code query string true "OAuth authorization code"
// @Success 200 {object} SuccessResponse{data=services.AuthResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/google/callback [get]
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing authorization code",
		})
		return
	}

	h.LogRequest(c, "Completing Google sign-in")

	resp, err := h.authService.GoogleCallback(c.Request.Context(), code)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) handleServiceError(c *gin.Context, err error) {
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
	case errors.Is(err, services.ErrEmailAlreadyRegistered):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Email is already registered",
		})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Invalid email or password",
		})
	case errors.Is(err, services.ErrAccountNotVerified):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Account email is not verified",
		})
	case errors.Is(err, services.ErrCodeMismatch):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Verification code is incorrect",
		})
	case errors.Is(err, services.ErrInvalidResetToken):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Reset token is invalid or expired",
		})
	default:
		h.LogError(c, err, "Unexpected auth service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
