package services

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/RSPP-2025/paper-portal/internal/mailer"
	"github.com/RSPP-2025/paper-portal/internal/models"
	"github.com/RSPP-2025/paper-portal/internal/repositories"
	"github.com/RSPP-2025/paper-portal/internal/validator"
)

const (
	verificationCodeTTL = time.Hour
	resetTokenTTL       = 30 * time.Minute

	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// AuthClaims is the JWT payload issued on login
type AuthClaims struct {
	UserID string          `json:"user_id"`
	Email  string          `json:"email"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// AuthConfig holds token and OAuth settings for the auth service
type AuthConfig struct {
	JWTSecret string
	JWTExpiry time.Duration
	AppURL    string
	Google    *oauth2.Config
}

type authService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	mailer    mailer.Mailer
	notifier  NotificationEventService
	config    AuthConfig
}

func NewAuthService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, mailer mailer.Mailer, notifier NotificationEventService, config AuthConfig) AuthService {
	return &authService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		mailer:    mailer,
		notifier:  notifier,
		config:    config,
	}
}

// ===== VERIFICATION WORKFLOW =====

func (s *authService) Signup(ctx context.Context, req *SignupRequest) (*models.User, error) {
	s.logger.Info("Registering account", "email", req.Email)

	// Validate request with business rules
	if errors := s.validator.GetBusinessValidator().ValidateSignup(req); len(errors) > 0 {
		return nil, errors
	}

	// Duplicate email check
	exists, err := s.repo.User().ExistsByEmail(ctx, nil, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrEmailAlreadyRegistered
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	code, err := generateVerificationCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification code: %w", err)
	}

	hashStr := string(hash)
	expiry := time.Now().Add(verificationCodeTTL)
	user := &models.User{
		Name:                   req.Name,
		Email:                  req.Email,
		Role:                   models.RoleStudent,
		PasswordHash:           &hashStr,
		IsVerified:             false,
		VerificationCode:       &code,
		VerificationCodeExpiry: &expiry,
	}

	if err := s.repo.User().Create(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.mailer.SendVerificationCode(ctx, user.Email, user.Name, code); err != nil {
		return nil, fmt.Errorf("failed to send verification email: %w", err)
	}

	if err := s.notifier.NotifyUserRegistered(ctx, user); err != nil {
		s.logger.Error("Failed to publish user registered event", "error", err, "user_id", user.ID)
	}

	s.logger.Info("Account registered, awaiting verification", "user_id", user.ID)
	return user, nil
}

func (s *authService) ResendCode(ctx context.Context, req *ResendCodeRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return validator.ToValidationErrors(err)
	}

	user, err := s.repo.User().GetByEmail(ctx, nil, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	code, err := generateVerificationCode()
	if err != nil {
		return fmt.Errorf("failed to generate verification code: %w", err)
	}

	// A resent code replaces the old one and restarts its lifetime
	expiry := time.Now().Add(verificationCodeTTL)
	user.VerificationCode = &code
	user.VerificationCodeExpiry = &expiry

	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return fmt.Errorf("failed to store verification code: %w", err)
	}

	if err := s.mailer.SendVerificationCode(ctx, user.Email, user.Name, code); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	s.logger.Info("Verification code resent", "user_id", user.ID)
	return nil
}

func (s *authService) VerifyEmail(ctx context.Context, req *VerifyEmailRequest) (string, error) {
	if err := s.validator.Validate(req); err != nil {
		return "", validator.ToValidationErrors(err)
	}

	user, err := s.repo.User().GetByEmail(ctx, nil, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	// Exact match against the stored code; a cleared code never matches,
	// so verifying twice fails the second time
	if user.VerificationCode == nil || *user.VerificationCode != req.Code {
		return "", ErrCodeMismatch
	}

	user.IsVerified = true
	user.VerificationCode = nil
	user.VerificationCodeExpiry = nil

	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return "", fmt.Errorf("failed to mark user verified: %w", err)
	}

	if err := s.notifier.NotifyUserVerified(ctx, user); err != nil {
		s.logger.Error("Failed to publish user verified event", "error", err, "user_id", user.ID)
	}

	s.logger.Info("Account verified", "user_id", user.ID)
	return user.ID, nil
}

// ===== CREDENTIAL SIGN-IN =====

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, validator.ToValidationErrors(err)
	}

	user, err := s.repo.User().GetByEmail(ctx, nil, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsVerified {
		return nil, ErrAccountNotVerified
	}

	// Role assignments are the source of truth; refresh on every login
	if err := s.refreshRole(ctx, user); err != nil {
		return nil, err
	}

	return s.issueToken(user)
}

func (s *authService) refreshRole(ctx context.Context, user *models.User) error {
	assignment, err := s.repo.User().GetRoleAssignment(ctx, nil, user.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil
		}
		return fmt.Errorf("failed to get role assignment: %w", err)
	}

	if assignment.Role != user.Role {
		user.Role = assignment.Role
		if err := s.repo.User().Update(ctx, nil, user); err != nil {
			return fmt.Errorf("failed to persist refreshed role: %w", err)
		}
		s.logger.Info("Role refreshed from assignment", "user_id", user.ID, "role", user.Role)
	}

	return nil
}

func (s *authService) issueToken(user *models.User) (*AuthResponse, error) {
	expiresAt := time.Now().Add(s.config.JWTExpiry)
	claims := AuthClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &AuthResponse{
		Token:     signed,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

// ===== PASSWORD RESET =====

func (s *authService) ForgotPassword(ctx context.Context, req *ForgotPasswordRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return validator.ToValidationErrors(err)
	}

	user, err := s.repo.User().GetByEmail(ctx, nil, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	token := uuid.NewString()
	expiry := time.Now().Add(resetTokenTTL)
	user.ResetToken = &token
	user.ResetTokenExpiry = &expiry

	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.config.AppURL, token)
	if err := s.mailer.SendResetLink(ctx, user.Email, user.Name, link); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}

	s.logger.Info("Password reset link sent", "user_id", user.ID)
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, req *ResetPasswordRequest) error {
	if errors := s.validator.GetBusinessValidator().ValidatePassword(req.Password); len(errors) > 0 {
		return errors
	}

	user, err := s.repo.User().GetByResetToken(ctx, nil, req.Token)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("failed to get user by reset token: %w", err)
	}

	if user.ResetTokenExpiry == nil || user.ResetTokenExpiry.Before(time.Now()) {
		return ErrInvalidResetToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	hashStr := string(hash)
	user.PasswordHash = &hashStr
	user.ResetToken = nil
	user.ResetTokenExpiry = nil

	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info("Password reset completed", "user_id", user.ID)
	return nil
}

// ===== GOOGLE SIGN-IN =====

type googleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (s *authService) GoogleAuthURL(state string) string {
	if s.config.Google == nil {
		return ""
	}
	return s.config.Google.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (s *authService) GoogleCallback(ctx context.Context, code string) (*AuthResponse, error) {
	if s.config.Google == nil {
		return nil, fmt.Errorf("google sign-in is not configured")
	}

	token, err := s.config.Google.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	info, err := s.fetchGoogleUserInfo(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByEmail(ctx, nil, info.Email)
	if err != nil {
		if !repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}

		// First sign-in via Google creates a pre-verified account
		user = &models.User{
			Name:       info.Name,
			Email:      info.Email,
			Role:       models.RoleStudent,
			IsVerified: true,
		}
		if info.Picture != "" {
			user.ProfileImage = info.Picture
		}
		if err := s.repo.User().Create(ctx, nil, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	} else if !user.IsVerified {
		user.IsVerified = true
		user.VerificationCode = nil
		user.VerificationCodeExpiry = nil
		if err := s.repo.User().Update(ctx, nil, user); err != nil {
			return nil, fmt.Errorf("failed to mark user verified: %w", err)
		}
	}

	if err := s.refreshRole(ctx, user); err != nil {
		return nil, err
	}

	return s.issueToken(user)
}

func (s *authService) fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := s.config.Google.Client(ctx, token)

	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo endpoint returned status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}

	return &info, nil
}

// ===== HELPERS =====

// generateVerificationCode returns a uniform 6-digit code in [100000, 999999]
func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
