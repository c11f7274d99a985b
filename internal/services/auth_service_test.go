package services

import (
	"context"
	"log/slog"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/RSPP-2025/paper-portal/internal/events"
	"github.com/RSPP-2025/paper-portal/internal/models"
	"github.com/RSPP-2025/paper-portal/internal/repositories"
	"github.com/RSPP-2025/paper-portal/internal/validator"
)

// fakeUserRepo is an in-memory UserRepository keyed by email.
type fakeUserRepo struct {
	users       map[string]*models.User
	assignments map[string]*models.RoleAssignment
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:       make(map[string]*models.User),
		assignments: make(map[string]*models.RoleAssignment),
	}
}

func (f *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	if user.ID == "" {
		user.ID = "user-" + user.Email
	}
	f.users[user.Email] = user
	return nil
}

func (f *fakeUserRepo) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	f.users[user.Email] = user
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	for email, u := range f.users {
		if u.ID == id {
			delete(f.users, email)
		}
	}
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*models.User, error) {
	var out []*models.User
	for _, email := range emails {
		if u, ok := f.users[email]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) GetByResetToken(ctx context.Context, tx *gorm.DB, token string) (*models.User, error) {
	for _, u := range f.users {
		if u.ResetToken != nil && *u.ResetToken == token {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	var out []*models.User
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (f *fakeUserRepo) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	_, ok := f.users[email]
	return ok, nil
}

func (f *fakeUserRepo) GetRoleAssignment(ctx context.Context, tx *gorm.DB, email string) (*models.RoleAssignment, error) {
	if a, ok := f.assignments[email]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) UpsertRoleAssignment(ctx context.Context, tx *gorm.DB, email string, role models.UserRole) error {
	f.assignments[email] = &models.RoleAssignment{Email: email, Role: role}
	return nil
}

// fakeRepo wires the fake repos into the Repository aggregate.
type fakeRepo struct {
	user  *fakeUserRepo
	paper repositories.PaperRepository
}

func (f *fakeRepo) User() repositories.UserRepository           { return f.user }
func (f *fakeRepo) Paper() repositories.PaperRepository         { return f.paper }
func (f *fakeRepo) News() repositories.NewsRepository           { return nil }
func (f *fakeRepo) Dashboard() repositories.DashboardRepository { return nil }
func (f *fakeRepo) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(f)
}
func (f *fakeRepo) Ping(ctx context.Context) error { return nil }
func (f *fakeRepo) Close() error                   { return nil }

// fakeMailer records the last code and link sent per address.
type fakeMailer struct {
	codes map[string]string
	links map[string]string
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{codes: make(map[string]string), links: make(map[string]string)}
}

func (m *fakeMailer) SendVerificationCode(ctx context.Context, to, name, code string) error {
	m.codes[to] = code
	return nil
}

func (m *fakeMailer) SendResetLink(ctx context.Context, to, name, link string) error {
	m.links[to] = link
	return nil
}

func newTestAuthService(t *testing.T) (AuthService, *fakeUserRepo, *fakeMailer) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	userRepo := newFakeUserRepo()
	repo := &fakeRepo{user: userRepo}
	mail := newFakeMailer()
	notifier := NewNotificationEventService(repo, events.NewMockEventPublisher(logger), logger, validator.New())

	svc := NewAuthService(repo, nil, logger, validator.New(), mail, notifier, AuthConfig{
		JWTSecret: "test-secret",
		JWTExpiry: time.Hour,
		AppURL:    "http://localhost:8080",
	})

	return svc, userRepo, mail
}

func TestAuthService_SignupAndVerify(t *testing.T) {
	svc, userRepo, mail := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Signup(ctx, &SignupRequest{
		Name:     "Test Student",
		Email:    "student@university.edu",
		Password: "Abcdef1!",
	})
	require.NoError(t, err)
	require.False(t, user.IsVerified)
	require.NotNil(t, user.VerificationCode)
	require.Regexp(t, regexp.MustCompile(`^\d{6}$`), *user.VerificationCode)
	require.Equal(t, *user.VerificationCode, mail.codes["student@university.edu"])

	// Duplicate signup is rejected
	_, err = svc.Signup(ctx, &SignupRequest{
		Name:     "Test Student",
		Email:    "student@university.edu",
		Password: "Abcdef1!",
	})
	require.ErrorIs(t, err, ErrEmailAlreadyRegistered)

	// Login before verification is refused
	_, err = svc.Login(ctx, &LoginRequest{Email: "student@university.edu", Password: "Abcdef1!"})
	require.ErrorIs(t, err, ErrAccountNotVerified)

	// Wrong code does not verify
	_, err = svc.VerifyEmail(ctx, &VerifyEmailRequest{Email: "student@university.edu", Code: "000000"})
	require.ErrorIs(t, err, ErrCodeMismatch)

	// Correct code verifies and clears the stored code
	userID, err := svc.VerifyEmail(ctx, &VerifyEmailRequest{
		Email: "student@university.edu",
		Code:  *user.VerificationCode,
	})
	require.NoError(t, err)
	require.Equal(t, user.ID, userID)

	stored := userRepo.users["student@university.edu"]
	require.True(t, stored.IsVerified)
	require.Nil(t, stored.VerificationCode)

	// The code is one-shot; a second verify fails
	_, err = svc.VerifyEmail(ctx, &VerifyEmailRequest{
		Email: "student@university.edu",
		Code:  mail.codes["student@university.edu"],
	})
	require.ErrorIs(t, err, ErrCodeMismatch)

	// Login now succeeds and issues a token
	resp, err := svc.Login(ctx, &LoginRequest{Email: "student@university.edu", Password: "Abcdef1!"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	require.Equal(t, models.RoleStudent, resp.User.Role)
}

func TestAuthService_ResendCodeReplacesPending(t *testing.T) {
	svc, userRepo, mail := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Signup(ctx, &SignupRequest{
		Name:     "Resend Student",
		Email:    "resend@university.edu",
		Password: "Abcdef1!",
	})
	require.NoError(t, err)

	firstCode := *user.VerificationCode
	firstExpiry := *user.VerificationCodeExpiry

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, svc.ResendCode(ctx, &ResendCodeRequest{Email: "resend@university.edu"}))

	stored := userRepo.users["resend@university.edu"]
	require.True(t, stored.VerificationCodeExpiry.After(firstExpiry))
	require.Equal(t, *stored.VerificationCode, mail.codes["resend@university.edu"])

	// The first code no longer works once replaced, unless the codes collide
	if firstCode != *stored.VerificationCode {
		_, err = svc.VerifyEmail(ctx, &VerifyEmailRequest{Email: "resend@university.edu", Code: firstCode})
		require.ErrorIs(t, err, ErrCodeMismatch)
	}
}

func TestAuthService_LoginRefreshesRoleFromAssignment(t *testing.T) {
	svc, userRepo, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Signup(ctx, &SignupRequest{
		Name:     "Promoted Student",
		Email:    "promoted@university.edu",
		Password: "Abcdef1!",
	})
	require.NoError(t, err)

	_, err = svc.VerifyEmail(ctx, &VerifyEmailRequest{
		Email: "promoted@university.edu",
		Code:  *user.VerificationCode,
	})
	require.NoError(t, err)

	// Admin assigns a faculty role before the next login
	require.NoError(t, userRepo.UpsertRoleAssignment(ctx, nil, "promoted@university.edu", models.RoleFaculty))

	resp, err := svc.Login(ctx, &LoginRequest{Email: "promoted@university.edu", Password: "Abcdef1!"})
	require.NoError(t, err)
	require.Equal(t, models.RoleFaculty, resp.User.Role)
	require.Equal(t, models.RoleFaculty, userRepo.users["promoted@university.edu"].Role)
}

func TestAuthService_ResetPassword(t *testing.T) {
	svc, userRepo, mail := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Signup(ctx, &SignupRequest{
		Name:     "Forgetful Student",
		Email:    "forgetful@university.edu",
		Password: "Abcdef1!",
	})
	require.NoError(t, err)

	_, err = svc.VerifyEmail(ctx, &VerifyEmailRequest{
		Email: "forgetful@university.edu",
		Code:  *user.VerificationCode,
	})
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword(ctx, &ForgotPasswordRequest{Email: "forgetful@university.edu"}))
	require.Contains(t, mail.links["forgetful@university.edu"], "reset-password?token=")

	stored := userRepo.users["forgetful@university.edu"]
	require.NotNil(t, stored.ResetToken)
	token := *stored.ResetToken

	// Weak replacement passwords are rejected before the token is consumed
	err = svc.ResetPassword(ctx, &ResetPasswordRequest{Token: token, Password: "short"})
	var validationErrors ValidationErrors
	require.ErrorAs(t, err, &validationErrors)

	// Unknown token is rejected
	err = svc.ResetPassword(ctx, &ResetPasswordRequest{Token: "bogus", Password: "Newpass1!"})
	require.ErrorIs(t, err, ErrInvalidResetToken)

	// Expired token is rejected
	expired := time.Now().Add(-time.Minute)
	stored.ResetTokenExpiry = &expired
	err = svc.ResetPassword(ctx, &ResetPasswordRequest{Token: token, Password: "Newpass1!"})
	require.ErrorIs(t, err, ErrInvalidResetToken)

	// Valid token within its lifetime changes the password
	fresh := time.Now().Add(resetTokenTTL)
	stored.ResetTokenExpiry = &fresh
	require.NoError(t, svc.ResetPassword(ctx, &ResetPasswordRequest{Token: token, Password: "Newpass1!"}))

	_, err = svc.Login(ctx, &LoginRequest{Email: "forgetful@university.edu", Password: "Abcdef1!"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	resp, err := svc.Login(ctx, &LoginRequest{Email: "forgetful@university.edu", Password: "Newpass1!"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
}
