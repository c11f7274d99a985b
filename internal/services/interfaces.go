package services

import (
	"context"
	"io"
	"time"

	"github.com/RSPP-2025/paper-portal/internal/models"
	"github.com/RSPP-2025/paper-portal/internal/repositories"
	"github.com/RSPP-2025/paper-portal/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type SignupRequest = validator.SignupRequest
type VerifyEmailRequest = validator.VerifyEmailRequest
type ResendCodeRequest = validator.ResendCodeRequest
type LoginRequest = validator.LoginRequest
type ForgotPasswordRequest = validator.ForgotPasswordRequest
type ResetPasswordRequest = validator.ResetPasswordRequest

// Use business validator types
type DraftUpdateRequest = validator.DraftUpdateRequest
type StudentEntry = validator.StudentEntry
type PaperUpdateRequest = validator.PaperUpdateRequest
type AdvisorDecisionRequest = validator.AdvisorDecisionRequest
type UserUpdateRequest = validator.UserUpdateRequest
type AssignRoleRequest = validator.AssignRoleRequest
type NewsCreateRequest = validator.NewsCreateRequest
type NewsUpdateRequest = validator.NewsUpdateRequest
type NewsBulkDeleteRequest = validator.NewsBulkDeleteRequest

type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// ===== SUBMISSION RELATED DTOs =====

// Draft steps for the submission wizard
const (
	StepDetails = 1
	StepPeople  = 2
	StepFile    = 3
	StepReview  = 4
)

// SubmissionDraft is the server-tracked wizard state, stored in Redis
// under draft:<userID> and expired after 24 hours of inactivity.
type SubmissionDraft struct {
	UserID string `json:"user_id"`
	Step   int    `json:"step"`

	Title    string `json:"title"`
	Abstract string `json:"abstract"`
	Keywords string `json:"keywords"`

	AdvisorEmails []string       `json:"advisor_emails"`
	ReviewerEmail string         `json:"reviewer_email"`
	Students      []StudentEntry `json:"students"`

	FileName        string `json:"file_name"`
	FileSize        int64  `json:"file_size"`
	FileContentType string `json:"file_content_type"`

	UpdatedAt time.Time `json:"updated_at"`
}

// CommitFile carries the uploaded file at commit time
type CommitFile struct {
	Name        string
	Size        int64
	ContentType string
	Reader      io.Reader
}

type CommitResult struct {
	PaperID string `json:"paper_id"`
}

// ===== PAPER RELATED DTOs =====

type PaperResponse struct {
	*models.ResearchPaper
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

type PaperListResponse struct {
	Papers []*PaperResponse `json:"papers"`
	Total  int64            `json:"total"`
	Page   int              `json:"page"`
	Size   int              `json:"size"`
}

// ===== USER RELATED DTOs =====

type UserListResponse struct {
	Users []*models.User `json:"users"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
}

// RosterEntry is the minimal user shape the submission people picker needs
type RosterEntry struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Email string          `json:"email"`
	Role  models.UserRole `json:"role"`
}

// ===== NEWS RELATED DTOs =====

type NewsListResponse struct {
	Items []*models.NewsItem `json:"items"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Size  int                `json:"size"`
}

// ===== DASHBOARD RELATED DTOs =====

type DashboardStats struct {
	UsersByRole    map[models.UserRole]int64    `json:"users_by_role"`
	PapersByStatus map[models.PaperStatus]int64 `json:"papers_by_status"`
	NewsCount      int64                        `json:"news_count"`
	RecentPapers   []*models.ResearchPaper      `json:"recent_papers"`
	GeneratedAt    time.Time                    `json:"generated_at"`
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	// Verification workflow
	Signup(ctx context.Context, req *SignupRequest) (*models.User, error)
	VerifyEmail(ctx context.Context, req *VerifyEmailRequest) (string, error)
	ResendCode(ctx context.Context, req *ResendCodeRequest) error

	// Credential sign-in
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)

	// Password reset
	ForgotPassword(ctx context.Context, req *ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req *ResetPasswordRequest) error

	// Google sign-in
	GoogleAuthURL(state string) string
	GoogleCallback(ctx context.Context, code string) (*AuthResponse, error)
}

type SubmissionService interface {
	// Draft lifecycle, keyed by the caller's identity
	GetDraft(ctx context.Context, userID string) (*SubmissionDraft, error)
	Advance(ctx context.Context, userID string, req *DraftUpdateRequest) (*SubmissionDraft, error)
	Back(ctx context.Context, userID string) (*SubmissionDraft, error)

	// Final commit: upload, resolve people, persist, publish, clear draft
	Commit(ctx context.Context, userID string, file *CommitFile) (*CommitResult, error)
}

type PaperService interface {
	GetByID(ctx context.Context, id string, userID string) (*PaperResponse, error)
	List(ctx context.Context, filters repositories.PaperFilters, userID string) (*PaperListResponse, error)
	Update(ctx context.Context, id string, req *PaperUpdateRequest, userID string) (*PaperResponse, error)
	Delete(ctx context.Context, id string, userID string) error

	// Advisor accepts or declines their own assignment
	AdvisorDecision(ctx context.Context, paperID string, req *AdvisorDecisionRequest, advisorID string) error
}

type UserService interface {
	List(ctx context.Context, filters repositories.UserFilters) (*UserListResponse, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id string, req *UserUpdateRequest) (*models.User, error)
	Delete(ctx context.Context, id string) error
	AssignRole(ctx context.Context, req *AssignRoleRequest) error

	// Roster for the submission people picker
	Roster(ctx context.Context) ([]*RosterEntry, error)
}

type NewsService interface {
	List(ctx context.Context, filters repositories.NewsFilters) (*NewsListResponse, error)
	Create(ctx context.Context, req *NewsCreateRequest) (*models.NewsItem, error)
	Update(ctx context.Context, req *NewsUpdateRequest) (*models.NewsItem, error)
	BulkDelete(ctx context.Context, req *NewsBulkDeleteRequest) (int64, error)
}

type DashboardService interface {
	GetStats(ctx context.Context) (*DashboardStats, error)
}

type ExportService interface {
	ExportUsers(ctx context.Context) ([]byte, error)
	ExportPapers(ctx context.Context) ([]byte, error)
}

type NotificationEventService interface {
	NotifyUserRegistered(ctx context.Context, user *models.User) error
	NotifyUserVerified(ctx context.Context, user *models.User) error
	NotifyPaperSubmitted(ctx context.Context, paper *models.ResearchPaper, advisorIDs []string) error
	NotifyPaperStatusChanged(ctx context.Context, paper *models.ResearchPaper, previous models.PaperStatus, changedBy string) error
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	// Core service getters
	Auth() AuthService
	Submission() SubmissionService
	Paper() PaperService
	User() UserService
	News() NewsService
	Dashboard() DashboardService
	Export() ExportService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
