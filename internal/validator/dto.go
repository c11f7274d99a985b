package validator

// ===== AUTH REQUESTS =====

type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password_strength"`
}

type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6"`
}

type ResendCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,password_strength"`
}

// ===== SUBMISSION WIZARD REQUESTS =====

// DraftUpdateRequest carries the fields a submitter may set before advancing.
// Only the fields owned by the draft's current step are merged and validated.
type DraftUpdateRequest struct {
	Title    *string `json:"title"`
	Abstract *string `json:"abstract"`
	Keywords *string `json:"keywords"`

	AdvisorEmails *[]string       `json:"advisor_emails"`
	ReviewerEmail *string         `json:"reviewer_email"`
	Students      *[]StudentEntry `json:"students"`

	FileName        *string `json:"file_name"`
	FileSize        *int64  `json:"file_size"`
	FileContentType *string `json:"file_content_type"`
}

type StudentEntry struct {
	Email        string `json:"email" validate:"required,email"`
	Contribution string `json:"contribution" validate:"max=500"`
}

// ===== PAPER REQUESTS =====

type PaperUpdateRequest struct {
	Title           *string   `json:"title" validate:"omitempty,min=3,max=300"`
	Abstract        *string   `json:"abstract" validate:"omitempty,min=10"`
	Keywords        *string   `json:"keywords"`
	FilePath        *string   `json:"file_path" validate:"omitempty,max=500"`
	Status          *string   `json:"status" validate:"omitempty,oneof=SUBMITTED UNDER_REVIEW ACCEPTED REJECTED"`
	RejectionRemark *string   `json:"rejection_remark" validate:"omitempty,max=2000"`
	ReviewerID      *string   `json:"reviewer_id"`
}

type AdvisorDecisionRequest struct {
	Decision string `json:"decision" validate:"required,oneof=ACCEPTED DECLINED"`
}

// ===== ADMIN REQUESTS =====

type UserUpdateRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=2,max=100"`
	Position     *string `json:"position" validate:"omitempty,max=100"`
	ProfileImage *string `json:"profile_image" validate:"omitempty,max=500"`
	Role         *string `json:"role" validate:"omitempty,oneof=STUDENT FACULTY ADMIN"`
}

type AssignRoleRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=STUDENT FACULTY ADMIN"`
}

type NewsCreateRequest struct {
	Title              string   `json:"title" validate:"required,min=3,max=300"`
	Content            string   `json:"content" validate:"required"`
	Tags               []string `json:"tags" validate:"omitempty,max=10,dive,max=50"`
	HomePageVisibility bool     `json:"home_page_visibility"`
}

type NewsUpdateRequest struct {
	ID                 string    `json:"id" validate:"required"`
	Title              *string   `json:"title" validate:"omitempty,min=3,max=300"`
	Content            *string   `json:"content"`
	Tags               *[]string `json:"tags" validate:"omitempty,max=10,dive,max=50"`
	HomePageVisibility *bool     `json:"home_page_visibility"`
}

type NewsBulkDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,max=50"`
}
