package validator

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/RSPP-2025/paper-portal/internal/models"
	"github.com/go-playground/validator/v10"
)

// Upload constraints for paper files.
const (
	MaxUploadBytes = int64(10 << 20) // 10 MiB
)

var allowedUploadTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateSignup validates account creation business rules
func (bv *BusinessValidator) ValidateSignup(req *SignupRequest) ValidationErrors {
	return bv.Validate(req)
}

// ValidatePassword checks a password against the portal policy: at least 8
// characters containing a lowercase letter, an uppercase letter, a digit and
// a symbol.
func (bv *BusinessValidator) ValidatePassword(password string) ValidationErrors {
	if passwordMeetsPolicy(password) {
		return nil
	}

	return ValidationErrors{{
		Field:   "password",
		Message: "must be at least 8 characters with a lowercase letter, an uppercase letter, a digit and a symbol",
		Rule:    "password_strength",
	}}
}

// ValidateDraftDetails validates the first wizard step.
func (bv *BusinessValidator) ValidateDraftDetails(title, abstract, keywords string) ValidationErrors {
	var errors ValidationErrors

	if len(strings.TrimSpace(title)) < 3 {
		errors = append(errors, ValidationError{
			Field:   "title",
			Message: "must be at least 3 characters",
			Value:   title,
			Rule:    "min",
		})
	}

	if len(strings.TrimSpace(abstract)) < 10 {
		errors = append(errors, ValidationError{
			Field:   "abstract",
			Message: "must be at least 10 characters",
			Value:   abstract,
			Rule:    "min",
		})
	}

	if len(ParseKeywords(keywords)) == 0 {
		errors = append(errors, ValidationError{
			Field:   "keywords",
			Message: "at least one keyword is required",
			Value:   keywords,
			Rule:    "required",
		})
	}

	return errors
}

// ValidateDraftPeople validates the second wizard step.
func (bv *BusinessValidator) ValidateDraftPeople(advisorEmails []string, reviewerEmail string, students []StudentEntry) ValidationErrors {
	var errors ValidationErrors

	if len(advisorEmails) == 0 {
		errors = append(errors, ValidationError{
			Field:   "advisor_emails",
			Message: "at least one advisor is required",
			Rule:    "min",
		})
	}
	for i, email := range advisorEmails {
		if bv.validate.Var(email, "required,email") != nil {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("advisor_emails[%d]", i),
				Message: "must be a valid email address",
				Value:   email,
				Rule:    "email",
			})
		}
	}

	if bv.validate.Var(reviewerEmail, "required,email") != nil {
		errors = append(errors, ValidationError{
			Field:   "reviewer_email",
			Message: "exactly one reviewer with a valid email address is required",
			Value:   reviewerEmail,
			Rule:    "email",
		})
	}

	if len(students) == 0 {
		errors = append(errors, ValidationError{
			Field:   "students",
			Message: "at least one student author is required",
			Rule:    "min",
		})
	}
	for i, student := range students {
		if bv.validate.Var(student.Email, "required,email") != nil {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("students[%d].email", i),
				Message: "must be a valid email address",
				Value:   student.Email,
				Rule:    "email",
			})
		}
	}

	return errors
}

// ValidateDraftFile validates the upload metadata collected in the third
// wizard step. The same checks run again at commit before any upload.
func (bv *BusinessValidator) ValidateDraftFile(name string, size int64, contentType string) ValidationErrors {
	var errors ValidationErrors

	if strings.TrimSpace(name) == "" {
		errors = append(errors, ValidationError{
			Field:   "file_name",
			Message: "a file must be selected",
			Rule:    "required",
		})
	}

	if size > MaxUploadBytes {
		errors = append(errors, ValidationError{
			Field:   "file_size",
			Message: fmt.Sprintf("file exceeds the %d MB limit", MaxUploadBytes>>20),
			Value:   size,
			Rule:    "max",
		})
	}

	if !allowedUploadTypes[contentType] {
		errors = append(errors, ValidationError{
			Field:   "file_content_type",
			Message: "file must be a PDF or Word document",
			Value:   contentType,
			Rule:    "oneof",
		})
	}

	return errors
}

// ValidateStatusTransition validates review status transitions.
func (bv *BusinessValidator) ValidateStatusTransition(current, next models.PaperStatus, remark *string) ValidationErrors {
	var errors ValidationErrors

	allowedTransitions := map[models.PaperStatus][]models.PaperStatus{
		models.PaperSubmitted:   {models.PaperUnderReview},
		models.PaperUnderReview: {models.PaperAccepted, models.PaperRejected},
		models.PaperAccepted:    {},
		models.PaperRejected:    {models.PaperUnderReview},
	}

	allowed := false
	for _, status := range allowedTransitions[current] {
		if next == status {
			allowed = true
			break
		}
	}

	if !allowed {
		errors = append(errors, ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("cannot transition from %s to %s", current, next),
			Value:   next,
			Rule:    "status_transition",
		})
	}

	if next == models.PaperRejected && (remark == nil || strings.TrimSpace(*remark) == "") {
		errors = append(errors, ValidationError{
			Field:   "rejection_remark",
			Message: "a remark is required when rejecting a paper",
			Rule:    "required",
		})
	}

	return errors
}

// ParseKeywords splits a raw comma-separated keyword string. Order is kept
// and duplicates are not removed.
func ParseKeywords(raw string) []string {
	parts := strings.Split(raw, ",")
	keywords := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			keywords = append(keywords, trimmed)
		}
	}
	return keywords
}

func passwordMeetsPolicy(password string) bool {
	if len(password) < 8 {
		return false
	}

	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}

	return hasLower && hasUpper && hasDigit && hasSymbol
}

// registerBusinessRules registers custom validators used by request structs.
func (bv *BusinessValidator) registerBusinessRules() {
	bv.validate.RegisterValidation("password_strength", func(fl validator.FieldLevel) bool {
		return passwordMeetsPolicy(fl.Field().String())
	})

	bv.validate.RegisterValidation("paper_status", func(fl validator.FieldLevel) bool {
		status := models.PaperStatus(fl.Field().String())
		switch status {
		case models.PaperSubmitted, models.PaperUnderReview, models.PaperAccepted, models.PaperRejected:
			return true
		}
		return false
	})

	bv.validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		role := models.UserRole(fl.Field().String())
		switch role {
		case models.RoleStudent, models.RoleFaculty, models.RoleAdmin:
			return true
		}
		return false
	})
}
