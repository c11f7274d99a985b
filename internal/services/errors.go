package services

import (
	"errors"
	"fmt"

	"github.com/RSPP-2025/paper-portal/internal/validator"
)

// ValidationErrors is re-exported so handlers can match it with errors.As
type ValidationErrors = validator.ValidationErrors

// ===== SENTINEL ERRORS =====

var (
	// Account errors
	ErrUserNotFound           = errors.New("user not found")
	ErrEmailAlreadyRegistered = errors.New("email is already registered")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrAccountNotVerified     = errors.New("account email is not verified")
	ErrCodeMismatch           = errors.New("verification code does not match")
	ErrInvalidResetToken      = errors.New("reset token is invalid or expired")

	// Submission errors
	ErrDraftNotFound         = errors.New("submission draft not found")
	ErrDraftInvalidStep      = errors.New("submission draft is not at the required step")
	ErrUploadFailed          = errors.New("file upload failed")
	ErrSubmissionInProgress  = errors.New("a submission is already being processed")
	ErrPersonNotFound        = errors.New("referenced person not found")
	ErrPersonNotFaculty      = errors.New("referenced person is not a faculty member")

	// Paper errors
	ErrPaperNotFound       = errors.New("paper not found")
	ErrAdvisorLinkNotFound = errors.New("advisor assignment not found")

	// News errors
	ErrNewsNotFound = errors.New("news item not found")
)

// ===== STRUCTURED ERRORS =====

// PermissionError carries who tried to do what to which resource
type PermissionError struct {
	UserID     string
	ResourceID string
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s cannot %s %s %s: %s", e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func NewPermissionError(userID, resourceID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// BusinessRuleError represents a domain rule violation
type BusinessRuleError struct {
	Rule    string
	Message string
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", e.Rule, e.Message)
}

func NewBusinessRuleError(rule, message string) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
	}
}
