package models

import "time"

// ===== PAGINATION & FILTERING =====

type ListUsersParams struct {
	Page   int      `json:"page" validate:"min=0"`
	Limit  int      `json:"limit" validate:"min=1,max=100"`
	Role   UserRole `json:"role"`
	Search string   `json:"search"`
}

type ListPapersParams struct {
	Page        int         `json:"page" validate:"min=0"`
	Size        int         `json:"size" validate:"min=1,max=100"`
	Status      PaperStatus `json:"status"`
	ReviewerID  *string     `json:"reviewer_id"`
	SubmittedBy *string     `json:"submitted_by"`
	Search      string      `json:"search"`
	SortBy      string      `json:"sort_by"`
	SortDir     string      `json:"sort_dir" validate:"omitempty,oneof=asc desc"`
}

type PaginatedResponse struct {
	Content          interface{} `json:"content"`
	TotalElements    int64       `json:"total_elements"`
	TotalPages       int         `json:"total_pages"`
	Size             int         `json:"size"`
	Page             int         `json:"page"`
	First            bool        `json:"first"`
	Last             bool        `json:"last"`
	NumberOfElements int         `json:"number_of_elements"`
	Empty            bool        `json:"empty"`
}

// ===== VALIDATION RESPONSES =====

type ValidationErrorResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value"`
	Code    string `json:"code"`
}

// ===== ERROR RESPONSES =====

type ErrorResponse struct {
	Error            string                    `json:"error"`
	Message          string                    `json:"message"`
	Code             string                    `json:"code"`
	Details          interface{}               `json:"details,omitempty"`
	Timestamp        time.Time                 `json:"timestamp"`
	Path             string                    `json:"path"`
	ValidationErrors []ValidationErrorResponse `json:"validation_errors,omitempty"`
}

type SuccessResponse struct {
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
