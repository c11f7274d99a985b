package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/RSPP-2025/paper-portal/internal/services"
	"github.com/RSPP-2025/paper-portal/internal/utils"
	"github.com/RSPP-2025/paper-portal/internal/validator"
)

// SubmissionHandler handles the multi-step paper submission wizard
type SubmissionHandler struct {
	BaseHandler
	submissionService services.SubmissionService
	validator         *validator.Validator
}

func NewSubmissionHandler(submissionService services.SubmissionService, validator *validator.Validator, logger utils.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		BaseHandler:       NewBaseHandler(logger),
		submissionService: submissionService,
		validator:         validator,
	}
}

// GetDraft returns the caller's current wizard state
// @Summary Get submission draft
// @Description Returns the caller's in-progress submission draft, creating one at step 1 if none exists
// @Tags submissions
// @Produce json
// @Success 200 {object} SuccessResponse{data=services.SubmissionDraft}
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /submissions/draft [get]
func (h *SubmissionHandler) GetDraft(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	h.LogRequest(c, "Getting submission draft")

	draft, err := h.submissionService.GetDraft(c.Request.Context(), userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, draft)
}

// Advance merges the current step's fields and moves the draft forward
// @Summary Advance submission draft
// @Description Merges the current step's fields, validates them and moves to the next step
// @Tags submissions
// @Accept json
// @Produce json
// @Param draft body services.DraftUpdateRequest true "Fields for the current step"
// @Success 200 {object} SuccessResponse{data=services.SubmissionDraft}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /submissions/draft/advance [post]
func (h *SubmissionHandler) Advance(c *gin.Context) {
	var req services.DraftUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	h.LogRequest(c, "Advancing submission draft")

	draft, err := h.submissionService.Advance(c.Request.Context(), userID.(string), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, draft)
}

// Back moves the draft one step backwards
// @Summary Step submission draft back
// @Description Moves the draft one step backwards, preserving entered values
// @Tags submissions
// @Produce json
// @Success 200 {object} SuccessResponse{data=services.SubmissionDraft}
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /submissions/draft/back [post]
func (h *SubmissionHandler) Back(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	h.LogRequest(c, "Stepping submission draft back")

	draft, err := h.submissionService.Back(c.Request.Context(), userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, draft)
}

// Commit finalizes the draft into a submitted paper
// @Summary Commit submission
// @Description Uploads the manuscript, resolves people and creates the paper in one transaction
// @Tags submissions
// @Accept multipart/form-data
// @Produce json
// @Param file formData file false "Manuscript file (pdf, doc or docx)"
// @Success 201 {object} SuccessResponse{data=services.CommitResult}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /submissions/draft/commit [post]
func (h *SubmissionHandler) Commit(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	h.LogRequest(c, "Committing submission draft")

	var commitFile *services.CommitFile
	fileHeader, err := c.FormFile("file")
	if err == nil && fileHeader != nil {
		opened, openErr := fileHeader.Open()
		if openErr != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Could not read uploaded file",
				Details: openErr.Error(),
			})
			return
		}
		defer opened.Close()

		commitFile = &services.CommitFile{
			Name:        fileHeader.Filename,
			Size:        fileHeader.Size,
			ContentType: fileHeader.Header.Get("Content-Type"),
			Reader:      opened,
		}
	}

	result, err := h.submissionService.Commit(c.Request.Context(), userID.(string), commitFile)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *SubmissionHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: businessRuleError.Message,
			Details: map[string]interface{}{
				"rule": businessRuleError.Rule,
			},
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrDraftNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "No submission draft in progress",
		})
	case errors.Is(err, services.ErrDraftInvalidStep):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Draft cannot advance past the review step",
		})
	case errors.Is(err, services.ErrUploadFailed):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Manuscript upload was rejected",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrSubmissionInProgress):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "A submission is already being processed for this account",
		})
	case errors.Is(err, services.ErrPersonNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "A referenced person was not found",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrPersonNotFaculty):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Reviewers and advisors must be faculty members",
			Details: err.Error(),
		})
	default:
		h.LogError(c, err, "Unexpected submission service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
