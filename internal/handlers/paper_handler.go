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

// PaperHandler handles research paper listing, review and advisor decisions
type PaperHandler struct {
	BaseHandler
	paperService services.PaperService
	validator    *validator.Validator
}

func NewPaperHandler(paperService services.PaperService, validator *validator.Validator, logger utils.Logger) *PaperHandler {
	return &PaperHandler{
		BaseHandler:  NewBaseHandler(logger),
		paperService: paperService,
		validator:    validator,
	}
}

// GetPaper retrieves a paper with submitter, reviewer, advisor and contributor details
// @Summary Get paper
// @Description Retrieves a paper by its ID with full details
// @Tags papers
// @Produce json
// @Param id path string true "Paper ID"
// @Success 200 {object} SuccessResponse{data=services.PaperResponse}
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /papers/{id} [get]
func (h *PaperHandler) GetPaper(c *gin.Context) {
	id := c.Param("id")

	h.LogRequest(c, "Getting paper", "paper_id", id)

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	paper, err := h.paperService.GetByID(c.Request.Context(), id, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, paper)
}

// ListPapers lists papers visible to the caller
// @Summary List papers
// @Description Lists papers scoped by the caller's role, with status, reviewer, advisor and search filters
// @Tags papers
// @Produce json
// @Param status query string false "Paper status"
// @Param reviewer_id query string false "Reviewer ID"
// @Param advisor_id query string false "Advisor ID"
// @Param submitted_by query string false "Submitter ID"
// @Param search query string false "Search in title and abstract"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} SuccessResponse{data=services.PaperListResponse}
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /papers [get]
func (h *PaperHandler) ListPapers(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	h.LogRequest(c, "Listing papers")

	filters := h.parsePaperFilters(c)

	papers, err := h.paperService.List(c.Request.Context(), filters, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, papers)
}

// UpdatePaper updates a paper's metadata or review status
// @Summary Update paper
// @Description Updates paper fields and status, rejections require a remark
// @Tags papers
// @Accept json
// @Produce json
// @Param id path string true "Paper ID"
// @Param paper body services.PaperUpdateRequest true "Fields to update"
// @Success 200 {object} SuccessResponse{data=services.PaperResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /papers/{id} [patch]
func (h *PaperHandler) UpdatePaper(c *gin.Context) {
	id := c.Param("id")

	var req services.PaperUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Updating paper", "paper_id", id)

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	paper, err := h.paperService.Update(c.Request.Context(), id, &req, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, paper)
}

// DeletePaper removes a paper and its advisor and contributor links
// @Summary Delete paper
// @Description Deletes a paper, admin only
// @Tags papers
// @Produce json
// @Param id path string true "Paper ID"
// @Success 200 {object} SuccessResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /papers/{id} [delete]
func (h *PaperHandler) DeletePaper(c *gin.Context) {
	id := c.Param("id")

	h.LogRequest(c, "Deleting paper", "paper_id", id)

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	if err := h.paperService.Delete(c.Request.Context(), id, userID.(string)); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Paper deleted",
	})
}

// AdvisorDecision records the caller's accept or decline on their advisor assignment
// @Summary Advisor decision
// @Description Accepts or declines the caller's advisor assignment on a paper
// @Tags papers
// @Accept json
// @Produce json
// @Param id path string true "Paper ID"
// @Param decision body services.AdvisorDecisionRequest true "ACCEPTED or DECLINED"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /papers/{id}/advisor-decision [post]
func (h *PaperHandler) AdvisorDecision(c *gin.Context) {
	id := c.Param("id")

	var req services.AdvisorDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Recording advisor decision", "paper_id", id, "decision", req.Decision)

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	if err := h.paperService.AdvisorDecision(c.Request.Context(), id, &req, userID.(string)); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Decision recorded",
	})
}

func (h *PaperHandler) parsePaperFilters(c *gin.Context) repositories.PaperFilters {
	limit, offset := parsePagination(c)

	filters := repositories.PaperFilters{
		Search:    c.Query("search"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
		Limit:     limit,
		Offset:    offset,
	}

	if status := c.Query("status"); status != "" {
		s := models.PaperStatus(status)
		filters.Status = &s
	}
	if reviewerID := c.Query("reviewer_id"); reviewerID != "" {
		filters.ReviewerID = &reviewerID
	}
	if advisorID := c.Query("advisor_id"); advisorID != "" {
		filters.AdvisorID = &advisorID
	}
	if submittedBy := c.Query("submitted_by"); submittedBy != "" {
		filters.SubmittedBy = &submittedBy
	}

	return filters
}

func (h *PaperHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: map[string]interface{}{
				"resource": permissionError.Resource,
				"action":   permissionError.Action,
				"reason":   permissionError.Reason,
			},
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrPaperNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Paper not found",
		})
	case errors.Is(err, services.ErrAdvisorLinkNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "No advisor assignment for this paper",
		})
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Account not found",
		})
	default:
		h.LogError(c, err, "Unexpected paper service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
