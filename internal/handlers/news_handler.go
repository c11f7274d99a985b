package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/RSPP-2025/paper-portal/internal/repositories"
	"github.com/RSPP-2025/paper-portal/internal/services"
	"github.com/RSPP-2025/paper-portal/internal/utils"
	"github.com/RSPP-2025/paper-portal/internal/validator"
)

// NewsHandler handles announcement listing and administration
type NewsHandler struct {
	BaseHandler
	newsService services.NewsService
	validator   *validator.Validator
}

func NewNewsHandler(newsService services.NewsService, validator *validator.Validator, logger utils.Logger) *NewsHandler {
	return &NewsHandler{
		BaseHandler: NewBaseHandler(logger),
		newsService: newsService,
		validator:   validator,
	}
}

// ListNews lists announcements, newest first
// @Summary List news
// @Description Lists announcements, optionally only those marked for the home page
// @Tags news
// @Produce json
// @Param home_page query bool false "Only home page announcements"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} SuccessResponse{data=services.NewsListResponse}
// @Failure 500 {object} ErrorResponse
// @Router /news [get]
func (h *NewsHandler) ListNews(c *gin.Context) {
	h.LogRequest(c, "Listing news")

	limit, offset := parsePagination(c)
	filters := repositories.NewsFilters{
		HomePageOnly: c.Query("home_page") == "true",
		Limit:        limit,
		Offset:       offset,
	}

	items, err := h.newsService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

// CreateNews publishes a new announcement
// @Summary Create news
// @Description Publishes an announcement, admin only
// @Tags news
// @Accept json
// @Produce json
// @Param news body services.NewsCreateRequest true "Announcement data"
// @Success 201 {object} SuccessResponse{data=models.NewsItem}
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/news [post]
func (h *NewsHandler) CreateNews(c *gin.Context) {
	var req services.NewsCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating news", "title", req.Title)

	item, err := h.newsService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

// UpdateNews edits an existing announcement
// @Summary Update news
// @Description Updates an announcement's fields, admin only
// @Tags news
// @Accept json
// @Produce json
// @Param news body services.NewsUpdateRequest true "Announcement fields"
// @Success 200 {object} SuccessResponse{data=models.NewsItem}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/news [patch]
func (h *NewsHandler) UpdateNews(c *gin.Context) {
	var req services.NewsUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Updating news", "news_id", req.ID)

	item, err := h.newsService.Update(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// BulkDeleteNews removes a batch of announcements
// @Summary Bulk delete news
// @Description Deletes the given announcements and reports how many were removed, admin only
// @Tags news
// @Accept json
// @Produce json
// @Param ids body services.NewsBulkDeleteRequest true "Announcement IDs"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/news [delete]
func (h *NewsHandler) BulkDeleteNews(c *gin.Context) {
	var req services.NewsBulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Bulk deleting news", "count", len(req.IDs))

	deleted, err := h.newsService.BulkDelete(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "News deleted",
		Data:    gin.H{"deleted": deleted},
	})
}

func (h *NewsHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrNewsNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Announcement not found",
		})
	default:
		h.LogError(c, err, "Unexpected news service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
