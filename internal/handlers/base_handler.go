package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/RSPP-2025/paper-portal/internal/models"
	"github.com/RSPP-2025/paper-portal/internal/utils"
)

// Response shapes shared by every handler.
type ErrorResponse = models.ErrorResponse
type SuccessResponse = models.SuccessResponse

// BaseHandler provides the logging helpers every handler embeds.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs an incoming request with the request-scoped logger.
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	logger := utils.FromContext(c.Request.Context(), h.logger)
	args = append(args, "method", c.Request.Method, "path", c.Request.URL.Path)
	logger.Info(msg, args...)
}

// LogError logs an unexpected error with the request-scoped logger.
func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	logger := utils.FromContext(c.Request.Context(), h.logger)
	args = append(args, "error", err, "method", c.Request.Method, "path", c.Request.URL.Path)
	logger.Error(msg, args...)
}

// parsePagination reads page/size query params and converts them to
// limit/offset. Page starts at 1, size is capped at 100.
func parsePagination(c *gin.Context) (limit, offset int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	if size < 1 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return size, (page - 1) * size
}
