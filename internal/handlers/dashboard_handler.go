package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/RSPP-2025/paper-portal/internal/services"
	"github.com/RSPP-2025/paper-portal/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DashboardHandler serves admin statistics and xlsx exports
type DashboardHandler struct {
	BaseHandler
	dashboardService services.DashboardService
	exportService    services.ExportService
}

func NewDashboardHandler(dashboardService services.DashboardService, exportService services.ExportService, logger utils.Logger) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler:      NewBaseHandler(logger),
		dashboardService: dashboardService,
		exportService:    exportService,
	}
}

// GetDashboardStats returns portal-wide counts and recent submissions
// @Summary Get dashboard statistics
// @Description Returns user counts by role, paper counts by status, news count and recent papers
// @Tags dashboard
// @Produce json
// @Success 200 {object} SuccessResponse{data=services.DashboardStats}
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/dashboard/stats [get]
func (h *DashboardHandler) GetDashboardStats(c *gin.Context) {
	h.LogRequest(c, "Getting dashboard stats")

	stats, err := h.dashboardService.GetStats(c.Request.Context())
	if err != nil {
		h.LogError(c, err, "Failed to get dashboard stats")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Failed to get dashboard stats",
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ExportUsers downloads the accounts table as an xlsx workbook
// @Summary Export users
// @Description Downloads all accounts as an xlsx workbook, admin only
// @Tags export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/export/users [get]
func (h *DashboardHandler) ExportUsers(c *gin.Context) {
	h.LogRequest(c, "Exporting users")

	data, err := h.exportService.ExportUsers(c.Request.Context())
	if err != nil {
		h.LogError(c, err, "Failed to export users")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Failed to export users",
		})
		return
	}

	h.sendWorkbook(c, "users", data)
}

// ExportPapers downloads the papers table as an xlsx workbook
// @Summary Export papers
// @Description Downloads all papers as an xlsx workbook, admin only
// @Tags export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/export/papers [get]
func (h *DashboardHandler) ExportPapers(c *gin.Context) {
	h.LogRequest(c, "Exporting papers")

	data, err := h.exportService.ExportPapers(c.Request.Context())
	if err != nil {
		h.LogError(c, err, "Failed to export papers")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Failed to export papers",
		})
		return
	}

	h.sendWorkbook(c, "papers", data)
}

func (h *DashboardHandler) sendWorkbook(c *gin.Context, name string, data []byte) {
	filename := fmt.Sprintf("%s-%s.xlsx", name, time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
