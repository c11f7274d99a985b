package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/RSPP-2025/paper-portal/internal/models"
	"github.com/RSPP-2025/paper-portal/internal/services"
	"github.com/RSPP-2025/paper-portal/internal/utils"
	"github.com/RSPP-2025/paper-portal/internal/validator"
)

type HandlerManager struct {
	authHandler       *AuthHandler
	submissionHandler *SubmissionHandler
	paperHandler      *PaperHandler
	userHandler       *UserHandler
	newsHandler       *NewsHandler
	dashboardHandler  *DashboardHandler
	authMiddleware    *JWTAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	jwtSecret string,
) *HandlerManager {
	return &HandlerManager{
		authHandler:       NewAuthHandler(serviceManager.Auth(), validator, logger),
		submissionHandler: NewSubmissionHandler(serviceManager.Submission(), validator, logger),
		paperHandler:      NewPaperHandler(serviceManager.Paper(), validator, logger),
		userHandler:       NewUserHandler(serviceManager.User(), validator, logger),
		newsHandler:       NewNewsHandler(serviceManager.News(), validator, logger),
		dashboardHandler:  NewDashboardHandler(serviceManager.Dashboard(), serviceManager.Export(), logger),
		authMiddleware:    NewJWTAuthMiddleware(jwtSecret),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")

	// Public routes, no token required
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/signup", hm.authHandler.Signup)
			auth.POST("/verify", hm.authHandler.VerifyEmail)
			auth.POST("/resend-code", hm.authHandler.ResendCode)
			auth.POST("/login", hm.authHandler.Login)
			auth.POST("/forgot-password", hm.authHandler.ForgotPassword)
			auth.POST("/reset-password", hm.authHandler.ResetPassword)
			auth.GET("/google", hm.authHandler.GoogleLogin)
			auth.GET("/google/callback", hm.authHandler.GoogleCallback)
		}

		// Announcements are readable without an account
		v1.GET("/news", hm.newsHandler.ListNews)
	}

	// Authenticated routes
	authed := v1.Group("")
	authed.Use(hm.authMiddleware.AuthMiddleware())
	{
		// Roster for the submission people picker
		authed.GET("/users/roster", hm.userHandler.Roster)

		// Submission wizard
		submissions := authed.Group("/submissions")
		{
			submissions.GET("/draft", hm.submissionHandler.GetDraft)
			submissions.POST("/draft/advance", hm.submissionHandler.Advance)
			submissions.POST("/draft/back", hm.submissionHandler.Back)
			submissions.POST("/draft/commit", hm.submissionHandler.Commit)
		}

		// Papers
		papers := authed.Group("/papers")
		{
			papers.GET("", hm.paperHandler.ListPapers)
			papers.GET("/:id", hm.paperHandler.GetPaper)

			// Review updates - Faculty and Admins only
			papers.PATCH("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleFaculty, models.RoleAdmin), hm.paperHandler.UpdatePaper)

			// Deletion - Admins only
			papers.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.paperHandler.DeletePaper)

			// Advisor decisions - Faculty only
			papers.POST("/:id/advisor-decision", hm.authMiddleware.RequireRoleMiddleware(models.RoleFaculty), hm.paperHandler.AdvisorDecision)
		}

		// Admin routes
		admin := authed.Group("/admin")
		admin.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin))
		{
			users := admin.Group("/users")
			{
				users.GET("", hm.userHandler.ListUsers)
				users.GET("/:id", hm.userHandler.GetUser)
				users.PATCH("/:id", hm.userHandler.UpdateUser)
				users.DELETE("/:id", hm.userHandler.DeleteUser)
				users.POST("/assign-role", hm.userHandler.AssignRole)
			}

			news := admin.Group("/news")
			{
				news.POST("", hm.newsHandler.CreateNews)
				news.PATCH("", hm.newsHandler.UpdateNews)
				news.DELETE("", hm.newsHandler.BulkDeleteNews)
			}

			admin.GET("/dashboard/stats", hm.dashboardHandler.GetDashboardStats)
			admin.GET("/export/users", hm.dashboardHandler.ExportUsers)
			admin.GET("/export/papers", hm.dashboardHandler.ExportPapers)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "paper-portal",
		})
	})
}
