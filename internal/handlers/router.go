package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/training-service/internal/services"
	"github.com/SAP-F-2025/training-service/internal/utils"
	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	authHandler    *AuthHandler
	userHandler    *UserHandler
	catalogHandler *CatalogHandler
	adminHandler   *AdminHandler
	reportHandler  *ReportHandler

	authService services.AuthService
	sessions    *scs.SessionManager
	logger      utils.Logger
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	sessions *scs.SessionManager,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		authHandler: NewAuthHandler(serviceManager.Auth(), sessions, logger),
		userHandler: NewUserHandler(serviceManager.User(), serviceManager.Assignment(), serviceManager.Report(), logger),
		catalogHandler: NewCatalogHandler(
			serviceManager.Department(),
			serviceManager.Level(),
			serviceManager.Training(),
			serviceManager.TrainingSection(),
			logger,
		),
		adminHandler: NewAdminHandler(
			serviceManager.User(),
			serviceManager.Assignment(),
			serviceManager.Report(),
			serviceManager.Audit(),
			logger,
		),
		reportHandler: NewReportHandler(serviceManager.Report(), logger),

		authService: serviceManager.Auth(),
		sessions:    sessions,
		logger:      logger,
	}
}

// SetupRoutes sets up all routes. The engine must be served behind the
// session manager's LoadAndSave.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	router.Use(SessionPrincipal(hm.sessions, hm.authService, hm.logger))

	auth := router.Group("/auth")
	{
		auth.POST("/login", hm.authHandler.Login)
		auth.POST("/logout", hm.authHandler.Logout)
		auth.POST("/register", hm.authHandler.Register)
		auth.GET("/departments", hm.catalogHandler.ListDepartments)
		auth.GET("/me", hm.authHandler.Me)
		auth.POST("/change-password", RequireAuth(), hm.authHandler.ChangePassword)
	}

	user := router.Group("/user", RequireAuth())
	{
		user.GET("/dashboard", hm.userHandler.Dashboard)
		user.GET("/profile", hm.userHandler.GetProfile)
		user.PUT("/profile", hm.userHandler.UpdateProfile)
		user.GET("/career-path", hm.userHandler.CareerPath)

		trainings := user.Group("/trainings")
		{
			trainings.GET("", hm.userHandler.ListTrainings)
			trainings.GET("/:training_id", hm.userHandler.TrainingDetail)
			trainings.POST("/:training_id/start", hm.userHandler.StartTraining)
			trainings.POST("/:training_id/complete", hm.userHandler.CompleteTraining)
		}
	}

	admin := router.Group("/admin", RequireAdmin())
	{
		admin.GET("", hm.adminHandler.Overview)

		departments := admin.Group("/departments")
		{
			departments.GET("", hm.catalogHandler.ListDepartments)
			departments.POST("", hm.catalogHandler.CreateDepartment)
			departments.GET("/:id", hm.catalogHandler.GetDepartment)
			departments.PUT("/:id", hm.catalogHandler.UpdateDepartment)
			departments.DELETE("/:id", hm.catalogHandler.DeleteDepartment)
		}

		levels := admin.Group("/levels")
		{
			levels.GET("", hm.catalogHandler.ListLevels)
			levels.POST("", hm.catalogHandler.CreateLevel)
			levels.GET("/:id", hm.catalogHandler.GetLevel)
			levels.PUT("/:id", hm.catalogHandler.UpdateLevel)
			levels.DELETE("/:id", hm.catalogHandler.DeleteLevel)
		}

		trainings := admin.Group("/trainings")
		{
			trainings.GET("", hm.catalogHandler.ListTrainings)
			trainings.POST("", hm.catalogHandler.CreateTraining)
			trainings.GET("/:id", hm.catalogHandler.GetTraining)
			trainings.PUT("/:id", hm.catalogHandler.UpdateTraining)
			trainings.DELETE("/:id", hm.catalogHandler.DeleteTraining)
		}

		sections := admin.Group("/training-sections")
		{
			sections.GET("", hm.catalogHandler.ListSections)
			sections.POST("", hm.catalogHandler.CreateSection)
			sections.DELETE("/:id", hm.catalogHandler.DeleteSection)
		}

		users := admin.Group("/users")
		{
			users.GET("", hm.adminHandler.ListUsers)
			users.POST("", hm.adminHandler.CreateUser)
			users.GET("/:id", hm.adminHandler.GetUser)
			users.PUT("/:id", hm.adminHandler.UpdateUser)
			users.DELETE("/:id", hm.adminHandler.DeleteUser)
			users.PUT("/:id/password", hm.adminHandler.SetUserPassword)
			users.GET("/:id/trainings", hm.adminHandler.UserTrainingIDs)
			users.POST("/:id/trainings", hm.adminHandler.AssignUserTrainings)
		}

		admin.GET("/user-assignments", hm.adminHandler.ListAssignments)
		admin.POST("/user-assignments", hm.adminHandler.CreateAssignments)
		admin.GET("/audit-logs", hm.adminHandler.ListAuditLogs)
	}

	reports := router.Group("/reports", RequireAdmin())
	{
		reports.GET("/department-trainings", hm.reportHandler.DepartmentTrainings)
		reports.GET("/department-trainings/:department_id/export", hm.reportHandler.ExportDepartmentTrainings)
	}
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "training-service",
	})
}
