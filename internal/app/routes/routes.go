package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/yigit/allotment/internal/app/controllers"
	"github.com/yigit/allotment/internal/app/models"
	"github.com/yigit/allotment/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	recordController *controllers.RecordController,
	healthController *controllers.HealthController,
	authMiddleware *middleware.AuthMiddleware,
) {
	router.GET("/ping", healthController.Ping)
	router.GET("/health", healthController.Health)

	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", authController.Login)
		auth.POST("/logout", authController.Logout)
	}

	// --- Public student lookup ---
	students := v1.Group("/students")
	{
		students.POST("/lookup", recordController.LookupStudent)
		students.GET("/:idno/records", recordController.GetStudentRecords)
	}

	// --- Admin routes ---
	admin := v1.Group("/admin")
	admin.Use(authMiddleware.JWTAuth(), authMiddleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/records", recordController.ListRecords)
		admin.POST("/records/import", recordController.ImportRecords)
		admin.DELETE("/records/:idno", recordController.DeleteStudent)
		admin.DELETE("/records", recordController.DeleteAllRecords)
	}
}
