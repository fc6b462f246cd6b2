package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/freshroots/admin-service/internal/api"
	"github.com/freshroots/admin-service/internal/db"
	"github.com/freshroots/admin-service/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	zaplog, err := logging.New(os.Getenv("LOG_LEVEL"))
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zaplog.Sync()

	zaplog.Info("admin service starting",
		zap.String("git_sha", os.Getenv("GIT_SHA")),
		zap.String("build_time", os.Getenv("BUILD_TIME")),
	)

	// Initialize database connection (non-fatal to allow liveness health checks)
	database, err := db.NewDatabase(zaplog)
	if err != nil {
		zaplog.Warn("database initialization failed at startup", zap.Error(err))
	}
	if database != nil {
		defer database.Close()
	}

	// Initialize handlers
	handler := api.NewHandler(database, zaplog)

	// Set up Gin router
	router := setupRouter(handler, zaplog)

	// Get port from environment or use default
	port := os.Getenv("ADMIN_PORT")
	if port == "" {
		port = "8084"
	}

	// Set up graceful shutdown
	go func() {
		zaplog.Info("starting admin service", zap.String("port", port))
		if err := router.Run(":" + port); err != nil {
			zaplog.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zaplog.Info("shutting down admin service")
}

func setupRouter(handler *api.Handler, zaplog *zap.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add middleware
	router.Use(logging.RequestLogger(zaplog))
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	// Health and readiness endpoints
	router.GET("/live", func(c *gin.Context) { c.Status(200) })
	router.GET("/ready", handler.Health)
	router.GET("/health", func(c *gin.Context) { c.Status(200) })

	// Admin API routes with JWT protection. Site-admin privileges are
	// decided per field inside the authorizer, not at the route level.
	adminGroup := router.Group("/api/admin")
	adminGroup.Use(api.AuthMiddleware())
	{
		// Enterprise management endpoints
		adminGroup.POST("/enterprises", handler.CreateEnterprise)
		adminGroup.PUT("/enterprises/bulk-update", handler.BulkUpdateEnterprises)
		adminGroup.GET("/enterprises/for-order-cycle", handler.ForOrderCycle)
		adminGroup.PUT("/enterprises/:enterprise_id", handler.UpdateEnterprise)
		adminGroup.POST("/enterprises/:enterprise_id/set_sells", handler.SetSells)

		// Reporting endpoints
		adminGroup.GET("/reports/order-cycle-management", handler.GetOrderCycleManagementReport)

		// Calculator endpoints for method forms
		adminGroup.GET("/calculators", handler.ListCalculators)
		adminGroup.POST("/calculators/validate", handler.ValidateCalculator)
	}

	// Root endpoint for basic info
	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "admin-service",
			"version": "1.0.0",
			"status":  "running",
		})
	})

	return router
}

// corsMiddleware adds CORS headers to allow cross-origin requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-Admin-Request")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
