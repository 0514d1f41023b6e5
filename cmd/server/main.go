package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/agroleads/api/internal/config"
	"github.com/agroleads/api/internal/database"
	"github.com/agroleads/api/internal/handlers"
	"github.com/agroleads/api/internal/logger"
	"github.com/agroleads/api/internal/middleware"
	"github.com/agroleads/api/internal/repository"
	"github.com/agroleads/api/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	// Load .env if present; real environments set variables directly
	_ = godotenv.Load()

	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.Server.Env)
	log.Info("Starting AgroLeads API", map[string]interface{}{
		"version":     "0.1.0",
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})

	// Create database connection pool
	ctx := context.Background()
	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", err, map[string]interface{}{
			"host": cfg.Database.Host,
			"port": cfg.Database.Port,
			"name": cfg.Database.Name,
		})
	}
	defer db.Close()

	log.Info("Database connection established", map[string]interface{}{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Name,
		"pool_min": cfg.Database.PoolMin,
		"pool_max": cfg.Database.PoolMax,
	})

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	// Register health check routes
	healthHandler := handlers.NewHealthHandler(db, cfg.Server.Env)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)

	// Initialize repository and service layers
	leadRepo := repository.NewLeadRepository(db)
	propertyRepo := repository.NewPropertyRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)

	leadService := services.NewLeadService(leadRepo, log)
	propertyService := services.NewPropertyService(propertyRepo, log)
	dashboardService := services.NewDashboardService(dashboardRepo, log)

	// Initialize handlers
	leadHandler := handlers.NewLeadHandler(leadService)
	propertyHandler := handlers.NewPropertyHandler(propertyService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Register API v1 routes
	v1 := router.Group("/api/v1")
	{
		leads := v1.Group("/leads")
		{
			leads.GET("", leadHandler.List)
			leads.POST("", leadHandler.Create)
			leads.PATCH("/:id", leadHandler.Update)
			leads.DELETE("/:id", leadHandler.Delete)
			leads.GET("/statistics/dashboard", dashboardHandler.Stats)
		}

		propriedades := v1.Group("/propriedades")
		{
			propriedades.GET("", propertyHandler.List)
			propriedades.GET("/:id", propertyHandler.Get)
			propriedades.POST("", propertyHandler.Create)
			propriedades.PATCH("/:id", propertyHandler.Update)
			propriedades.DELETE("/:id", propertyHandler.Delete)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}
