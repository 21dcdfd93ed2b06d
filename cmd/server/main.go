package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/ksred/actus-api/internal/auth"
	"github.com/ksred/actus-api/internal/config"
	"github.com/ksred/actus-api/internal/contracts"
	"github.com/ksred/actus-api/internal/database"
	"github.com/ksred/actus-api/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// main initializes and runs the contract engine API server with graceful
// shutdown support. It wires the database, the contract service, the
// schedule processor, and the API routes.
func main() {
	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	configureLogging(cfg)

	// Initialize database
	db, err := database.NewDatabase(cfg.DatabasePath)
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to initialize database")
	}

	// Initialize router
	router := gin.Default()

	// Initialize services and handlers
	authService := auth.NewService(cfg.JWTSecret)
	authHandlers := auth.NewGinHandlers(authService)
	// Register test credentials
	authService.RegisterAPICredentials(auth.TestAPIKey, auth.TestAPISecret)

	contractService := contracts.NewService(db)
	contractHandlers := contracts.NewGinHandlers(contractService)

	// Create and start the schedule processor
	scheduleProcessor := contracts.NewProcessor(contractService, cfg.ProcessorInterval)
	processorCtx, processorCancel := context.WithCancel(context.Background())
	defer processorCancel()

	go scheduleProcessor.Start(processorCtx)

	// Setup middleware
	router.Use(middleware.RateLimit())

	// Setup API routes
	setupRoutes(router, []byte(cfg.JWTSecret), authHandlers, contractHandlers)

	// Create server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown setup
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal().Err(err).Msg("listen")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info().Msg("Shutting down server...")

	// Give outstanding operations 5 seconds to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	zlog.Info().Msg("Server exiting")
}

// configureLogging sets up application logging. In development mode it
// enables pretty printing with timestamps; debug logging is toggled via
// the DEBUG environment variable.
func configureLogging(cfg *config.Config) {
	if !cfg.Production() {
		output := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
		zlog.Logger = zerolog.New(output).With().Timestamp().Logger()
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// setupRoutes configures all API endpoints and their handlers
// It groups routes by functionality and applies appropriate middleware:
// - Auth routes: Public endpoints for authentication
// - Contract routes: Protected by JWT authentication
// - Internal routes: Protected by internal network authentication
func setupRoutes(
	router *gin.Engine,
	jwtSecret []byte,
	authHandlers *auth.GinHandlers,
	contractHandlers *contracts.GinHandlers,
) {
	v1 := router.Group("/api/v1")
	{
		// Auth routes
		authRoutes := v1.Group("/auth")
		{
			authRoutes.POST("/token", authHandlers.GenerateTokenHandler())
		}

		// Contract routes
		contractRoutes := v1.Group("/contracts")
		contractRoutes.Use(middleware.JWTAuth(jwtSecret))
		{
			contractRoutes.POST("", contractHandlers.InitContractHandler())
			contractRoutes.GET("/:contract_id/state", contractHandlers.GetStateHandler())
			contractRoutes.GET("/:contract_id/schedule", contractHandlers.GetScheduleHandler())
			contractRoutes.GET("/:contract_id/events", contractHandlers.GetEventsHandler())
		}

		// Internal routes (should be protected by internal network)
		internal := v1.Group("/internal")
		internal.Use(middleware.InternalAuth(jwtSecret))
		{
			internal.POST("/contracts/:contract_id/events", contractHandlers.ProcessEventHandler())
		}
	}
}
