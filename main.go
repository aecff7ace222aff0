package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"matrimony-server/internal/config"
	"matrimony-server/internal/logger"
	"matrimony-server/internal/mailer"
	"matrimony-server/internal/models"
	"matrimony-server/internal/presence"
	"matrimony-server/internal/realtime"
	"matrimony-server/internal/routes"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	zlog, err := logger.New(cfg.Environment)
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer zlog.Sync()

	// Create a DatabaseConfig for models
	modelDbConfig := models.DatabaseConfig{
		DSN: cfg.Database.DSN,
	}

	// Initialize database connection
	db, err := models.InitDB(modelDbConfig)
	if err != nil {
		zlog.Fatal("Error connecting to database", zap.Error(err))
	}

	// Uploaded files live on a local path referenced by relative URL
	if err := os.MkdirAll(cfg.UploadsDir, 0o755); err != nil {
		zlog.Fatal("Error creating uploads directory", zap.Error(err))
	}

	// Presence is optional: without Redis the hub still works, but liveness
	// is not visible across processes.
	tracker, err := presence.NewTracker(cfg.Redis)
	if err != nil {
		zlog.Warn("Presence tracking disabled, Redis unreachable", zap.Error(err))
		tracker = nil
	} else {
		defer tracker.Close()
	}

	// Start the realtime hub
	hub := realtime.NewHub(db, zlog, tracker)
	go hub.Run()
	defer hub.Stop()

	m := mailer.New(cfg.Mailer)

	// Initialize Gin router
	router := gin.Default()

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin, cfg.FrontendURL}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "Stripe-Signature"}
	router.Use(cors.New(corsConfig))

	// Set up routes
	routes.SetupRoutes(router, db, cfg, zlog, hub, tracker, m)

	// Start server
	serverAddr := fmt.Sprintf(":%s", cfg.Port)
	zlog.Info("Server running", zap.String("port", cfg.Port))
	if err := router.Run(serverAddr); err != nil {
		zlog.Fatal("Failed to start server", zap.Error(err))
	}
}
