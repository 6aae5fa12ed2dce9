package main

import (
	"log"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/stagepass/trust-safety/internal/activity"
	"github.com/stagepass/trust-safety/internal/audit"
	"github.com/stagepass/trust-safety/internal/marketplace"
	"github.com/stagepass/trust-safety/internal/reports"
	"github.com/stagepass/trust-safety/internal/risk"
	"github.com/stagepass/trust-safety/internal/suspension"
	"github.com/stagepass/trust-safety/internal/verification"
	"github.com/stagepass/trust-safety/pkg/common"
	"github.com/stagepass/trust-safety/pkg/config"
	"github.com/stagepass/trust-safety/pkg/database"
	"github.com/stagepass/trust-safety/pkg/health"
	"github.com/stagepass/trust-safety/pkg/logger"
	"github.com/stagepass/trust-safety/pkg/middleware"
	"github.com/stagepass/trust-safety/pkg/redis"
)

const serviceName = "trust"

func main() {
	// Load configuration
	cfg, err := config.Load(serviceName)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Connect to PostgreSQL
	pool, err := database.NewPostgresPool(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(pool)
	logger.Info("Connected to PostgreSQL database")

	// Connect to Redis (detection window counters)
	redisClient, err := redis.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	logger.Info("Connected to Redis")

	// Audit event sink
	var events audit.Publisher = audit.NopPublisher{}
	if cfg.NATS.Enabled {
		natsPublisher, err := audit.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix)
		if err != nil {
			logger.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer natsPublisher.Close()
		events = natsPublisher
		logger.Info("Connected to NATS audit sink")
	}

	// Listing/user read collaborator
	marketplaceClient := marketplace.NewHTTPClient(&cfg.Marketplace)

	// Repositories
	reportRepo := reports.NewRepository(pool)
	activityRepo := activity.NewRepository(pool)
	verificationRepo := verification.NewRepository(pool)
	suspensionRepo := suspension.NewRepository(pool)

	// Services
	reportService := reports.NewService(reportRepo, marketplaceClient, events)
	activityService := activity.NewService(activityRepo, events)
	detector := activity.NewDetector(activityRepo, marketplaceClient, redisClient, events, cfg.Detection)
	verificationService := verification.NewService(
		verificationRepo,
		marketplaceClient,
		verification.NewBattery(marketplaceClient),
		events,
		cfg.Verification,
	)
	suspensionService := suspension.NewService(suspensionRepo, events)
	riskService := risk.NewService(reportRepo, activityRepo, verificationRepo, suspensionRepo)

	// Handlers
	reportHandler := reports.NewHandler(reportService)
	activityHandler := activity.NewHandler(activityService, detector)
	verificationHandler := verification.NewHandler(verificationService)
	suspensionHandler := suspension.NewHandler(suspensionService)
	riskHandler := risk.NewHandler(riskService)

	// Set up Gin router
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Recovery())
	router.Use(middleware.Metrics(serviceName))
	router.Use(middleware.SecurityHeaders())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.Server.CORSOrigins, ",")
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-User-ID", "X-User-Role", "X-Correlation-ID"}
	router.Use(cors.New(corsConfig))

	// Health check and metrics (no identity required)
	router.GET("/healthz", common.HealthCheckWithDeps(serviceName, "1.0.0", map[string]func() error{
		"postgres": health.DatabaseChecker(pool),
		"redis":    health.RedisChecker(redisClient.Client),
	}))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes (identity from the gateway headers)
	api := router.Group("/api/v1")
	api.Use(middleware.Identity())
	{
		api.POST("/reports", reportHandler.SubmitReport)
		api.GET("/reports", reportHandler.ListReports)
		api.POST("/reports/:id/assign", reportHandler.AssignReport)
		api.POST("/reports/:id/resolve", reportHandler.ResolveReport)
		api.POST("/reports/:id/dismiss", reportHandler.DismissReport)

		api.GET("/activities", activityHandler.ListActivities)
		api.POST("/activities/:id/review", activityHandler.ReviewActivity)

		// Detection triggers called by the marketplace on user actions
		api.POST("/detect/rapid-listing/:user_id", activityHandler.RunRapidListingCheck)
		api.POST("/detect/price/:listing_id", activityHandler.RunPriceManipulationCheck)
		api.POST("/detect/duplicate-images/:listing_id", activityHandler.RunDuplicateImageCheck)

		api.POST("/verifications/run/:listing_id", verificationHandler.RunVerification)
		api.GET("/verifications", verificationHandler.ListVerifications)
		api.POST("/verifications/:id/review", verificationHandler.ReviewVerification)

		api.POST("/suspensions", suspensionHandler.SuspendUser)
		api.POST("/suspensions/:id/lift", suspensionHandler.LiftSuspension)
		api.GET("/suspensions", suspensionHandler.ListSuspensions)

		api.GET("/risk/users/:user_id", riskHandler.GetUserRiskProfile)
		api.GET("/risk/statistics", riskHandler.GetSystemStatistics)
	}

	// Start server
	addr := ":" + cfg.Server.Port
	logger.Info("Trust and safety service starting", zap.String("port", cfg.Server.Port))
	if err := router.Run(addr); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}
