package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/hackmate-io/hackmate-api/internal/config"
	"github.com/hackmate-io/hackmate-api/internal/database"
	"github.com/hackmate-io/hackmate-api/internal/handler"
	"github.com/hackmate-io/hackmate-api/internal/middleware"
	"github.com/hackmate-io/hackmate-api/internal/repository"
	"github.com/hackmate-io/hackmate-api/internal/router"
	"github.com/hackmate-io/hackmate-api/internal/service"
	cloud "github.com/hackmate-io/hackmate-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL, nats.Name(cfg.AppName))
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
	}

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	engineOptions := service.EngineOptions{
		ApplyCriterionWeights:    cfg.ApplyCriterionWeights,
		EligibilityCascadeRounds: cfg.EligibilityCascadeRounds,
	}

	hackathonRepo := repository.NewHackathonRepository(db)
	judgeRepo := repository.NewJudgeRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	scoreRepo := repository.NewScoreRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	progressRepo := repository.NewRoundProgressRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	notificationService := service.NewNotificationService(notificationRepo, redisClient, "hackmate", natsConn, logger)
	hackathonService := service.NewHackathonService(hackathonRepo, validate, logger)
	judgeService := service.NewJudgeService(judgeRepo, hackathonRepo, submissionRepo, validate, logger)
	eligibilityService := service.NewEligibilityService(hackathonRepo, submissionRepo, progressRepo, engineOptions, logger)
	submissionService := service.NewSubmissionService(submissionRepo, hackathonRepo, eligibilityService, uploader, validate, logger)
	scoreService := service.NewScoreService(scoreRepo, submissionRepo, judgeRepo, hackathonRepo, validate, logger)
	leaderboardService := service.NewLeaderboardService(hackathonRepo, submissionRepo, scoreRepo, progressRepo, engineOptions, logger)
	allocationService := service.NewAllocationService(hackathonRepo, judgeRepo, submissionRepo, notificationService, validate, logger)
	shortlistService := service.NewShortlistService(hackathonRepo, submissionRepo, teamRepo, progressRepo, leaderboardService, notificationService, validate, logger)
	winnerService := service.NewWinnerService(hackathonRepo, submissionRepo, progressRepo, teamRepo, leaderboardService, notificationService, validate, logger)
	dashboardService := service.NewDashboardService(hackathonRepo, submissionRepo, judgeRepo, scoreRepo, redisClient, cfg.DashboardCacheTTL, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    32 * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		HackathonHandler:    handler.NewHackathonHandler(hackathonService, logger),
		JudgeHandler:        handler.NewJudgeHandler(judgeService, logger),
		SubmissionHandler:   handler.NewSubmissionHandler(submissionService, logger),
		ScoreHandler:        handler.NewScoreHandler(scoreService, logger),
		EvaluationHandler:   handler.NewEvaluationHandler(allocationService, leaderboardService, shortlistService, eligibilityService, winnerService, logger),
		NotificationHandler: handler.NewNotificationHandler(notificationService, logger),
		DashboardHandler:    handler.NewDashboardHandler(dashboardService, logger),
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
