package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/hackmate-io/hackmate-api/internal/config"
	"github.com/hackmate-io/hackmate-api/internal/handler"
	"github.com/hackmate-io/hackmate-api/internal/middleware"
	"github.com/hackmate-io/hackmate-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	HackathonHandler    *handler.HackathonHandler
	JudgeHandler        *handler.JudgeHandler
	SubmissionHandler   *handler.SubmissionHandler
	ScoreHandler        *handler.ScoreHandler
	EvaluationHandler   *handler.EvaluationHandler
	NotificationHandler *handler.NotificationHandler
	DashboardHandler    *handler.DashboardHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	organizerOnly := middleware.RequireRole(middleware.RoleOrganizer, "admin")
	judgeOnly := middleware.RequireRole(middleware.RoleJudge, middleware.RoleOrganizer, "admin")

	// Hackathon configuration
	if deps.HackathonHandler != nil {
		hackathons := api.Group("/hackathons", jwtMiddleware)
		deps.HackathonHandler.Register(hackathons)
		deps.HackathonHandler.RegisterOrganizer(hackathons.Group("", organizerOnly))

		// Judge registry per hackathon
		if deps.JudgeHandler != nil {
			judges := hackathons.Group("/:hackathonId/judges")
			deps.JudgeHandler.Register(judges)
			deps.JudgeHandler.RegisterOrganizer(judges.Group("", organizerOnly))
		}

		// Judge scoring per hackathon
		if deps.ScoreHandler != nil {
			scores := hackathons.Group("/:hackathonId/scores", judgeOnly)
			deps.ScoreHandler.Register(scores)
		}

		// Evaluation engine per hackathon
		if deps.EvaluationHandler != nil {
			evaluation := hackathons.Group("/:hackathonId/evaluation")
			deps.EvaluationHandler.Register(evaluation)

			engineLimiter := middleware.RateLimit("evaluation", 10, time.Minute)
			deps.EvaluationHandler.RegisterOrganizer(evaluation.Group("", organizerOnly, engineLimiter))
		}

		// Organizer dashboard per hackathon
		if deps.DashboardHandler != nil {
			organizer := hackathons.Group("/:hackathonId/organizer", organizerOnly)
			deps.DashboardHandler.Register(organizer)
		}
	}

	// Submission intake and listing
	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware)
		deps.SubmissionHandler.Register(submissions)
	}

	// Per-user notifications
	if deps.NotificationHandler != nil {
		notifications := api.Group("/notifications", jwtMiddleware)
		deps.NotificationHandler.Register(notifications)
	}
}
