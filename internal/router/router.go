package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bea-academy/academy-go-api/internal/config"
	"github.com/bea-academy/academy-go-api/internal/handler"
	"github.com/bea-academy/academy-go-api/internal/middleware"
	"github.com/bea-academy/academy-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AssignmentHandler   *handler.AssignmentHandler
	SubmissionHandler   *handler.SubmissionHandler
	GradingHandler      *handler.GradingHandler
	EnrollmentHandler   *handler.EnrollmentHandler
	ReportHandler       *handler.ReportHandler
	NotificationHandler *handler.NotificationHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	staffOnly := middleware.RequireRole("teacher", "admin")

	// Assignment catalog
	if deps.AssignmentHandler != nil {
		assignments := api.Group("/assignments", jwtMiddleware)
		deps.AssignmentHandler.Register(assignments)
	}

	// Submissions
	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware,
			middleware.RateLimit("submissions", 30, time.Minute))
		deps.SubmissionHandler.Register(submissions)
	}

	// Grading
	if deps.GradingHandler != nil {
		grading := api.Group("/grading", jwtMiddleware, staffOnly)
		deps.GradingHandler.Register(grading)
	}

	// Enrollment & class migration
	if deps.EnrollmentHandler != nil {
		students := api.Group("/students", jwtMiddleware, staffOnly)
		deps.EnrollmentHandler.Register(students)
	}

	// Reports
	if deps.ReportHandler != nil {
		reports := api.Group("/reports", jwtMiddleware, staffOnly)
		deps.ReportHandler.Register(reports)
	}

	// Notifications (list, mark read, websocket stream)
	if deps.NotificationHandler != nil {
		notifications := api.Group("/notifications", jwtMiddleware)
		deps.NotificationHandler.Register(notifications)
	}
}
