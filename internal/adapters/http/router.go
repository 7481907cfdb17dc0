package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/samirrijal/snippetmap/internal/pkg/metrics"
)

// SetupOpsRoutes registers the metrics, health and readiness endpoints the
// widget exposes next to its terminal UI.
func SetupOpsRoutes(app *fiber.App, deps *Dependencies) {
	app.Use(recover.New())
	app.Use(metrics.Middleware())
	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())
	app.Use(CachingMiddleware(deps))

	app.Get("/metrics", metrics.Handler())
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))
}

// SetupStubRoutes registers the feed, update_location and delete endpoints
// of the snippets application over deps.Store.
func SetupStubRoutes(app *fiber.App, deps *Dependencies) {
	app.Use(recover.New())

	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	// Rate limiting: 600 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        600,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "rate limit exceeded",
				"message": "too many requests, please try again later",
			})
		},
	}))

	// Security headers
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "same-origin")
		return c.Next()
	})

	app.Use(ETagMiddleware(deps.FeedPath))
	app.Use(CachingMiddleware(deps))

	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	app.Get(deps.FeedPath, EnsureCSRFCookie(deps), timeout.NewWithContext(FeedHandler(deps), 15*time.Second))

	snippets := app.Group(strings.TrimRight(deps.SnippetsPath, "/"), CSRFMiddleware(deps))
	snippets.Post("/:id/update_location/", UpdateLocationHandler(deps))
	snippets.Post("/:id/delete/", DeleteHandler(deps))
}
