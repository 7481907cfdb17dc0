package http

import (
	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control on GET responses that have none.
// The feed changes with every edit, so clients must revalidate it.
func CachingMiddleware(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet || c.Get(fiber.HeaderCacheControl) != "" {
			return err
		}

		switch path := c.Path(); {
		case path == "/v1/health" || path == "/v1/ready" || path == "/metrics":
			c.Set(fiber.HeaderCacheControl, "no-store")
		case deps.FeedPath != "" && path == deps.FeedPath:
			c.Set(fiber.HeaderCacheControl, "private, no-cache")
		}
		return err
	}
}
