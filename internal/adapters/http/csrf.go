package http

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// CSRFMiddleware requires the anti-forgery header of unsafe requests to
// match the token cookie.
func CSRFMiddleware(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodGet || c.Method() == fiber.MethodHead {
			return c.Next()
		}
		cookie := c.Cookies(deps.csrfCookie())
		header := c.Get(deps.csrfHeader())
		if cookie == "" || header == "" || subtle.ConstantTimeCompare([]byte(cookie), []byte(header)) != 1 {
			LoggerFromCtx(c.UserContext()).Warn("csrf check failed", "path", c.Path(), "cookie_present", cookie != "")
			return errForbidden(c, "CSRF token missing or incorrect")
		}
		return c.Next()
	}
}

// EnsureCSRFCookie issues a token cookie to clients that have none.
func EnsureCSRFCookie(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Cookies(deps.csrfCookie()) == "" {
			c.Cookie(&fiber.Cookie{
				Name:     deps.csrfCookie(),
				Value:    uuid.NewString(),
				Path:     "/",
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}
		return c.Next()
	}
}
