package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// VersionMiddleware records the client's requested X-Api-Version in the
// request context. There is only one API version today; the short "1.0"
// form is normalized so handlers see a single spelling.
func VersionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		version := c.Get("X-Api-Version", "1.0.0")
		if version == "1.0" {
			version = "1.0.0"
		}
		c.Locals("apiVersion", version)
		return c.Next()
	}
}
