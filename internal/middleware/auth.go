package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/nimbusworks/opsdesk/internal/models"
	"github.com/nimbusworks/opsdesk/internal/services"
	"github.com/nimbusworks/opsdesk/internal/types"
	"gorm.io/gorm"
)

// Auth validates the session token against the Authorizer service and
// requires one of the given roles. super_admin is always allowed. The
// resolved local user is stored in c.Locals("user").
func Auth(db *gorm.DB, roles ...string) fiber.Handler {
	allowed := append([]string{models.RoleSuperAdmin}, roles...)

	return func(c *fiber.Ctx) error {
		token := sessionToken(c)
		if token == "" {
			return types.NewAuthenticationError("Missing session token")
		}

		identity, err := services.ValidateSession(token, allowed)
		if err != nil {
			return types.NewAuthenticationError("Invalid session: " + err.Error())
		}

		user, err := services.EnsureUser(db, identity)
		if err != nil {
			return types.NewInternalError("Failed to resolve user")
		}

		c.Locals("user", user)
		return c.Next()
	}
}

// CurrentUser returns the authenticated user stored by Auth, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}

// sessionToken reads the bearer token from the Authorization header, falling
// back to the Authorizer session cookie.
func sessionToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Cookies("cookie_session")
}
