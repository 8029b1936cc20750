package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ultraauth/auth-api/internal/auth"
)

// BearerAuth validates the access token in the Authorization header and
// stores its claims under auth.LocalsClaims.
func BearerAuth(svc *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if len(authz) < len("Bearer ") || !strings.EqualFold(authz[:len("Bearer ")], "bearer ") {
			return auth.ErrUnauthorized
		}
		tokenStr := strings.TrimSpace(authz[len("Bearer "):])
		if tokenStr == "" {
			return auth.ErrUnauthorized
		}

		claims, err := svc.Authenticate(c.UserContext(), tokenStr)
		if err != nil {
			return err
		}

		c.Locals(auth.LocalsClaims, claims)
		c.Locals("user_id", claims.Subject)
		return c.Next()
	}
}
