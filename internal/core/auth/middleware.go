package auth

import (
	"errors"
	"strings"

	"printstore-api/internal/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// userLocalKey is where the middleware stores the authenticated user.
const userLocalKey = "auth_user"

// RequireUser returns a middleware that rejects requests without a valid
// bearer token and stores the resolved user in request locals.
func RequireUser(verifier Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing or invalid authorization header",
			})
		}

		token := strings.TrimPrefix(header, "Bearer ")

		user, err := verifier.Verify(c.Context(), token)
		if err != nil {
			if !errors.Is(err, ErrUnauthorized) {
				logger.Get().Error("Token verification failed",
					zap.String("path", c.Path()),
					zap.Error(err),
				)
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		c.Locals(userLocalKey, *user)
		return c.Next()
	}
}

// UserFromCtx returns the authenticated user stored by RequireUser.
// The boolean is false when the middleware did not run.
func UserFromCtx(c *fiber.Ctx) (User, bool) {
	user, ok := c.Locals(userLocalKey).(User)
	return user, ok
}
