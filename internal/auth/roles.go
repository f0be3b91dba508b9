package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/helpr-dev/helpr/pkg/util/errorutil"
)

// RequireAuthenticated ensures a caller is authenticated. Role checks beyond
// this stay inside the lifecycle engine so every rejection carries the
// engine's status taxonomy.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.User == nil {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}
