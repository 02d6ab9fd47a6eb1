package auth

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	helper "thesis_backend/internals/helpers"
	"thesis_backend/internals/helpers/apperr"
	helpersAuth "thesis_backend/internals/helpers/auth"
)

// Authenticator mengubah token mentah menjadi identitas.
type Authenticator interface {
	Authenticate(ctx context.Context, rawToken string) (helpersAuth.Identity, time.Time, error)
}

func AuthMiddleware(authn Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := helpersAuth.ExtractBearerToken(c)
		if raw == "" {
			return helper.FromError(c, apperr.Unauthenticated("Unauthorized - missing token"))
		}

		id, exp, err := authn.Authenticate(c.UserContext(), raw)
		if err != nil {
			if !apperr.Is(err, apperr.KindInternal) {
				log.Printf("[WARN] auth rejected %s %s: %v", c.Method(), c.Path(), err)
			}
			return helper.FromError(c, err)
		}

		helpersAuth.SetIdentity(c, id)
		c.Locals(helpersAuth.LocalToken, raw)
		c.Locals(helpersAuth.LocalTokenExp, exp)
		return c.Next()
	}
}
