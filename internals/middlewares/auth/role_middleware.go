package auth

import (
	"github.com/gofiber/fiber/v2"

	"thesis_backend/internals/constants"
	helper "thesis_backend/internals/helpers"
	"thesis_backend/internals/helpers/apperr"
	helpersAuth "thesis_backend/internals/helpers/auth"
)

// RoleMiddlewareWithCustomError validasi role + custom error message
func RoleMiddlewareWithCustomError(allowed []constants.Role, customForbiddenMessage string) fiber.Handler {
	if customForbiddenMessage == "" {
		customForbiddenMessage = "Forbidden: you are not authorized to access this resource"
	}
	return func(c *fiber.Ctx) error {
		id, err := helpersAuth.IdentityFromCtx(c)
		if err != nil {
			return helper.FromError(c, err)
		}
		for _, r := range allowed {
			if id.Role == r {
				return c.Next()
			}
		}
		return helper.FromError(c, apperr.Forbidden(customForbiddenMessage))
	}
}

// RequireCapability: gate berdasar capability, bukan daftar role.
func RequireCapability(cap constants.Capability, customMessage string) fiber.Handler {
	return RoleMiddlewareWithCustomError(constants.RolesWith(cap), customMessage)
}
