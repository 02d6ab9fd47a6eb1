package helper

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"thesis_backend/internals/helpers/apperr"
)

func StatusForKind(k apperr.Kind) int {
	switch k {
	case apperr.KindUnauthenticated:
		return fiber.StatusUnauthorized
	case apperr.KindForbidden:
		return fiber.StatusForbidden
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindValidation:
		return fiber.StatusUnprocessableEntity
	case apperr.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// FromError mengubah error dari service (*apperr.Error / *fiber.Error) menjadi envelope JSON.
// Error internal dicatat di log dan dibalas pesan generik.
func FromError(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		if fe.Code >= 500 {
			log.Printf("[ERROR] %s %s: %v", c.Method(), c.OriginalURL(), err)
			return JsonError(c, fe.Code, "")
		}
		return JsonError(c, fe.Code, fe.Message)
	}

	var ae *apperr.Error
	if !errors.As(err, &ae) {
		log.Printf("[ERROR] %s %s: %v", c.Method(), c.OriginalURL(), err)
		return JsonError(c, fiber.StatusInternalServerError, "")
	}

	switch ae.Kind {
	case apperr.KindValidation:
		return JsonValidationError(c, ae.Message, ae.Fields)
	case apperr.KindInternal:
		log.Printf("[ERROR] %s %s: %v", c.Method(), c.OriginalURL(), ae)
		return JsonError(c, fiber.StatusInternalServerError, "")
	default:
		return JsonError(c, StatusForKind(ae.Kind), ae.Message)
	}
}

// ErrorHandler dipasang di fiber.Config agar error yang di-return handler/middleware seragam.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return FromError(c, err)
}
