package controller

import (
	"github.com/gofiber/fiber/v2"

	"mailmaster_backend/internal/apperror"
	"mailmaster_backend/pkg/utils/jwt"
)

func currentUser(c *fiber.Ctx) *jwt.Claims {
	return c.Locals("user").(*jwt.Claims)
}

func validationFailed(c *fiber.Ctx, verr *apperror.ValidationError) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"message": verr.Message(),
		"errors":  verr.Fields,
	})
}

func notFound(c *fiber.Ctx, what string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"message": what + " not found",
	})
}

func invalidInput(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "Invalid input",
	})
}

func serverError(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": message,
	})
}
