package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"mailmaster_backend/internal/repository"
	"mailmaster_backend/pkg/utils/jwt"
)

// AuthMiddleware validates the bearer token and rejects tokens whose
// access_tokens row has been revoked, then stores the claims for handlers.
func AuthMiddleware(tokens *repository.AccessTokenRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthenticated(c)
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return unauthenticated(c)
		}

		claims, err := jwt.ValidateToken(parts[1])
		if err != nil {
			return unauthenticated(c)
		}

		active, err := tokens.Exists(claims.UserID, claims.ID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not verify token",
			})
		}
		if !active {
			return unauthenticated(c)
		}

		c.Locals("user", claims)
		return c.Next()
	}
}

func unauthenticated(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": "Unauthenticated.",
	})
}
