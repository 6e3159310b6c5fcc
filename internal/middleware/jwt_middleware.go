package middleware

import (
	"log"
	"strings"

	"stitchery/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		tokenString := parts[1]

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		// Handlers read the current user through CurrentUserID
		c.Locals(userIDKey, claims["user_id"])
		c.Locals(usernameKey, claims["username"])

		return c.Next()
	}
}

const (
	userIDKey   = "user_id"
	usernameKey = "username"
)

// CurrentUserID returns the authenticated user's ID, or "" outside
// AuthRequired.
func CurrentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDKey).(string)
	return id
}

// CurrentUsername returns the authenticated user's name.
func CurrentUsername(c *fiber.Ctx) string {
	name, _ := c.Locals(usernameKey).(string)
	return name
}
