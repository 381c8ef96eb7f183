package middleware

import (
	"strings"

	"go-stock-opname/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// LocalFileName holds the export file granted by a share token.
const LocalFileName = "file_name"

// RequireShareToken validates the share token from ?token= or a Bearer
// header and stores the granted file name in c.Locals(LocalFileName).
func RequireShareToken(signer *jwt.Signer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Query("token")
		if tokenString == "" {
			authHeader := c.Get(fiber.HeaderAuthorization)
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
				tokenString = parts[1]
			}
		}
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"code": "UNAUTHORIZED", "error": "Token tidak ditemukan"})
		}

		claims, err := signer.ValidateShareToken(tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"code": "UNAUTHORIZED", "error": "Token tidak valid atau sudah kedaluwarsa"})
		}

		c.Locals(LocalFileName, claims.FileName)
		return c.Next()
	}
}
