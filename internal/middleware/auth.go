package middleware

import (
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/kareemadel/istithmar-backend/internal/config"
	"github.com/kareemadel/istithmar-backend/internal/dto"
)

func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: invalid or expired token",
			})
		},
	})
}

// UserPhone extracts the authenticated phone number from the verified JWT.
// Pending two-factor tokens carry a "stage" claim and are not accepted here;
// they are only good for completing the login handshake.
func UserPhone(c *fiber.Ctx) (string, bool) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return "", false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}
	if stage, _ := claims["stage"].(string); stage != "" {
		return "", false
	}
	phone, _ := claims["sub"].(string)
	return phone, phone != ""
}
