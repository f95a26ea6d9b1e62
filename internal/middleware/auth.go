package middleware

import (
	"github.com/campusworks/booking-backend/internal/config"
	"github.com/campusworks/booking-backend/internal/dto"
	"github.com/campusworks/booking-backend/internal/models"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const currentUserKey = "currentUser"

// Protected verifies the Bearer token signature and expiry. Missing,
// malformed, expired and badly-signed tokens all collapse to 401.
func Protected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized: invalid or expired token",
			})
		},
	})
}

// LoadUser resolves the verified token's subject to a live user row and
// attaches it for downstream handlers. A token whose subject no longer
// exists is treated as stale and rejected.
func LoadUser(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := c.Locals("user").(*jwt.Token)
		if !ok || token == nil {
			return unauthorized(c)
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return unauthorized(c)
		}

		sub, _ := claims["sub"].(string)
		userID, err := uuid.Parse(sub)
		if err != nil {
			return unauthorized(c)
		}

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			return unauthorized(c)
		}

		c.Locals(currentUserKey, &user)
		return c.Next()
	}
}

// RequireRole rejects authenticated callers whose role does not match.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals(currentUserKey).(*models.User)
		if !ok || user == nil {
			return unauthorized(c)
		}
		if user.Role != role {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Only " + role + "s may perform this action",
			})
		}
		return c.Next()
	}
}

// CurrentUser returns the identity attached by LoadUser.
func CurrentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(currentUserKey).(*models.User)
	return user, ok && user != nil
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: "Unauthorized",
	})
}
