package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/verve/internal/config"
	"github.com/example/verve/internal/utils"
)

const (
	userContextKey   = "currentUserID"
	claimsContextKey = "sessionClaims"

	// SessionCookie is the HTTP-only cookie carrying the session token.
	SessionCookie = "jwt"
)

// AuthMiddleware validates the session token from the Authorization header or
// the jwt cookie and loads the authenticated identity into context.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := ""

		if authHeader := c.Get("Authorization"); authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
			}
			tokenString = parts[1]
		} else if cookie := c.Cookies(SessionCookie); cookie != "" {
			tokenString = cookie
		}

		if tokenString == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing credentials")
		}

		claims, err := utils.ParseToken(cfg.JWTSecret, tokenString)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(userContextKey, userID)
		c.Locals(claimsContextKey, claims)
		return c.Next()
	}
}

// GetCurrentUserID extracts the authenticated user ID from context.
func GetCurrentUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	value := c.Locals(userContextKey)
	if value == nil {
		return uuid.Nil, false
	}

	if id, ok := value.(uuid.UUID); ok {
		return id, true
	}

	return uuid.Nil, false
}

// GetSessionClaims extracts the full session claims from context.
func GetSessionClaims(c *fiber.Ctx) (*utils.SessionClaims, bool) {
	claims, ok := c.Locals(claimsContextKey).(*utils.SessionClaims)
	return claims, ok
}
