package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/example/verve/internal/config"
	"github.com/example/verve/internal/middleware"
	"github.com/example/verve/internal/models"
	"github.com/example/verve/internal/services"
	"github.com/example/verve/internal/utils"
)

// issueSession mints the session token for a resolved user and sets the jwt
// cookie. Returns the token for header-based bearer use.
func issueSession(c *fiber.Ctx, cfg *config.Config, user *models.User, loginKind string) (string, error) {
	if cfg.JWTSecret == "" {
		return "", services.ErrConfiguration
	}

	identity := utils.TokenIdentity{
		UserID:    user.ID,
		IsAdmin:   user.IsAdmin,
		LoginKind: loginKind,
	}
	if user.Email != nil {
		identity.Email = *user.Email
	}
	if user.Phone != nil {
		identity.Phone = *user.Phone
	}

	token, err := utils.GenerateToken(cfg.JWTSecret, identity, cfg.TokenExpires)
	if err != nil {
		return "", err
	}

	c.Cookie(sessionCookie(cfg, token, time.Now().Add(cfg.TokenExpires)))
	return token, nil
}

// sessionCookie builds the jwt cookie. SameSite and Secure follow the
// deployment: Lax for plain-HTTP dev, None+Secure behind TLS.
func sessionCookie(cfg *config.Config, value string, expires time.Time) *fiber.Cookie {
	sameSite := fiber.CookieSameSiteLaxMode
	if cfg.CookieSecure {
		sameSite = fiber.CookieSameSiteNoneMode
	}

	return &fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    value,
		Expires:  expires,
		HTTPOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: sameSite,
		Path:     "/",
	}
}

// clearSessionCookie expires the jwt cookie.
func clearSessionCookie(c *fiber.Ctx, cfg *config.Config) {
	c.Cookie(sessionCookie(cfg, "", time.Now().Add(-time.Hour)))
}
