package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/example/verve/internal/config"
	"github.com/example/verve/internal/services"
)

// OAuthHandler drives the Google login redirect flow.
type OAuthHandler struct {
	google   *services.GoogleOAuth
	identity *services.IdentityService
	cfg      *config.Config
}

// NewOAuthHandler constructs an OAuthHandler.
func NewOAuthHandler(google *services.GoogleOAuth, identity *services.IdentityService, cfg *config.Config) *OAuthHandler {
	return &OAuthHandler{google: google, identity: identity, cfg: cfg}
}

// GoogleRedirect sends the client to the Google consent screen.
func (h *OAuthHandler) GoogleRedirect(c *fiber.Ctx) error {
	if !h.google.Configured() {
		return httpError(services.ErrConfiguration)
	}

	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return err
	}
	state := h.google.MakeState(hex.EncodeToString(nonce))

	return c.Redirect(h.google.AuthURL(state), fiber.StatusTemporaryRedirect)
}

// GoogleCallback exchanges the authorization code, resolves the identity and
// redirects back to the storefront with the session cookie set.
func (h *OAuthHandler) GoogleCallback(c *fiber.Ctx) error {
	state := c.Query("state")
	code := c.Query("code")
	if code == "" || !h.google.VerifyState(state) {
		return c.Redirect(h.cfg.OAuthFailureURL, fiber.StatusTemporaryRedirect)
	}

	profile, err := h.google.Exchange(c.Context(), code)
	if err != nil {
		log.Printf("[oauth] google exchange failed: %v", err)
		return c.Redirect(h.cfg.OAuthFailureURL, fiber.StatusTemporaryRedirect)
	}

	user, _, err := h.identity.Resolve(c.Context(), services.AuthEvent{
		Kind:       services.EventOAuth,
		ProviderID: profile.Sub,
		OAuthEmail: profile.Email,
		Name:       profile.Name,
		Avatar:     profile.Picture,
	})
	if err != nil {
		log.Printf("[oauth] identity resolution failed: %v", err)
		return c.Redirect(h.cfg.OAuthFailureURL, fiber.StatusTemporaryRedirect)
	}

	if _, err := issueSession(c, h.cfg, user, "google"); err != nil {
		log.Printf("[oauth] session issue failed: %v", err)
		return c.Redirect(h.cfg.OAuthFailureURL, fiber.StatusTemporaryRedirect)
	}

	return c.Redirect(h.cfg.OAuthSuccessURL, fiber.StatusTemporaryRedirect)
}
