package routes

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/verve/internal/config"
	"github.com/example/verve/internal/handlers"
	"github.com/example/verve/internal/middleware"
	"github.com/example/verve/internal/repository"
	"github.com/example/verve/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	var passcodes services.PasscodeStore = services.NewMemoryPasscodeStore()
	if cfg.OTPRedisAddr != "" {
		passcodes = services.NewRedisPasscodeStore(cfg.OTPRedisAddr)
		log.Printf("passcode store: redis at %s", cfg.OTPRedisAddr)
	}

	sms := services.NewSMSService(cfg.SMSBaseURL, cfg.SMSAPIToken, cfg.SMSSender)
	otp := services.NewOTPService(passcodes, sms)
	identity := services.NewIdentityService(repository.NewUsers(db))
	payments := services.NewPaymentService(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	checkout := services.NewCheckoutService(repository.NewCheckout(db), cfg.RazorpayKeySecret)
	google := services.NewGoogleOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL, cfg.OAuthStateSecret)

	authHandler := handlers.NewAuthHandler(otp, identity, cfg)
	oauthHandler := handlers.NewOAuthHandler(google, identity, cfg)
	paymentHandler := handlers.NewPaymentHandler(payments, checkout)
	cartHandler := handlers.NewCartHandler(db)
	orderHandler := handlers.NewOrderHandler(db)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	auth := app.Group("/auth")
	auth.Post("/send-otp", authHandler.SendOTP)
	auth.Post("/verify-otp", authHandler.VerifyOTP)
	auth.Post("/signin", authHandler.SignIn)
	auth.Post("/logout", authHandler.Logout)
	auth.Get("/google", oauthHandler.GoogleRedirect)
	auth.Get("/google/callback", oauthHandler.GoogleCallback)

	payment := app.Group("/payment")
	payment.Post("/orders", paymentHandler.CreateIntent)
	payment.Post("/verify", middleware.AuthMiddleware(cfg), paymentHandler.VerifyPayment)

	protected := app.Group("", middleware.AuthMiddleware(cfg))

	protected.Get("/cart", cartHandler.GetCart)
	protected.Post("/cart/items", cartHandler.AddItem)
	protected.Delete("/cart/items/:productId", cartHandler.RemoveItem)

	protected.Get("/orders", orderHandler.ListOrders)
	protected.Get("/orders/:id", orderHandler.GetOrder)
}
