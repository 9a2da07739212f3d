package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"

	"github.com/kareemadel/istithmar-backend/internal/config"
	"github.com/kareemadel/istithmar-backend/internal/handlers"
	"github.com/kareemadel/istithmar-backend/internal/middleware"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	accountHandler *handlers.AccountHandler,
	ledgerHandler *handlers.LedgerHandler,
	productHandler *handlers.ProductHandler,
	configHandler *handlers.SiteConfigHandler,
	adminHandler *handlers.AdminHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Health
	api.Get("/health", healthHandler.Check)

	// Public catalog and site configuration
	api.Get("/config", configHandler.GetConfig)
	api.Get("/categories", productHandler.ListCategories)
	api.Get("/products", productHandler.List)
	api.Get("/products/:id", productHandler.Get)

	// Auth is public, with a stricter rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/login/verify", authHandler.VerifyTwoFactor)
	auth.Post("/refresh", authHandler.Refresh)

	// Protected routes (JWT required) - apply middleware to individual routes
	// so it never affects public routes
	jwt := middleware.JWTProtected(cfg)
	api.Post("/auth/logout", jwt, authHandler.Logout)
	api.Put("/auth/password", jwt, authHandler.ChangePassword)
	api.Put("/auth/email", jwt, authHandler.UpdateEmail)
	api.Post("/auth/2fa/setup", jwt, authHandler.TwoFactorSetup)
	api.Post("/auth/2fa/confirm", jwt, authHandler.TwoFactorConfirm)
	api.Post("/auth/2fa/disable", jwt, authHandler.TwoFactorDisable)

	// Account screens
	api.Get("/me", jwt, accountHandler.Me)
	api.Get("/me/transactions", jwt, accountHandler.Transactions)
	api.Get("/me/holdings", jwt, accountHandler.Holdings)
	api.Get("/me/notifications", jwt, accountHandler.Notifications)
	api.Put("/me/notifications/read", jwt, accountHandler.MarkNotificationsRead)
	api.Get("/me/team", jwt, accountHandler.Team)

	// Ledger operations
	api.Post("/purchase", jwt, ledgerHandler.Purchase)
	api.Post("/sell", jwt, ledgerHandler.Sell)
	api.Post("/withdraw", jwt, ledgerHandler.Withdraw)
	api.Post("/recharge", jwt, ledgerHandler.Recharge)
	api.Post("/checkin", jwt, ledgerHandler.CheckIn)
	api.Get("/checkin/status", jwt, ledgerHandler.CheckInStatus)
	api.Post("/wallet", jwt, ledgerHandler.LinkWallet)
	api.Post("/withdrawal-password", jwt, ledgerHandler.SetWithdrawalPassword)
	api.Put("/withdrawal-password/reset", jwt, authHandler.ResetWithdrawalPassword)

	// Admin panel (protected + admin required)
	admin := api.Group("/admin", jwt, middleware.AdminRequired(db, cfg))
	admin.Get("/transactions/pending", adminHandler.PendingTransactions)
	admin.Put("/transactions/:id/approve", adminHandler.Approve)
	admin.Put("/transactions/:id/reject", adminHandler.Reject)
	admin.Get("/users", adminHandler.ListUsers)
	admin.Post("/products", productHandler.Create)
	admin.Put("/products/:id", productHandler.Update)
	admin.Delete("/products/:id", productHandler.Delete)
	admin.Put("/config/:key", configHandler.SetConfigKey)
	admin.Delete("/config/:key", configHandler.DeleteConfigKey)
	admin.Get("/promo-codes", configHandler.ListPromoCodes)
	admin.Put("/promo-codes/:code", configHandler.UpsertPromoCode)
	admin.Delete("/promo-codes/:code", configHandler.DeletePromoCode)
}
