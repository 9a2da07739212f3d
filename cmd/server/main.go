package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/kareemadel/istithmar-backend/internal/clock"
	"github.com/kareemadel/istithmar-backend/internal/config"
	"github.com/kareemadel/istithmar-backend/internal/database"
	"github.com/kareemadel/istithmar-backend/internal/handlers"
	"github.com/kareemadel/istithmar-backend/internal/ledger"
	"github.com/kareemadel/istithmar-backend/internal/logging"
	"github.com/kareemadel/istithmar-backend/internal/middleware"
	"github.com/kareemadel/istithmar-backend/internal/routes"
	"github.com/kareemadel/istithmar-backend/internal/services"
	"github.com/kareemadel/istithmar-backend/internal/storage"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	if err := database.Migrate(); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// Seed catalog and site configuration
	if err := storage.Seed(database.DB); err != nil {
		slog.Error("seeding failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		pgLogHandler,
	)))

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	// Ledger engine
	sysClock := clock.System{}
	engine := ledger.New(storage.NewGormStore(database.DB), sysClock, ledger.Config{
		WelcomeBonus:        cfg.WelcomeBonus,
		CheckInReward:       cfg.CheckInReward,
		LowBalanceThreshold: cfg.LowBalanceThreshold,
		MinWithdrawal:       cfg.MinWithdrawal,
		MaxWithdrawal:       cfg.MaxWithdrawal,
		WithdrawalFeeRate:   cfg.WithdrawalFeeRate,
		SellBackRate:        cfg.SellBackRate,
		Level1Rate:          cfg.Level1Rate,
		Level2Rate:          cfg.Level2Rate,
		Level3Rate:          cfg.Level3Rate,
		UTCOffsetHours:      cfg.UTCOffsetHours,
	})

	// Services
	authService := services.NewAuthService(database.DB, cfg, engine, sysClock)
	sweeper := services.NewAccrualSweeper(database.DB, engine, sysClock, cfg.AccrualSweepInterval)
	if err := sweeper.Start(); err != nil {
		slog.Error("accrual sweeper failed to start", "error", err)
		os.Exit(1)
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	healthHandler := handlers.NewHealthHandler()
	accountHandler := handlers.NewAccountHandler(database.DB, engine)
	ledgerHandler := handlers.NewLedgerHandler(engine)
	productHandler := handlers.NewProductHandler(database.DB)
	configHandler := handlers.NewSiteConfigHandler(database.DB)
	adminHandler := handlers.NewAdminHandler(database.DB, engine)

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, database.DB, authHandler, healthHandler, accountHandler, ledgerHandler, productHandler, configHandler, adminHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	sweeper.Stop()
	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	// Close database connections
	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
