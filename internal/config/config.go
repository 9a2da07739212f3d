package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration
	// Pending2FAExpiry bounds the window between a correct password and the
	// matching 2FA code.
	Pending2FAExpiry time.Duration

	// Ledger economics
	WelcomeBonus        float64
	CheckInReward       float64
	LowBalanceThreshold float64
	MinWithdrawal       float64
	MaxWithdrawal       float64
	WithdrawalFeeRate   float64
	SellBackRate        float64
	Level1Rate          float64
	Level2Rate          float64
	Level3Rate          float64
	UTCOffsetHours      int

	// AccrualSweepInterval drives the background income sweep for users with
	// active sessions.
	AccrualSweepInterval time.Duration

	// Admin
	AdminPhones string
	AdminToken  string

	// Server
	Port        string
	CORSOrigins string
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "istithmar_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"), 15*time.Minute),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h"), 168*time.Hour),
		Pending2FAExpiry: parseDuration(getEnv("PENDING_2FA_EXPIRY", "5m"), 5*time.Minute),

		WelcomeBonus:        parseFloat(getEnv("WELCOME_BONUS", "100.00"), 100.00),
		CheckInReward:       parseFloat(getEnv("CHECK_IN_REWARD", "5.00"), 5.00),
		LowBalanceThreshold: parseFloat(getEnv("LOW_BALANCE_THRESHOLD", "50.00"), 50.00),
		MinWithdrawal:       parseFloat(getEnv("MIN_WITHDRAWAL", "100"), 100),
		MaxWithdrawal:       parseFloat(getEnv("MAX_WITHDRAWAL", "60000"), 60000),
		WithdrawalFeeRate:   parseFloat(getEnv("WITHDRAWAL_FEE_RATE", "0.15"), 0.15),
		SellBackRate:        parseFloat(getEnv("SELL_BACK_RATE", "0.10"), 0.10),
		Level1Rate:          parseFloat(getEnv("TEAM_LV1_RATE", "0.35"), 0.35),
		Level2Rate:          parseFloat(getEnv("TEAM_LV2_RATE", "0.02"), 0.02),
		Level3Rate:          parseFloat(getEnv("TEAM_LV3_RATE", "0.01"), 0.01),
		UTCOffsetHours:      parseInt(getEnv("UTC_OFFSET_HOURS", "2"), 2),

		AccrualSweepInterval: parseDuration(getEnv("ACCRUAL_SWEEP_INTERVAL", "10s"), 10*time.Second),

		AdminPhones: getEnv("ADMIN_PHONES", ""),
		AdminToken:  getEnv("ADMIN_TOKEN", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseFloat(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return f
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
