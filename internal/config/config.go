package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName     string
	AppEnv      string
	AppURL      string
	Port        string
	ContentPath string
	SeedCourses bool

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret         string
	JWTExpiry         time.Duration
	AdminUsername     string
	AdminPasswordHash string // bcrypt
	AuthRateLimit     int    // login attempts per minute per client

	// Telegram
	TelegramBotToken       string
	TelegramInitDataMaxAge time.Duration // 0 disables the check
	TelegramWebAppURL      string
	BotEnabled             bool
	ReminderTime           string // HH:MM UTC, empty disables reminders

	// Language model
	LLMProvider   string // "mistral", "gemini" or "none"
	LLMTimeout    time.Duration
	MistralAPIKey string
	MistralModel  string
	MistralURL    string
	GeminiAPIKey  string
	GeminiModel   string

	// Observability (optional)
	SentryDSN string
	LogFile   string

	// Storage (S3-compatible: MinIO, AWS S3, Cloudflare R2, DigitalOcean Spaces, etc.)
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3Endpoint      string        // Optional: for S3-compatible services (MinIO, DO Spaces, R2, etc.)
	S3PresignExpiry time.Duration // 0 serves plain public URLs
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName:     envString("APP_NAME", "Cloudly"),
		AppEnv:      envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:      envRequired("APP_URL"),
		Port:        envString("PORT", "8090"),
		ContentPath: envString("CONTENT_PATH", "content"),
		SeedCourses: envBool("SEED_COURSES", true),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/miniapp.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_time_format=sqlite"),

		// Security
		JWTSecret:         envRequired("JWT_SECRET"),
		JWTExpiry:         envDuration("JWT_EXPIRY", 168*time.Hour), // 7 days
		AdminUsername:     envString("ADMIN_USERNAME", ""),
		AdminPasswordHash: envString("ADMIN_PASSWORD_HASH", ""),
		AuthRateLimit:     envInt("AUTH_RATE_LIMIT", 20),

		// Telegram
		TelegramBotToken:       envRequired("TELEGRAM_BOT_TOKEN"),
		TelegramInitDataMaxAge: envDuration("TELEGRAM_INIT_DATA_MAX_AGE", 0),
		TelegramWebAppURL:      envString("TELEGRAM_WEBAPP_URL", envString("APP_URL", "")),
		BotEnabled:             envBool("BOT_ENABLED", false),
		ReminderTime:           envString("REMINDER_TIME", "19:00"),

		// Language model
		LLMProvider:   envString("LLM_PROVIDER", "none"),
		LLMTimeout:    envDuration("LLM_TIMEOUT", 15*time.Second),
		MistralAPIKey: envString("MISTRAL_API_KEY", ""),
		MistralModel:  envString("MISTRAL_MODEL", "mistral-small-latest"),
		MistralURL:    envString("MISTRAL_API_URL", "https://api.mistral.ai/v1/chat/completions"),
		GeminiAPIKey:  envString("GEMINI_API_KEY", ""),
		GeminiModel:   envString("GEMINI_MODEL", "gemini-1.5-flash"),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),
		LogFile:   envString("LOG_FILE", ""),

		// Storage (optional, enables course image uploads)
		S3Region:        envString("S3_REGION", "us-east-1"),
		S3Bucket:        envString("S3_BUCKET", ""),
		S3AccessKey:     envString("S3_ACCESS_KEY", ""),
		S3SecretKey:     envString("S3_SECRET_KEY", ""),
		S3Endpoint:      envString("S3_ENDPOINT", ""),
		S3PresignExpiry: envDuration("S3_PRESIGN_EXPIRY", 0),
	}

	// Production: validate required services
	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction ensures the configured providers have credentials.
// Development tolerates missing keys and falls back to canned answers.
func validateProduction(cfg *Config) {
	missing := ""
	switch cfg.LLMProvider {
	case "mistral":
		if cfg.MistralAPIKey == "" {
			missing = "MISTRAL_API_KEY"
		}
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			missing = "GEMINI_API_KEY"
		}
	}
	if missing != "" {
		slog.Error("production deployment requires language model credentials",
			"key", missing,
			"hint", "set LLM_PROVIDER=none to serve fallback answers")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Sanitized returns a copy of the config with only public/safe fields.
// All secrets, credentials, and sensitive data are excluded.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName:           c.AppName,
		AppEnv:            c.AppEnv,
		AppURL:            c.AppURL,
		Port:              c.Port,
		TelegramWebAppURL: c.TelegramWebAppURL,
		LLMProvider:       c.LLMProvider,
		S3Endpoint:        c.S3Endpoint,
	}
}
