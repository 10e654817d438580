package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the central typed configuration struct.
type Config struct {
	App       AppConfig
	DB        DBConfig
	Log       LogConfig
	Analytics AnalyticsConfig
}

type AppConfig struct {
	Name  string
	Env   string // local | production | testing
	Debug bool
	Port  string
	// CORSOrigins lists the origins allowed to call the API from a browser.
	CORSOrigins []string
}

type DBConfig struct {
	Driver string // only sqlite is supported
	DSN    string
}

type LogConfig struct {
	Level   string
	Handler string // text | json
	Channel string
}

// AnalyticsConfig holds the defaults used until an admin saves settings.
type AnalyticsConfig struct {
	Enabled       bool
	RetentionDays int
}

// Load reads the env files (default ".env", missing files are fine) and
// populates a Config from environment variables.
// Call once at bootstrap: cfg := config.Load()
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	return &Config{
		App: AppConfig{
			Name:  env("APP_NAME", "simple-lms"),
			Env:   env("APP_ENV", "local"),
			Debug: envBool("APP_DEBUG", false),
			Port:  env("APP_PORT", "8000"),

			CORSOrigins: envList("APP_CORS_ORIGINS", "*"),
		},
		DB: DBConfig{
			Driver: env("DB_DRIVER", "sqlite"),
			DSN:    env("DB_DSN", "simple-lms.db"),
		},
		Log: LogConfig{
			Level:   env("LOG_LEVEL", "info"),
			Handler: env("LOG_HANDLER", "text"),
			Channel: env("LOG_CHANNEL", "simple-lms"),
		},
		Analytics: AnalyticsConfig{
			Enabled:       envBool("ANALYTICS_ENABLED", true),
			RetentionDays: GetInt("ANALYTICS_RETENTION_DAYS", 90),
		},
	}
}

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	return env(key, defaultVal)
}

// GetInt returns an int env value.
func GetInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// GetBool returns a bool env value.
func GetBool(key string, defaultVal bool) bool {
	return envBool(key, defaultVal)
}

// ── helpers ─────────────────────────────────────────────────────────────────

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envList(key, fallback string) []string {
	var out []string
	for _, v := range strings.Split(env(key, fallback), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
