package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the central typed configuration struct.
type Config struct {
	App       AppConfig
	Log       LogConfig
	Container ContainerConfig
}

type AppConfig struct {
	Name string
	Env  string // local | production | testing
	Port string

	// RouterLifetime is the lifetime the router capability is registered
	// with: transient | scoped | singleton.
	RouterLifetime string
}

type LogConfig struct {
	Level  string // debug | info | warn | error
	Format string // console | json
}

type ContainerConfig struct {
	// ValidateOnBoot checks every registration when the application boots.
	ValidateOnBoot bool
	// WarmSingletons builds all singletons when the application boots.
	WarmSingletons bool
}

// Load reads .env (if present) and populates a Config from environment variables.
// Variables already set in the environment win over the files.
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
			Name:           env("APP_NAME", "GoInject"),
			Env:            env("APP_ENV", "local"),
			Port:           env("APP_PORT", "8000"),
			RouterLifetime: env("APP_ROUTER_LIFETIME", "transient"),
		},
		Log: LogConfig{
			Level:  env("LOG_LEVEL", "info"),
			Format: env("LOG_FORMAT", "console"),
		},
		Container: ContainerConfig{
			ValidateOnBoot: envBool("CONTAINER_VALIDATE_ON_BOOT", true),
			WarmSingletons: envBool("CONTAINER_WARM_SINGLETONS", false),
		},
	}
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
