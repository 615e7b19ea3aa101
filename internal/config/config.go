package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverFile     = "file"
)

type Config struct {
	Env  string
	Addr string

	// Storage
	StoreDriver string
	SQLitePath  string
	DatabaseURL string
	TasksFile   string
	DBLogLevel  string

	// Sessions
	JWTSecret     string
	JWTIssuer     string
	JWTAudience   string
	SessionTTL    time.Duration
	SessionCookie string
	CookieSecure  bool

	// Admin seed
	AdminEmail    string
	AdminPassword string

	LogLevel    string
	CORSOrigins []string
	SentryDSN   string
}

const (
	defaultEnv           = "local"
	defaultAddr          = ":8080"
	defaultDriver        = DriverSQLite
	defaultSQLitePath    = "todo.db"
	defaultTasksFile     = "tasks.json"
	defaultJWTIssuer     = "todo-api"
	defaultJWTAudience   = "todo-client"
	defaultSessionTTL    = 24 * time.Hour
	defaultSessionCookie = "todo_session"
	defaultLogLevel      = "info"
	defaultDBLogLevel    = "warn"

	// any origin, without credentials; only applied in the local environment
	localCORSOrigins = "*"

	// used only when APP_ENV=local and no secret is configured
	localJWTSecret = "local-development-secret"
)

// AuthEnabled reports whether the configured store carries user accounts
func (c *Config) AuthEnabled() bool {
	return c.StoreDriver != DriverFile
}

// Load builds the configuration from defaults, then the environment, then
// command-line flags. args excludes the program name.
func Load(args []string) (*Config, error) {
	cfg := &Config{
		Env:           defaultEnv,
		Addr:          defaultAddr,
		StoreDriver:   defaultDriver,
		SQLitePath:    defaultSQLitePath,
		TasksFile:     defaultTasksFile,
		DBLogLevel:    defaultDBLogLevel,
		JWTIssuer:     defaultJWTIssuer,
		JWTAudience:   defaultJWTAudience,
		SessionTTL:    defaultSessionTTL,
		SessionCookie: defaultSessionCookie,
		LogLevel:      defaultLogLevel,
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := applyFlagOverrides(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	cfg.Env = getEnv("APP_ENV", cfg.Env)
	cfg.Addr = getEnv("ADDR", cfg.Addr)
	if port := os.Getenv("PORT"); port != "" && os.Getenv("ADDR") == "" {
		cfg.Addr = ":" + port
	}
	cfg.StoreDriver = strings.ToLower(getEnv("STORE_DRIVER", cfg.StoreDriver))
	cfg.SQLitePath = getEnv("SQLITE_PATH", cfg.SQLitePath)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.TasksFile = getEnv("TASKS_FILE", cfg.TasksFile)
	cfg.DBLogLevel = getEnv("DB_LOG_LEVEL", cfg.DBLogLevel)

	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.JWTIssuer = getEnv("JWT_ISSUER", cfg.JWTIssuer)
	cfg.JWTAudience = getEnv("JWT_AUDIENCE", cfg.JWTAudience)
	cfg.SessionCookie = getEnv("SESSION_COOKIE", cfg.SessionCookie)
	if v := os.Getenv("SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SESSION_TTL %q: %w", v, err)
		}
		cfg.SessionTTL = d
	}
	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid COOKIE_SECURE %q: %w", v, err)
		}
		cfg.CookieSecure = b
	}

	cfg.AdminEmail = getEnv("ADMIN_EMAIL", cfg.AdminEmail)
	cfg.AdminPassword = getEnv("ADMIN_PASSWORD", cfg.AdminPassword)

	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitList(v)
	}
	cfg.SentryDSN = getEnv("SENTRY_DSN", cfg.SentryDSN)
	return nil
}

func applyFlagOverrides(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	fs.StringVar(&cfg.StoreDriver, "store", cfg.StoreDriver, "task store: sqlite, postgres or file")
	fs.StringVar(&cfg.SQLitePath, "sqlite-path", cfg.SQLitePath, "sqlite database file")
	fs.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "postgres connection string")
	fs.StringVar(&cfg.TasksFile, "tasks-file", cfg.TasksFile, "JSON file used by the file store")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "session lifetime")
	return fs.Parse(args)
}

func (c *Config) validate() error {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	switch c.StoreDriver {
	case DriverSQLite, DriverFile:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", c.SessionTTL)
	}
	if c.AuthEnabled() && c.JWTSecret == "" {
		if c.Env != defaultEnv {
			return errors.New("JWT_SECRET is required outside the local environment")
		}
		c.JWTSecret = localJWTSecret
	}
	if c.CORSOrigins == nil && c.Env == defaultEnv {
		c.CORSOrigins = splitList(localCORSOrigins)
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
