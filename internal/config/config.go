package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	defaultAccessSecret  = "dev-secret-change-me"
	defaultRefreshSecret = "dev-refresh-secret-change-me"

	AdapterPostgres = "postgres"
	AdapterSQLite   = "sqlite"
	AdapterMemory   = "memory"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName        string        `env:"APP_NAME" envDefault:"auth-api"`
	AppVersion     string        `env:"APP_VERSION" envDefault:"0.1.0"`
	Env            string        `env:"APP_ENV" envDefault:"development"`
	Port           string        `env:"PORT" envDefault:"3000"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	DBAdapter      string        `env:"DB_ADAPTER" envDefault:"postgres"`
	DatabaseURL    string        `env:"DATABASE_URL"`
	SQLiteFile     string        `env:"SQLITE_FILE" envDefault:"./data/auth.db"`
	RedisURL       string        `env:"REDIS_URL"`
	JWTSecret      string        `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
	JWTExpiresIn   string        `env:"JWT_EXPIRES_IN" envDefault:"900s"`
	RefreshSecret  string        `env:"JWT_REFRESH_SECRET" envDefault:"dev-refresh-secret-change-me"`
	RefreshExpires string        `env:"JWT_REFRESH_EXPIRES_IN" envDefault:"7d"`
	BcryptCost     int           `env:"BCRYPT_COST" envDefault:"12"`
	ShutdownPeriod time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`
	LoginPerMinute int           `env:"LOGIN_RATE_LIMIT" envDefault:"10"`
	MigrateOnStart bool          `env:"MIGRATE_ON_START" envDefault:"false"`

	// Resolved from JWTExpiresIn and RefreshExpires.
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// Load reads a local .env file when present, then populates a Config from the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return parse()
}

func parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.DBAdapter = strings.ToLower(strings.TrimSpace(cfg.DBAdapter))

	var err error
	if cfg.AccessTokenTTL, err = ParseExpiry(cfg.JWTExpiresIn); err != nil {
		return Config{}, fmt.Errorf("invalid JWT_EXPIRES_IN: %w", err)
	}
	if cfg.RefreshTokenTTL, err = ParseExpiry(cfg.RefreshExpires); err != nil {
		return Config{}, fmt.Errorf("invalid JWT_REFRESH_EXPIRES_IN: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.DBAdapter {
	case AdapterPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL must be set when DB_ADAPTER=%s", AdapterPostgres)
		}
	case AdapterSQLite:
		if c.SQLiteFile == "" {
			return fmt.Errorf("SQLITE_FILE must be set when DB_ADAPTER=%s", AdapterSQLite)
		}
	case AdapterMemory:
	default:
		return fmt.Errorf("unsupported DB_ADAPTER %q", c.DBAdapter)
	}

	if c.JWTSecret == "" || c.RefreshSecret == "" {
		return errors.New("JWT_SECRET and JWT_REFRESH_SECRET must be set")
	}
	if c.JWTSecret == c.RefreshSecret {
		return errors.New("JWT_SECRET and JWT_REFRESH_SECRET must differ")
	}
	if c.IsProduction() && (c.JWTSecret == defaultAccessSecret || c.RefreshSecret == defaultRefreshSecret) {
		return errors.New("JWT secrets must be set in production")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST out of range: %d", c.BcryptCost)
	}
	return nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsProduction reports whether the service runs with production safeguards.
func (c Config) IsProduction() bool {
	switch strings.ToLower(c.Env) {
	case "prod", "production":
		return true
	default:
		return false
	}
}

// IsDev reports whether the service runs in a local development environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.Env) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

// ParseExpiry accepts a bare number of seconds ("900"), a day suffix ("7d"),
// or any Go duration ("15m", "1h30m").
func ParseExpiry(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, errors.New("empty expiry")
	}
	var d time.Duration
	if n, err := strconv.Atoi(v); err == nil {
		d = time.Duration(n) * time.Second
	} else if days, ok := strings.CutSuffix(v, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("parse days %q: %w", v, err)
		}
		d = time.Duration(n) * 24 * time.Hour
	} else {
		d, err = time.ParseDuration(v)
		if err != nil {
			return 0, err
		}
	}
	if d <= 0 {
		return 0, fmt.Errorf("expiry must be positive: %q", v)
	}
	return d, nil
}
