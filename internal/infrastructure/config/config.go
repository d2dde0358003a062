package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth      AuthConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Storage   StorageConfig
	Upload    UploadConfig
	Seed      SeedConfig
	Dashboard DashboardConfig
}

type AuthConfig struct {
	JWTSecret    string        `env:"JWT_SECRET"`
	SessionTTL   time.Duration `env:"SESSION_TTL,   default=24h"`
	CookieSecure bool          `env:"COOKIE_SECURE, default=false"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=monitor_pelanggan"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

type StorageConfig struct {
	Endpoint  string `env:"S3_ENDPOINT,   default=localhost:9000"`
	AccessKey string `env:"S3_ACCESS_KEY"`
	SecretKey string `env:"S3_SECRET_KEY"`
	Bucket    string `env:"S3_BUCKET,     default=kontrak"`
	Region    string `env:"S3_REGION,     default=us-east-1"`
	UseSSL    bool   `env:"S3_USE_SSL,    default=false"`
}

type UploadConfig struct {
	MaxBytes       int64 `env:"UPLOAD_MAX_BYTES, default=16777216"`
	CleanupWorkers int   `env:"CLEANUP_WORKERS,  default=4"`
}

// SeedConfig describes the superadmin created on an empty user collection.
type SeedConfig struct {
	Username string `env:"SEED_ADMIN_USERNAME, default=superadmin"`
	Password string `env:"SEED_ADMIN_PASSWORD"`
	Email    string `env:"SEED_ADMIN_EMAIL,    default=superadmin@localhost"`
}

// DashboardConfig is read by the terminal dashboard client.
type DashboardConfig struct {
	URL          string        `env:"DASHBOARD_URL,           default=http://localhost:8080"`
	PollInterval time.Duration `env:"DASHBOARD_POLL_INTERVAL, default=3s"`
	PollJitter   float64       `env:"DASHBOARD_POLL_JITTER,   default=0"`
	Timeout      time.Duration `env:"DASHBOARD_TIMEOUT,       default=0s"`
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads a .env file when present, then configuration from environment
// variables using go-envconfig. Variables already set win over the file.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return process(ctx, nil)
}

func process(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	ec := &envconfig.Config{Target: &cfg}
	if lookuper != nil {
		ec.Lookuper = lookuper
	}
	if err := envconfig.ProcessWith(ctx, ec); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	return &cfg, nil
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	if c.IsProduction() && len(c.Auth.JWTSecret) < 32 {
		return errors.New("config: JWT_SECRET must be at least 32 bytes in production")
	}
	if c.Upload.MaxBytes <= 0 {
		return errors.New("config: UPLOAD_MAX_BYTES must be positive")
	}
	return nil
}
