package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Store drivers.
const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`
	JWTSecret string        `env:"JWT_SECRET, required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=1h"`

	Feed     FeedConfig
	Store    StoreConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Notifier NotifierConfig
}

type FeedConfig struct {
	PageSize       int           `env:"FEED_PAGE_SIZE,  default=2"`
	ImageDir       string        `env:"IMAGE_DIR,       default=images"`
	CORSOrigins    []string      `env:"CORS_ORIGINS,    default=http://localhost:3000"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL, default=24h"`
}

type StoreConfig struct {
	Driver string `env:"STORE_DRIVER, default=mongo"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=social_feed"`
}

// RedisConfig is optional; an empty Addr disables cross-instance fan-out and
// keeps idempotency keys in process.
type RedisConfig struct {
	Addr    string `env:"REDIS_ADDR"`
	DB      int    `env:"REDIS_DB,      default=0"`
	Channel string `env:"REDIS_CHANNEL, default=feed:events"`
}

type NotifierConfig struct {
	Workers int `env:"NOTIFY_WORKERS, default=4"`
	Buffer  int `env:"NOTIFY_BUFFER,  default=256"`
}

// IsDevelopment reports whether the service runs in a local environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "local"
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration from l and validates it.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER: unknown driver %q", c.Store.Driver)
	}
	if c.Feed.PageSize <= 0 {
		return fmt.Errorf("FEED_PAGE_SIZE: must be positive, got %d", c.Feed.PageSize)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL: must be positive, got %s", c.TokenTTL)
	}
	return nil
}
