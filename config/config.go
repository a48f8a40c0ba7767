package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Model     ModelConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Listings  ListingsConfig
	Training  TrainingConfig
	Report    ReportConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ModelConfig points at the trained model bundle
type ModelConfig struct {
	BundlePath string `mapstructure:"bundle_path"`
}

// CacheConfig holds verdict cache configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory", "redis" or "none"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute, 0 disables
}

// ListingsConfig selects the relational listing store
type ListingsConfig struct {
	Driver string `mapstructure:"driver"` // "sqlite", "postgres" or empty to disable
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
}

// TrainingConfig holds offline training settings
type TrainingConfig struct {
	DataPath       string  `mapstructure:"data_path"`
	Seed           int64   `mapstructure:"seed"`
	TestFraction   float64 `mapstructure:"test_fraction"`
	MaxFeatures    int     `mapstructure:"max_features"`
	PairsPerVendor int     `mapstructure:"pairs_per_vendor"`
	Epochs         int     `mapstructure:"epochs"`
	LearningRate   float64 `mapstructure:"learning_rate"`
	L2             float64 `mapstructure:"l2"`
}

// ReportConfig overrides the built-in evidence report thresholds
type ReportConfig struct {
	RulesPath string `mapstructure:"rules_path"`
}

// Load loads configuration from .env, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		log.Printf("[CONFIG] ignoring .env: %v", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/linker/")

	// LINKER_CACHE_REDIS_URL -> cache.redis_url
	v.SetEnvPrefix("LINKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads ./.env without overriding variables already set
func loadEnvFile() error {
	err := godotenv.Load(".env")
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// setDefaults sets default configuration values. Every key needs a default
// so AutomaticEnv can see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	v.SetDefault("model.bundle_path", "models/bundle.json")

	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "24h")

	v.SetDefault("ratelimit.per_ip", 100)

	v.SetDefault("listings.driver", "sqlite")
	v.SetDefault("listings.path", "data/listings.db")
	v.SetDefault("listings.dsn", "")

	v.SetDefault("training.data_path", "data/listings.csv")
	v.SetDefault("training.seed", 42)
	v.SetDefault("training.test_fraction", 0.2)
	v.SetDefault("training.max_features", 1500)
	v.SetDefault("training.pairs_per_vendor", 5)
	v.SetDefault("training.epochs", 3000)
	v.SetDefault("training.learning_rate", 1.0)
	v.SetDefault("training.l2", 1e-4)

	v.SetDefault("report.rules_path", "")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Server.Port == "" {
		return fmt.Errorf("server port is required (set LINKER_SERVER_PORT)")
	}

	if config.Model.BundlePath == "" {
		return fmt.Errorf("model bundle path is required (set LINKER_MODEL_BUNDLE_PATH)")
	}

	switch config.Cache.Type {
	case "memory", "none":
	case "redis":
		if config.Cache.RedisURL == "" {
			return fmt.Errorf("Redis URL is required when cache type is 'redis'")
		}
	default:
		return fmt.Errorf("cache type must be 'memory', 'redis' or 'none', got: %s", config.Cache.Type)
	}

	if config.RateLimit.PerIP < 0 {
		return fmt.Errorf("ratelimit.per_ip must not be negative, got: %d", config.RateLimit.PerIP)
	}

	switch config.Listings.Driver {
	case "":
	case "sqlite":
		if config.Listings.Path == "" {
			return fmt.Errorf("listings path is required when driver is 'sqlite'")
		}
	case "postgres":
		if config.Listings.DSN == "" {
			return fmt.Errorf("listings DSN is required when driver is 'postgres'")
		}
	default:
		return fmt.Errorf("listings driver must be 'sqlite' or 'postgres', got: %s", config.Listings.Driver)
	}

	if config.Training.TestFraction <= 0 || config.Training.TestFraction >= 1 {
		return fmt.Errorf("training.test_fraction must be between 0 and 1, got: %v", config.Training.TestFraction)
	}

	return nil
}

// Target returns the path or DSN for the configured listings driver
func (c ListingsConfig) Target() string {
	if c.Driver == "postgres" {
		return c.DSN
	}
	return c.Path
}
