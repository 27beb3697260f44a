package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	Port              string        `mapstructure:"PORT"`
	DatabaseDriver    string        `mapstructure:"DATABASE_DRIVER"`
	DatabaseURL       string        `mapstructure:"DATABASE_URL"`
	JWTSecret         string        `mapstructure:"JWT_SECRET"`
	RedisAddr         string        `mapstructure:"REDIS_ADDR"`
	RedisPassword     string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB           int           `mapstructure:"REDIS_DB"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	LogDevelopment    bool          `mapstructure:"LOG_DEVELOPMENT"`
	RequireIdentity   bool          `mapstructure:"REQUIRE_IDENTITY"`
	JoinTimeout       time.Duration `mapstructure:"JOIN_TIMEOUT"`
	JoinRatePerMinute int           `mapstructure:"JOIN_RATE_PER_MINUTE"`
	CardCacheSize     int           `mapstructure:"CARD_CACHE_SIZE"`

	// FileErr is set when no .env file could be read. Load runs before the
	// logger exists, so reporting it is left to the caller.
	FileErr error `mapstructure:"-"`
}

var AppConfig *Config

var keys = []string{
	"PORT", "DATABASE_DRIVER", "DATABASE_URL", "JWT_SECRET",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
	"LOG_LEVEL", "LOG_DEVELOPMENT",
	"REQUIRE_IDENTITY", "JOIN_TIMEOUT", "JOIN_RATE_PER_MINUTE",
	"CARD_CACHE_SIZE",
}

// Load reads configuration from an optional .env file in dir and from the
// environment. Environment variables win.
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REQUIRE_IDENTITY", true)
	v.SetDefault("JOIN_TIMEOUT", 10*time.Second)
	v.SetDefault("JOIN_RATE_PER_MINUTE", 30)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CARD_CACHE_SIZE", 10000)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Unmarshal only sees env values for keys viper already knows about.
	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	fileErr := v.ReadInConfig()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.FileErr = fileErr
	return &cfg, nil
}

// LoadConfig loads the configuration from the working directory into
// AppConfig.
func LoadConfig() error {
	cfg, err := Load(".")
	if err != nil {
		return fmt.Errorf("unable to decode into struct: %w", err)
	}
	AppConfig = cfg
	return nil
}
