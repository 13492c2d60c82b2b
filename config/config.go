package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ImageSources lists every buildable image source in default priority order
var ImageSources = []string{"keyword", "pixabay", "google", "placeholder"}

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Dataset   DatasetConfig   `mapstructure:"dataset"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Resolver  ResolverConfig  `mapstructure:"resolver"`
	Sources   SourcesConfig   `mapstructure:"sources"`
	Log       LogConfig       `mapstructure:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig selects the relational store
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // "sqlite" or "pgx"
	DSN    string `mapstructure:"dsn"`
}

// DatasetConfig locates the product sheet
type DatasetConfig struct {
	Path   string `mapstructure:"path"`
	Backup bool   `mapstructure:"backup"`
}

// CacheConfig locates the persisted image cache; an empty path keeps it in memory
type CacheConfig struct {
	Path string `mapstructure:"path"`
}

// ResolverConfig holds retry and pacing settings
type ResolverConfig struct {
	MaxRetries   int           `mapstructure:"max_retries"`
	BackoffUnit  time.Duration `mapstructure:"backoff_unit"`
	RoundDelay   time.Duration `mapstructure:"round_delay"`
	ProductDelay time.Duration `mapstructure:"product_delay"`
}

// SourcesConfig holds the source chain order and per-source settings
type SourcesConfig struct {
	Order       []string          `mapstructure:"order"`
	Keyword     KeywordConfig     `mapstructure:"keyword"`
	Placeholder PlaceholderConfig `mapstructure:"placeholder"`
	Pixabay     PixabayConfig     `mapstructure:"pixabay"`
	Google      GoogleConfig      `mapstructure:"google"`
}

type KeywordConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	Width         int           `mapstructure:"width"`
	Height        int           `mapstructure:"height"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
	Burst         int           `mapstructure:"burst"`
}

type PlaceholderConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type PixabayConfig struct {
	APIKey string `mapstructure:"api_key"`
}

type GoogleConfig struct {
	APIKey string `mapstructure:"api_key"`
	CX     string `mapstructure:"cx"`
}

// LogConfig controls the operational log
type LogConfig struct {
	File   string `mapstructure:"file"`
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "text" or "json"
}

// TelemetryConfig controls trace export; an empty endpoint disables it
type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	ServiceName  string `mapstructure:"service_name"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom loads configuration, reading configFile instead of searching the
// default locations when it is set
func LoadFrom(configFile string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/stocksmarthub/")
	}

	// Environment variable settings
	v.SetEnvPrefix("STOCKSMARTHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional unless named explicitly
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
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

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Storage defaults
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "stocksmarthub.db")
	v.SetDefault("dataset.path", "products.csv")
	v.SetDefault("dataset.backup", true)
	v.SetDefault("cache.path", "image_cache.json")

	// Resolver defaults
	v.SetDefault("resolver.max_retries", 3)
	v.SetDefault("resolver.backoff_unit", "1s")
	v.SetDefault("resolver.round_delay", "1s")
	v.SetDefault("resolver.product_delay", "500ms")

	// Source defaults
	v.SetDefault("sources.order", ImageSources)
	v.SetDefault("sources.keyword.base_url", "https://source.unsplash.com")
	v.SetDefault("sources.keyword.width", 800)
	v.SetDefault("sources.keyword.height", 600)
	v.SetDefault("sources.keyword.timeout", "10s")
	v.SetDefault("sources.keyword.rate_per_second", 2.0)
	v.SetDefault("sources.keyword.burst", 1)
	v.SetDefault("sources.placeholder.base_url", "https://via.placeholder.com")
	v.SetDefault("sources.pixabay.api_key", "")
	v.SetDefault("sources.google.api_key", "")
	v.SetDefault("sources.google.cx", "")

	// Log defaults
	v.SetDefault("log.file", "image_fetch.log")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Telemetry defaults
	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.service_name", "stocksmarthub")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Database.Driver != "sqlite" && config.Database.Driver != "pgx" {
		return fmt.Errorf("database driver must be 'sqlite' or 'pgx', got: %s", config.Database.Driver)
	}

	if config.Database.DSN == "" {
		return fmt.Errorf("database DSN is required (set STOCKSMARTHUB_DATABASE_DSN)")
	}

	if config.Dataset.Path == "" {
		return fmt.Errorf("dataset path is required (set STOCKSMARTHUB_DATASET_PATH)")
	}

	if config.Resolver.MaxRetries < 1 {
		return fmt.Errorf("resolver max_retries must be at least 1, got: %d", config.Resolver.MaxRetries)
	}

	if config.Resolver.BackoffUnit < 0 || config.Resolver.RoundDelay < 0 || config.Resolver.ProductDelay < 0 {
		return fmt.Errorf("resolver delays must not be negative")
	}

	if len(config.Sources.Order) == 0 {
		return fmt.Errorf("at least one image source must be configured")
	}
	seen := make(map[string]bool, len(config.Sources.Order))
	for _, name := range config.Sources.Order {
		if !slices.Contains(ImageSources, name) {
			return fmt.Errorf("unknown image source: %s", name)
		}
		if seen[name] {
			return fmt.Errorf("image source listed twice: %s", name)
		}
		seen[name] = true
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("log format must be 'text' or 'json', got: %s", config.Log.Format)
	}

	return nil
}

// loadEnvFile exports KEY=VALUE pairs from ./.env without overriding variables
// that are already set. A missing file is not an error.
func loadEnvFile() error {
	f, err := os.Open(".env")
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(strings.TrimPrefix(key, "export "))
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}
	return scanner.Err()
}
