// Package config loads the optimizer's layered configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/rsned/crafting-optimizer/internal/crafting/engine"
)

// EnvPrefix is prepended to every environment override, e.g. CO_SERVER_ADDRESS.
const EnvPrefix = "CO"

// Config is the main configuration struct combining all sub-configs
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Optimizer OptimizerConfig `mapstructure:"optimizer"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
}

// ServerConfig holds the HTTP listener configuration
type ServerConfig struct {
	Address         string          `mapstructure:"address" validate:"required"`
	ReadTimeout     time.Duration   `mapstructure:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration   `mapstructure:"write_timeout" validate:"gte=0"`
	IdleTimeout     time.Duration   `mapstructure:"idle_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout" validate:"gte=0"`
	MaxBodyBytes    int64           `mapstructure:"max_body_bytes" validate:"gte=0"`
	Compression     bool            `mapstructure:"compression"`
	Maintenance     bool            `mapstructure:"maintenance"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig holds token bucket settings for the API routes
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gte=0"`
	Burst             int     `mapstructure:"burst" validate:"gte=0"`
}

// CatalogConfig locates the item catalog.
type CatalogConfig struct {
	// Source is a file path, an s3://bucket/key URI, or "sqlite" to read
	// the imported catalog from the database.
	Source string `mapstructure:"source" validate:"required"`
}

// UsesDatabase reports whether the catalog is read from the SQLite store.
func (c CatalogConfig) UsesDatabase() bool {
	return c.Source == "sqlite"
}

// DatabaseConfig holds SQLite configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// OptimizerConfig mirrors engine.Options
type OptimizerConfig struct {
	QuantityCap       int      `mapstructure:"quantity_cap" validate:"min=1"`
	MarginWeight      float64  `mapstructure:"margin_weight" validate:"gte=0"`
	ProfitWeight      float64  `mapstructure:"profit_weight" validate:"gte=0"`
	ProfitScale       float64  `mapstructure:"profit_scale" validate:"gt=0"`
	MinScore          float64  `mapstructure:"min_score" validate:"gte=0"`
	ValuableThreshold float64  `mapstructure:"valuable_threshold" validate:"gte=0"`
	TimePerUnit       int      `mapstructure:"time_per_unit" validate:"min=1"`
	StepSkipRules     []string `mapstructure:"step_skip_rules"`
	QuantitySearch    string   `mapstructure:"quantity_search" validate:"oneof=bisect linear"`
	MaxRounds         int      `mapstructure:"max_rounds" validate:"min=1"`
	MaxDepth          int      `mapstructure:"max_depth" validate:"min=1"`
	MemoSize          int      `mapstructure:"memo_size" validate:"min=1"`
}

// EngineOptions converts the optimizer section to engine options.
func (o OptimizerConfig) EngineOptions() engine.Options {
	return engine.Options{
		QuantityCap:       o.QuantityCap,
		MarginWeight:      o.MarginWeight,
		ProfitWeight:      o.ProfitWeight,
		ProfitScale:       o.ProfitScale,
		MinScore:          o.MinScore,
		ValuableThreshold: o.ValuableThreshold,
		TimePerUnit:       o.TimePerUnit,
		StepSkipRules:     o.StepSkipRules,
		QuantitySearch:    engine.QuantitySearch(o.QuantitySearch),
		MaxRounds:         o.MaxRounds,
		MaxDepth:          o.MaxDepth,
		MemoSize:          o.MemoSize,
	}
}

// MetricsConfig holds Prometheus exposure configuration
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Path      string `mapstructure:"path"`
	Namespace string `mapstructure:"namespace"`
}

// TracingConfig holds OpenTelemetry exporter configuration
type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
	Endpoint    string `mapstructure:"endpoint" validate:"required_if=Enabled true"`
	Insecure    bool   `mapstructure:"insecure"`
}

// LoadConfig loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. Config file (config.yaml)
// 3. Defaults (lowest priority)
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/crafting-optimizer")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	registerDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// MAINTENANCE_MODE is honored without the prefix so existing deployments keep working.
	if os.Getenv("MAINTENANCE_MODE") == "true" {
		v.Set("server.maintenance", true)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	SetDefaults(&cfg)

	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	SetDefaults(cfg)
	return cfg
}
