package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/rsned/crafting-optimizer/internal/crafting/engine"
)

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = 1 << 20
	}
	if cfg.Server.RateLimit.RequestsPerSecond == 0 {
		cfg.Server.RateLimit.RequestsPerSecond = 20
	}
	if cfg.Server.RateLimit.Burst == 0 {
		cfg.Server.RateLimit.Burst = 40
	}

	// Catalog and database defaults
	if cfg.Catalog.Source == "" {
		cfg.Catalog.Source = "data/catalog.json"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/crafting.db"
	}

	// Optimizer defaults come from the engine
	d := engine.DefaultOptions()
	if cfg.Optimizer.QuantityCap == 0 {
		cfg.Optimizer.QuantityCap = d.QuantityCap
	}
	if cfg.Optimizer.MarginWeight == 0 && cfg.Optimizer.ProfitWeight == 0 {
		cfg.Optimizer.MarginWeight = d.MarginWeight
		cfg.Optimizer.ProfitWeight = d.ProfitWeight
	}
	if cfg.Optimizer.ProfitScale == 0 {
		cfg.Optimizer.ProfitScale = d.ProfitScale
	}
	if cfg.Optimizer.MinScore == 0 {
		cfg.Optimizer.MinScore = d.MinScore
	}
	if cfg.Optimizer.ValuableThreshold == 0 {
		cfg.Optimizer.ValuableThreshold = d.ValuableThreshold
	}
	if cfg.Optimizer.TimePerUnit == 0 {
		cfg.Optimizer.TimePerUnit = d.TimePerUnit
	}
	if cfg.Optimizer.QuantitySearch == "" {
		cfg.Optimizer.QuantitySearch = string(d.QuantitySearch)
	}
	if cfg.Optimizer.MaxRounds == 0 {
		cfg.Optimizer.MaxRounds = d.MaxRounds
	}
	if cfg.Optimizer.MaxDepth == 0 {
		cfg.Optimizer.MaxDepth = d.MaxDepth
	}
	if cfg.Optimizer.MemoSize == 0 {
		cfg.Optimizer.MemoSize = d.MemoSize
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}

	// Metrics defaults
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "crafting_optimizer"
	}

	// Tracing defaults
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = "crafting-optimizer"
	}
}

// registerDefaults makes every key known to viper so that environment
// overrides are picked up by Unmarshal even without a config file.
func registerDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.address", d.Server.Address)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.idle_timeout", d.Server.IdleTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.max_body_bytes", d.Server.MaxBodyBytes)
	v.SetDefault("server.compression", true)
	v.SetDefault("server.maintenance", false)
	v.SetDefault("server.rate_limit.enabled", false)
	v.SetDefault("server.rate_limit.requests_per_second", d.Server.RateLimit.RequestsPerSecond)
	v.SetDefault("server.rate_limit.burst", d.Server.RateLimit.Burst)

	v.SetDefault("catalog.source", d.Catalog.Source)
	v.SetDefault("database.path", d.Database.Path)

	v.SetDefault("optimizer.quantity_cap", d.Optimizer.QuantityCap)
	v.SetDefault("optimizer.margin_weight", d.Optimizer.MarginWeight)
	v.SetDefault("optimizer.profit_weight", d.Optimizer.ProfitWeight)
	v.SetDefault("optimizer.profit_scale", d.Optimizer.ProfitScale)
	v.SetDefault("optimizer.min_score", d.Optimizer.MinScore)
	v.SetDefault("optimizer.valuable_threshold", d.Optimizer.ValuableThreshold)
	v.SetDefault("optimizer.time_per_unit", d.Optimizer.TimePerUnit)
	v.SetDefault("optimizer.step_skip_rules", []string{})
	v.SetDefault("optimizer.quantity_search", d.Optimizer.QuantitySearch)
	v.SetDefault("optimizer.max_rounds", d.Optimizer.MaxRounds)
	v.SetDefault("optimizer.max_depth", d.Optimizer.MaxDepth)
	v.SetDefault("optimizer.memo_size", d.Optimizer.MemoSize)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output", d.Logging.Output)
	v.SetDefault("logging.file_path", "")
	v.SetDefault("logging.include_caller", false)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", d.Metrics.Path)
	v.SetDefault("metrics.namespace", d.Metrics.Namespace)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.insecure", false)
}
