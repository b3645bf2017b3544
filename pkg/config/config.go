package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Storage Storage `mapstructure:"storage"`
	Queue   Queue   `mapstructure:"queue"`
	Search  Search  `mapstructure:"search"`
	Logging Logging `mapstructure:"logging"`
}

// Storage holds DuckDB configuration
type Storage struct {
	DuckDBPath string `mapstructure:"duckdb_path"`
}

// Queue holds NATS configuration
type Queue struct {
	URL        string `mapstructure:"url"`
	StreamName string `mapstructure:"stream_name"`
}

// Search holds query defaults for the analog search pipeline
type Search struct {
	Timeframe      string `mapstructure:"timeframe"`
	WindowDays     int    `mapstructure:"window_days"`
	TopK           int    `mapstructure:"top_k"`
	MaxCandidates  int    `mapstructure:"max_candidates"`
	MaxHistoryDays int    `mapstructure:"max_history_days"`
	ExclusionDays  int    `mapstructure:"exclusion_days"`
	Metric         string `mapstructure:"metric"`
	LookaheadDays  int    `mapstructure:"lookahead_days"`
}

// Logging holds logging configuration
type Logging struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from an optional file plus environment variables.
// An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("ATTENTION_LAB")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.duckdb_path", "attention.duckdb")

	v.SetDefault("queue.url", "nats://localhost:4222")
	v.SetDefault("queue.stream_name", "attention")

	v.SetDefault("search.timeframe", "1d")
	v.SetDefault("search.window_days", 30)
	v.SetDefault("search.top_k", 20)
	v.SetDefault("search.max_candidates", 20000)
	v.SetDefault("search.max_history_days", 365)
	v.SetDefault("search.exclusion_days", 7)
	v.SetDefault("search.metric", "euclidean")
	v.SetDefault("search.lookahead_days", 30)

	v.SetDefault("logging.level", "info")
}
