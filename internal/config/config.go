package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pable/go-cricket-metrics/internal/features"
)

// Config represents the complete application configuration
type Config struct {
	Engine  EngineConfig  `mapstructure:"engine"`
	Storage StorageConfig `mapstructure:"storage"`
	Ingest  IngestConfig  `mapstructure:"ingest"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// EngineConfig holds window sizes and smoothing priors for the aggregators
type EngineConfig struct {
	FormWindow        int     `mapstructure:"form_window"`
	TossFormWindow    int     `mapstructure:"toss_form_window"`
	BallWindow        int     `mapstructure:"ball_window"`
	H2HPriorMatches   float64 `mapstructure:"h2h_prior_matches"`
	H2HPriorConverted float64 `mapstructure:"h2h_prior_converted"`
	NoResultPolicy    string  `mapstructure:"no_result_policy"` // "loss" or "neutral"
}

// StorageConfig holds the SQLite location
type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// IngestConfig holds canonical-name mapping configuration
type IngestConfig struct {
	AliasesPath string `mapstructure:"aliases_path"` // empty = embedded IPL table
}

// ServerConfig holds HTTP serving configuration
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	ReleaseMode    bool          `mapstructure:"release_mode"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBatch       int           `mapstructure:"max_batch"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from an optional file and environment variables.
// An empty path yields defaults plus CRICMETRICS_* overrides.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("CRICMETRICS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
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
	d := features.DefaultParams()
	v.SetDefault("engine.form_window", d.FormWindow)
	v.SetDefault("engine.toss_form_window", d.TossFormWindow)
	v.SetDefault("engine.ball_window", d.BallWindow)
	v.SetDefault("engine.h2h_prior_matches", d.H2HPriorMatches)
	v.SetDefault("engine.h2h_prior_converted", d.H2HPriorConverted)
	v.SetDefault("engine.no_result_policy", string(d.NoResult))

	v.SetDefault("storage.db_path", DefaultDBPath())

	v.SetDefault("ingest.aliases_path", "")

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.release_mode", true)
	v.SetDefault("server.request_timeout", "10s")
	v.SetDefault("server.max_batch", 64)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// DefaultDBPath is ~/.cricmetrics/matches.db, or a relative path when the
// home directory cannot be determined.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".cricmetrics", "matches.db")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if err := c.FeatureParams().Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}

	if c.Storage.DBPath == "" {
		return fmt.Errorf("storage.db_path is required")
	}

	if c.Server.Host == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server.request_timeout must be positive")
	}
	if c.Server.MaxBatch < 1 {
		return fmt.Errorf("server.max_batch must be at least 1")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}
	return nil
}

// FeatureParams converts the engine section into aggregator parameters.
func (c *Config) FeatureParams() features.Params {
	return features.Params{
		FormWindow:        c.Engine.FormWindow,
		TossFormWindow:    c.Engine.TossFormWindow,
		BallWindow:        c.Engine.BallWindow,
		H2HPriorMatches:   c.Engine.H2HPriorMatches,
		H2HPriorConverted: c.Engine.H2HPriorConverted,
		NoResult:          features.NoResultPolicy(c.Engine.NoResultPolicy),
	}
}

// Addr returns host:port for the HTTP listener.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
