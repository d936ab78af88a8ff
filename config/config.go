// Package config loads CrawlerConfig from environment variables (prefixed
// ARCCRAWLER_) and an optional config file, layering viper's env/file
// precedence with struct-tag validation.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// CrawlerConfig holds the options needed to construct a Crawler from the
// environment or a config file instead of functional options.
type CrawlerConfig struct {
	OutFilePath  string  `mapstructure:"out_file_path" validate:"required"`
	Mode         string  `mapstructure:"mode" validate:"omitempty,oneof=async sync"`
	LogLevel     string  `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`
	RequestDelay float64 `mapstructure:"request_delay" validate:"gte=0"`
}

// Load reads configuration from ARCCRAWLER_*-prefixed environment variables
// and, if file is non-empty, from that config file (format inferred from its
// extension — YAML, TOML and JSON are all supported via viper). Environment
// variables take precedence over the file. The resulting config is
// validated before being returned.
func Load(file string) (*CrawlerConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("ARCCRAWLER")
	v.AutomaticEnv()
	v.SetDefault("mode", "async")
	v.SetDefault("log_level", "info")
	v.SetDefault("request_delay", 0.0)
	for _, key := range []string{"out_file_path", "mode", "log_level", "request_delay"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("arccrawler: binding env for %s: %w", key, err)
		}
	}

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("arccrawler: reading config file %s: %w", file, err)
		}
	}

	var cfg CrawlerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("arccrawler: decoding config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("arccrawler: invalid config: %w", err)
	}
	return &cfg, nil
}
