// Package config loads uieval settings from file, environment and defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// Config is the application configuration.
type Config struct {
	LogLevel string        `mapstructure:"log_level"`
	Eval     EvalConfig    `mapstructure:"eval"`
	Predict  PredictConfig `mapstructure:"predict"`
	Server   ServerConfig  `mapstructure:"server"`
}

// EvalConfig holds evaluation settings.
type EvalConfig struct {
	Threshold float64 `mapstructure:"threshold"`
	Policy    string  `mapstructure:"policy"`
	Workers   int     `mapstructure:"workers"`
	Pattern   string  `mapstructure:"pattern"`
}

// PredictConfig holds remote model settings.
type PredictConfig struct {
	APIKey    string `mapstructure:"api_key"`
	BaseURL   string `mapstructure:"base_url"`
	Model     string `mapstructure:"model"`
	MaxTokens int    `mapstructure:"max_tokens"`
	MaxSide   int    `mapstructure:"max_side"`
	Workers   int    `mapstructure:"workers"`
	Prompt    string `mapstructure:"prompt"` // empty uses the built-in prompt
}

// ServerConfig holds prediction server settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Eval: EvalConfig{
			Threshold: 0.5,
			Policy:    "first-fit",
			Workers:   runtime.NumCPU(),
			Pattern:   "*.json",
		},
		Predict: PredictConfig{
			Model:     "gpt-4o",
			MaxTokens: 500,
			Workers:   4,
		},
		Server: ServerConfig{
			Addr: ":8000",
		},
	}
}

// FileName is the config file base name searched for, without extension.
const FileName = "uieval"

// EnvPrefix prefixes environment overrides, e.g. UIEVAL_EVAL_THRESHOLD.
const EnvPrefix = "UIEVAL"

// Load reads configuration. When path is empty, uieval.yaml is searched in
// the working directory and then $HOME/.uieval; a missing file is not an
// error. Environment variables override file values, and OPENAI_API_KEY
// fills predict.api_key when nothing else sets it.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("predict.api_key", EnvPrefix+"_PREDICT_API_KEY", "OPENAI_API_KEY"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}
	if err := v.BindEnv("predict.base_url", EnvPrefix+"_PREDICT_BASE_URL", "OPENAI_BASE_URL"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".uieval"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("eval.threshold", d.Eval.Threshold)
	v.SetDefault("eval.policy", d.Eval.Policy)
	v.SetDefault("eval.workers", d.Eval.Workers)
	v.SetDefault("eval.pattern", d.Eval.Pattern)
	v.SetDefault("predict.api_key", d.Predict.APIKey)
	v.SetDefault("predict.base_url", d.Predict.BaseURL)
	v.SetDefault("predict.model", d.Predict.Model)
	v.SetDefault("predict.max_tokens", d.Predict.MaxTokens)
	v.SetDefault("predict.max_side", d.Predict.MaxSide)
	v.SetDefault("predict.workers", d.Predict.Workers)
	v.SetDefault("predict.prompt", d.Predict.Prompt)
	v.SetDefault("server.addr", d.Server.Addr)
}

// Level maps LogLevel to a slog level. Unknown names fall back to info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
