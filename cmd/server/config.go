package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hazyhaar/lexicheck/pkg/chassis"
	"github.com/hazyhaar/lexicheck/pkg/judge"
	"gopkg.in/yaml.v3"
)

type config struct {
	Addr         string `yaml:"addr" validate:"required"`
	UsageDB      string `yaml:"usage_db"`
	MonthlyLimit int    `yaml:"monthly_limit" validate:"gte=0"`
	LogLevel     string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error DEBUG INFO WARN ERROR"`
	Judge        struct {
		Model   string        `yaml:"model" validate:"required"`
		APIKey  string        `yaml:"api_key"`
		Timeout time.Duration `yaml:"timeout" validate:"gte=0"`
	} `yaml:"judge"`
	MCP struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"mcp"`
	TLS struct {
		Mode     string `yaml:"mode" validate:"oneof=off self_signed files"`
		CertFile string `yaml:"cert_file" validate:"required_if=Mode files"`
		KeyFile  string `yaml:"key_file" validate:"required_if=Mode files"`
	} `yaml:"tls"`
}

func defaultConfig() config {
	cfg := config{
		Addr:         ":8430",
		UsageDB:      "lexicheck.db",
		MonthlyLimit: 3000,
		LogLevel:     "info",
	}
	cfg.Judge.Model = judge.DefaultModel
	cfg.Judge.Timeout = 15 * time.Second
	cfg.MCP.Enabled = true
	cfg.TLS.Mode = chassis.TLSOff
	return cfg
}

// loadConfig reads path over the defaults. A missing file is not an error.
// GEMINI_API_KEY overrides judge.api_key.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.Judge.APIKey = key
	}
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c config) level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
