package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lgc202/llmtrace/config"
	"github.com/lgc202/llmtrace/llm"
)

const envPrefix = "LLMTRACE"

type AppConfig struct {
	Collector CollectorConfig     `mapstructure:"collector"`
	Log       LogConfig           `mapstructure:"log"`
	Provider  string              `mapstructure:"provider"`
	Models    []llm.TextModelInfo `mapstructure:"models"`
}

type CollectorConfig struct {
	Endpoint  string            `mapstructure:"endpoint"`
	Headers   map[string]string `mapstructure:"headers"`
	Timeout   time.Duration     `mapstructure:"timeout"`
	RateLimit float64           `mapstructure:"rate_limit"`
	Burst     int               `mapstructure:"burst"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func loadConfig(path string) (*config.Source[AppConfig], AppConfig, error) {
	src, err := config.Load[AppConfig](path,
		config.WithDefaults(map[string]any{
			"collector.endpoint":   "",
			"collector.timeout":    "30s",
			"collector.rate_limit": 0,
			"collector.burst":      1,
			"log.level":            "info",
			"provider":             "openai",
		}),
		config.WithEnv(envPrefix),
	)
	if err != nil {
		return nil, AppConfig{}, fmt.Errorf("load config %q: %w", path, err)
	}
	cfg, err := src.Get()
	if err != nil {
		return nil, AppConfig{}, err
	}
	return src, cfg, nil
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
