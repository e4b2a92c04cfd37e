package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lgc202/llmtrace/config"
	"github.com/lgc202/llmtrace/llm"
	"github.com/lgc202/llmtrace/llm/collector"
	"github.com/lgc202/llmtrace/llm/providers"
	"github.com/lgc202/llmtrace/llm/providers/openai"
)

type app struct {
	configPath string
	logLevel   string

	src    *config.Source[AppConfig]
	cfg    AppConfig
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "llmtrace",
		Short:        "Normalize LLM request/response pairs into trace steps",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (yaml, json or toml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log.level")

	root.AddCommand(
		newNormalizeCmd(a),
		newMergeCmd(a),
		newSendCmd(a),
		newMemoryCmd(a),
		newModelsCmd(a),
		newIngestCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	src, cfg, err := loadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	logger, err := newLogger(cmd.ErrOrStderr(), cfg.Log.Level)
	if err != nil {
		return err
	}

	a.src = src
	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) normalizer() *openai.Normalizer {
	return newNormalizer(a.cfg, a.logger)
}

func (a *app) collector() (*collector.Client, error) {
	return newCollector(a.cfg, a.logger)
}

// newNormalizer picks the provider preset and layers the configured models
// over its built-in table.
func newNormalizer(cfg AppConfig, logger *slog.Logger) *openai.Normalizer {
	return providers.NewNormalizer(cfg.Provider,
		openai.WithModels(providers.Models(cfg.Provider).With(cfg.Models...)),
		openai.WithLogger(logger),
	)
}

func newCollector(cfg AppConfig, logger *slog.Logger) (*collector.Client, error) {
	return collector.New(cfg.Collector.Endpoint,
		collector.WithHeaders(cfg.Collector.Headers),
		collector.WithTimeout(cfg.Collector.Timeout),
		collector.WithRateLimit(cfg.Collector.RateLimit, cfg.Collector.Burst),
		collector.WithLogger(logger),
	)
}

// readInput reads a file, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func readStep(cmd *cobra.Command, path string) (llm.TraceStep, error) {
	b, err := readInput(cmd, path)
	if err != nil {
		return llm.TraceStep{}, err
	}
	var step llm.TraceStep
	if err := json.Unmarshal(b, &step); err != nil {
		return llm.TraceStep{}, fmt.Errorf("decode step %s: %w", path, err)
	}
	return step, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
