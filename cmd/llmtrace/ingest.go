package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/lgc202/llmtrace/llm"
	"github.com/lgc202/llmtrace/llm/collector"
	"github.com/lgc202/llmtrace/llm/providers/openai"
)

// maxExchangeBytes bounds one input line; streamed bodies are carried whole.
const maxExchangeBytes = 32 << 20

// exchange is one recorded request/response pair. Response holds either the
// provider's JSON body or, for streams, the SSE body as a JSON string.
type exchange struct {
	TraceID        string          `json:"traceId"`
	SessionID      string          `json:"sessionId"`
	Kind           string          `json:"kind"`
	Request        json.RawMessage `json:"request"`
	Response       json.RawMessage `json:"response"`
	ResponseTimeMs int64           `json:"responseTimeMs"`
}

func (e exchange) responseBody() ([]byte, error) {
	raw := bytes.TrimSpace(e.Response)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
		return nil, nil
	case raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return []byte(s), nil
	default:
		return raw, nil
	}
}

// pipeline is what one exchange is processed with. It is replaced as a
// whole when the config file changes.
type pipeline struct {
	normalizer *openai.Normalizer
	collector  *collector.Client
}

type ingester struct {
	logger *slog.Logger
	send   bool
	cur    atomic.Pointer[pipeline]
}

func (in *ingester) configure(cfg AppConfig) error {
	p := &pipeline{normalizer: newNormalizer(cfg, in.logger)}
	if in.send {
		c, err := newCollector(cfg, in.logger)
		if err != nil {
			return err
		}
		p.collector = c
	}
	in.cur.Store(p)
	return nil
}

func (in *ingester) handle(ctx context.Context, line []byte) (llm.TraceStep, error) {
	p := in.cur.Load()

	var ex exchange
	if err := json.Unmarshal(line, &ex); err != nil {
		return llm.TraceStep{}, fmt.Errorf("decode exchange: %w", err)
	}
	resp, err := ex.responseBody()
	if err != nil {
		return llm.TraceStep{}, fmt.Errorf("decode response: %w", err)
	}

	sb, err := traceFor(p.normalizer, ex.Kind, ex.Request, resp)
	if err != nil {
		return llm.TraceStep{}, err
	}
	sb.SetTraceID(ex.TraceID).SetSessionID(ex.SessionID)
	if ex.ResponseTimeMs > 0 && sb.HasResponse() {
		d := time.Duration(ex.ResponseTimeMs) * time.Millisecond
		sb.SetModelResponseTime(&d)
	}
	step := sb.Build()

	if p.collector != nil {
		if err := p.collector.SendTrace(ctx, step); err != nil {
			return step, err
		}
	}
	return step, nil
}

func newIngestCmd(a *app) *cobra.Command {
	var send, watch bool
	cmd := &cobra.Command{
		Use:   "ingest [FILE]",
		Short: "Normalize a stream of recorded exchanges, one JSON object per line",
		Long: "Normalize recorded exchanges read as JSON lines from FILE or stdin and\n" +
			"write one trace step per line. Each line has request, response (JSON body\n" +
			"or SSE body as a string) and optional traceId, sessionId, kind and\n" +
			"responseTimeMs. A bad line is logged and skipped.\n\n" +
			"With --watch, edits of the config file (provider, models, collector) apply\n" +
			"to the lines read after them.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			in := &ingester{logger: a.logger, send: send}
			if err := in.configure(a.cfg); err != nil {
				return err
			}
			if watch {
				err := a.src.Watch(ctx,
					func(cfg AppConfig) {
						if err := in.configure(cfg); err != nil {
							a.logger.Error("config change rejected", "err", err)
							return
						}
						a.logger.Info("config reloaded", "provider", cfg.Provider, "models", len(cfg.Models))
					},
					func(err error) { a.logger.Warn("config reload failed", "err", err) },
				)
				if err != nil {
					return fmt.Errorf("watch config: %w", err)
				}
			}

			r := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			return in.run(ctx, r, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&send, "send", false, "send each step to the collector")
	cmd.Flags().BoolVar(&watch, "watch", false, "apply config file edits while running")
	return cmd
}

func (in *ingester) run(ctx context.Context, r io.Reader, w io.Writer) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxExchangeBytes)
	enc := json.NewEncoder(w)

	var total, failed int
	for lineNo := 1; sc.Scan(); lineNo++ {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		total++
		step, err := in.handle(ctx, line)
		if err != nil {
			failed++
			in.logger.Warn("skipped exchange", "line", lineNo, "trace_id", step.TraceID, "err", err)
			continue
		}
		if err := enc.Encode(step); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d exchanges failed", failed, total)
	}
	return nil
}
