package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lgc202/llmtrace/llm/providers/openai"
	"github.com/lgc202/llmtrace/llm/trace"
)

type normalizeFlags struct {
	request      string
	response     string
	kind         string
	traceID      string
	sessionID    string
	responseTime time.Duration
	send         bool
}

func newNormalizeCmd(a *app) *cobra.Command {
	f := &normalizeFlags{}
	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Build a trace step from a raw request body and its response",
		Long: "Build a trace step from a raw OpenAI request body and the raw response.\n" +
			"A streamed response is given as the server-sent event body. Without\n" +
			"--response the step only carries the request.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sb, err := a.normalize(cmd, f)
			if err != nil {
				return err
			}
			step := sb.Build()
			if f.send {
				c, err := a.collector()
				if err != nil {
					return err
				}
				if err := c.SendTrace(cmd.Context(), step); err != nil {
					return err
				}
			}
			return writeJSON(cmd.OutOrStdout(), step)
		},
	}
	cmd.Flags().StringVarP(&f.request, "request", "r", "", "request body file, - for stdin")
	cmd.Flags().StringVar(&f.response, "response", "", "response body file")
	cmd.Flags().StringVar(&f.kind, "kind", "auto", "endpoint: auto, chat or completion")
	cmd.Flags().StringVar(&f.traceID, "trace-id", "", "trace id (generated when empty)")
	cmd.Flags().StringVar(&f.sessionID, "session-id", "", "session id")
	cmd.Flags().DurationVar(&f.responseTime, "response-time", 0, "observed model latency")
	cmd.Flags().BoolVar(&f.send, "send", false, "send the step to the collector")
	_ = cmd.MarkFlagRequired("request")
	return cmd
}

func (a *app) normalize(cmd *cobra.Command, f *normalizeFlags) (*trace.StepBuilder, error) {
	req, err := readInput(cmd, f.request)
	if err != nil {
		return nil, err
	}
	var resp []byte
	if f.response != "" {
		if resp, err = readInput(cmd, f.response); err != nil {
			return nil, err
		}
	}

	sb, err := traceFor(a.normalizer(), f.kind, req, resp)
	if err != nil {
		return nil, err
	}

	sb.SetTraceID(f.traceID).SetSessionID(f.sessionID)
	if f.responseTime > 0 && sb.HasResponse() {
		sb.SetModelResponseTime(&f.responseTime)
	}
	return sb, nil
}

// traceFor normalizes one exchange. kind is auto, chat or completion.
func traceFor(n *openai.Normalizer, kind string, req, resp []byte) (*trace.StepBuilder, error) {
	switch kind {
	case "auto", "":
		return n.Trace(req, resp)
	case "chat":
		return n.ChatTrace(req, resp)
	case "completion":
		return n.CompletionTrace(req, resp)
	default:
		return nil, fmt.Errorf("unknown kind %q", kind)
	}
}
