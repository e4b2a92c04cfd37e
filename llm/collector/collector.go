// Package collector ships finished trace steps to a trace collector and
// reads conversation memory back from it.
package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lgc202/llmtrace/httpx"
	"github.com/lgc202/llmtrace/llm"
	"github.com/lgc202/llmtrace/version"
)

const (
	tracesPath = "/api/t/traces"
	memoryPath = "/api/t/traces/memory"

	DefaultMemoryLimit = 10
)

// ErrRejected is returned when the collector answers with an error payload.
var ErrRejected = errors.New("collector rejected the request")

type options struct {
	headers   map[string]string
	timeout   time.Duration
	logger    *slog.Logger
	transport http.RoundTripper
	rateLimit float64
	burst     int
}

type Option func(*options)

// WithHeaders adds headers to every request. They override Content-Type.
func WithHeaders(h map[string]string) Option {
	return func(o *options) {
		if o.headers == nil {
			o.headers = make(map[string]string, len(h))
		}
		for k, v := range h {
			o.headers[k] = v
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// WithRateLimit caps outgoing calls at rps per second.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *options) {
		o.rateLimit = rps
		o.burst = burst
	}
}

// Client talks to one collector endpoint. It is safe for concurrent use.
type Client struct {
	http   *httpx.Client
	logger *slog.Logger
}

// New returns a client for endpoint, the collector's base URL.
func New(endpoint string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, llm.NewValidationError("new collector", llm.ErrEndpointRequired)
	}

	o := options{
		timeout: 30 * time.Second,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	hopts := []httpx.Option{
		httpx.WithBaseURL(endpoint),
		httpx.WithTimeout(o.timeout),
		httpx.WithUserAgent(version.UserAgent()),
		httpx.WithRateLimit(o.rateLimit, o.burst),
		httpx.WithLogger(o.logger),
	}
	for k, v := range o.headers {
		hopts = append(hopts, httpx.WithDefaultHeader(k, v))
	}
	if o.transport != nil {
		hopts = append(hopts, httpx.WithTransport(o.transport))
	}

	hc, err := httpx.New(hopts...)
	if err != nil {
		return nil, llm.NewValidationError("new collector", err)
	}
	return &Client{http: hc, logger: o.logger}, nil
}

type traceEnvelope struct {
	TraceID   string        `json:"traceId"`
	SessionID string        `json:"sessionId,omitempty"`
	Step      llm.TraceStep `json:"step"`
}

// SendTrace posts one step. It is not retried: a failed send may still have
// been recorded by the collector.
func (c *Client) SendTrace(ctx context.Context, step llm.TraceStep) error {
	const op = "send trace"

	body := traceEnvelope{TraceID: step.TraceID, SessionID: step.SessionID, Step: step}
	respBody, url, err := c.post(ctx, op, tracesPath, body)
	if err != nil {
		return err
	}

	pretty, err := indent(respBody)
	if err != nil {
		return &llm.Error{
			Op:      op,
			Kind:    llm.ErrKindTransport,
			Message: fmt.Sprintf("sending trace to %s:\n%s", url, respBody),
			Raw:     respBody,
			Cause:   err,
		}
	}
	if hasError(respBody) {
		return &llm.Error{
			Op:      op,
			Kind:    llm.ErrKindTransport,
			Message: fmt.Sprintf("sending trace to %s:\n%s", url, pretty),
			Raw:     respBody,
			Cause:   ErrRejected,
		}
	}

	c.logger.Info("sent trace", "url", url, "trace_id", step.TraceID, "session_id", step.SessionID, "response", pretty)
	return nil
}

// MemoryFilter selects the conversation memory to fetch. A zero Limit means
// DefaultMemoryLimit.
type MemoryFilter struct {
	SessionID string `json:"sessionId,omitempty"`
	User      string `json:"user,omitempty"`
	Limit     int    `json:"limit"`
}

type MemoryItem struct {
	Role llm.Role `json:"role,omitempty"`
	Text string   `json:"text"`
}

// Memory fetches prior conversation turns. A response without a memory
// field yields an empty, non-nil slice.
func (c *Client) Memory(ctx context.Context, f MemoryFilter) ([]MemoryItem, error) {
	const op = "get memory"

	if f.Limit <= 0 {
		f.Limit = DefaultMemoryLimit
	}
	respBody, url, err := c.post(ctx, op, memoryPath, f)
	if err != nil {
		return nil, err
	}

	var out struct {
		Memory []MemoryItem `json:"memory"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, &llm.Error{
			Op:      op,
			Kind:    llm.ErrKindParse,
			Message: fmt.Sprintf("reading memory from %s:\n%s", url, respBody),
			Raw:     respBody,
			Cause:   err,
		}
	}
	if out.Memory == nil {
		out.Memory = []MemoryItem{}
	}
	return out.Memory, nil
}

func (c *Client) post(ctx context.Context, op, path string, body any) ([]byte, string, error) {
	req, err := c.http.NewJSONRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, path, &llm.Error{Op: op, Kind: llm.ErrKindTransport, Cause: err}
	}
	url := req.URL.String()

	_, respBody, err := c.http.DoBytes(req)
	if err != nil {
		var raw []byte
		if he, ok := httpx.AsError(err); ok {
			raw = he.RawBody
		}
		msg := err.Error()
		if len(raw) > 0 {
			if pretty, perr := indent(raw); perr == nil {
				msg += "\n" + pretty
			} else {
				msg += "\n" + string(raw)
			}
		}
		return nil, url, &llm.Error{Op: op, Kind: llm.ErrKindTransport, Message: msg, Raw: raw, Cause: err}
	}
	return respBody, url, nil
}

func indent(b []byte) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(b), "", "  "); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// hasError reports whether the payload carries a truthy "error" member.
func hasError(b []byte) bool {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return false
	}
	v, ok := m["error"]
	if !ok {
		return false
	}
	switch strings.TrimSpace(string(v)) {
	case "null", "false", `""`, "0":
		return false
	}
	return true
}
