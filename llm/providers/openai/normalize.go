package openai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/lgc202/llmtrace/llm"
	"github.com/lgc202/llmtrace/llm/delta"
	"github.com/lgc202/llmtrace/llm/trace"
)

// Normalizer turns raw OpenAI request and response bodies into trace steps.
// It holds no per-call state and is safe for concurrent use.
type Normalizer struct {
	// Models resolves the requested model name to pricing metadata.
	Models *llm.ModelRegistry
	// Provider is recorded on every resolved model.
	Provider string
	Logger   *slog.Logger
}

type Option func(*Normalizer)

func WithModels(r *llm.ModelRegistry) Option {
	return func(n *Normalizer) {
		if r != nil {
			n.Models = r
		}
	}
}

func WithProvider(name string) Option {
	return func(n *Normalizer) {
		if name != "" {
			n.Provider = name
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(n *Normalizer) {
		if l != nil {
			n.Logger = l
		}
	}
}

func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		Models:   DefaultModels(),
		Provider: ProviderName,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(n)
		}
	}
	return n
}

// Trace dispatches on the request shape: bodies carrying "messages" are chat
// requests, everything else is a legacy completion.
func (n *Normalizer) Trace(request, response []byte) (*trace.StepBuilder, error) {
	var p struct {
		Messages json.RawMessage `json:"messages"`
	}
	if err := json.Unmarshal(request, &p); err != nil {
		return nil, &llm.Error{Op: "decode request", Kind: llm.ErrKindParse, Raw: request, Cause: err}
	}
	if len(p.Messages) > 0 && !bytes.Equal(p.Messages, []byte("null")) {
		return n.ChatTrace(request, response)
	}
	return n.CompletionTrace(request, response)
}

// CompletionTrace builds a step from a /v1/completions exchange. An empty
// response yields a step with only the request half.
func (n *Normalizer) CompletionTrace(request, response []byte) (*trace.StepBuilder, error) {
	var req CompletionRequest
	if err := json.Unmarshal(request, &req); err != nil {
		return nil, &llm.Error{Op: "decode completion request", Kind: llm.ErrKindParse, Raw: request, Cause: err}
	}

	info := n.modelInfo(req.Model)
	cfg := trace.NewModelConfigBuilder().
		SetMaxTokens(req.MaxTokens).
		SetTemperature(req.Temperature).
		SetTopP(req.TopP).
		SetN(req.N).
		SetStream(req.Stream).
		SetLogprobs(req.Logprobs).
		SetEcho(req.Echo).
		SetPresencePenalty(req.PresencePenalty).
		SetFrequencyPenalty(req.FrequencyPenalty).
		SetBestOf(req.BestOf).
		SetLogitBias(req.LogitBias).
		SetSuffix(req.Suffix).
		Build()

	rb := trace.NewTextRequestBuilder().
		SetCompletionStep(llm.CompletionRequest{Prompt: promptText(req.Prompt)}, &cfg, &info).
		SetIdentity(llm.NewRequestIdentity(req.User, req.Organization))

	return n.step(kindCompletion, rb, response)
}

// ChatTrace builds a step from a /v1/chat/completions exchange.
func (n *Normalizer) ChatTrace(request, response []byte) (*trace.StepBuilder, error) {
	var req ChatRequest
	if err := json.Unmarshal(request, &req); err != nil {
		return nil, &llm.Error{Op: "decode chat request", Kind: llm.ErrKindParse, Raw: request, Cause: err}
	}

	info := n.modelInfo(req.Model)
	cfg := trace.NewModelConfigBuilder().
		SetMaxTokens(req.MaxTokens).
		SetTemperature(req.Temperature).
		SetTopP(req.TopP).
		SetN(req.N).
		SetStream(req.Stream).
		SetLogprobs(req.TopLogprobs).
		SetPresencePenalty(req.PresencePenalty).
		SetFrequencyPenalty(req.FrequencyPenalty).
		SetLogitBias(req.LogitBias).
		Build()

	prompt := make([]llm.ChatPromptItem, 0, len(req.Messages))
	for _, m := range req.Messages {
		prompt = append(prompt, llm.ChatPromptItem{
			Content:       contentText(m.Content),
			Role:          llm.Role(m.Role),
			Name:          m.Name,
			FunctionCalls: messageCalls(m),
		})
	}

	fnCall := functionCallName(req.FunctionCall)
	if fnCall == "" {
		fnCall = functionCallName(req.ToolChoice)
	}

	rb := trace.NewTextRequestBuilder().
		SetChatStep(llm.ChatRequest{ChatPrompt: prompt}, &cfg, &info).
		SetFunctions(requestFunctions(req)).
		SetFunctionCall(fnCall).
		SetIdentity(llm.NewRequestIdentity(req.User, req.Organization))

	return n.step(kindChat, rb, response)
}

func (n *Normalizer) step(kind endpointKind, rb *trace.TextRequestBuilder, response []byte) (*trace.StepBuilder, error) {
	sb := trace.NewStepBuilder().SetRequest(rb)
	if len(bytes.TrimSpace(response)) == 0 {
		return sb, nil
	}

	resp, err := n.response(kind, rb.IsStream(), response)
	if err != nil {
		return nil, err
	}
	return sb.SetResponse(resp), nil
}

func (n *Normalizer) response(kind endpointKind, stream bool, body []byte) (*trace.TextResponseBuilder, error) {
	b := trace.NewTextResponseBuilder()
	if apiErr := decodeAPIError(body); apiErr != nil {
		n.Logger.Info("provider returned an error body", "endpoint", kind.String(), "message", apiErr.Message)
		return b.SetAPIError(apiErr), nil
	}

	var (
		merged delta.Response
		err    error
	)
	if stream {
		var bad []quarantined
		merged, bad, err = mergeStream(kind, body)
		if len(bad) > 0 {
			for _, q := range bad {
				n.Logger.Warn("skipping stream payload", "endpoint", kind.String(), "error", q.err)
			}
			b.SetParsingError(&llm.ParsingError{
				Message: fmt.Sprintf("%d stream payload(s) skipped: %v", len(bad), bad[0].err),
				Value:   string(bad[0].payload),
			})
		}
		if err != nil {
			return nil, fmt.Errorf("merge %s stream: %w", kind, err)
		}
	} else {
		merged, err = decodeResponse(kind, body)
		if err != nil {
			n.Logger.Warn("undecodable response body", "endpoint", kind.String(), "error", err)
			return b.SetParsingError(&llm.ParsingError{Message: err.Error(), Value: string(body)}), nil
		}
	}

	return b.
		SetResults(results(kind, merged)).
		SetModelUsage(merged.Usage).
		SetRemoteID(merged.ID), nil
}

func (n *Normalizer) modelInfo(model string) llm.TextModelInfo {
	b := trace.NewModelInfoBuilder()
	if mi, ok := n.Models.Lookup(model); ok {
		b.FromInfo(mi)
	} else {
		n.Logger.Debug("model not in registry", "model", model)
	}
	return b.SetName(model).SetProvider(n.Provider).Build()
}

// results projects merged choices onto trace results. Completion results
// are identified by the response id, chat results by their choice index.
func results(kind endpointKind, r delta.Response) []llm.TextResponseResult {
	out := make([]llm.TextResponseResult, 0, len(r.Choices))
	for _, c := range r.Choices {
		res := llm.TextResponseResult{
			Content:      c.Content,
			Reasoning:    c.Reasoning,
			FinishReason: c.FinishReason,
		}
		switch kind {
		case kindChat:
			res.ID = strconv.Itoa(c.Index)
			res.Role = llm.Role(c.Role)
			for _, tc := range c.ToolCalls {
				res.FunctionCalls = append(res.FunctionCalls, llm.FunctionCall{ID: tc.ID, Name: tc.Name, Args: tc.Arguments})
			}
		default:
			res.ID = r.ID
		}
		out = append(out, res)
	}
	return out
}

func messageCalls(m ChatMessage) []llm.FunctionCall {
	var out []llm.FunctionCall
	if m.FunctionCall != nil {
		out = append(out, llm.FunctionCall{Name: m.FunctionCall.Name, Args: m.FunctionCall.Arguments})
	}
	for _, tc := range m.ToolCalls {
		out = append(out, llm.FunctionCall{ID: tc.ID, Name: tc.Function.Name, Args: tc.Function.Arguments})
	}
	return out
}

func requestFunctions(req ChatRequest) []llm.Function {
	var out []llm.Function
	for _, f := range req.Functions {
		out = append(out, llm.Function{Name: f.Name, Description: f.Description, Parameters: f.Parameters})
	}
	for _, t := range req.Tools {
		if t.Type != "" && t.Type != "function" {
			continue
		}
		out = append(out, llm.Function{Name: t.Function.Name, Description: t.Function.Description, Parameters: t.Function.Parameters})
	}
	return out
}
