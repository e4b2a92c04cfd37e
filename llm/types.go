package llm

import (
	"encoding/json"
	"maps"
	"strconv"
	"time"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleFunction  Role = "function"
	RoleTool      Role = "tool"
)

// TokenUsage is the token accounting reported by a provider.
//
// TotalTokens is taken from the provider as-is and never recomputed.
type TokenUsage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

// TextModelInfo is static billing metadata for one model.
type TextModelInfo struct {
	Name    string   `json:"name" mapstructure:"name"`
	Aliases []string `json:"aliases,omitempty" mapstructure:"aliases"`

	// Provider is filled in when the info is attached to a trace step.
	Provider string `json:"provider,omitempty" mapstructure:"provider"`

	Currency string `json:"currency,omitempty" mapstructure:"currency"`

	// CharacterIsToken is set for providers that bill per character.
	CharacterIsToken bool `json:"characterIsToken,omitempty" mapstructure:"character_is_token"`

	PromptTokenCostPer1M     float64 `json:"promptTokenCostPer1M,omitempty" mapstructure:"prompt_token_cost_per_1m"`
	CompletionTokenCostPer1M float64 `json:"completionTokenCostPer1M,omitempty" mapstructure:"completion_token_cost_per_1m"`
}

func (m TextModelInfo) Clone() TextModelInfo {
	out := m
	if m.Aliases != nil {
		out.Aliases = append([]string(nil), m.Aliases...)
	}
	return out
}

// TextModelConfig holds normalized sampling parameters.
//
// A nil field means "provider default".
type TextModelConfig struct {
	MaxTokens        *int               `json:"maxTokens,omitempty"`
	Temperature      *float64           `json:"temperature,omitempty"`
	TopP             *float64           `json:"topP,omitempty"`
	TopK             *int               `json:"topK,omitempty"`
	N                *int               `json:"n,omitempty"`
	Stream           *bool              `json:"stream,omitempty"`
	Logprobs         *int               `json:"logprobs,omitempty"`
	Echo             *bool              `json:"echo,omitempty"`
	PresencePenalty  *float64           `json:"presencePenalty,omitempty"`
	FrequencyPenalty *float64           `json:"frequencyPenalty,omitempty"`
	BestOf           *int               `json:"bestOf,omitempty"`
	LogitBias        map[string]float64 `json:"logitBias,omitempty"`
	Suffix           *string            `json:"suffix,omitempty"`
}

func (c TextModelConfig) Clone() TextModelConfig {
	out := c
	out.MaxTokens = clonePtr(c.MaxTokens)
	out.Temperature = clonePtr(c.Temperature)
	out.TopP = clonePtr(c.TopP)
	out.TopK = clonePtr(c.TopK)
	out.N = clonePtr(c.N)
	out.Stream = clonePtr(c.Stream)
	out.Logprobs = clonePtr(c.Logprobs)
	out.Echo = clonePtr(c.Echo)
	out.PresencePenalty = clonePtr(c.PresencePenalty)
	out.FrequencyPenalty = clonePtr(c.FrequencyPenalty)
	out.BestOf = clonePtr(c.BestOf)
	out.Suffix = clonePtr(c.Suffix)
	if c.LogitBias != nil {
		out.LogitBias = maps.Clone(c.LogitBias)
	}
	return out
}

// IsStream reports whether streaming was requested.
func (c *TextModelConfig) IsStream() bool {
	return c != nil && c.Stream != nil && *c.Stream
}

// RequestIdentity attributes a request to an end user or organization.
type RequestIdentity struct {
	User         string `json:"user,omitempty"`
	Organization string `json:"organization,omitempty"`
}

// NewRequestIdentity returns nil unless user or organization is non-empty.
func NewRequestIdentity(user, organization string) *RequestIdentity {
	if user == "" && organization == "" {
		return nil
	}
	return &RequestIdentity{User: user, Organization: organization}
}

// FunctionCall is a function/tool invocation requested by the model.
type FunctionCall struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
	Args string `json:"args,omitempty"`
}

// Function describes a callable function offered to the model.
type Function struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

type ChatPromptItem struct {
	Content       string         `json:"content"`
	Role          Role           `json:"role"`
	Name          string         `json:"name,omitempty"`
	FunctionCalls []FunctionCall `json:"functionCalls,omitempty"`
}

// RequestOptions are the fields shared by completion and chat requests.
type RequestOptions struct {
	ModelConfig *TextModelConfig `json:"modelConfig,omitempty"`
	ModelInfo   *TextModelInfo   `json:"modelInfo,omitempty"`
	Functions   []Function       `json:"functions,omitempty"`

	// FunctionCall names a function the model is forced to call.
	FunctionCall string           `json:"functionCall,omitempty"`
	Identity     *RequestIdentity `json:"identity,omitempty"`
}

type CompletionRequest struct {
	Prompt       string `json:"prompt"`
	SystemPrompt string `json:"systemPrompt,omitempty"`
	RequestOptions

	// chat is set when the request was derived from a chat request, so the
	// conversion back is lossless.
	chat []ChatPromptItem
}

type ChatRequest struct {
	ChatPrompt []ChatPromptItem `json:"chatPrompt"`
	RequestOptions
}

type EmbedRequest struct {
	Texts          []string         `json:"texts"`
	EmbedModelInfo *TextModelInfo   `json:"embedModelInfo,omitempty"`
	Identity       *RequestIdentity `json:"identity,omitempty"`
}

type RequestKind string

const (
	RequestKindCompletion RequestKind = "completion"
	RequestKindChat       RequestKind = "chat"
	RequestKindEmbed      RequestKind = "embed"
)

// TraceStepRequest is the request half of a trace step. Only the fields of
// one variant (completion, chat or embed) are expected to be set.
type TraceStepRequest struct {
	Prompt       string           `json:"prompt,omitempty"`
	SystemPrompt string           `json:"systemPrompt,omitempty"`
	ChatPrompt   []ChatPromptItem `json:"chatPrompt,omitempty"`

	Texts          []string       `json:"texts,omitempty"`
	EmbedModelInfo *TextModelInfo `json:"embedModelInfo,omitempty"`

	RequestOptions
}

func (r TraceStepRequest) Kind() RequestKind {
	switch {
	case len(r.ChatPrompt) > 0:
		return RequestKindChat
	case len(r.Texts) > 0 || r.EmbedModelInfo != nil:
		return RequestKindEmbed
	default:
		return RequestKindCompletion
	}
}

func (r TraceStepRequest) Clone() TraceStepRequest {
	out := r
	out.ChatPrompt = cloneChatPrompt(r.ChatPrompt)
	if r.Texts != nil {
		out.Texts = append([]string(nil), r.Texts...)
	}
	if r.EmbedModelInfo != nil {
		v := r.EmbedModelInfo.Clone()
		out.EmbedModelInfo = &v
	}
	out.RequestOptions = r.RequestOptions.Clone()
	return out
}

func (o RequestOptions) Clone() RequestOptions {
	out := o
	if o.ModelConfig != nil {
		v := o.ModelConfig.Clone()
		out.ModelConfig = &v
	}
	if o.ModelInfo != nil {
		v := o.ModelInfo.Clone()
		out.ModelInfo = &v
	}
	if o.Functions != nil {
		out.Functions = make([]Function, len(o.Functions))
		copy(out.Functions, o.Functions)
		for i := range out.Functions {
			out.Functions[i].Parameters = append(json.RawMessage(nil), o.Functions[i].Parameters...)
		}
	}
	out.Identity = clonePtr(o.Identity)
	return out
}

type TextResponseResult struct {
	Content       string         `json:"content"`
	ID            string         `json:"id,omitempty"`
	Role          Role           `json:"role,omitempty"`
	Name          string         `json:"name,omitempty"`
	FunctionCalls []FunctionCall `json:"functionCalls,omitempty"`
	FinishReason  string         `json:"finishReason,omitempty"`

	// Reasoning is the separate chain-of-thought text some models stream
	// alongside the answer.
	Reasoning string `json:"reasoning,omitempty"`
}

type TextResponse struct {
	SessionID       string               `json:"sessionId,omitempty"`
	RemoteID        string               `json:"remoteId,omitempty"`
	Results         []TextResponseResult `json:"results"`
	ModelUsage      *TokenUsage          `json:"modelUsage,omitempty"`
	EmbedModelUsage *TokenUsage          `json:"embedModelUsage,omitempty"`
}

func (r TextResponse) FirstContent() string {
	if len(r.Results) == 0 {
		return ""
	}
	return r.Results[0].Content
}

func (r TextResponse) Clone() TextResponse {
	out := r
	if r.Results != nil {
		out.Results = make([]TextResponseResult, len(r.Results))
		copy(out.Results, r.Results)
		for i := range out.Results {
			out.Results[i].FunctionCalls = cloneFunctionCalls(r.Results[i].FunctionCalls)
		}
	}
	out.ModelUsage = clonePtr(r.ModelUsage)
	out.EmbedModelUsage = clonePtr(r.EmbedModelUsage)
	return out
}

// ParsingError records output the caller failed to parse.
type ParsingError struct {
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// APIError records a failed provider call. It is data, not a Go error.
type APIError struct {
	Message string            `json:"message"`
	Status  int               `json:"status,omitempty"`
	Header  map[string]string `json:"header,omitempty"`
	Request any               `json:"request,omitempty"`
	Body    any               `json:"body,omitempty"`
}

// Duration is a time.Duration encoded in JSON as whole milliseconds.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(time.Duration(d).Milliseconds(), 10)), nil
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var ms float64
	if err := json.Unmarshal(b, &ms); err != nil {
		return err
	}
	*d = Duration(time.Duration(ms * float64(time.Millisecond)))
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type TraceStepResponse struct {
	TextResponse

	ModelResponseTime      *Duration     `json:"modelResponseTime,omitempty"`
	EmbedModelResponseTime *Duration     `json:"embedModelResponseTime,omitempty"`
	ParsingError           *ParsingError `json:"parsingError,omitempty"`
	APIError               *APIError     `json:"apiError,omitempty"`
}

func (r TraceStepResponse) Clone() TraceStepResponse {
	out := r
	out.TextResponse = r.TextResponse.Clone()
	out.ModelResponseTime = clonePtr(r.ModelResponseTime)
	out.EmbedModelResponseTime = clonePtr(r.EmbedModelResponseTime)
	out.ParsingError = clonePtr(r.ParsingError)
	if r.APIError != nil {
		v := *r.APIError
		v.Header = maps.Clone(r.APIError.Header)
		out.APIError = &v
	}
	return out
}

// TraceStep is one canonical record of a single model invocation.
//
// Request and Response are filled independently; a step sent while a stream
// is still in flight may lack a Response.
type TraceStep struct {
	TraceID   string             `json:"traceId"`
	SessionID string             `json:"sessionId,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
	Request   *TraceStepRequest  `json:"request,omitempty"`
	Response  *TraceStepResponse `json:"response,omitempty"`
}

// Complete reports whether both halves of the step exist.
func (s TraceStep) Complete() bool {
	return s.Request != nil && s.Response != nil
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFunctionCalls(in []FunctionCall) []FunctionCall {
	if in == nil {
		return nil
	}
	return append([]FunctionCall(nil), in...)
}

func cloneChatPrompt(in []ChatPromptItem) []ChatPromptItem {
	if in == nil {
		return nil
	}
	out := make([]ChatPromptItem, len(in))
	copy(out, in)
	for i := range out {
		out[i].FunctionCalls = cloneFunctionCalls(in[i].FunctionCalls)
	}
	return out
}

// Ptr returns a pointer to v. Handy for populating TextModelConfig.
func Ptr[T any](v T) *T { return &v }
