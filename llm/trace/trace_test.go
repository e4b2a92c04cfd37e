package trace

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/lgc202/llmtrace/llm"
)

func TestModelConfigBuilder_AbsentValuesDoNotOverwrite(t *testing.T) {
	t.Parallel()

	b := NewModelConfigBuilder().
		SetMaxTokens(llm.Ptr(256)).
		SetTemperature(llm.Ptr(0.2)).
		SetStream(llm.Ptr(true)).
		SetLogitBias(map[string]float64{"50256": -100}).
		SetSuffix(llm.Ptr("end"))

	b.SetMaxTokens(nil).
		SetTemperature(nil).
		SetStream(nil).
		SetLogitBias(nil).
		SetSuffix(nil)

	cfg := b.Build()
	require.Equal(t, 256, *cfg.MaxTokens)
	require.Equal(t, 0.2, *cfg.Temperature)
	require.True(t, cfg.IsStream())
	require.Equal(t, -100.0, cfg.LogitBias["50256"])
	require.Equal(t, "end", *cfg.Suffix)
	require.Nil(t, cfg.TopK)
}

func TestModelConfigBuilder_BuildIsSnapshot(t *testing.T) {
	t.Parallel()

	n := 10
	b := NewModelConfigBuilder().SetMaxTokens(&n)
	n = 20
	cfg := b.Build()
	require.Equal(t, 10, *cfg.MaxTokens)

	*cfg.MaxTokens = 30
	require.Equal(t, 10, *b.Build().MaxTokens)
}

func TestModelInfoBuilder(t *testing.T) {
	t.Parallel()

	info := NewModelInfoBuilder().
		FromInfo(llm.TextModelInfo{Name: "gpt-4o", Aliases: []string{"4o"}, Currency: "usd"}).
		SetName("gpt-4o-2024-08-06").
		SetProvider("openai").
		SetCurrency("").
		SetPromptTokenCostPer1M(llm.Ptr(2.5)).
		SetCompletionTokenCostPer1M(llm.Ptr(10.0)).
		Build()

	require.Equal(t, "gpt-4o-2024-08-06", info.Name)
	require.Equal(t, "openai", info.Provider)
	require.Equal(t, "usd", info.Currency)
	require.Equal(t, []string{"4o"}, info.Aliases)
	require.Equal(t, 10.0, info.CompletionTokenCostPer1M)
}

func TestModelInfoBuilder_AbsentValuesDoNotOverwrite(t *testing.T) {
	t.Parallel()

	seed := llm.TextModelInfo{Name: "m", CharacterIsToken: true, PromptTokenCostPer1M: 2, CompletionTokenCostPer1M: 8}
	info := NewModelInfoBuilder().
		FromInfo(seed).
		SetPromptTokenCostPer1M(nil).
		SetCompletionTokenCostPer1M(nil).
		SetCharacterIsToken(nil).
		Build()
	require.Equal(t, seed, info)

	info = NewModelInfoBuilder().
		FromInfo(seed).
		SetCharacterIsToken(llm.Ptr(false)).
		SetPromptTokenCostPer1M(llm.Ptr(0.0)).
		Build()
	require.False(t, info.CharacterIsToken)
	require.Zero(t, info.PromptTokenCostPer1M)
	require.Equal(t, 8.0, info.CompletionTokenCostPer1M)
}

func TestTextRequestBuilder_CallerValuesWin(t *testing.T) {
	t.Parallel()

	own := llm.TextModelConfig{MaxTokens: llm.Ptr(5)}
	derived := llm.TextModelConfig{MaxTokens: llm.Ptr(99), Stream: llm.Ptr(true)}
	info := llm.TextModelInfo{Name: "derived"}

	req := NewTextRequestBuilder().
		SetCompletionStep(llm.CompletionRequest{
			Prompt:         "hi",
			RequestOptions: llm.RequestOptions{ModelConfig: &own},
		}, &derived, &info).
		Build()

	require.Equal(t, "hi", req.Prompt)
	require.Equal(t, 5, *req.ModelConfig.MaxTokens)
	require.Nil(t, req.ModelConfig.Stream)
	require.Equal(t, "derived", req.ModelInfo.Name)
	require.Equal(t, llm.RequestKindCompletion, req.Kind())
}

func TestTextRequestBuilder_ChatStepUsesDerivedDefaults(t *testing.T) {
	t.Parallel()

	derived := llm.TextModelConfig{Stream: llm.Ptr(true)}
	rb := NewTextRequestBuilder().
		SetChatStep(llm.ChatRequest{ChatPrompt: []llm.ChatPromptItem{{Content: "q", Role: llm.RoleUser}}}, &derived, nil).
		AddChat(llm.ChatPromptItem{Content: "a", Role: llm.RoleAssistant}).
		SetFunctionCall("lookup").
		SetFunctionCall("").
		SetIdentity(llm.NewRequestIdentity("alice", "")).
		SetIdentity(nil)

	require.True(t, rb.IsStream())

	req := rb.Build()
	require.Equal(t, llm.RequestKindChat, req.Kind())
	require.Len(t, req.ChatPrompt, 2)
	require.Equal(t, "lookup", req.FunctionCall)
	require.Equal(t, &llm.RequestIdentity{User: "alice"}, req.Identity)
	require.Nil(t, req.ModelInfo)
}

func TestTextRequestBuilder_EmbedStep(t *testing.T) {
	t.Parallel()

	info := llm.TextModelInfo{Name: "text-embedding-3-small"}
	req := NewTextRequestBuilder().
		SetEmbedStep(llm.EmbedRequest{Texts: []string{"a", "b"}}, &info).
		Build()

	require.Equal(t, llm.RequestKindEmbed, req.Kind())
	require.Equal(t, "text-embedding-3-small", req.EmbedModelInfo.Name)
}

func TestTextRequestBuilder_NoIdentityWhenEmpty(t *testing.T) {
	t.Parallel()

	req := NewTextRequestBuilder().
		SetCompletionStep(llm.CompletionRequest{Prompt: "p"}, nil, nil).
		SetIdentity(llm.NewRequestIdentity("", "")).
		Build()
	require.Nil(t, req.Identity)
}

func TestTextResponseBuilder_AbsentValuesDoNotOverwrite(t *testing.T) {
	t.Parallel()

	d := 1500 * time.Millisecond
	b := NewTextResponseBuilder().
		SetResults([]llm.TextResponseResult{{Content: "x"}}).
		SetModelUsage(&llm.TokenUsage{TotalTokens: 3}).
		SetRemoteID("r1").
		SetModelResponseTime(&d).
		SetParsingError(&llm.ParsingError{Message: "bad"})

	b.SetResults(nil).
		SetModelUsage(nil).
		SetRemoteID("").
		SetModelResponseTime(nil).
		SetParsingError(nil).
		SetAPIError(nil)

	resp := b.Build()
	require.Equal(t, "x", resp.FirstContent())
	require.Equal(t, 3, resp.ModelUsage.TotalTokens)
	require.Equal(t, "r1", resp.RemoteID)
	require.Equal(t, d, resp.ModelResponseTime.Std())
	require.Equal(t, "bad", resp.ParsingError.Message)
	require.Nil(t, resp.APIError)
}

func TestStepBuilder(t *testing.T) {
	t.Parallel()

	before := time.Now().UTC()
	b := NewStepBuilder()
	after := time.Now().UTC()

	step := b.SetTraceID("").Build()
	require.False(t, step.CreatedAt.Before(before))
	require.False(t, step.CreatedAt.After(after))
	_, err := uuid.Parse(step.TraceID)
	require.NoError(t, err)
	require.False(t, step.Complete())
	require.False(t, b.IsStream())

	b.SetTraceID("t-1").SetSessionID("s-1").SetSessionID("")
	b.SetRequest(NewTextRequestBuilder().SetCompletionStep(llm.CompletionRequest{Prompt: "p"}, &llm.TextModelConfig{Stream: llm.Ptr(true)}, nil))
	require.True(t, b.IsStream())
	require.False(t, b.HasResponse())

	d := 42 * time.Millisecond
	b.SetModelResponseTime(&d).SetAPIError(&llm.APIError{Message: "boom", Status: 500})

	step = b.Build()
	require.Equal(t, "t-1", step.TraceID)
	require.Equal(t, "s-1", step.SessionID)
	require.True(t, step.Complete())
	require.Equal(t, d, step.Response.ModelResponseTime.Std())
	require.Equal(t, 500, step.Response.APIError.Status)

	b.SetResponse(NewTextResponseBuilder().SetRemoteID("r"))
	step2 := b.Build()
	require.Equal(t, "r", step2.Response.RemoteID)
	require.Nil(t, step2.Response.APIError)
	require.Equal(t, step.CreatedAt, step2.CreatedAt)
}

func TestStepBuilder_BuildDoesNotAlias(t *testing.T) {
	t.Parallel()

	b := NewStepBuilder().SetTraceID("t").
		SetRequest(NewTextRequestBuilder().SetChatStep(llm.ChatRequest{ChatPrompt: []llm.ChatPromptItem{{Content: "q", Role: llm.RoleUser}}}, nil, nil))
	step := b.Build()
	step.Request.ChatPrompt[0].Content = "mutated"
	require.Equal(t, "q", b.Build().Request.ChatPrompt[0].Content)
}
