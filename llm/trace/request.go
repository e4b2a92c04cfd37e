package trace

import "github.com/lgc202/llmtrace/llm"

type TextRequestBuilder struct {
	req llm.TraceStepRequest
}

func NewTextRequestBuilder() *TextRequestBuilder { return &TextRequestBuilder{} }

func (b *TextRequestBuilder) SetSystemPrompt(prompt string) *TextRequestBuilder {
	if prompt != "" {
		b.req.SystemPrompt = prompt
	}
	return b
}

// SetCompletionStep replaces the request with req. The derived modelConfig
// and modelInfo are only used when req does not carry its own.
func (b *TextRequestBuilder) SetCompletionStep(req llm.CompletionRequest, modelConfig *llm.TextModelConfig, modelInfo *llm.TextModelInfo) *TextRequestBuilder {
	b.req = llm.TraceStepRequest{
		Prompt:         req.Prompt,
		SystemPrompt:   req.SystemPrompt,
		RequestOptions: withDefaults(req.RequestOptions, modelConfig, modelInfo),
	}
	return b
}

// SetChatStep is SetCompletionStep for chat requests.
func (b *TextRequestBuilder) SetChatStep(req llm.ChatRequest, modelConfig *llm.TextModelConfig, modelInfo *llm.TextModelInfo) *TextRequestBuilder {
	b.req = llm.TraceStepRequest{
		ChatPrompt:     req.ChatPrompt,
		RequestOptions: withDefaults(req.RequestOptions, modelConfig, modelInfo),
	}
	b.req = b.req.Clone()
	return b
}

func (b *TextRequestBuilder) SetEmbedStep(req llm.EmbedRequest, modelInfo *llm.TextModelInfo) *TextRequestBuilder {
	b.req = llm.TraceStepRequest{
		Texts:          req.Texts,
		EmbedModelInfo: req.EmbedModelInfo,
	}
	if b.req.EmbedModelInfo == nil {
		b.req.EmbedModelInfo = modelInfo
	}
	b.req.Identity = req.Identity
	b.req = b.req.Clone()
	return b
}

func (b *TextRequestBuilder) AddChat(item llm.ChatPromptItem) *TextRequestBuilder {
	b.req.ChatPrompt = append(b.req.ChatPrompt, item)
	return b
}

func (b *TextRequestBuilder) SetFunctions(fns []llm.Function) *TextRequestBuilder {
	if fns != nil {
		b.req.Functions = append([]llm.Function(nil), fns...)
	}
	return b
}

func (b *TextRequestBuilder) SetFunctionCall(name string) *TextRequestBuilder {
	if name != "" {
		b.req.FunctionCall = name
	}
	return b
}

func (b *TextRequestBuilder) SetIdentity(identity *llm.RequestIdentity) *TextRequestBuilder {
	if identity != nil {
		v := *identity
		b.req.Identity = &v
	}
	return b
}

// IsStream reports whether the request asked for a streamed response.
func (b *TextRequestBuilder) IsStream() bool {
	return b.req.ModelConfig.IsStream()
}

func (b *TextRequestBuilder) Build() llm.TraceStepRequest { return b.req.Clone() }

func withDefaults(opts llm.RequestOptions, modelConfig *llm.TextModelConfig, modelInfo *llm.TextModelInfo) llm.RequestOptions {
	out := opts.Clone()
	if out.ModelConfig == nil && modelConfig != nil {
		v := modelConfig.Clone()
		out.ModelConfig = &v
	}
	if out.ModelInfo == nil && modelInfo != nil {
		v := modelInfo.Clone()
		out.ModelInfo = &v
	}
	return out
}
