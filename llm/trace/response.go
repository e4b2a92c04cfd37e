package trace

import (
	"time"

	"github.com/lgc202/llmtrace/llm"
)

type TextResponseBuilder struct {
	resp llm.TraceStepResponse
}

func NewTextResponseBuilder() *TextResponseBuilder { return &TextResponseBuilder{} }

func (b *TextResponseBuilder) SetSessionID(id string) *TextResponseBuilder {
	if id != "" {
		b.resp.SessionID = id
	}
	return b
}

func (b *TextResponseBuilder) SetResults(results []llm.TextResponseResult) *TextResponseBuilder {
	if results != nil {
		b.resp.Results = append([]llm.TextResponseResult(nil), results...)
	}
	return b
}

func (b *TextResponseBuilder) SetModelUsage(u *llm.TokenUsage) *TextResponseBuilder {
	setIfPresent(&b.resp.ModelUsage, u)
	return b
}

func (b *TextResponseBuilder) SetEmbedModelUsage(u *llm.TokenUsage) *TextResponseBuilder {
	setIfPresent(&b.resp.EmbedModelUsage, u)
	return b
}

func (b *TextResponseBuilder) SetRemoteID(id string) *TextResponseBuilder {
	if id != "" {
		b.resp.RemoteID = id
	}
	return b
}

func (b *TextResponseBuilder) SetModelResponseTime(d *time.Duration) *TextResponseBuilder {
	setDuration(&b.resp.ModelResponseTime, d)
	return b
}

func (b *TextResponseBuilder) SetEmbedModelResponseTime(d *time.Duration) *TextResponseBuilder {
	setDuration(&b.resp.EmbedModelResponseTime, d)
	return b
}

func (b *TextResponseBuilder) SetParsingError(e *llm.ParsingError) *TextResponseBuilder {
	setIfPresent(&b.resp.ParsingError, e)
	return b
}

func (b *TextResponseBuilder) SetAPIError(e *llm.APIError) *TextResponseBuilder {
	setIfPresent(&b.resp.APIError, e)
	return b
}

func (b *TextResponseBuilder) Build() llm.TraceStepResponse { return b.resp.Clone() }

func setDuration(dst **llm.Duration, d *time.Duration) {
	if d == nil {
		return
	}
	v := llm.Duration(*d)
	*dst = &v
}
