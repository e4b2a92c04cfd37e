package trace

import (
	"time"

	"github.com/google/uuid"

	"github.com/lgc202/llmtrace/llm"
)

// StepBuilder assembles an llm.TraceStep. The request and response halves
// may be attached in any order; a streamed exchange is often sent with the
// request half alone.
type StepBuilder struct {
	step llm.TraceStep
}

// NewStepBuilder stamps CreatedAt with the current time.
func NewStepBuilder() *StepBuilder {
	return &StepBuilder{step: llm.TraceStep{CreatedAt: time.Now().UTC()}}
}

// SetTraceID sets the trace id, generating a random one when id is empty.
func (b *StepBuilder) SetTraceID(id string) *StepBuilder {
	if id == "" {
		id = uuid.NewString()
	}
	b.step.TraceID = id
	return b
}

func (b *StepBuilder) SetSessionID(id string) *StepBuilder {
	if id != "" {
		b.step.SessionID = id
	}
	return b
}

func (b *StepBuilder) SetRequest(rb *TextRequestBuilder) *StepBuilder {
	if rb == nil {
		return b
	}
	req := rb.Build()
	b.step.Request = &req
	return b
}

func (b *StepBuilder) SetResponse(rb *TextResponseBuilder) *StepBuilder {
	if rb == nil {
		return b
	}
	resp := rb.Build()
	b.step.Response = &resp
	return b
}

func (b *StepBuilder) SetModelResponseTime(d *time.Duration) *StepBuilder {
	if d == nil {
		return b
	}
	setDuration(&b.response().ModelResponseTime, d)
	return b
}

func (b *StepBuilder) SetAPIError(e *llm.APIError) *StepBuilder {
	if e == nil {
		return b
	}
	setIfPresent(&b.response().APIError, e)
	return b
}

func (b *StepBuilder) response() *llm.TraceStepResponse {
	if b.step.Response == nil {
		b.step.Response = &llm.TraceStepResponse{}
	}
	return b.step.Response
}

// IsStream reports whether the request half asked for streaming; callers
// use it to decide whether the response must be merged from deltas first.
func (b *StepBuilder) IsStream() bool {
	return b.step.Request != nil && b.step.Request.ModelConfig.IsStream()
}

// HasResponse reports whether a response half has been attached.
func (b *StepBuilder) HasResponse() bool { return b.step.Response != nil }

func (b *StepBuilder) Build() llm.TraceStep {
	out := b.step
	if b.step.Request != nil {
		v := b.step.Request.Clone()
		out.Request = &v
	}
	if b.step.Response != nil {
		v := b.step.Response.Clone()
		out.Response = &v
	}
	return out
}
