// Package delta folds streamed completion fragments into one response.
//
// Fragments are merged per choice index. Each per-choice field follows a
// named Policy from a table (DefaultPolicies): text is concatenated in arrival
// order, while role, finish reason and logprobs keep the first value seen.
// Envelope fields are taken from the last fragment, where providers report
// cumulative usage.
package delta

import (
	"encoding/json"

	"github.com/lgc202/llmtrace/llm"
)

// Chunk is one decoded streaming payload.
type Chunk struct {
	ID      string
	Object  string
	Created int64
	Model   string
	Usage   *llm.TokenUsage

	Choices []ChoiceDelta
}

type ChoiceDelta struct {
	Index        int
	Content      string
	Reasoning    string
	Role         string
	FinishReason string
	Logprobs     json.RawMessage
	ToolCalls    []ToolCallDelta
}

type ToolCallDelta struct {
	Index     int
	ID        string
	Name      string
	Arguments string
}

type ToolCall struct {
	Index     int
	ID        string
	Name      string
	Arguments string
}

type Choice struct {
	Index        int
	Content      string
	Reasoning    string
	Role         string
	FinishReason string
	Logprobs     json.RawMessage
	ToolCalls    []ToolCall
}

// Response is the merged view of a stream.
type Response struct {
	ID      string
	Object  string
	Created int64
	Model   string
	Usage   *llm.TokenUsage

	// Choices are ordered by the first appearance of their index.
	Choices []Choice
}

// Merge folds chunks, in order, into a single response. It fails with
// llm.ErrNoData when chunks is empty.
func Merge(chunks []Chunk) (Response, error) {
	var acc Accumulator
	for _, c := range chunks {
		acc.Apply(c)
	}
	return acc.Response()
}

type choiceState struct {
	choice    Choice
	toolOrder []int
	tools     map[int]*ToolCall
}

// Accumulator is the fold state behind Merge. The zero value is ready to
// use with DefaultPolicies. It is not safe for concurrent use.
type Accumulator struct {
	// Policies overrides DefaultPolicies per field.
	Policies map[Field]Policy

	applied int
	last    Chunk
	order   []int
	choices map[int]*choiceState
}

func (a *Accumulator) policy(f Field) Policy {
	if p, ok := a.Policies[f]; ok {
		return p
	}
	return DefaultPolicies[f]
}

// Apply merges one chunk.
func (a *Accumulator) Apply(c Chunk) {
	a.applied++
	a.last = c

	for _, d := range c.Choices {
		st := a.state(d.Index)
		ch := &st.choice
		ch.Content = mergeString(a.policy(FieldContent), ch.Content, d.Content)
		ch.Reasoning = mergeString(a.policy(FieldReasoning), ch.Reasoning, d.Reasoning)
		ch.Role = mergeString(a.policy(FieldRole), ch.Role, d.Role)
		ch.FinishReason = mergeString(a.policy(FieldFinishReason), ch.FinishReason, d.FinishReason)
		ch.Logprobs = mergeRaw(a.policy(FieldLogprobs), ch.Logprobs, d.Logprobs)

		for _, td := range d.ToolCalls {
			tc := st.tool(td.Index)
			tc.ID = mergeString(a.policy(FieldToolCallID), tc.ID, td.ID)
			tc.Name = mergeString(a.policy(FieldToolCallName), tc.Name, td.Name)
			tc.Arguments = mergeString(a.policy(FieldToolCallArguments), tc.Arguments, td.Arguments)
		}
	}
}

// Applied returns the number of chunks merged so far.
func (a *Accumulator) Applied() int { return a.applied }

func (a *Accumulator) state(index int) *choiceState {
	if a.choices == nil {
		a.choices = make(map[int]*choiceState)
	}
	st, ok := a.choices[index]
	if !ok {
		st = &choiceState{choice: Choice{Index: index}}
		a.choices[index] = st
		a.order = append(a.order, index)
	}
	return st
}

func (s *choiceState) tool(index int) *ToolCall {
	if s.tools == nil {
		s.tools = make(map[int]*ToolCall)
	}
	tc, ok := s.tools[index]
	if !ok {
		tc = &ToolCall{Index: index}
		s.tools[index] = tc
		s.toolOrder = append(s.toolOrder, index)
	}
	return tc
}

// Response returns the merged response so far.
func (a *Accumulator) Response() (Response, error) {
	if a.applied == 0 {
		return Response{}, &llm.Error{Op: "merge stream", Kind: llm.ErrKindMerge, Cause: llm.ErrNoData}
	}

	out := Response{
		ID:      a.last.ID,
		Object:  a.last.Object,
		Created: a.last.Created,
		Model:   a.last.Model,
		Choices: make([]Choice, 0, len(a.order)),
	}
	if a.last.Usage != nil {
		u := *a.last.Usage
		out.Usage = &u
	}

	for _, idx := range a.order {
		st := a.choices[idx]
		ch := st.choice
		ch.Logprobs = append(json.RawMessage(nil), st.choice.Logprobs...)
		if len(st.toolOrder) > 0 {
			ch.ToolCalls = make([]ToolCall, 0, len(st.toolOrder))
			for _, ti := range st.toolOrder {
				ch.ToolCalls = append(ch.ToolCalls, *st.tools[ti])
			}
		}
		out.Choices = append(out.Choices, ch)
	}
	return out, nil
}
