package openai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/lgc202/llmtrace/llm"
	"github.com/lgc202/llmtrace/llm/delta"
	"github.com/lgc202/llmtrace/llm/internal/sse"
)

type endpointKind int

const (
	kindCompletion endpointKind = iota
	kindChat
)

func (k endpointKind) String() string {
	if k == kindChat {
		return "chat"
	}
	return "completion"
}

// Object values accepted for each endpoint. An absent object is tolerated.
var chunkObjects = map[endpointKind][]string{
	kindCompletion: {"text_completion"},
	kindChat:       {"chat.completion.chunk"},
}

var responseObjects = map[endpointKind][]string{
	kindCompletion: {"text_completion"},
	kindChat:       {"chat.completion"},
}

// legacyFunctionIndex holds the deprecated streamed function_call, which
// has no tool index of its own.
const legacyFunctionIndex = -1

var errChoicesNotArray = errors.New("choices is not an array")

// quarantined is a stream payload that matched no known chunk shape.
type quarantined struct {
	payload []byte
	err     error
}

// checkShape checks the discriminating fields shared by every response and chunk
// shape before the payload is decoded into a concrete type.
func checkShape(payload []byte, objects []string) error {
	var p struct {
		Object  string          `json:"object"`
		Choices json.RawMessage `json:"choices"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return err
	}
	if c := bytes.TrimSpace(p.Choices); len(c) == 0 || c[0] != '[' {
		return errChoicesNotArray
	}
	if p.Object != "" && !slices.Contains(objects, p.Object) {
		return fmt.Errorf("unexpected object %q", p.Object)
	}
	return nil
}

func decodeChunk(kind endpointKind, payload []byte) (delta.Chunk, error) {
	if err := checkShape(payload, chunkObjects[kind]); err != nil {
		return delta.Chunk{}, err
	}

	if kind == kindChat {
		var c chatChunk
		if err := json.Unmarshal(payload, &c); err != nil {
			return delta.Chunk{}, err
		}
		out := delta.Chunk{ID: c.ID, Object: c.Object, Created: c.Created, Model: c.Model, Usage: toUsage(c.Usage)}
		for _, ch := range c.Choices {
			d := delta.ChoiceDelta{
				Index:        ch.Index,
				Content:      contentText(ch.Delta.Content),
				Reasoning:    ch.Delta.ReasoningContent,
				Role:         ch.Delta.Role,
				FinishReason: ch.FinishReason,
				Logprobs:     ch.Logprobs,
			}
			if fc := ch.Delta.FunctionCall; fc != nil {
				d.ToolCalls = append(d.ToolCalls, delta.ToolCallDelta{Index: legacyFunctionIndex, Name: fc.Name, Arguments: fc.Arguments})
			}
			for _, tc := range ch.Delta.ToolCalls {
				d.ToolCalls = append(d.ToolCalls, delta.ToolCallDelta{
					Index:     tc.Index,
					ID:        tc.ID,
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				})
			}
			out.Choices = append(out.Choices, d)
		}
		return out, nil
	}

	var c completionChunk
	if err := json.Unmarshal(payload, &c); err != nil {
		return delta.Chunk{}, err
	}
	out := delta.Chunk{ID: c.ID, Object: c.Object, Created: c.Created, Model: c.Model, Usage: toUsage(c.Usage)}
	for _, ch := range c.Choices {
		text := ch.Text
		if text == "" && ch.Delta != nil {
			text = ch.Delta.Text
		}
		out.Choices = append(out.Choices, delta.ChoiceDelta{
			Index:        ch.Index,
			Content:      text,
			FinishReason: ch.FinishReason,
			Logprobs:     ch.Logprobs,
		})
	}
	return out, nil
}

// mergeStream decodes the data payloads of an SSE body as they are read and
// folds them in arrival order. Payloads that fail to decode are returned
// separately and never reach the merge.
func mergeStream(kind endpointKind, body []byte) (delta.Response, []quarantined, error) {
	var (
		acc delta.Accumulator
		bad []quarantined
	)
	dec := sse.NewDecoder(bytes.NewReader(body))
	for {
		p, err := dec.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return delta.Response{}, bad, err
		}
		c, err := decodeChunk(kind, p)
		if err != nil {
			bad = append(bad, quarantined{payload: p, err: err})
			continue
		}
		acc.Apply(c)
	}

	resp, err := acc.Response()
	if err != nil {
		return delta.Response{}, bad, err
	}
	return resp, bad, nil
}

// decodeResponse decodes a non-streamed body into the same shape a merged
// stream produces.
func decodeResponse(kind endpointKind, body []byte) (delta.Response, error) {
	if err := checkShape(body, responseObjects[kind]); err != nil {
		return delta.Response{}, err
	}

	if kind == kindChat {
		var r chatResponse
		if err := json.Unmarshal(body, &r); err != nil {
			return delta.Response{}, err
		}
		out := delta.Response{ID: r.ID, Object: r.Object, Created: r.Created, Model: r.Model, Usage: toUsage(r.Usage)}
		for _, ch := range r.Choices {
			c := delta.Choice{
				Index:        ch.Index,
				Content:      contentText(ch.Message.Content),
				Reasoning:    ch.Message.ReasoningContent,
				Role:         ch.Message.Role,
				FinishReason: ch.FinishReason,
				Logprobs:     ch.Logprobs,
			}
			if fc := ch.Message.FunctionCall; fc != nil {
				c.ToolCalls = append(c.ToolCalls, delta.ToolCall{Index: legacyFunctionIndex, Name: fc.Name, Arguments: fc.Arguments})
			}
			for i, tc := range ch.Message.ToolCalls {
				c.ToolCalls = append(c.ToolCalls, delta.ToolCall{Index: i, ID: tc.ID, Name: tc.Function.Name, Arguments: tc.Function.Arguments})
			}
			out.Choices = append(out.Choices, c)
		}
		return out, nil
	}

	var r completionResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return delta.Response{}, err
	}
	out := delta.Response{ID: r.ID, Object: r.Object, Created: r.Created, Model: r.Model, Usage: toUsage(r.Usage)}
	for _, ch := range r.Choices {
		out.Choices = append(out.Choices, delta.Choice{
			Index:        ch.Index,
			Content:      ch.Text,
			FinishReason: ch.FinishReason,
			Logprobs:     ch.Logprobs,
		})
	}
	return out, nil
}

// decodeAPIError recognizes the {"error": {...}} envelope returned in place
// of a response.
func decodeAPIError(body []byte) *llm.APIError {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil || env.Error == nil {
		return nil
	}
	var raw any
	_ = json.Unmarshal(body, &raw)
	msg := env.Error.Message
	if msg == "" {
		msg = env.Error.Type
	}
	return &llm.APIError{Message: msg, Body: raw}
}

func toUsage(u *wireUsage) *llm.TokenUsage {
	if u == nil {
		return nil
	}
	return &llm.TokenUsage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
}
