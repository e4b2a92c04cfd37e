package delta

import (
	"errors"
	"strings"
	"testing"

	"github.com/lgc202/llmtrace/llm"
)

func TestMerge_SingleChoiceConcatenatesInOrder(t *testing.T) {
	t.Parallel()

	parts := []string{"Hel", "lo", ", ", "", "world", "!"}
	chunks := make([]Chunk, 0, len(parts))
	for i, p := range parts {
		chunks = append(chunks, Chunk{
			ID:      "c1",
			Created: int64(i),
			Choices: []ChoiceDelta{{Index: 0, Content: p}},
		})
	}

	resp, err := Merge(chunks)
	if err != nil {
		t.Fatalf("Merge err=%v", err)
	}
	if len(resp.Choices) != 1 {
		t.Fatalf("choices=%d", len(resp.Choices))
	}
	if got, want := resp.Choices[0].Content, strings.Join(parts, ""); got != want {
		t.Fatalf("content=%q, want %q", got, want)
	}
	if resp.Created != int64(len(parts)-1) {
		t.Fatalf("created=%d, want envelope of last chunk", resp.Created)
	}
}

func TestMerge_InterleavedChoicesDoNotBleed(t *testing.T) {
	t.Parallel()

	resp, err := Merge([]Chunk{
		{Choices: []ChoiceDelta{{Index: 1, Content: "B1", Role: "assistant"}}},
		{Choices: []ChoiceDelta{{Index: 0, Content: "A1", Role: "assistant"}}},
		{Choices: []ChoiceDelta{{Index: 1, Content: "B2"}, {Index: 0, Content: "A2"}}},
		{Choices: []ChoiceDelta{{Index: 2, Content: "C"}}},
		{Choices: []ChoiceDelta{{Index: 0, FinishReason: "stop"}, {Index: 1, FinishReason: "length"}}},
	})
	if err != nil {
		t.Fatalf("Merge err=%v", err)
	}

	want := []Choice{
		{Index: 1, Content: "B1B2", Role: "assistant", FinishReason: "length"},
		{Index: 0, Content: "A1A2", Role: "assistant", FinishReason: "stop"},
		{Index: 2, Content: "C"},
	}
	if len(resp.Choices) != len(want) {
		t.Fatalf("choices=%+v", resp.Choices)
	}
	for i, w := range want {
		got := resp.Choices[i]
		if got.Index != w.Index || got.Content != w.Content || got.Role != w.Role || got.FinishReason != w.FinishReason {
			t.Fatalf("choice[%d]=%+v, want %+v", i, got, w)
		}
	}
}

func TestMerge_FirstWinsScalars(t *testing.T) {
	t.Parallel()

	resp, err := Merge([]Chunk{
		{Choices: []ChoiceDelta{{Index: 0, Role: "assistant", Content: "a"}}},
		{Choices: []ChoiceDelta{{Index: 0, Role: "tool", Content: "b", Logprobs: []byte(`{"tokens":["b"]}`)}}},
		{Choices: []ChoiceDelta{{Index: 0, FinishReason: "stop", Logprobs: []byte(`{"tokens":["c"]}`)}}},
		{Choices: []ChoiceDelta{{Index: 0, FinishReason: "length", Logprobs: []byte(`null`)}}},
	})
	if err != nil {
		t.Fatalf("Merge err=%v", err)
	}
	c := resp.Choices[0]
	if c.Role != "assistant" {
		t.Fatalf("role=%q", c.Role)
	}
	if c.FinishReason != "stop" {
		t.Fatalf("finish=%q", c.FinishReason)
	}
	if string(c.Logprobs) != `{"tokens":["b"]}` {
		t.Fatalf("logprobs=%s", c.Logprobs)
	}
	if c.Content != "ab" {
		t.Fatalf("content=%q", c.Content)
	}
}

func TestMerge_EnvelopeFromLastChunk(t *testing.T) {
	t.Parallel()

	resp, err := Merge([]Chunk{
		{ID: "a", Model: "m1", Usage: &llm.TokenUsage{TotalTokens: 1}, Choices: []ChoiceDelta{{Index: 0, Content: "x"}}},
		{ID: "b", Object: "chat.completion.chunk", Model: "m2", Usage: &llm.TokenUsage{PromptTokens: 3, CompletionTokens: 4, TotalTokens: 7}},
	})
	if err != nil {
		t.Fatalf("Merge err=%v", err)
	}
	if resp.ID != "b" || resp.Model != "m2" || resp.Object != "chat.completion.chunk" {
		t.Fatalf("envelope=%+v", resp)
	}
	if resp.Usage == nil || resp.Usage.TotalTokens != 7 {
		t.Fatalf("usage=%+v", resp.Usage)
	}
}

func TestMerge_ToolCalls(t *testing.T) {
	t.Parallel()

	resp, err := Merge([]Chunk{
		{Choices: []ChoiceDelta{{Index: 0, ToolCalls: []ToolCallDelta{{Index: 0, ID: "call_1", Name: "get_weather", Arguments: `{"location":"`}}}}},
		{Choices: []ChoiceDelta{{Index: 0, ToolCalls: []ToolCallDelta{{Index: 1, ID: "call_2", Name: "get_time"}}}}},
		{Choices: []ChoiceDelta{{Index: 0, ToolCalls: []ToolCallDelta{{Index: 0, Arguments: `SF"}`}}}}},
	})
	if err != nil {
		t.Fatalf("Merge err=%v", err)
	}
	calls := resp.Choices[0].ToolCalls
	if len(calls) != 2 {
		t.Fatalf("tool calls=%+v", calls)
	}
	if calls[0].ID != "call_1" || calls[0].Name != "get_weather" || calls[0].Arguments != `{"location":"SF"}` {
		t.Fatalf("call0=%+v", calls[0])
	}
	if calls[1].Name != "get_time" || calls[1].Arguments != "" {
		t.Fatalf("call1=%+v", calls[1])
	}
}

func TestMerge_NoData(t *testing.T) {
	t.Parallel()

	_, err := Merge(nil)
	if !errors.Is(err, llm.ErrNoData) {
		t.Fatalf("err=%v, want ErrNoData", err)
	}
	if !llm.IsKind(err, llm.ErrKindMerge) {
		t.Fatalf("err kind=%v", err)
	}
}

func TestAccumulator_CustomPolicy(t *testing.T) {
	t.Parallel()

	acc := Accumulator{Policies: map[Field]Policy{FieldFinishReason: LastWins}}
	acc.Apply(Chunk{Choices: []ChoiceDelta{{Index: 0, FinishReason: "length"}}})
	acc.Apply(Chunk{Choices: []ChoiceDelta{{Index: 0, FinishReason: "stop"}}})
	acc.Apply(Chunk{Choices: []ChoiceDelta{{Index: 0}}})

	resp, err := acc.Response()
	if err != nil {
		t.Fatalf("Response err=%v", err)
	}
	if resp.Choices[0].FinishReason != "stop" {
		t.Fatalf("finish=%q", resp.Choices[0].FinishReason)
	}
	if acc.Applied() != 3 {
		t.Fatalf("applied=%d", acc.Applied())
	}
}

func TestPolicyTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		policy    Policy
		cur, next string
		want      string
	}{
		{Concat, "", "a", "a"},
		{Concat, "a", "b", "ab"},
		{FirstWins, "", "a", "a"},
		{FirstWins, "a", "b", "a"},
		{LastWins, "a", "b", "b"},
		{LastWins, "a", "", "a"},
	}
	for _, tt := range tests {
		if got := mergeString(tt.policy, tt.cur, tt.next); got != tt.want {
			t.Fatalf("%s(%q,%q)=%q, want %q", tt.policy, tt.cur, tt.next, got, tt.want)
		}
	}
}

func TestMerge_UsageIsNotCarriedPastLastChunk(t *testing.T) {
	t.Parallel()

	resp, err := Merge([]Chunk{
		{ID: "a", Usage: &llm.TokenUsage{TotalTokens: 9}, Choices: []ChoiceDelta{{Index: 0, Content: "x"}}},
		{ID: "a", Choices: []ChoiceDelta{{Index: 0, FinishReason: "stop"}}},
	})
	if err != nil {
		t.Fatalf("Merge err=%v", err)
	}
	if resp.Usage != nil {
		t.Fatalf("usage=%+v, want nil when the last chunk has none", resp.Usage)
	}
}

func TestMerge_ReasoningConcatenatesSeparately(t *testing.T) {
	t.Parallel()

	resp, err := Merge([]Chunk{
		{Choices: []ChoiceDelta{{Index: 0, Role: "assistant", Reasoning: "think "}}},
		{Choices: []ChoiceDelta{{Index: 0, Reasoning: "hard"}}},
		{Choices: []ChoiceDelta{{Index: 0, Content: "42"}}},
	})
	if err != nil {
		t.Fatalf("Merge err=%v", err)
	}
	ch := resp.Choices[0]
	if ch.Reasoning != "think hard" || ch.Content != "42" {
		t.Fatalf("choice=%+v", ch)
	}
	if DefaultPolicies[FieldReasoning] != Concat {
		t.Fatalf("reasoning policy=%s", DefaultPolicies[FieldReasoning])
	}
}
