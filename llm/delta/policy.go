package delta

import "encoding/json"

// Policy is the merge discipline for one per-choice field.
type Policy int

const (
	// Concat appends every fragment in arrival order.
	Concat Policy = iota + 1
	// FirstWins keeps the first non-empty value and ignores later ones.
	FirstWins
	// LastWins keeps the latest non-empty value.
	LastWins
)

func (p Policy) String() string {
	switch p {
	case Concat:
		return "concat"
	case FirstWins:
		return "first_wins"
	case LastWins:
		return "last_wins"
	default:
		return "unknown"
	}
}

type Field string

const (
	FieldContent           Field = "content"
	FieldReasoning         Field = "reasoning"
	FieldRole              Field = "role"
	FieldFinishReason      Field = "finish_reason"
	FieldLogprobs          Field = "logprobs"
	FieldToolCallID        Field = "tool_call.id"
	FieldToolCallName      Field = "tool_call.name"
	FieldToolCallArguments Field = "tool_call.arguments"
)

// DefaultPolicies is the per-field table used when an Accumulator has none.
//
// Envelope fields (id, object, created, model, usage) are not listed: they
// always come from the last chunk.
var DefaultPolicies = map[Field]Policy{
	FieldContent:           Concat,
	FieldReasoning:         Concat,
	FieldRole:              FirstWins,
	FieldFinishReason:      FirstWins,
	FieldLogprobs:          FirstWins,
	FieldToolCallID:        FirstWins,
	FieldToolCallName:      FirstWins,
	FieldToolCallArguments: Concat,
}

func mergeString(p Policy, cur, next string) string {
	switch p {
	case Concat:
		return cur + next
	case FirstWins:
		if cur != "" {
			return cur
		}
		return next
	case LastWins:
		if next != "" {
			return next
		}
		return cur
	default:
		return cur
	}
}

func mergeRaw(p Policy, cur, next json.RawMessage) json.RawMessage {
	if isNullRaw(next) {
		return cur
	}
	switch p {
	case FirstWins:
		if !isNullRaw(cur) {
			return cur
		}
		return append(json.RawMessage(nil), next...)
	case LastWins:
		return append(json.RawMessage(nil), next...)
	default:
		// Concatenating JSON documents would not produce JSON.
		if !isNullRaw(cur) {
			return cur
		}
		return append(json.RawMessage(nil), next...)
	}
}

func isNullRaw(b json.RawMessage) bool {
	return len(b) == 0 || string(b) == "null"
}
