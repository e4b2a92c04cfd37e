package llm

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"regexp"
	"strings"
)

// ConvertToChatRequest turns a completion request into an equivalent chat
// request: an optional system item followed by a single user item.
func ConvertToChatRequest(req CompletionRequest) (ChatRequest, error) {
	if req.Prompt == "" {
		return ChatRequest{}, NewValidationError("convert to chat request", ErrPromptRequired)
	}

	if req.SystemPrompt == "" && len(req.chat) > 0 && joinContent(req.chat) == req.Prompt {
		return ChatRequest{ChatPrompt: cloneChatPrompt(req.chat), RequestOptions: req.RequestOptions.Clone()}, nil
	}

	prompt := make([]ChatPromptItem, 0, 2)
	if req.SystemPrompt != "" {
		prompt = append(prompt, ChatPromptItem{Content: req.SystemPrompt, Role: RoleSystem})
	}
	prompt = append(prompt, ChatPromptItem{Content: req.Prompt, Role: RoleUser})

	return ChatRequest{ChatPrompt: prompt, RequestOptions: req.RequestOptions.Clone()}, nil
}

// ConvertToCompletionRequest joins every chat item's content with a newline.
func ConvertToCompletionRequest(req ChatRequest) CompletionRequest {
	return CompletionRequest{
		Prompt:         joinContent(req.ChatPrompt),
		RequestOptions: req.RequestOptions.Clone(),
		chat:           cloneChatPrompt(req.ChatPrompt),
	}
}

func joinContent(items []ChatPromptItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, item.Content)
	}
	return strings.Join(parts, "\n")
}

// ConvertToChatPromptItem replays a model result as an assistant chat item.
func ConvertToChatPromptItem(r TextResponseResult) ChatPromptItem {
	return ChatPromptItem{
		Content:       r.Content,
		Role:          RoleAssistant,
		Name:          r.Name,
		FunctionCalls: cloneFunctionCalls(r.FunctionCalls),
	}
}

var functionCallRe = regexp.MustCompile(`(?s)(\w+)\((.*)\)`)

// ParseFunction extracts a "name(args)" call from free text.
func ParseFunction(s string) (FunctionCall, bool) {
	m := functionCallRe.FindStringSubmatch(s)
	if m == nil {
		return FunctionCall{}, false
	}
	return FunctionCall{
		Name: strings.TrimSpace(m[1]),
		Args: strings.TrimSpace(m[2]),
	}, true
}

// UniqBy keeps the first element for each key, preserving order.
func UniqBy[T any, K comparable](items []T, key func(T) K) []T {
	seen := make(map[K]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, v := range items {
		k := key(v)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out
}

// HashObject returns the hex sha256 of v's JSON encoding.
func HashObject(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
