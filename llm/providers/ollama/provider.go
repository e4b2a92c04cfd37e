// Package ollama normalizes traces of a local Ollama server's
// OpenAI-compatible endpoints (/v1/chat/completions, /v1/completions).
//
// Local inference is free, so the built-in models carry no prices. Tagged
// names like "llama3.1:8b" are listed as aliases of the base model.
package ollama

import (
	"github.com/lgc202/llmtrace/llm"
	"github.com/lgc202/llmtrace/llm/providers/openai"
)

const ProviderName = "ollama"

var models = []llm.TextModelInfo{
	{Name: "llama3.1", Aliases: []string{"llama3.1:latest", "llama3.1:8b", "llama3.1:70b"}},
	{Name: "qwen2.5", Aliases: []string{"qwen2.5:latest", "qwen2.5:7b", "qwen2.5:14b"}},
	{Name: "mistral", Aliases: []string{"mistral:latest", "mistral:7b"}},
	{Name: "deepseek-r1", Aliases: []string{"deepseek-r1:latest", "deepseek-r1:7b", "deepseek-r1:14b"}},
}

func Models() *llm.ModelRegistry {
	out := make([]llm.TextModelInfo, len(models))
	for i, m := range models {
		m.Provider = ProviderName
		out[i] = m
	}
	return llm.NewModelRegistry(out...)
}

func New(opts ...openai.Option) *openai.Normalizer {
	return openai.NewNormalizer(append([]openai.Option{
		openai.WithProvider(ProviderName),
		openai.WithModels(Models()),
	}, opts...)...)
}
