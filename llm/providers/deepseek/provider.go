// Package deepseek normalizes traces of DeepSeek's OpenAI-compatible API.
package deepseek

import (
	"github.com/lgc202/llmtrace/llm"
	"github.com/lgc202/llmtrace/llm/providers/openai"
)

const ProviderName = "deepseek"

// Prices are USD per million tokens, cache-miss input.
var models = []llm.TextModelInfo{
	{Name: "deepseek-chat", Aliases: []string{"deepseek-v3"}, Currency: "usd", PromptTokenCostPer1M: 0.27, CompletionTokenCostPer1M: 1.10},
	{Name: "deepseek-reasoner", Aliases: []string{"deepseek-r1"}, Currency: "usd", PromptTokenCostPer1M: 0.55, CompletionTokenCostPer1M: 2.19},
}

// Models returns a registry with the built-in DeepSeek models.
func Models() *llm.ModelRegistry {
	out := make([]llm.TextModelInfo, len(models))
	for i, m := range models {
		m.Provider = ProviderName
		out[i] = m
	}
	return llm.NewModelRegistry(out...)
}

// New returns a normalizer preset for DeepSeek. Caller options are applied
// after the preset, so WithModels replaces the built-in list.
func New(opts ...openai.Option) *openai.Normalizer {
	return openai.NewNormalizer(append([]openai.Option{
		openai.WithProvider(ProviderName),
		openai.WithModels(Models()),
	}, opts...)...)
}
