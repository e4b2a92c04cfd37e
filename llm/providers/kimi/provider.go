// Package kimi normalizes traces of Moonshot's Kimi API, which speaks the
// OpenAI chat completions protocol.
package kimi

import (
	"github.com/lgc202/llmtrace/llm"
	"github.com/lgc202/llmtrace/llm/providers/openai"
)

const ProviderName = "kimi"

// Prices are CNY per million tokens.
var models = []llm.TextModelInfo{
	{Name: "moonshot-v1-8k", Currency: "cny", PromptTokenCostPer1M: 12, CompletionTokenCostPer1M: 12},
	{Name: "moonshot-v1-32k", Currency: "cny", PromptTokenCostPer1M: 24, CompletionTokenCostPer1M: 24},
	{Name: "moonshot-v1-128k", Aliases: []string{"moonshot-v1-auto"}, Currency: "cny", PromptTokenCostPer1M: 60, CompletionTokenCostPer1M: 60},
	{Name: "kimi-k2-0905-preview", Aliases: []string{"kimi-k2"}, Currency: "cny", PromptTokenCostPer1M: 4, CompletionTokenCostPer1M: 16},
}

func Models() *llm.ModelRegistry {
	out := make([]llm.TextModelInfo, len(models))
	for i, m := range models {
		m.Provider = ProviderName
		out[i] = m
	}
	return llm.NewModelRegistry(out...)
}

// New returns a normalizer preset for Kimi.
func New(opts ...openai.Option) *openai.Normalizer {
	return openai.NewNormalizer(append([]openai.Option{
		openai.WithProvider(ProviderName),
		openai.WithModels(Models()),
	}, opts...)...)
}
