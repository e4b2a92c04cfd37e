// Package qwen normalizes traces of Alibaba Cloud's DashScope
// OpenAI-compatible mode.
package qwen

import (
	"github.com/lgc202/llmtrace/llm"
	"github.com/lgc202/llmtrace/llm/providers/openai"
)

const ProviderName = "qwen"

// Prices are CNY per million tokens.
var models = []llm.TextModelInfo{
	{Name: "qwen-turbo", Aliases: []string{"qwen-turbo-latest"}, Currency: "cny", PromptTokenCostPer1M: 0.3, CompletionTokenCostPer1M: 0.6},
	{Name: "qwen-plus", Aliases: []string{"qwen-plus-latest"}, Currency: "cny", PromptTokenCostPer1M: 0.8, CompletionTokenCostPer1M: 2},
	{Name: "qwen-max", Aliases: []string{"qwen-max-latest"}, Currency: "cny", PromptTokenCostPer1M: 2.4, CompletionTokenCostPer1M: 9.6},
	{Name: "qwen-long", Currency: "cny", PromptTokenCostPer1M: 0.5, CompletionTokenCostPer1M: 2},
}

func Models() *llm.ModelRegistry {
	out := make([]llm.TextModelInfo, len(models))
	for i, m := range models {
		m.Provider = ProviderName
		out[i] = m
	}
	return llm.NewModelRegistry(out...)
}

// New returns a normalizer preset for Qwen.
func New(opts ...openai.Option) *openai.Normalizer {
	return openai.NewNormalizer(append([]openai.Option{
		openai.WithProvider(ProviderName),
		openai.WithModels(Models()),
	}, opts...)...)
}
