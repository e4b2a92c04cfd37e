package openai

import "github.com/lgc202/llmtrace/llm"

const ProviderName = "openai"

// Prices are USD per million tokens.
var defaultModels = []llm.TextModelInfo{
	{Name: "gpt-4o", Aliases: []string{"chatgpt-4o-latest"}, Currency: "usd", PromptTokenCostPer1M: 2.5, CompletionTokenCostPer1M: 10},
	{Name: "gpt-4o-mini", Currency: "usd", PromptTokenCostPer1M: 0.15, CompletionTokenCostPer1M: 0.6},
	{Name: "gpt-4-turbo", Aliases: []string{"gpt-4-turbo-preview", "gpt-4-1106-preview"}, Currency: "usd", PromptTokenCostPer1M: 10, CompletionTokenCostPer1M: 30},
	{Name: "gpt-4", Aliases: []string{"gpt-4-0613"}, Currency: "usd", PromptTokenCostPer1M: 30, CompletionTokenCostPer1M: 60},
	{Name: "gpt-4-32k", Currency: "usd", PromptTokenCostPer1M: 60, CompletionTokenCostPer1M: 120},
	{Name: "gpt-3.5-turbo", Aliases: []string{"gpt-3.5-turbo-0125"}, Currency: "usd", PromptTokenCostPer1M: 0.5, CompletionTokenCostPer1M: 1.5},
	{Name: "gpt-3.5-turbo-instruct", Currency: "usd", PromptTokenCostPer1M: 1.5, CompletionTokenCostPer1M: 2},
	{Name: "davinci-002", Aliases: []string{"text-davinci-003"}, Currency: "usd", PromptTokenCostPer1M: 2, CompletionTokenCostPer1M: 2},
	{Name: "babbage-002", Currency: "usd", PromptTokenCostPer1M: 0.4, CompletionTokenCostPer1M: 0.4},
	{Name: "text-embedding-3-small", Currency: "usd", PromptTokenCostPer1M: 0.02},
	{Name: "text-embedding-3-large", Currency: "usd", PromptTokenCostPer1M: 0.13},
	{Name: "text-embedding-ada-002", Currency: "usd", PromptTokenCostPer1M: 0.1},
}

// DefaultModels returns a registry with the built-in OpenAI models.
func DefaultModels() *llm.ModelRegistry {
	out := make([]llm.TextModelInfo, len(defaultModels))
	for i, m := range defaultModels {
		m.Provider = ProviderName
		out[i] = m
	}
	return llm.NewModelRegistry(out...)
}
