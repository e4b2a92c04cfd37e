// Package providers maps provider names to normalizer presets.
//
// Every supported provider speaks the OpenAI wire protocol, so a preset is
// the OpenAI normalizer with its own provider name and model price table.
package providers

import (
	"sort"

	"github.com/lgc202/llmtrace/llm"
	"github.com/lgc202/llmtrace/llm/providers/deepseek"
	"github.com/lgc202/llmtrace/llm/providers/kimi"
	"github.com/lgc202/llmtrace/llm/providers/ollama"
	"github.com/lgc202/llmtrace/llm/providers/openai"
	"github.com/lgc202/llmtrace/llm/providers/qwen"
)

type preset struct {
	models func() *llm.ModelRegistry
	new    func(...openai.Option) *openai.Normalizer
}

var presets = map[string]preset{
	openai.ProviderName:   {models: openai.DefaultModels, new: openai.NewNormalizer},
	deepseek.ProviderName: {models: deepseek.Models, new: deepseek.New},
	kimi.ProviderName:     {models: kimi.Models, new: kimi.New},
	qwen.ProviderName:     {models: qwen.Models, new: qwen.New},
	ollama.ProviderName:   {models: ollama.Models, new: ollama.New},
}

// Names lists the built-in presets in sorted order.
func Names() []string {
	out := make([]string, 0, len(presets))
	for name := range presets {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Known reports whether name has a built-in preset.
func Known(name string) bool {
	_, ok := presets[name]
	return ok
}

// Models returns the built-in model table for name. Unknown names, such as
// self-hosted OpenAI-compatible proxies, get the OpenAI table.
func Models(name string) *llm.ModelRegistry {
	if p, ok := presets[name]; ok {
		return p.models()
	}
	return openai.DefaultModels()
}

// NewNormalizer returns the preset for name. An unknown name yields an OpenAI
// normalizer that records name as the provider.
func NewNormalizer(name string, opts ...openai.Option) *openai.Normalizer {
	if p, ok := presets[name]; ok {
		return p.new(opts...)
	}
	return openai.NewNormalizer(append([]openai.Option{openai.WithProvider(name)}, opts...)...)
}
