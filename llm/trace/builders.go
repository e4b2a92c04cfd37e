// Package trace assembles canonical trace steps.
//
// Builders accept values as they become known: setters given an absent
// value (nil pointer, empty string, nil slice) keep whatever was set before.
// Build returns a deep copy, so a builder may keep being used afterwards.
// Builders are not safe for concurrent use.
package trace

import (
	"maps"

	"github.com/lgc202/llmtrace/llm"
)

type ModelInfoBuilder struct {
	info llm.TextModelInfo
}

func NewModelInfoBuilder() *ModelInfoBuilder { return &ModelInfoBuilder{} }

// FromInfo seeds the builder from a registry entry.
func (b *ModelInfoBuilder) FromInfo(info llm.TextModelInfo) *ModelInfoBuilder {
	b.info = info.Clone()
	return b
}

func (b *ModelInfoBuilder) SetName(name string) *ModelInfoBuilder {
	if name != "" {
		b.info.Name = name
	}
	return b
}

func (b *ModelInfoBuilder) SetProvider(provider string) *ModelInfoBuilder {
	if provider != "" {
		b.info.Provider = provider
	}
	return b
}

func (b *ModelInfoBuilder) SetCurrency(currency string) *ModelInfoBuilder {
	if currency != "" {
		b.info.Currency = currency
	}
	return b
}

func (b *ModelInfoBuilder) SetCharacterIsToken(v *bool) *ModelInfoBuilder {
	assignIfPresent(&b.info.CharacterIsToken, v)
	return b
}

func (b *ModelInfoBuilder) SetPromptTokenCostPer1M(v *float64) *ModelInfoBuilder {
	assignIfPresent(&b.info.PromptTokenCostPer1M, v)
	return b
}

func (b *ModelInfoBuilder) SetCompletionTokenCostPer1M(v *float64) *ModelInfoBuilder {
	assignIfPresent(&b.info.CompletionTokenCostPer1M, v)
	return b
}

func (b *ModelInfoBuilder) Build() llm.TextModelInfo { return b.info.Clone() }

type ModelConfigBuilder struct {
	cfg llm.TextModelConfig
}

func NewModelConfigBuilder() *ModelConfigBuilder { return &ModelConfigBuilder{} }

func (b *ModelConfigBuilder) SetMaxTokens(v *int) *ModelConfigBuilder {
	setIfPresent(&b.cfg.MaxTokens, v)
	return b
}

func (b *ModelConfigBuilder) SetTemperature(v *float64) *ModelConfigBuilder {
	setIfPresent(&b.cfg.Temperature, v)
	return b
}

func (b *ModelConfigBuilder) SetTopP(v *float64) *ModelConfigBuilder {
	setIfPresent(&b.cfg.TopP, v)
	return b
}

func (b *ModelConfigBuilder) SetTopK(v *int) *ModelConfigBuilder {
	setIfPresent(&b.cfg.TopK, v)
	return b
}

func (b *ModelConfigBuilder) SetN(v *int) *ModelConfigBuilder {
	setIfPresent(&b.cfg.N, v)
	return b
}

func (b *ModelConfigBuilder) SetStream(v *bool) *ModelConfigBuilder {
	setIfPresent(&b.cfg.Stream, v)
	return b
}

func (b *ModelConfigBuilder) SetLogprobs(v *int) *ModelConfigBuilder {
	setIfPresent(&b.cfg.Logprobs, v)
	return b
}

func (b *ModelConfigBuilder) SetEcho(v *bool) *ModelConfigBuilder {
	setIfPresent(&b.cfg.Echo, v)
	return b
}

func (b *ModelConfigBuilder) SetPresencePenalty(v *float64) *ModelConfigBuilder {
	setIfPresent(&b.cfg.PresencePenalty, v)
	return b
}

func (b *ModelConfigBuilder) SetFrequencyPenalty(v *float64) *ModelConfigBuilder {
	setIfPresent(&b.cfg.FrequencyPenalty, v)
	return b
}

func (b *ModelConfigBuilder) SetBestOf(v *int) *ModelConfigBuilder {
	setIfPresent(&b.cfg.BestOf, v)
	return b
}

func (b *ModelConfigBuilder) SetLogitBias(v map[string]float64) *ModelConfigBuilder {
	if v != nil {
		b.cfg.LogitBias = maps.Clone(v)
	}
	return b
}

func (b *ModelConfigBuilder) SetSuffix(v *string) *ModelConfigBuilder {
	setIfPresent(&b.cfg.Suffix, v)
	return b
}

func (b *ModelConfigBuilder) Build() llm.TextModelConfig { return b.cfg.Clone() }

// assignIfPresent stores *v into a value field; nil leaves it alone.
func assignIfPresent[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func setIfPresent[T any](dst **T, v *T) {
	if v == nil {
		return
	}
	c := *v
	*dst = &c
}
