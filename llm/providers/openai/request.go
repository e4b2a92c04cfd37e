package openai

import (
	"maps"
	"slices"

	"github.com/lgc202/llmtrace/llm"
)

// MaxStopSequences is the most stop sequences the API accepts per request.
const MaxStopSequences = 4

// Options are the generation settings shared by the request constructors.
type Options struct {
	Model      string
	AudioModel string

	Suffix           *string
	MaxTokens        *int
	Temperature      *float64
	TopP             *float64
	N                *int
	Stream           *bool
	Logprobs         *int
	Echo             *bool
	PresencePenalty  *float64
	FrequencyPenalty *float64
	BestOf           *int
	LogitBias        map[string]float64
	User             string
}

func DefaultOptions() Options {
	return Options{
		Model:       "gpt-3.5-turbo",
		AudioModel:  "whisper-1",
		MaxTokens:   llm.Ptr(500),
		Temperature: llm.Ptr(0.0),
		TopP:        llm.Ptr(1.0),
	}
}

func (o Options) topP() *float64 {
	if o.TopP != nil {
		return o.TopP
	}
	return llm.Ptr(1.0)
}

func checkStops(op string, stop []string) error {
	if len(stop) > MaxStopSequences {
		return llm.NewValidationError(op, llm.ErrTooManyStops)
	}
	return nil
}

// NewCompletionRequest builds a /v1/completions body.
func NewCompletionRequest(prompt string, opt Options, stop []string) (CompletionRequest, error) {
	if err := checkStops("new completion request", stop); err != nil {
		return CompletionRequest{}, err
	}
	return CompletionRequest{
		Model:            opt.Model,
		Prompt:           prompt,
		Suffix:           opt.Suffix,
		MaxTokens:        opt.MaxTokens,
		Temperature:      opt.Temperature,
		TopP:             opt.topP(),
		N:                opt.N,
		Stream:           opt.Stream,
		Logprobs:         opt.Logprobs,
		Echo:             opt.Echo,
		Stop:             slices.Clone(stop),
		PresencePenalty:  opt.PresencePenalty,
		FrequencyPenalty: opt.FrequencyPenalty,
		BestOf:           opt.BestOf,
		LogitBias:        maps.Clone(opt.LogitBias),
		User:             opt.User,
	}, nil
}

// NewChatRequest builds a /v1/chat/completions body with prompt as the only
// user message.
func NewChatRequest(prompt string, opt Options, stop []string) (ChatRequest, error) {
	if err := checkStops("new chat request", stop); err != nil {
		return ChatRequest{}, err
	}
	return ChatRequest{
		Model:            opt.Model,
		Messages:         []ChatMessage{{Role: string(llm.RoleUser), Content: prompt}},
		MaxTokens:        opt.MaxTokens,
		Temperature:      opt.Temperature,
		TopP:             opt.topP(),
		N:                opt.N,
		Stream:           opt.Stream,
		Stop:             slices.Clone(stop),
		PresencePenalty:  opt.PresencePenalty,
		FrequencyPenalty: opt.FrequencyPenalty,
		LogitBias:        maps.Clone(opt.LogitBias),
		User:             opt.User,
	}, nil
}

// NewAudioRequest builds a transcription request. It fails when no audio
// model is configured.
func NewAudioRequest(opt Options, prompt, language string) (AudioRequest, error) {
	if opt.AudioModel == "" {
		return AudioRequest{}, llm.NewValidationError("new audio request", llm.ErrAudioModelRequired)
	}
	return AudioRequest{
		Model:          opt.AudioModel,
		Prompt:         prompt,
		Temperature:    opt.Temperature,
		Language:       language,
		ResponseFormat: "verbose_json",
	}, nil
}
