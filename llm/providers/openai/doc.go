// Package openai normalizes OpenAI completion and chat exchanges into trace
// steps and builds request bodies for those endpoints.
//
// Streamed responses are accepted as the raw server-sent event body. Payloads
// that do not decode as a chunk of the expected endpoint are skipped and
// reported on the step's ParsingError rather than failing the whole trace.
package openai
