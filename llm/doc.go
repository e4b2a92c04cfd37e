// Package llm defines the canonical, provider-agnostic trace model.
//
// Design goals:
//   - Stable domain model: every provider adapter normalizes into TraceStep,
//     TraceStepRequest and TraceStepResponse, so cost calculators, memory stores
//     and UIs read one shape.
//   - Failures as data: provider-side parse and API failures are recorded on the
//     response half (ParsingError, APIError) so a step can still be shipped.
//   - Structural violations (empty streams, bad configuration) are returned as
//     *Error values classified by ErrorKind.
//
// Streaming merges live in llm/delta, builders in llm/trace, provider
// normalizers under llm/providers and the collector client in llm/collector.
package llm
