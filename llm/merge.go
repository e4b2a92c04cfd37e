package llm

import "strings"

// MergeTextResponses linearizes the responses of sequential steps (for
// example a tool-use loop) into one response.
//
// The first result of each step contributes its content, concatenated in
// step order, and at most its first function call. Session id, remote id and
// usage come from the last step only.
//
// TODO: confirm with the agent runtime owners whether dropping every function
// call after the first one per step is intended before changing it.
func MergeTextResponses(responses []TextResponse) TextResponse {
	var (
		text  strings.Builder
		calls []FunctionCall
		last  TextResponse
		head  TextResponseResult
	)

	for _, resp := range responses {
		if len(resp.Results) > 0 {
			first := resp.Results[0]
			text.WriteString(first.Content)
			if len(first.FunctionCalls) > 0 {
				calls = append(calls, first.FunctionCalls[0])
			}
			head = first
		} else {
			head = TextResponseResult{}
		}
		last = resp
	}

	result := TextResponseResult{
		Content:       text.String(),
		ID:            head.ID,
		Role:          head.Role,
		Name:          head.Name,
		FinishReason:  head.FinishReason,
		FunctionCalls: calls,
	}

	return TextResponse{
		SessionID:       last.SessionID,
		RemoteID:        last.RemoteID,
		Results:         []TextResponseResult{result},
		ModelUsage:      clonePtr(last.ModelUsage),
		EmbedModelUsage: clonePtr(last.EmbedModelUsage),
	}
}
