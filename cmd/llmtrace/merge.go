package main

import (
	"github.com/spf13/cobra"

	"github.com/lgc202/llmtrace/llm"
)

func newMergeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "merge STEP...",
		Short: "Merge the responses of sequential steps into one response",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			responses := make([]llm.TextResponse, 0, len(args))
			for _, path := range args {
				step, err := readStep(cmd, path)
				if err != nil {
					return err
				}
				if step.Response == nil {
					a.logger.Warn("step has no response, skipping", "file", path, "trace_id", step.TraceID)
					continue
				}
				responses = append(responses, step.Response.TextResponse)
			}
			return writeJSON(cmd.OutOrStdout(), llm.MergeTextResponses(responses))
		},
	}
}
