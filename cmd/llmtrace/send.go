package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSendCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "send STEP...",
		Short: "Send trace steps to the collector",
		Long:  "Send trace steps, as written by normalize, to collector.endpoint. Each\nstep is sent once; a failure stops the remaining sends.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.collector()
			if err != nil {
				return err
			}
			for _, path := range args {
				step, err := readStep(cmd, path)
				if err != nil {
					return err
				}
				if err := c.SendTrace(cmd.Context(), step); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "sent %s\n", step.TraceID)
			}
			return nil
		},
	}
}
