package main

import (
	"fmt"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/lgc202/llmtrace/llm/collector"
)

func newMemoryCmd(a *app) *cobra.Command {
	var (
		filter collector.MemoryFilter
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Show conversation memory recorded by the collector",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.collector()
			if err != nil {
				return err
			}
			items, err := c.Memory(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), items)
			}

			table := uitable.New()
			table.MaxColWidth = 100
			table.Wrap = true
			table.AddRow("ROLE", "TEXT")
			for _, it := range items {
				role := string(it.Role)
				if role == "" {
					role = "-"
				}
				table.AddRow(role, it.Text)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), table)
			return err
		},
	}
	cmd.Flags().StringVar(&filter.SessionID, "session-id", "", "session id")
	cmd.Flags().StringVar(&filter.User, "user", "", "user")
	cmd.Flags().IntVar(&filter.Limit, "limit", collector.DefaultMemoryLimit, "maximum items")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
