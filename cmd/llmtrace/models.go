package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/lgc202/llmtrace/llm/providers"
)

func newModelsCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the models and prices known for the configured provider",
		Long: "List the models and prices known for the configured provider.\n\n" +
			"Built-in providers: " + strings.Join(providers.Names(), ", ") + ".\n" +
			"Other provider names use the OpenAI table. Entries under `models` in the config file are added on top.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			models := a.normalizer().Models.Models()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), models)
			}

			table := uitable.New()
			table.AddRow("NAME", "ALIASES", "CURRENCY", "PROMPT/1M", "COMPLETION/1M")
			for _, m := range models {
				table.AddRow(m.Name, strings.Join(m.Aliases, ","), m.Currency, price(m.PromptTokenCostPer1M), price(m.CompletionTokenCostPer1M))
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), table)
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func price(v float64) string {
	if v == 0 {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
