package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/construcosta/commission-engine/api"
)

func scenarioCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scenario [scenario-id]",
		Short: "List demo scenarios, or reset the database and load one",
		Long: `Without arguments, list the demo scenarios. With a scenario ID, clear
employees, records, checklists, commissions and notifications, then load
the scenario. Settings are kept.

Examples:
  commctl scenario
  commctl scenario demo-fleet`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, s := range api.Scenarios() {
					fmt.Fprintf(out, "%-16s %s\n", s.ID, s.Description)
				}
				return nil
			}

			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := api.LoadScenario(cmd.Context(), a.Store, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %s\n", color.New(color.FgGreen).Sprint("LOADED"), args[0])
			return nil
		},
	}
}
