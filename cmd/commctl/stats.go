package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/construcosta/commission-engine/commission"
)

func statsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize posted commissions for a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			period, err := periodFlag(cmd, a)
			if err != nil {
				return err
			}
			summary, err := a.Commissions.Statistics(cmd.Context(), period)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Period:  %s\n", period)
			fmt.Fprintf(out, "Posted:  %d\n", summary.Count)
			fmt.Fprintf(out, "Value:   %s\n", summary.TotalValue.StringFixed(2))
			fmt.Fprintf(out, "Amount:  %s (avg %s)\n", summary.TotalAmount.StringFixed(2), summary.AverageAmount.StringFixed(2))
			for _, model := range sortedKeys(summary.ByModel) {
				fmt.Fprintf(out, "  model %-8s %d\n", model, summary.ByModel[model])
			}
			for _, tier := range []commission.Tier{commission.TierLow, commission.TierMedium, commission.TierHigh} {
				if n := summary.ByTier[tier]; n > 0 {
					fmt.Fprintf(out, "  tier  %-8s %d\n", tierLabel(tier), n)
				}
			}
			return nil
		},
	}
	cmd.Flags().String("period", "", "period as YYYY-MM (default: current month)")
	return cmd
}

func sortedKeys(m map[commission.ModelKind]int) []commission.ModelKind {
	keys := make([]commission.ModelKind, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
