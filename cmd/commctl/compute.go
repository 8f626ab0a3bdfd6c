package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/construcosta/commission-engine/commission"
	"github.com/construcosta/commission-engine/core"
)

func computeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compute [employee-id]",
		Short: "Compute an employee's commission without storing it",
		Long: `Compute the commission for one employee and period. The checklist
gate is not applied: this is the administrative view.

Examples:
  commctl compute davi --period 2025-03
  commctl compute joao`,
		Args: cobra.ExactArgs(1),
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
			result, err := a.Commissions.Preview(cmd.Context(), core.EmployeeID(args[0]), period)
			if err != nil {
				return err
			}

			printResult(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().String("period", "", "period as YYYY-MM (default: current month)")
	return cmd
}

func postCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post [employee-id]",
		Short: "Compute, store and notify an employee's commission",
		Long: `Post the commission for one employee and period. A period can be
posted once per employee.

Examples:
  commctl post davi --period 2025-02`,
		Args: cobra.ExactArgs(1),
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
			rec, err := a.Commissions.Post(cmd.Context(), core.EmployeeID(args[0]), period)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", color.New(color.FgGreen).Sprint("POSTED"), rec.ID)
			printResult(out, rec.Result)
			return nil
		},
	}
	cmd.Flags().String("period", "", "period as YYYY-MM (default: current month)")
	return cmd
}

func printResult(out io.Writer, r commission.CommissionResult) {
	fmt.Fprintf(out, "Employee: %s\n", r.EmployeeID)
	fmt.Fprintf(out, "Period:   %s\n", r.Period)
	fmt.Fprintf(out, "Model:    %s\n", r.Model)
	fmt.Fprintf(out, "Value:    %s (%d deliveries)\n", r.TotalValue.StringFixed(2), r.DeliveryCount)

	if len(r.ByTruck) > 0 {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  TRUCK\tDELIVERIES\tVALUE")
		for _, tt := range r.ByTruck {
			fmt.Fprintf(w, "  %s\t%d\t%s\n", tt.TruckCode, tt.Count, tt.Value.StringFixed(2))
		}
		w.Flush()
	}

	if r.Model == commission.ModelNew {
		fmt.Fprintf(out, "Occurrences: %d\n", r.OccurrenceCount)
		fmt.Fprintf(out, "Tier:     %s (%s%%)\n", tierLabel(r.Tier), r.Percentage.Shift(2).StringFixed(1))
	}
	fmt.Fprintf(out, "Amount:   %s\n", color.New(color.Bold).Sprint(r.Amount.StringFixed(2)))
}

func tierLabel(t commission.Tier) string {
	switch t {
	case commission.TierLow:
		return color.New(color.FgGreen).Sprint(t)
	case commission.TierMedium:
		return color.New(color.FgYellow).Sprint(t)
	case commission.TierHigh:
		return color.New(color.FgRed).Sprint(t)
	default:
		return string(t)
	}
}
