package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/construcosta/commission-engine/report"
)

func reportCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the monthly report, optionally exporting a workbook",
		Long: `Compute every employee's commission for a period. Employees whose
records cannot be computed are listed with the error.

Examples:
  commctl report --period 2025-03
  commctl report --period 2025-03 --out comissoes-2025-03.xlsx`,
		Args: cobra.NoArgs,
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
			rep, err := a.Reports.Monthly(cmd.Context(), period)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "EMPLOYEE\tMODEL\tVALUE\tOCC\tTIER\tAMOUNT")
			for _, row := range rep.Rows {
				if row.Result == nil {
					fmt.Fprintf(w, "%s\t%s\t\t\t\t\n", row.Employee.ID, color.New(color.FgRed).Sprint("ERROR: "+row.Error))
					continue
				}
				r := row.Result
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
					row.Employee.ID, r.Model, r.TotalValue.StringFixed(2), r.OccurrenceCount, r.Tier, r.Amount.StringFixed(2))
			}
			fmt.Fprintf(w, "TOTAL\t\t%s\t\t\t%s\n",
				rep.Summary.TotalValue.StringFixed(2), rep.Summary.TotalAmount.StringFixed(2))
			w.Flush()

			path, _ := cmd.Flags().GetString("out")
			if path == "" {
				return nil
			}
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			if err := report.WriteExcel(f, rep); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %s\n", color.New(color.FgGreen).Sprint("WROTE"), path)
			return nil
		},
	}
	cmd.Flags().String("period", "", "period as YYYY-MM (default: current month)")
	cmd.Flags().String("out", "", "write an .xlsx workbook to this path")
	return cmd
}
