package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func remindCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Send today's checklist reminders once",
		Long: `Run one pass of the reminder scheduler: every driver whose assigned
day is today and whose week is incomplete gets one reminder per week.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			sent, err := a.Scheduler().RunOnce(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d reminder(s) sent\n", sent)
			return nil
		},
	}
}
