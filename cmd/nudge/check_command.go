package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nudge/internal/ipc"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run a reminder check cycle immediately",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.CheckNow()
				if err != nil {
					return err
				}
				cycle := resp.Cycle
				fmt.Fprintf(stdout, "Cycle complete: evaluated %d, notified %d, completed %d, postponed %d, errors %d\n",
					cycle.Evaluated, cycle.Notified, cycle.Completed, cycle.Postponed, cycle.Errors)
				return nil
			})
		},
	}
}
