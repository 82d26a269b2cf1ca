package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nudge/internal/ipc"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test push notification through the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.TestNotification()
				if err != nil {
					return err
				}
				if !resp.Sent {
					fmt.Fprintf(stdout, "Test notification failed: %s\n", resp.Message)
					return nil
				}
				fmt.Fprintln(stdout, "Test notification sent")
				return nil
			})
		},
	}
}
