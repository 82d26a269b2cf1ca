package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"nudge/internal/ipc"
)

func newMenuCommand(ctx *commandContext) *cobra.Command {
	menuCmd := &cobra.Command{
		Use:   "menu",
		Short: "Show the current menu snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.MenuList()
				if err != nil {
					return err
				}

				rows := make([][]string, 0, len(resp.Entries))
				for _, entry := range resp.Entries {
					id := "-"
					if entry.TaskID != 0 {
						id = strconv.FormatInt(entry.TaskID, 10)
					}
					rows = append(rows, []string{id, entry.Label})
				}
				fmt.Fprintln(stdout, renderTable(stdout, []string{"ID", "Label"}, rows, []columnAlignment{alignRight, alignLeft}))
				return nil
			})
		},
	}

	selectCmd := &cobra.Command{
		Use:   "select <id>",
		Short: "Act on a menu entry as if it was clicked",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.MenuSelect(id)
				if err != nil {
					return err
				}
				if !resp.Handled {
					fmt.Fprintf(stdout, "Selection not handled: %s\n", resp.Message)
					return nil
				}
				fmt.Fprintf(stdout, "Task %d handled\n", id)
				return nil
			})
		},
	}

	menuCmd.AddCommand(selectCmd)
	return menuCmd
}
