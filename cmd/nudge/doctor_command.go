package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nudge/internal/deps"
	"nudge/internal/ipc"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external binaries and database health",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()

			statuses := deps.Check(deps.Requirements(cfg))
			rows := make([][]string, 0, len(statuses))
			missingRequired := false
			for _, status := range statuses {
				state := "ok"
				if !status.Available {
					state = "missing"
					if status.Detail != "" {
						state = status.Detail
					}
					if !status.Optional {
						missingRequired = true
					}
				}
				rows = append(rows, []string{status.Name, status.Command, state, status.Description})
			}
			fmt.Fprintln(stdout, renderTable(stdout, []string{"Dependency", "Command", "Status", "Purpose"}, rows, nil))

			if err := ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.DatabaseHealth()
				if err != nil {
					return err
				}
				healthRows := [][]string{
					{"Database path", resp.DBPath},
					{"Database exists", yesNo(resp.DatabaseExists)},
					{"Database readable", yesNo(resp.DatabaseReadable)},
					{"Tasks table", yesNo(resp.TableExists)},
					{"Integrity check", yesNo(resp.IntegrityCheck)},
					{"Total tasks", fmt.Sprintf("%d", resp.TotalTasks)},
				}
				if resp.Error != "" {
					healthRows = append(healthRows, []string{"Error", resp.Error})
				}
				fmt.Fprintln(stdout, renderTable(stdout, []string{"Database", "Value"}, healthRows, nil))
				return nil
			}); err != nil {
				fmt.Fprintf(stdout, "Daemon not reachable: %v\n", err)
			}

			if missingRequired {
				return fmt.Errorf("required dependencies are missing")
			}
			return nil
		},
	}
}
