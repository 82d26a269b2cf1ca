package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"nudge/internal/ipc"
	"nudge/internal/notify"
)

var titleCaser = cases.Title(language.Und)

func newTaskCommand(ctx *commandContext) *cobra.Command {
	taskCmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var listLimit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List pending tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.TaskList("", listLimit)
				if err != nil {
					return err
				}
				if len(resp.Tasks) == 0 {
					fmt.Fprintln(stdout, "No pending tasks")
					return nil
				}

				rows := make([][]string, 0, len(resp.Tasks))
				for _, task := range resp.Tasks {
					rows = append(rows, []string{
						strconv.FormatInt(task.ID, 10),
						task.Content,
						fmt.Sprintf("%d (%s)", task.Priority, tierLabel(task.Priority)),
						formatDue(task.DueTime),
						strconv.Itoa(task.NotificationCount),
					})
				}
				fmt.Fprintln(stdout, renderTable(stdout,
					[]string{"ID", "Content", "Priority", "Due", "Notified"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight}))
				return nil
			})
		},
	}
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Maximum tasks to list (0 for all)")

	var addPriority int
	var addDue string
	addCmd := &cobra.Command{
		Use:   "add <content>",
		Short: "Add a new task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			content := strings.Join(args, " ")

			req := ipc.TaskAddRequest{Content: content, Priority: addPriority}
			if strings.TrimSpace(addDue) != "" {
				due, err := parseDueArgument(addDue)
				if err != nil {
					return err
				}
				req.DueTime = due.Format(time.RFC3339)
			}

			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.TaskAdd(req)
				if err != nil {
					return err
				}
				fmt.Fprintf(stdout, "Added task %d: %s\n", resp.Task.ID, resp.Task.Content)
				return nil
			})
		},
	}
	addCmd.Flags().IntVarP(&addPriority, "priority", "p", 3, "Task priority (1-5)")
	addCmd.Flags().StringVarP(&addDue, "due", "d", "", "Due time (RFC 3339, or a duration like 45m / 2h from now)")

	doneCmd := &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.TaskDone(id); err != nil {
					return err
				}
				fmt.Fprintf(stdout, "Task %d marked done\n", id)
				return nil
			})
		},
	}

	removeCmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.TaskRemove(id)
				if err != nil {
					return err
				}
				if !resp.Removed {
					fmt.Fprintf(stdout, "Task %d not found\n", id)
					return nil
				}
				fmt.Fprintf(stdout, "Task %d removed\n", id)
				return nil
			})
		},
	}

	taskCmd.AddCommand(listCmd, addCmd, doneCmd, removeCmd)
	return taskCmd
}

func parseTaskID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", arg)
	}
	return id, nil
}

// parseDueArgument accepts either an absolute RFC 3339 timestamp or a
// duration offset from now ("45m", "2h30m").
func parseDueArgument(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if d, err := time.ParseDuration(value); err == nil {
		return time.Now().Add(d), nil
	}
	return time.Time{}, fmt.Errorf("invalid due time %q: use RFC 3339 or a duration like 45m", value)
}

func tierLabel(priority int) string {
	return titleCaser.String(string(notify.TierFor(priority)))
}

func formatDue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
