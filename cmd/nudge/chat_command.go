package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nudge/internal/quickchat"
)

func newChatCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Open the configured quick-chat terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			launcher := quickchat.NewLauncher(cfg)
			if !launcher.Enabled() {
				return fmt.Errorf("quick chat is disabled; set quick_chat.enabled and quick_chat.command in the config")
			}
			if err := launcher.Launch(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Quick chat launched")
			return nil
		},
	}
}
