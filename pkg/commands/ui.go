package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/taskverse/pkg/tui"
)

func addUI(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Browse and edit tasks in a terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv(cmd.Context())
			if err != nil {
				return err
			}
			if events, err := e.persistence.Watch(cmd.Context()); err == nil {
				go func() { _ = e.tasks.Sync(cmd.Context(), events) }()
			}
			return tui.Run(cmd.Context(), e.tasks, e.chain)
		},
	}

	topLevel.AddCommand(cmd)
}
