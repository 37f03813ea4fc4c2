package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/taskverse/pkg/runner/info"
)

func addInfo(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show the resolved configuration and store counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv(cmd.Context())
			if err != nil {
				return err
			}
			s := info.Info{
				Settings: e.settings,
				Tasks:    e.tasks,
				Out:      cmd.OutOrStdout(),
			}
			return s.Do(cmd.Context())
		},
	}

	topLevel.AddCommand(cmd)
}
