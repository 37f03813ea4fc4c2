package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/taskverse/pkg/commands/options"
	"tableflip.dev/taskverse/pkg/runner/seed"
)

func addSeed(topLevel *cobra.Command) {
	io := &options.IDOptions{}
	force := false

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the demo tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv(cmd.Context())
			if err != nil {
				return err
			}
			s := seed.Seed{
				Force:  force,
				ShowID: io.ShowID,
				Tasks:  e.tasks,
				Out:    cmd.OutOrStdout(),
			}
			return s.Do(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Add the demo tasks even when tasks exist.")
	options.AddShowIDArgs(cmd, io)
	topLevel.AddCommand(cmd)
}
