package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"tableflip.dev/taskverse/pkg/runner/remove"
)

func addDelete(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "delete [id...]",
		Aliases: []string{"rm"},
		Short:   "Delete tasks",
		Example: `
taskverse delete 3f1c... 9a2b...
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("requires at least one task id")
			}
			return nil
		},
		ValidArgsFunction: taskIDCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv(cmd.Context())
			if err != nil {
				return err
			}
			s := remove.Remove{
				IDs:   args,
				Tasks: e.tasks,
				Out:   cmd.OutOrStdout(),
			}
			return s.Do(cmd.Context())
		},
	}

	topLevel.AddCommand(cmd)
}
