package commands

import (
	"errors"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/taskverse/pkg/runner/complete"
)

func addComplete(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "complete [id]",
		Aliases: []string{"done", "toggle"},
		Short:   "Toggle a task between pending and completed",
		Example: `
taskverse complete 3f1c...
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("requires exactly one task id")
			}
			return nil
		},
		ValidArgsFunction: taskIDCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			s := complete.Complete{
				ID:    args[0],
				JSON:  output.JSON,
				Tasks: e.tasks,
				Out:   cmd.OutOrStdout(),
			}
			return output.HandleError(s.Do(cmd.Context()))
		},
	}

	base.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}
