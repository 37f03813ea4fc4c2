package commands

import (
	"errors"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/taskverse/pkg/commands/options"
	"tableflip.dev/taskverse/pkg/runner/update"
)

func addUpdate(topLevel *cobra.Command) {
	to := &options.TaskOptions{}
	do := &options.DueOptions{}
	clearDue := false

	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Edit a task",
		Example: `
taskverse update 3f1c... --title "new title" --due=5/1
taskverse update 3f1c... --no-due --low
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
			s := update.Update{
				ID:       args[0],
				ClearDue: clearDue,
				JSON:     output.JSON,
				Tasks:    e.tasks,
				Out:      cmd.OutOrStdout(),
			}

			flags := cmd.Flags()
			if flags.Changed("title") {
				s.Title = &to.Title
			}
			if flags.Changed("description") {
				s.Description = &to.Description
			}
			if flags.Changed("category") {
				s.Category = &to.Category
			}
			priority, err := to.GetPriority()
			if err != nil {
				return output.HandleError(err)
			}
			if priority != "" {
				s.Priority = &priority
			}
			if s.Due, err = do.GetDue(e.tasks.Now()); err != nil {
				return output.HandleError(err)
			}
			if clearDue && s.Due != nil {
				return output.HandleError(errors.New("--due and --no-due are mutually exclusive"))
			}
			return output.HandleError(s.Do(cmd.Context()))
		},
	}

	cmd.Flags().StringVarP(&to.Title, "title", "t", "", "New title.")
	options.AddTaskArgs(cmd, to)
	options.AddDueArgs(cmd, do)
	cmd.Flags().BoolVar(&clearDue, "no-due", false, "Remove the due date.")
	_ = cmd.RegisterFlagCompletionFunc("priority", priorityCompletions)
	_ = cmd.RegisterFlagCompletionFunc("category", categoryCompletions)

	base.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}
