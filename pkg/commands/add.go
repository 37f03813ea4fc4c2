package commands

import (
	"errors"
	"strings"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/taskverse/pkg/commands/options"
	"tableflip.dev/taskverse/pkg/runner/add"
	"tableflip.dev/taskverse/pkg/task"
)

func addAdd(topLevel *cobra.Command) {
	to := &options.TaskOptions{}
	do := &options.DueOptions{}
	io := &options.IDOptions{}
	anchor := false

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a task",
		Example: `
taskverse add write the quarterly report --due=2025-4-30 --high -c work
taskverse add ship release notes --anchor
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("requires a task title")
			}
			to.Title = strings.Join(args, " ")
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			priority, err := to.GetPriority()
			if err != nil {
				return output.HandleError(err)
			}
			due, err := do.GetDue(e.tasks.Now())
			if err != nil {
				return output.HandleError(err)
			}

			s := add.Add{
				Draft: task.Draft{
					Title:       to.Title,
					Description: to.Description,
					DueDate:     due,
					Priority:    priority,
					Category:    to.Category,
				},
				Anchor: anchor,
				JSON:   output.JSON,
				ShowID: io.ShowID,
				Tasks:  e.tasks,
				Chain:  e.chain,
				Out:    cmd.OutOrStdout(),
			}
			return output.HandleError(s.Do(cmd.Context()))
		},
	}

	options.AddTaskArgs(cmd, to)
	options.AddDueArgs(cmd, do)
	options.AddShowIDArgs(cmd, io)
	cmd.Flags().BoolVar(&anchor, "anchor", false,
		"Also record the task's title hash on the ledger.")
	_ = cmd.RegisterFlagCompletionFunc("priority", priorityCompletions)
	_ = cmd.RegisterFlagCompletionFunc("category", categoryCompletions)

	base.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}
