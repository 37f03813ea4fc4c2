package commands

import (
	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/taskverse/pkg/commands/options"
	"tableflip.dev/taskverse/pkg/runner/get"
)

func addList(topLevel *cobra.Command) {
	vo := &options.ViewOptions{}
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls", "get"},
		Short:   "List tasks",
		Example: `
taskverse list
taskverse list --filter pending --sort priority
taskverse ls -f completed -k
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			f, k, err := vo.Get()
			if err != nil {
				return output.HandleError(err)
			}
			e, err := loadEnv(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			s := get.Get{
				ShowID: io.ShowID,
				JSON:   output.JSON,
				Filter: f,
				Sort:   k,
				Tasks:  e.tasks,
				Out:    cmd.OutOrStdout(),
			}
			return output.HandleError(s.Do(cmd.Context()))
		},
	}

	options.AddViewArgs(cmd, vo)
	options.AddShowIDArgs(cmd, io)
	_ = cmd.RegisterFlagCompletionFunc("filter", filterCompletions)
	_ = cmd.RegisterFlagCompletionFunc("sort", sortCompletions)

	base.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}
