package commands

import (
	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/taskverse/pkg/commands/options"
	"tableflip.dev/taskverse/pkg/runner/insight"
)

func addPrioritize(topLevel *cobra.Command) {
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "prioritize",
		Short: "Ask the assistant which pending tasks to tackle first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			s := insight.Prioritize{
				ShowID: io.ShowID,
				JSON:   output.JSON,
				Tasks:  e.tasks,
				Out:    cmd.OutOrStdout(),
			}
			return output.HandleError(s.Do(cmd.Context()))
		},
	}

	options.AddShowIDArgs(cmd, io)
	base.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}

func addAnalytics(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show completion statistics and the last seven days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			s := insight.Analytics{
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

func addReport(topLevel *cobra.Command) {
	io := &options.IDOptions{}
	wo := &options.WindowOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "List tasks completed recently, grouped by category",
		Example: `
taskverse report
taskverse report --window 30d
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			window, err := wo.GetWindow()
			if err != nil {
				return output.HandleError(err)
			}
			e, err := loadEnv(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			s := insight.Report{
				Window: window,
				ShowID: io.ShowID,
				JSON:   output.JSON,
				Tasks:  e.tasks,
				Out:    cmd.OutOrStdout(),
			}
			return output.HandleError(s.Do(cmd.Context()))
		},
	}

	options.AddWindowArgs(cmd, wo)
	options.AddShowIDArgs(cmd, io)
	base.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}

func addOverdue(topLevel *cobra.Command) {
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "overdue",
		Short: "List pending tasks past their due date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			s := insight.Overdue{
				ShowID: io.ShowID,
				JSON:   output.JSON,
				Tasks:  e.tasks,
				Out:    cmd.OutOrStdout(),
			}
			return output.HandleError(s.Do(cmd.Context()))
		},
	}

	options.AddShowIDArgs(cmd, io)
	base.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}
