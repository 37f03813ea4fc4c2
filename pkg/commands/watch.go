package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"tableflip.dev/taskverse/pkg/commands/options"
	"tableflip.dev/taskverse/pkg/printers"
	"tableflip.dev/taskverse/pkg/taskstore"
)

func addWatch(topLevel *cobra.Command) {
	vo := &options.ViewOptions{}
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reprint the task list whenever the store changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			f, k, err := vo.Get()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			e, err := loadEnv(ctx)
			if err != nil {
				return err
			}
			if _, err := e.tasks.SetFilter(f); err != nil {
				return err
			}
			if _, err := e.tasks.SetSort(k); err != nil {
				return err
			}
			events, err := e.persistence.Watch(ctx)
			if err != nil {
				return err
			}

			pp := printers.PrettyPrint{ShowID: io.ShowID, Out: cmd.OutOrStdout()}
			show := func(st taskstore.State) {
				pp.NewLine()
				pp.TitleWithCount("Tasks", len(st.View))
				pp.Tasks(st.View...)
			}
			show(e.tasks.State())
			e.tasks.OnSync(show)

			if err := e.tasks.Sync(ctx, events); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	options.AddViewArgs(cmd, vo)
	options.AddShowIDArgs(cmd, io)
	topLevel.AddCommand(cmd)
}
