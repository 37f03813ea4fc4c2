package commands

import (
	"errors"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/taskverse/pkg/runner/verify"
)

func addVerify(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "verify [id]",
		Short: "Record a completed task on the ledger",
		Long: base.Wrap80(`Connects the wallet, switches it to the ledger network if needed,
registers the task's title hash and marks the task completed on the ledger.`),
		Example: `
taskverse verify 3f1c...
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
			s := verify.Verify{
				ID:    args[0],
				JSON:  output.JSON,
				Chain: e.chain,
				Out:   cmd.OutOrStdout(),
			}
			return output.HandleError(s.Do(cmd.Context()))
		},
	}

	base.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}
