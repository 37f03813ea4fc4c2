package commands

import (
	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	runner "tableflip.dev/taskverse/pkg/runner/wallet"
)

func addWallet(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:       "wallet",
		Short:     base.Wrap80("Inspect and drive the wallet connection."),
		ValidArgs: []string{},
		Run: func(cmd *cobra.Command, args []string) {
			// a sub-command is required.
			_ = cmd.Help()
		},
	}

	addWalletAction(cmd, runner.Status, "Show the wallet connection", nil)
	addWalletAction(cmd, runner.Connect, "Connect the wallet, binding it to an account when credentials are given", addLoginFlags)
	addWalletAction(cmd, runner.Disconnect, "Forget the connected account", nil)
	addWalletAction(cmd, runner.Switch, "Switch the wallet to the ledger network", nil)

	topLevel.AddCommand(cmd)
}

type loginFlags struct {
	email    string
	password string
}

func addLoginFlags(cmd *cobra.Command, lf *loginFlags) {
	cmd.Flags().StringVar(&lf.email, "email", "", "Account email to bind the wallet to.")
	cmd.Flags().StringVar(&lf.password, "password", "", "Account password.")
}

func addWalletAction(topLevel *cobra.Command, action runner.Action, short string, extra func(*cobra.Command, *loginFlags)) {
	lf := &loginFlags{}

	cmd := &cobra.Command{
		Use:   string(action),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv(cmd.Context())
			if err != nil {
				return output.HandleError(err)
			}
			if lf.email != "" {
				if _, err := e.auth.Login(cmd.Context(), lf.email, lf.password); err != nil {
					return output.HandleError(err)
				}
			}
			s := runner.Wallet{
				Action: action,
				JSON:   output.JSON,
				Chain:  e.chain,
				Out:    cmd.OutOrStdout(),
			}
			return output.HandleError(s.Do(cmd.Context()))
		},
	}
	if extra != nil {
		extra(cmd, lf)
	}

	base.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}
