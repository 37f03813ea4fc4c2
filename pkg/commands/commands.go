package commands

import (
	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/taskverse/pkg/logging"
	"tableflip.dev/taskverse/pkg/store"
)

var (
	output   = &base.OutputOptions{}
	settings *store.Settings
	logLevel string
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "taskverse",
		Short: base.Wrap80("Track tasks, get prioritisation tips, and verify completed work on a blockchain ledger."),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			s, err := store.LoadConfig()
			if err != nil {
				return err
			}
			if logLevel != "" {
				s.LogLevel = logLevel
			}
			logging.Configure(s.LogLevel)
			settings = s
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level, overrides log_level from the config file.")

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addUI(topLevel)
	addAdd(topLevel)
	addList(topLevel)
	addUpdate(topLevel)
	addComplete(topLevel)
	addDelete(topLevel)
	addVerify(topLevel)
	addWallet(topLevel)
	addPrioritize(topLevel)
	addAnalytics(topLevel)
	addReport(topLevel)
	addOverdue(topLevel)
	addSeed(topLevel)
	addWatch(topLevel)
	addRegister(topLevel)
	addLogin(topLevel)
	addWhoAmI(topLevel)
	addKey(topLevel)
	addInfo(topLevel)
	addMCP(topLevel)
	addCompletions(topLevel)
	addUpgrade(topLevel)
	addVersion(topLevel)
}
