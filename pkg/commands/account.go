package commands

import (
	"errors"
	"os"
	"strings"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/taskverse/pkg/runner/account"
)

type accountFlags struct {
	name     string
	email    string
	password string
}

func addRegister(topLevel *cobra.Command) {
	af := &accountFlags{}

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and print a session token",
		Example: `
taskverse register --name Ada --email ada@example.com --password correcthorse
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return runAccount(cmd, account.Register, af, "")
		},
	}

	cmd.Flags().StringVar(&af.name, "name", "", "Display name.")
	addCredentialFlags(cmd, af)
	base.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}

func addLogin(topLevel *cobra.Command) {
	af := &accountFlags{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and print a session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return runAccount(cmd, account.Login, af, "")
		},
	}

	addCredentialFlags(cmd, af)
	base.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}

func addWhoAmI(topLevel *cobra.Command) {
	token := ""

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Check a session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			if token == "" {
				token = os.Getenv("TASKVERSE_TOKEN")
			}
			if strings.TrimSpace(token) == "" {
				return output.HandleError(errors.New("requires --token or TASKVERSE_TOKEN"))
			}
			return runAccount(cmd, account.WhoAmI, &accountFlags{}, token)
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Session token, defaults to $TASKVERSE_TOKEN.")
	base.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}

func addCredentialFlags(cmd *cobra.Command, af *accountFlags) {
	cmd.Flags().StringVar(&af.email, "email", "", "Account email.")
	cmd.Flags().StringVar(&af.password, "password", "", "Account password.")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
}

func runAccount(cmd *cobra.Command, action account.Action, af *accountFlags, token string) error {
	e, err := loadEnv(cmd.Context())
	if err != nil {
		return output.HandleError(err)
	}
	s := account.Account{
		Action:   action,
		Name:     af.name,
		Email:    af.email,
		Password: af.password,
		Token:    token,
		JSON:     output.JSON,
		Auth:     e.auth,
		Out:      cmd.OutOrStdout(),
	}
	return output.HandleError(s.Do(cmd.Context()))
}
