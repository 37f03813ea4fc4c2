package commands

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/taskverse/pkg/store"
	"tableflip.dev/taskverse/pkg/task"
	"tableflip.dev/taskverse/pkg/view"
)

func addCompletions(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generates bash completion scripts",
		Long: `To load completion run

. <(taskverse completion)

To configure your bash shell to load completions for each session add to your bashrc

# ~/.bashrc or ~/.profile
. <(taskverse completion)
`,
		Run: func(cmd *cobra.Command, args []string) {
			_ = topLevel.GenBashCompletion(os.Stdout)
		},
	}

	topLevel.AddCommand(cmd)
}

func taskIDCompletions(cmd *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	e, err := loadEnv(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	ids := make([]string, 0)
	for _, t := range e.tasks.State().Tasks {
		if strings.HasPrefix(t.ID, toComplete) {
			ids = append(ids, t.ID+"\t"+t.Title)
		}
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}

func priorityCompletions(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	out := make([]string, 0, 3)
	for _, p := range task.AllPriorities() {
		out = append(out, string(p))
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func categoryCompletions(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return store.TaskTypes(), cobra.ShellCompDirectiveNoFileComp
}

func filterCompletions(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	out := make([]string, 0, 3)
	for _, f := range view.AllFilters() {
		out = append(out, string(f))
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func sortCompletions(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	out := make([]string, 0, 3)
	for _, k := range view.AllSortKeys() {
		out = append(out, string(k))
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
