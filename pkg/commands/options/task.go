// Package options defines shared flag helpers for CLI commands.
package options

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/taskverse/pkg/task"
)

// TaskOptions captures the editable fields of a task.
type TaskOptions struct {
	Title       string
	Description string
	Priority    string
	Category    string
	High        bool
	Low         bool
}

func AddTaskArgs(cmd *cobra.Command, o *TaskOptions) {
	cmd.Flags().StringVarP(&o.Description, "description", "d", "",
		"Longer description of the task.")
	cmd.Flags().StringVarP(&o.Priority, "priority", "p", "",
		"Priority: low, medium or high.")
	cmd.Flags().StringVarP(&o.Category, "category", "c", "",
		"Category such as work, personal, study or health.")
	cmd.Flags().BoolVar(&o.High, "high", false,
		"Shorthand for --priority=high.")
	cmd.Flags().BoolVar(&o.Low, "low", false,
		"Shorthand for --priority=low.")
}

// GetPriority resolves the priority flags. Empty means the caller's default.
func (o *TaskOptions) GetPriority() (task.Priority, error) {
	raw := strings.TrimSpace(o.Priority)
	switch {
	case o.High && o.Low:
		return "", fmt.Errorf("--high and --low are mutually exclusive")
	case (o.High || o.Low) && raw != "":
		return "", fmt.Errorf("--priority cannot be combined with --high or --low")
	case o.High:
		return task.PriorityHigh, nil
	case o.Low:
		return task.PriorityLow, nil
	case raw == "":
		return "", nil
	}
	return task.ParsePriority(raw)
}
