package options

import (
	"github.com/spf13/cobra"

	"tableflip.dev/taskverse/pkg/view"
)

// ViewOptions
type ViewOptions struct {
	Filter string
	Sort   string
}

func AddViewArgs(cmd *cobra.Command, o *ViewOptions) {
	cmd.Flags().StringVarP(&o.Filter, "filter", "f", string(view.FilterAll),
		"Show all, pending or completed tasks.")
	cmd.Flags().StringVarP(&o.Sort, "sort", "s", string(view.SortDueDate),
		"Sort by dueDate, priority or createdAt.")
}

func (o *ViewOptions) Get() (view.Filter, view.SortKey, error) {
	f, err := view.ParseFilter(o.Filter)
	if err != nil {
		return "", "", err
	}
	k, err := view.ParseSortKey(o.Sort)
	if err != nil {
		return "", "", err
	}
	return f, k, nil
}
