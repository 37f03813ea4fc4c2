// Package remove provides the runner that deletes tasks.
package remove

import (
	"context"
	"errors"
	"io"

	"tableflip.dev/taskverse/pkg/app"
	"tableflip.dev/taskverse/pkg/printers"
)

// Remove deletes tasks by id. Unknown ids are ignored.
type Remove struct {
	IDs   []string
	Tasks *app.TaskService
	Out   io.Writer
}

func (n *Remove) Do(ctx context.Context) error {
	if n.Tasks == nil {
		return errors.New("can not delete, no task service")
	}
	for _, id := range n.IDs {
		if err := n.Tasks.Delete(ctx, id); err != nil {
			return err
		}
	}

	pp := printers.PrettyPrint{Out: n.Out}
	st := n.Tasks.State()
	pp.NewLine()
	pp.TitleWithCount("Remaining", len(st.Tasks))
	return nil
}
