// Package complete provides the runner logic for toggling task completion.
package complete

import (
	"context"
	"errors"
	"io"

	"tableflip.dev/taskverse/pkg/app"
	"tableflip.dev/taskverse/pkg/printers"
)

// Complete toggles a task between pending and completed.
type Complete struct {
	ID    string
	JSON  bool
	Tasks *app.TaskService
	Out   io.Writer
}

// Do executes the toggle for the configured task ID.
func (n *Complete) Do(ctx context.Context) error {
	if n.Tasks == nil {
		return errors.New("can not complete, no task service")
	}
	t, err := n.Tasks.Complete(ctx, n.ID)
	if err != nil {
		return err
	}

	pp := printers.PrettyPrint{ShowID: true, Out: n.Out}
	if n.JSON {
		return pp.JSON(t)
	}
	pp.NewLine()
	if t.Completed() {
		pp.Title("Completed")
	} else {
		pp.Title("Reopened")
	}
	pp.Tasks(t)
	return nil
}
