// Package update provides the runner that edits task fields.
package update

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"tableflip.dev/taskverse/pkg/app"
	"tableflip.dev/taskverse/pkg/printers"
	"tableflip.dev/taskverse/pkg/task"
)

// Update replaces the set fields of a task. Nil fields are left unchanged.
type Update struct {
	ID          string
	Title       *string
	Description *string
	Priority    *task.Priority
	Category    *string
	Due         *time.Time
	ClearDue    bool
	JSON        bool

	Tasks *app.TaskService
	Out   io.Writer
}

func (n *Update) Do(ctx context.Context) error {
	if n.Tasks == nil {
		return errors.New("can not update, no task service")
	}
	t, ok := n.Tasks.Get(n.ID)
	if !ok {
		return fmt.Errorf("task %q not found", n.ID)
	}
	if n.Title != nil {
		t.Title = strings.TrimSpace(*n.Title)
	}
	if n.Description != nil {
		t.Description = *n.Description
	}
	if n.Priority != nil {
		t.Priority = *n.Priority
	}
	if n.Category != nil {
		t.Category = strings.TrimSpace(*n.Category)
	}
	switch {
	case n.ClearDue:
		t.DueDate = nil
	case n.Due != nil:
		t.DueDate = &task.Timestamp{Time: *n.Due}
	}

	updated, err := n.Tasks.Update(ctx, t)
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{ShowID: true, Out: n.Out}
	if n.JSON {
		return pp.JSON(updated)
	}
	pp.NewLine()
	pp.Title("Updated")
	pp.Tasks(updated)
	return nil
}
