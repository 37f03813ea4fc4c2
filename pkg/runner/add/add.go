// Package add provides the runner that creates tasks.
package add

import (
	"context"
	"errors"
	"fmt"
	"io"

	"tableflip.dev/taskverse/pkg/app"
	"tableflip.dev/taskverse/pkg/printers"
	"tableflip.dev/taskverse/pkg/task"
	"tableflip.dev/taskverse/pkg/view"
)

// Add creates a task and optionally anchors its title hash on the ledger.
type Add struct {
	Draft  task.Draft
	Anchor bool
	JSON   bool
	ShowID bool

	Tasks *app.TaskService
	Chain *app.ChainService
	Out   io.Writer
}

type result struct {
	Task   task.Task `json:"task"`
	TxHash string    `json:"txHash,omitempty"`
}

// Do adds the task and reprints the pending list.
func (n *Add) Do(ctx context.Context) error {
	if n.Tasks == nil {
		return errors.New("can not add, no task service")
	}
	if n.Anchor && n.Chain == nil {
		return errors.New("can not anchor, no wallet")
	}

	t, err := n.Tasks.Add(ctx, n.Draft)
	if err != nil {
		return err
	}
	res := result{Task: t}
	if n.Anchor {
		if _, err := n.Chain.Ready(ctx); err != nil {
			return err
		}
		tx, err := n.Chain.AddTask(ctx, t.ID, t.Title)
		if err != nil {
			return fmt.Errorf("task %s added but not anchored: %w", t.ID, err)
		}
		res.TxHash = tx.Hex()
	}

	pp := printers.PrettyPrint{ShowID: n.ShowID, Out: n.Out}
	if n.JSON {
		return pp.JSON(res)
	}

	pending := view.Filtered(n.Tasks.State().Tasks, view.FilterPending)
	pp.NewLine()
	pp.TitleWithCount("Pending", len(pending))
	pp.Tasks(t)
	if res.TxHash != "" {
		pp.Field("Anchored", res.TxHash)
	}
	return nil
}
