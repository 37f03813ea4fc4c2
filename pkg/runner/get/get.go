// Package get provides the runner that lists tasks.
package get

import (
	"context"
	"errors"
	"io"
	"strings"

	"tableflip.dev/taskverse/pkg/app"
	"tableflip.dev/taskverse/pkg/printers"
	"tableflip.dev/taskverse/pkg/task"
	"tableflip.dev/taskverse/pkg/view"
)

type Get struct {
	ShowID bool
	JSON   bool
	Filter view.Filter
	Sort   view.SortKey

	Tasks *app.TaskService
	Out   io.Writer
}

// Do applies the filter and sort to the store and prints the view.
func (n *Get) Do(ctx context.Context) error {
	if n.Tasks == nil {
		return errors.New("can not get, no task service")
	}
	if _, err := n.Tasks.SetFilter(n.Filter); err != nil {
		return err
	}
	st, err := n.Tasks.SetSort(n.Sort)
	if err != nil {
		return err
	}

	pp := printers.PrettyPrint{ShowID: n.ShowID, Out: n.Out}
	if n.JSON {
		return pp.JSON(struct {
			Filter view.Filter  `json:"filter"`
			Sort   view.SortKey `json:"sort"`
			Tasks  []task.Task  `json:"tasks"`
		}{st.Filter, st.Sort, nonNil(st.View)})
	}

	pp.NewLine()
	pp.TitleWithCount(title(st.Filter), len(st.View))
	pp.Tasks(st.View...)
	return nil
}

func title(f view.Filter) string {
	if f == view.FilterAll {
		return "Tasks"
	}
	return strings.ToUpper(string(f[:1])) + string(f[1:])
}

func nonNil(tasks []task.Task) []task.Task {
	if tasks == nil {
		return []task.Task{}
	}
	return tasks
}
