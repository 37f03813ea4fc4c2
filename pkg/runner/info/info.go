// Package info prints the resolved configuration.
package info

import (
	"context"
	"errors"
	"io"
	"os"

	"tableflip.dev/taskverse/pkg/app"
	"tableflip.dev/taskverse/pkg/printers"
	"tableflip.dev/taskverse/pkg/store"
	"tableflip.dev/taskverse/pkg/view"
)

type Info struct {
	Settings *store.Settings
	Tasks    *app.TaskService
	Out      io.Writer
}

func (n *Info) Do(_ context.Context) error {
	if n.Settings == nil {
		return errors.New("can not show info, no settings")
	}
	pp := printers.PrettyPrint{Out: n.Out}
	pp.NewLine()

	if override := os.Getenv("TASKVERSE_CONFIG_PATH"); override != "" {
		pp.Field("TASKVERSE_CONFIG_PATH", override)
	} else {
		pp.Field("TASKVERSE_CONFIG_PATH", "not set")
	}
	pp.Field("Store", n.Settings.BasePath())
	pp.Field("Log level", n.Settings.LogLevel)
	pp.Field("Latency", n.Settings.Latency.String())
	pp.Field("Ledger network", n.Settings.ChainID)
	pp.Field("Ledger contract", n.Settings.LedgerContract)

	if n.Tasks != nil {
		st := n.Tasks.State()
		pp.NewLine()
		pp.TitleWithCount("Stored", len(st.Tasks))
		pp.TitleWithCount("Pending", len(view.Filtered(st.Tasks, view.FilterPending)))
		pp.TitleWithCount("Completed", len(view.Filtered(st.Tasks, view.FilterCompleted)))
	}
	return nil
}
