// Package insight provides runners that summarise the task collection:
// assistant advice, analytics, completion reports and overdue tasks.
package insight

import (
	"context"
	"errors"
	"io"
	"time"

	"tableflip.dev/taskverse/pkg/app"
	"tableflip.dev/taskverse/pkg/printers"
	"tableflip.dev/taskverse/pkg/task"
)

// Prioritize prints the assistant's suggested order and tip.
type Prioritize struct {
	ShowID bool
	JSON   bool
	Tasks  *app.TaskService
	Out    io.Writer
}

func (n *Prioritize) Do(ctx context.Context) error {
	if n.Tasks == nil {
		return errors.New("can not prioritize, no task service")
	}
	res, err := n.Tasks.Prioritize(ctx)
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{ShowID: n.ShowID, Out: n.Out}
	if n.JSON {
		return pp.JSON(res)
	}
	pp.NewLine()
	pp.TitleWithCount("Suggested order", len(res.PrioritizedTasks))
	pp.Tasks(res.PrioritizedTasks...)
	pp.Tip(res.MotivationalTip)
	return nil
}

// Analytics prints completion statistics and the weekly chart.
type Analytics struct {
	JSON  bool
	Tasks *app.TaskService
	Out   io.Writer
}

func (n *Analytics) Do(ctx context.Context) error {
	if n.Tasks == nil {
		return errors.New("can not compute analytics, no task service")
	}
	sum, err := n.Tasks.Analytics(ctx)
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{Out: n.Out}
	if n.JSON {
		return pp.JSON(sum)
	}
	pp.NewLine()
	pp.Analytics(sum)
	return nil
}

// Report prints tasks completed in the window ending at Until.
type Report struct {
	Window time.Duration
	Until  time.Time
	ShowID bool
	JSON   bool
	Tasks  *app.TaskService
	Out    io.Writer
}

func (n *Report) Do(_ context.Context) error {
	if n.Tasks == nil {
		return errors.New("can not report, no task service")
	}
	until := n.Until
	if until.IsZero() {
		until = n.Tasks.Now()
	}
	window := n.Window
	if window <= 0 {
		window = 7 * 24 * time.Hour
	}
	r := n.Tasks.Report(until.Add(-window), until)

	pp := printers.PrettyPrint{ShowID: n.ShowID, Out: n.Out}
	if n.JSON {
		return pp.JSON(r)
	}
	pp.NewLine()
	pp.TitleWithCount("Completed", r.Total)
	pp.Report(r)
	return nil
}

// Overdue prints pending tasks whose due date has passed.
type Overdue struct {
	Now    time.Time
	ShowID bool
	JSON   bool
	Tasks  *app.TaskService
	Out    io.Writer
}

func (n *Overdue) Do(_ context.Context) error {
	if n.Tasks == nil {
		return errors.New("can not list overdue tasks, no task service")
	}
	now := n.Now
	if now.IsZero() {
		now = n.Tasks.Now()
	}
	late := n.Tasks.Overdue(now)

	pp := printers.PrettyPrint{ShowID: n.ShowID, Out: n.Out}
	if n.JSON {
		if late == nil {
			late = []task.Task{}
		}
		return pp.JSON(late)
	}
	pp.NewLine()
	pp.TitleWithCount("Overdue", len(late))
	pp.Tasks(late...)
	return nil
}
