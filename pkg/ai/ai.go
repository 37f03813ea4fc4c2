// Package ai suggests an order for tasks along with a motivational tip.
package ai

import (
	"context"
	"time"

	"tableflip.dev/taskverse/pkg/task"
	"tableflip.dev/taskverse/pkg/view"
)

// DefaultTip is the tip the canned prioritizer returns.
const DefaultTip = "Focus on completing your high-priority blockchain tasks first to maintain momentum on your project. Remember: small consistent steps lead to big accomplishments!"

// Result is a prioritization response. Callers only surface the tip; the
// suggested order is informational.
type Result struct {
	PrioritizedTasks []task.Task `json:"prioritizedTasks"`
	MotivationalTip  string      `json:"motivationalTip"`
}

// Prioritizer ranks tasks.
type Prioritizer interface {
	Prioritize(ctx context.Context, tasks []task.Task) (Result, error)
}

// Canned is a Prioritizer that orders pending tasks by priority and then by
// due date, and always returns the same tip.
type Canned struct {
	Tip     string
	Latency time.Duration
}

// NewCanned returns a Canned prioritizer with DefaultTip.
func NewCanned(latency time.Duration) *Canned {
	return &Canned{Tip: DefaultTip, Latency: latency}
}

func (c *Canned) Prioritize(ctx context.Context, tasks []task.Task) (Result, error) {
	if c.Latency > 0 {
		t := time.NewTimer(c.Latency)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}
	pending := view.Filtered(tasks, view.FilterPending)
	ordered := view.Sorted(view.Sorted(pending, view.SortDueDate), view.SortPriority)
	tip := c.Tip
	if tip == "" {
		tip = DefaultTip
	}
	return Result{PrioritizedTasks: ordered, MotivationalTip: tip}, nil
}

var _ Prioritizer = (*Canned)(nil)
