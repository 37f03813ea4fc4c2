// Package seed provides the runner that loads demo tasks.
package seed

import (
	"context"
	"errors"
	"io"
	"time"

	"tableflip.dev/taskverse/pkg/app"
	"tableflip.dev/taskverse/pkg/printers"
	"tableflip.dev/taskverse/pkg/task"
)

type demo struct {
	title       string
	description string
	dueIn       int
	priority    task.Priority
	category    string
	completed   bool
	verified    bool
}

var demos = []demo{
	{"Complete DApp MVP", "Finish the initial version of the decentralized todo app", 16, task.PriorityHigh, "Development", false, false},
	{"Write Smart Contract Tests", "Create comprehensive test suite for the TaskManager contract", 5, task.PriorityMedium, "Blockchain", false, false},
	{"Design Analytics Dashboard", "Create UI for the task completion analytics dashboard", 10, task.PriorityMedium, "Design", false, false},
	{"Implement MetaMask Integration", "Connect the app with MetaMask wallet", 7, task.PriorityHigh, "Blockchain", true, true},
	{"Set up CI/CD Pipeline", "Configure GitHub Actions for automated deployment", 15, task.PriorityLow, "DevOps", false, false},
}

// Drafts returns the demo tasks with due dates relative to now.
func Drafts(now time.Time) []task.Draft {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	out := make([]task.Draft, 0, len(demos))
	for _, d := range demos {
		due := day.AddDate(0, 0, d.dueIn)
		draft := task.Draft{
			Title:              d.title,
			Description:        d.description,
			DueDate:            &due,
			Priority:           d.priority,
			Category:           d.category,
			BlockchainVerified: d.verified,
		}
		if d.completed {
			draft.Status = task.StatusCompleted
		}
		out = append(out, draft)
	}
	return out
}

// Seed adds the demo tasks. Unless Force is set it refuses to touch a
// collection that already has tasks.
type Seed struct {
	Force  bool
	ShowID bool
	Tasks  *app.TaskService
	Out    io.Writer
}

func (n *Seed) Do(ctx context.Context) error {
	if n.Tasks == nil {
		return errors.New("can not seed, no task service")
	}
	if !n.Force && len(n.Tasks.State().Tasks) > 0 {
		return errors.New("tasks already exist, use --force to add the demo tasks anyway")
	}
	added := make([]task.Task, 0, len(demos))
	for _, d := range Drafts(n.Tasks.Now()) {
		t, err := n.Tasks.Add(ctx, d)
		if err != nil {
			return err
		}
		added = append(added, t)
	}

	pp := printers.PrettyPrint{ShowID: n.ShowID, Out: n.Out}
	pp.NewLine()
	pp.TitleWithCount("Seeded", len(added))
	pp.Tasks(added...)
	return nil
}
