package app

import (
	"sort"
	"time"

	"tableflip.dev/taskverse/pkg/task"
)

// ReportItem captures a completed task and the time it was completed.
type ReportItem struct {
	Task        task.Task `json:"task"`
	CompletedAt time.Time `json:"completedAt"`
}

// ReportSection groups completed tasks by category.
type ReportSection struct {
	Category string       `json:"category"`
	Tasks    []ReportItem `json:"tasks"`
}

// ReportResult is a completed-tasks report for a time window.
type ReportResult struct {
	Since    time.Time       `json:"since"`
	Until    time.Time       `json:"until"`
	Sections []ReportSection `json:"sections"`
	Total    int             `json:"total"`
}

// Uncategorized labels tasks without a category in reports.
const Uncategorized = "uncategorized"

// Report returns tasks completed between the bounds, grouped by category.
// A task's completion time is its last update.
func (s *TaskService) Report(since, until time.Time) ReportResult {
	if since.After(until) {
		since, until = until, since
	}
	grouped := make(map[string][]ReportItem)
	total := 0
	for _, t := range s.store.Snapshot().Tasks {
		if !t.Completed() {
			continue
		}
		at := t.UpdatedAt.Time
		if at.Before(since) || at.After(until) {
			continue
		}
		category := t.Category
		if category == "" {
			category = Uncategorized
		}
		grouped[category] = append(grouped[category], ReportItem{Task: t, CompletedAt: at})
		total++
	}

	categories := make([]string, 0, len(grouped))
	for c := range grouped {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	sections := make([]ReportSection, 0, len(categories))
	for _, c := range categories {
		items := grouped[c]
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].CompletedAt.Before(items[j].CompletedAt)
		})
		sections = append(sections, ReportSection{Category: c, Tasks: items})
	}
	return ReportResult{Since: since, Until: until, Sections: sections, Total: total}
}

// Overdue returns pending tasks whose due date is before now, most overdue
// first.
func (s *TaskService) Overdue(now time.Time) []task.Task {
	var out []task.Task
	for _, t := range s.store.Snapshot().Tasks {
		if t.Completed() || !t.HasDueDate() {
			continue
		}
		if t.DueDate.Before(now) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DueDate.Before(out[j].DueDate.Time)
	})
	return out
}
