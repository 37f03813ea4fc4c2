// Package view derives the filtered and sorted projection of a task
// collection. Every function returns a fresh slice and never reorders or
// mutates its input.
package view

import (
	"fmt"
	"sort"
	"strings"

	"tableflip.dev/taskverse/pkg/task"
)

// Filter selects which tasks appear in a view.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterPending   Filter = "pending"
	FilterCompleted Filter = "completed"
)

// AllFilters returns the supported filters.
func AllFilters() []Filter {
	return []Filter{FilterAll, FilterPending, FilterCompleted}
}

// ParseFilter converts raw input to a Filter. Empty input means all.
func ParseFilter(raw string) (Filter, error) {
	f := Filter(strings.ToLower(strings.TrimSpace(raw)))
	if f == "" {
		return FilterAll, nil
	}
	for _, candidate := range AllFilters() {
		if candidate == f {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: unknown filter %q", task.ErrValidation, raw)
}

// SortKey selects the ordering of a view.
type SortKey string

const (
	SortDueDate   SortKey = "dueDate"
	SortPriority  SortKey = "priority"
	SortCreatedAt SortKey = "createdAt"
)

// AllSortKeys returns the supported sort keys.
func AllSortKeys() []SortKey {
	return []SortKey{SortDueDate, SortPriority, SortCreatedAt}
}

// ParseSortKey converts raw input to a SortKey, ignoring case. Empty input
// means dueDate.
func ParseSortKey(raw string) (SortKey, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return SortDueDate, nil
	}
	for _, candidate := range AllSortKeys() {
		if strings.EqualFold(string(candidate), trimmed) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: unknown sort %q", task.ErrValidation, raw)
}

// Matches reports whether t passes the filter.
func (f Filter) Matches(t task.Task) bool {
	switch f {
	case FilterPending:
		return t.Status == task.StatusPending
	case FilterCompleted:
		return t.Status == task.StatusCompleted
	default:
		return true
	}
}

// Filtered returns the tasks that pass f, in input order.
func Filtered(tasks []task.Task, f Filter) []task.Task {
	out := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Matches(t) {
			out = append(out, t.Clone())
		}
	}
	return out
}

// Sorted returns a stably sorted copy of tasks. Unknown keys keep input order.
func Sorted(tasks []task.Task, key SortKey) []task.Task {
	out := task.CloneAll(tasks)
	if out == nil {
		out = []task.Task{}
	}
	less := lessFor(key)
	if less == nil {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i], out[j])
	})
	return out
}

// Apply filters and then sorts.
func Apply(tasks []task.Task, f Filter, key SortKey) []task.Task {
	return Sorted(Filtered(tasks, f), key)
}

func lessFor(key SortKey) func(a, b task.Task) bool {
	switch key {
	case SortDueDate:
		return byDueDate
	case SortPriority:
		return byPriority
	case SortCreatedAt:
		return byCreatedAt
	default:
		return nil
	}
}

// byDueDate puts earlier due dates first and tasks without one last.
func byDueDate(a, b task.Task) bool {
	switch {
	case a.HasDueDate() && b.HasDueDate():
		return a.DueDate.Before(b.DueDate.Time)
	case a.HasDueDate():
		return true
	default:
		return false
	}
}

func byPriority(a, b task.Task) bool {
	return a.Priority.Rank() > b.Priority.Rank()
}

func byCreatedAt(a, b task.Task) bool {
	return a.CreatedAt.After(b.CreatedAt.Time)
}
