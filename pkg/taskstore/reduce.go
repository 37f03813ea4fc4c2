// Package taskstore owns the canonical task collection and its derived view.
package taskstore

import (
	"errors"
	"fmt"
	"time"

	"tableflip.dev/taskverse/pkg/analytics"
	"tableflip.dev/taskverse/pkg/task"
	"tableflip.dev/taskverse/pkg/view"
)

// ErrNotFound is returned when an action references an unknown task id.
var ErrNotFound = errors.New("taskstore: task not found")

// State is an immutable snapshot of the store. View is always recomputed from
// Tasks, Filter and Sort.
type State struct {
	Tasks     []task.Task
	View      []task.Task
	Filter    view.Filter
	Sort      view.SortKey
	Loading   bool
	Error     string
	AITip     string
	Analytics *analytics.Summary
}

// Initial is the empty state: filter all, sorted by due date.
func Initial() State {
	return State{
		Tasks:  []task.Task{},
		View:   []task.Task{},
		Filter: view.FilterAll,
		Sort:   view.SortDueDate,
	}
}

// Find returns the task with id.
func (s State) Find(id string) (task.Task, bool) {
	if i := indexOf(s.Tasks, id); i >= 0 {
		return s.Tasks[i].Clone(), true
	}
	return task.Task{}, false
}

// Clone deep copies the state.
func (s State) Clone() State {
	s.Tasks = task.CloneAll(s.Tasks)
	s.View = task.CloneAll(s.View)
	if s.Analytics != nil {
		a := *s.Analytics
		a.CategoryCounts = make(map[string]int, len(s.Analytics.CategoryCounts))
		for k, v := range s.Analytics.CategoryCounts {
			a.CategoryCounts[k] = v
		}
		a.WeeklyCompletion = append([]analytics.DayCount(nil), s.Analytics.WeeklyCompletion...)
		s.Analytics = &a
	}
	return s
}

// Reduce applies a to s and returns the next state. It never mutates s.
// Expected failures (unknown id, invalid input) return s unchanged together
// with an error. Deleting an unknown id is a no-op.
func Reduce(s State, a Action) (State, error) {
	switch a.Kind {
	case ActionFetchRequest:
		s.Loading = true
		s.Error = ""
		return s, nil

	case ActionFetchSuccess:
		if err := checkUnique(a.Tasks); err != nil {
			return s, err
		}
		s.Loading = false
		s.Error = ""
		return s.withTasks(task.CloneAll(a.Tasks)), nil

	case ActionFetchFailure:
		s.Loading = false
		s.Error = a.Message
		return s, nil

	case ActionAdd:
		t := a.Task.Clone()
		if err := t.Validate(); err != nil {
			return s, err
		}
		if indexOf(s.Tasks, t.ID) >= 0 {
			return s, fmt.Errorf("%w: duplicate id %q", task.ErrValidation, t.ID)
		}
		if t.UpdatedAt.Before(t.CreatedAt.Time) {
			t.UpdatedAt = t.CreatedAt
		}
		tasks := append(task.CloneAll(s.Tasks), t)
		return s.withTasks(tasks), nil

	case ActionUpdate:
		i := indexOf(s.Tasks, a.Task.ID)
		if i < 0 {
			return s, fmt.Errorf("%w: %q", ErrNotFound, a.Task.ID)
		}
		t := a.Task.Clone()
		if err := t.Validate(); err != nil {
			return s, err
		}
		prev := s.Tasks[i]
		t.CreatedAt = prev.CreatedAt
		t.BlockchainVerified = t.BlockchainVerified || prev.BlockchainVerified
		t.UpdatedAt = task.Timestamp{Time: bump(prev.UpdatedAt.Time, a.At)}
		tasks := task.CloneAll(s.Tasks)
		tasks[i] = t
		return s.withTasks(tasks), nil

	case ActionDelete:
		i := indexOf(s.Tasks, a.ID)
		if i < 0 {
			return s, nil
		}
		tasks := make([]task.Task, 0, len(s.Tasks)-1)
		tasks = append(tasks, task.CloneAll(s.Tasks[:i])...)
		tasks = append(tasks, task.CloneAll(s.Tasks[i+1:])...)
		return s.withTasks(tasks), nil

	case ActionComplete:
		i := indexOf(s.Tasks, a.ID)
		if i < 0 {
			return s, fmt.Errorf("%w: %q", ErrNotFound, a.ID)
		}
		tasks := task.CloneAll(s.Tasks)
		tasks[i].Status = tasks[i].Status.Toggle()
		tasks[i].UpdatedAt = task.Timestamp{Time: bump(tasks[i].UpdatedAt.Time, a.At)}
		return s.withTasks(tasks), nil

	case ActionVerify:
		i := indexOf(s.Tasks, a.ID)
		if i < 0 {
			return s, fmt.Errorf("%w: %q", ErrNotFound, a.ID)
		}
		tasks := task.CloneAll(s.Tasks)
		tasks[i].BlockchainVerified = true
		return s.withTasks(tasks), nil

	case ActionSetFilter:
		f, err := view.ParseFilter(string(a.Filter))
		if err != nil {
			return s, err
		}
		s.Filter = f
		return s.withTasks(s.Tasks), nil

	case ActionSetSort:
		k, err := view.ParseSortKey(string(a.Sort))
		if err != nil {
			return s, err
		}
		s.Sort = k
		return s.withTasks(s.Tasks), nil

	case ActionSetAITip:
		s.AITip = a.Message
		return s, nil

	case ActionSetAnalytics:
		s.Analytics = a.Analytics
		return s, nil

	default:
		return s, fmt.Errorf("%w: unknown action %d", task.ErrValidation, a.Kind)
	}
}

// withTasks installs tasks as the canonical collection and recomputes View
// from scratch.
func (s State) withTasks(tasks []task.Task) State {
	if tasks == nil {
		tasks = []task.Task{}
	}
	s.Tasks = tasks
	s.View = view.Apply(tasks, s.Filter, s.Sort)
	return s
}

// bump returns now, or prev plus one nanosecond when the clock has not moved
// past prev, so updatedAt strictly increases.
func bump(prev, now time.Time) time.Time {
	if now.After(prev) {
		return now
	}
	return prev.Add(time.Nanosecond)
}

func indexOf(tasks []task.Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func checkUnique(tasks []task.Task) error {
	seen := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		if _, ok := seen[t.ID]; ok {
			return fmt.Errorf("%w: duplicate id %q", task.ErrValidation, t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return nil
}
