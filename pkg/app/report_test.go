package app

import (
	"testing"
	"time"

	"tableflip.dev/taskverse/pkg/task"
	"tableflip.dev/taskverse/pkg/taskstore"
)

func reportFixture() *TaskService {
	at := func(day int) task.Timestamp {
		return task.Timestamp{Time: time.Date(2025, 4, day, 12, 0, 0, 0, time.UTC)}
	}
	due := func(day int) *task.Timestamp {
		ts := at(day)
		return &ts
	}
	st := taskstore.New(taskstore.WithTasks(
		task.Task{ID: "a", Title: "A", Status: task.StatusCompleted, Priority: task.PriorityLow, Category: "work", CreatedAt: at(1), UpdatedAt: at(10)},
		task.Task{ID: "b", Title: "B", Status: task.StatusCompleted, Priority: task.PriorityLow, CreatedAt: at(1), UpdatedAt: at(11)},
		task.Task{ID: "c", Title: "C", Status: task.StatusCompleted, Priority: task.PriorityLow, Category: "work", CreatedAt: at(1), UpdatedAt: at(2)},
		task.Task{ID: "d", Title: "D", Status: task.StatusPending, Priority: task.PriorityLow, DueDate: due(9), CreatedAt: at(1), UpdatedAt: at(1)},
		task.Task{ID: "e", Title: "E", Status: task.StatusPending, Priority: task.PriorityLow, DueDate: due(5), CreatedAt: at(1), UpdatedAt: at(1)},
		task.Task{ID: "f", Title: "F", Status: task.StatusPending, Priority: task.PriorityLow, DueDate: due(20), CreatedAt: at(1), UpdatedAt: at(1)},
	))
	return NewTaskService(st, nil)
}

func TestReportGroupsByCategory(t *testing.T) {
	s := reportFixture()
	until := time.Date(2025, 4, 12, 0, 0, 0, 0, time.UTC)
	since := time.Date(2025, 4, 8, 0, 0, 0, 0, time.UTC)
	res := s.Report(until, since)
	if !res.Since.Equal(since) {
		t.Fatalf("expected bounds swapped")
	}
	if res.Total != 2 || len(res.Sections) != 2 {
		t.Fatalf("unexpected report %+v", res)
	}
	if res.Sections[0].Category != Uncategorized || res.Sections[1].Category != "work" {
		t.Fatalf("unexpected section order %+v", res.Sections)
	}
	if res.Sections[1].Tasks[0].Task.ID != "a" {
		t.Fatalf("expected task a in work section")
	}
}

func TestOverdue(t *testing.T) {
	s := reportFixture()
	got := s.Overdue(time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC))
	if len(got) != 2 || got[0].ID != "e" || got[1].ID != "d" {
		t.Fatalf("unexpected overdue tasks %+v", got)
	}
}
