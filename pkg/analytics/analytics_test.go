package analytics

import (
	"testing"
	"time"

	"tableflip.dev/taskverse/pkg/task"
)

func TestComputeCounts(t *testing.T) {
	now := time.Date(2025, 4, 16, 12, 0, 0, 0, time.UTC) // Wednesday
	at := func(d time.Time) task.Timestamp { return task.Timestamp{Time: d} }
	tasks := []task.Task{
		{ID: "1", Status: task.StatusPending, Category: "Dev", CreatedAt: at(now), UpdatedAt: at(now)},
		{ID: "2", Status: task.StatusCompleted, Category: "Dev", CreatedAt: at(now.AddDate(0, 0, -1)), UpdatedAt: at(now)},
		{ID: "3", Status: task.StatusCompleted, CreatedAt: at(now.AddDate(0, 0, -10)), UpdatedAt: at(now.AddDate(0, 0, -2))},
		{ID: "4", Status: task.StatusPending, Category: "Ops", CreatedAt: at(now.AddDate(0, 0, -10)), UpdatedAt: at(now.AddDate(0, 0, -10))},
	}

	s := Compute(tasks, now)
	if s.TotalTasks != 4 || s.CompletedTasks != 2 || s.PendingTasks != 2 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	if s.CompletionRate != 50 {
		t.Fatalf("expected 50%% completion, got %v", s.CompletionRate)
	}
	if s.CategoryCounts["Dev"] != 2 || s.CategoryCounts["Ops"] != 1 {
		t.Fatalf("unexpected categories: %v", s.CategoryCounts)
	}
	if len(s.WeeklyCompletion) != 7 {
		t.Fatalf("expected 7 days, got %d", len(s.WeeklyCompletion))
	}
	last := s.WeeklyCompletion[6]
	if last.Day != "Wed" || last.Completed != 1 || last.Created != 1 {
		t.Fatalf("unexpected today bucket: %+v", last)
	}
	yesterday := s.WeeklyCompletion[5]
	if yesterday.Day != "Tue" || yesterday.Created != 1 || yesterday.Completed != 0 {
		t.Fatalf("unexpected yesterday bucket: %+v", yesterday)
	}
	if s.WeeklyCompletion[4].Completed != 1 {
		t.Fatalf("expected completion two days ago: %+v", s.WeeklyCompletion[4])
	}
	if s.WeeklyCompletion[0].Day != "Thu" {
		t.Fatalf("expected window to start on Thu, got %s", s.WeeklyCompletion[0].Day)
	}
}

func TestComputeEmpty(t *testing.T) {
	s := Compute(nil, time.Now())
	if s.CompletionRate != 0 || s.TotalTasks != 0 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if s.CategoryCounts == nil {
		t.Fatalf("expected non-nil category map")
	}
}
