package task

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestDraftNormalizeDefaults(t *testing.T) {
	d, err := Draft{Title: "  Write tests  ", Category: " Dev "}.Normalize()
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if d.Title != "Write tests" {
		t.Fatalf("expected trimmed title, got %q", d.Title)
	}
	if d.Status != StatusPending {
		t.Fatalf("expected pending default, got %q", d.Status)
	}
	if d.Priority != PriorityMedium {
		t.Fatalf("expected medium default, got %q", d.Priority)
	}
	if d.Category != "Dev" {
		t.Fatalf("expected trimmed category, got %q", d.Category)
	}
}

func TestDraftNormalizeRejects(t *testing.T) {
	tests := map[string]Draft{
		"missing title":    {Title: "   "},
		"unknown priority": {Title: "a", Priority: "urgent"},
		"unknown status":   {Title: "a", Status: "archived"},
	}
	for name, d := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := d.Normalize(); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestPriorityRank(t *testing.T) {
	if PriorityHigh.Rank() != 3 || PriorityMedium.Rank() != 2 || PriorityLow.Rank() != 1 {
		t.Fatalf("unexpected ranks")
	}
	if Priority("other").Rank() != 0 {
		t.Fatalf("unknown priority should rank 0")
	}
}

func TestStatusToggle(t *testing.T) {
	if StatusPending.Toggle() != StatusCompleted {
		t.Fatalf("pending should toggle to completed")
	}
	if StatusCompleted.Toggle() != StatusPending {
		t.Fatalf("completed should toggle to pending")
	}
}

func TestCloneDoesNotShareDueDate(t *testing.T) {
	due := Timestamp{Time: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)}
	orig := Task{ID: "1", DueDate: &due}
	cp := orig.Clone()
	cp.DueDate.Time = cp.DueDate.AddDate(0, 0, 1)
	if !orig.DueDate.Equal(due.Time) {
		t.Fatalf("clone mutated original due date")
	}
}

func TestTaskJSONKeepsNanoseconds(t *testing.T) {
	created := time.Date(2025, 4, 15, 10, 0, 0, 123456789, time.UTC)
	in := Task{ID: "1", Title: "a", Status: StatusPending, Priority: PriorityLow,
		CreatedAt: Timestamp{Time: created}, UpdatedAt: Timestamp{Time: created}}
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out Task
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !out.CreatedAt.Equal(created) {
		t.Fatalf("expected %v, got %v", created, out.CreatedAt)
	}
	if out.DueDate != nil {
		t.Fatalf("expected no due date")
	}
}

func TestParseTimeAcceptsDates(t *testing.T) {
	got, err := ParseTime("2025-05-01")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Year() != 2025 || got.Month() != time.May || got.Day() != 1 {
		t.Fatalf("unexpected date %v", got)
	}
}
