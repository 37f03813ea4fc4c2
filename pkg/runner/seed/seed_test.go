package seed

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/taskverse/pkg/app"
	"tableflip.dev/taskverse/pkg/task"
	"tableflip.dev/taskverse/pkg/taskstore"
)

func TestDraftsAreRelativeToNow(t *testing.T) {
	now := time.Date(2025, 4, 15, 17, 30, 0, 0, time.UTC)
	drafts := Drafts(now)
	if len(drafts) != 5 {
		t.Fatalf("expected 5 drafts, got %d", len(drafts))
	}
	first := drafts[0]
	if want := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC); !first.DueDate.Equal(want) {
		t.Fatalf("due = %v, want %v", first.DueDate, want)
	}
	completed := 0
	for _, d := range drafts {
		if d.Status == task.StatusCompleted {
			completed++
			if !d.BlockchainVerified {
				t.Fatalf("completed demo %q should be verified", d.Title)
			}
		}
	}
	if completed != 1 {
		t.Fatalf("expected one completed demo, got %d", completed)
	}
}

func TestSeedRefusesNonEmptyCollection(t *testing.T) {
	color.NoColor = true
	ctx := context.Background()
	svc := app.NewTaskService(taskstore.New(), nil)
	var out bytes.Buffer

	if err := (&Seed{Tasks: svc, Out: &out}).Do(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if got := len(svc.State().Tasks); got != 5 {
		t.Fatalf("expected 5 tasks, got %d", got)
	}
	if !strings.Contains(out.String(), "Complete DApp MVP") {
		t.Fatalf("output missing demo title:\n%s", out.String())
	}

	if err := (&Seed{Tasks: svc, Out: &out}).Do(ctx); err == nil {
		t.Fatal("expected second seed without force to fail")
	}
	if err := (&Seed{Force: true, Tasks: svc, Out: &out}).Do(ctx); err != nil {
		t.Fatalf("forced seed: %v", err)
	}
	if got := len(svc.State().Tasks); got != 10 {
		t.Fatalf("expected 10 tasks, got %d", got)
	}
}
