package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/taskverse/pkg/app"
	"tableflip.dev/taskverse/pkg/task"
	"tableflip.dev/taskverse/pkg/taskstore"
)

var clock = time.Date(2025, 4, 15, 9, 0, 0, 0, time.UTC)

func newService(t *testing.T) *app.TaskService {
	t.Helper()
	svc := app.NewTaskService(taskstore.New(taskstore.WithClock(func() time.Time { return clock })), nil)
	yesterday := clock.AddDate(0, 0, -1)
	nextWeek := clock.AddDate(0, 0, 7)
	for _, d := range []task.Draft{
		{Title: "renew passport", DueDate: &yesterday, Category: "Personal"},
		{Title: "plan sprint", DueDate: &nextWeek, Category: "Work"},
		{Title: "file taxes", Status: task.StatusCompleted, Category: "Personal"},
	} {
		if _, err := svc.Add(context.Background(), d); err != nil {
			t.Fatalf("add %q: %v", d.Title, err)
		}
	}
	return svc
}

func TestOverdue(t *testing.T) {
	color.NoColor = true
	svc := newService(t)
	var out bytes.Buffer
	if err := (&Overdue{Tasks: svc, Out: &out}).Do(context.Background()); err != nil {
		t.Fatalf("Do: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "renew passport") || strings.Contains(text, "plan sprint") {
		t.Fatalf("unexpected output\n%s", text)
	}
}

func TestReportJSON(t *testing.T) {
	svc := newService(t)
	var out bytes.Buffer
	r := &Report{Window: 24 * time.Hour, Until: clock.Add(time.Hour), JSON: true, Tasks: svc, Out: &out}
	if err := r.Do(context.Background()); err != nil {
		t.Fatalf("Do: %v", err)
	}
	var got app.ReportResult
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, out.String())
	}
	if got.Total != 1 || len(got.Sections) != 1 || got.Sections[0].Category != "Personal" {
		t.Fatalf("unexpected report %+v", got)
	}
}

func TestReportOutsideWindow(t *testing.T) {
	svc := newService(t)
	var out bytes.Buffer
	r := &Report{Window: time.Hour, Until: clock.AddDate(0, 0, 2), JSON: true, Tasks: svc, Out: &out}
	if err := r.Do(context.Background()); err != nil {
		t.Fatalf("Do: %v", err)
	}
	var got app.ReportResult
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Total != 0 {
		t.Fatalf("expected empty report, got %+v", got)
	}
}

func TestAnalyticsJSON(t *testing.T) {
	svc := newService(t)
	var out bytes.Buffer
	if err := (&Analytics{JSON: true, Tasks: svc, Out: &out}).Do(context.Background()); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if !strings.Contains(out.String(), `"totalTasks": 3`) {
		t.Fatalf("unexpected output\n%s", out.String())
	}
}
