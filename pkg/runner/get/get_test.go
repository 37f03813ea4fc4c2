package get

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/fatih/color"

	"tableflip.dev/taskverse/pkg/app"
	"tableflip.dev/taskverse/pkg/task"
	"tableflip.dev/taskverse/pkg/taskstore"
	"tableflip.dev/taskverse/pkg/view"
)

func newService(t *testing.T) *app.TaskService {
	t.Helper()
	svc := app.NewTaskService(taskstore.New(), nil)
	for _, d := range []task.Draft{
		{Title: "write report", Priority: task.PriorityLow},
		{Title: "ship release", Priority: task.PriorityHigh, Status: task.StatusCompleted},
		{Title: "book flights", Priority: task.PriorityHigh},
	} {
		if _, err := svc.Add(context.Background(), d); err != nil {
			t.Fatalf("add %q: %v", d.Title, err)
		}
	}
	return svc
}

func TestGetJSON(t *testing.T) {
	svc := newService(t)
	var out bytes.Buffer
	g := &Get{JSON: true, Filter: view.FilterPending, Sort: view.SortPriority, Tasks: svc, Out: &out}
	if err := g.Do(context.Background()); err != nil {
		t.Fatalf("Do: %v", err)
	}

	var got struct {
		Filter view.Filter  `json:"filter"`
		Sort   view.SortKey `json:"sort"`
		Tasks  []task.Task  `json:"tasks"`
	}
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, out.String())
	}
	if got.Filter != view.FilterPending || got.Sort != view.SortPriority {
		t.Fatalf("unexpected view %q/%q", got.Filter, got.Sort)
	}
	if len(got.Tasks) != 2 || got.Tasks[0].Title != "book flights" {
		t.Fatalf("unexpected tasks %+v", got.Tasks)
	}
	if st := svc.State(); st.Filter != view.FilterPending {
		t.Fatalf("filter not stored, got %q", st.Filter)
	}
}

func TestGetEmptyJSONIsArray(t *testing.T) {
	svc := app.NewTaskService(taskstore.New(), nil)
	var out bytes.Buffer
	g := &Get{JSON: true, Filter: view.FilterCompleted, Sort: view.SortDueDate, Tasks: svc, Out: &out}
	if err := g.Do(context.Background()); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if !bytes.Contains(out.Bytes(), []byte(`"tasks": []`)) {
		t.Fatalf("expected empty array, got\n%s", out.String())
	}
}

func TestGetText(t *testing.T) {
	color.NoColor = true
	svc := newService(t)
	var out bytes.Buffer
	g := &Get{Filter: view.FilterCompleted, Sort: view.SortDueDate, Tasks: svc, Out: &out}
	if err := g.Do(context.Background()); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if !bytes.Contains(out.Bytes(), []byte("ship release")) || bytes.Contains(out.Bytes(), []byte("book flights")) {
		t.Fatalf("unexpected output\n%s", out.String())
	}
}

func TestGetRequiresService(t *testing.T) {
	if err := (&Get{}).Do(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
