package mcp

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"tableflip.dev/taskverse/pkg/app"
	"tableflip.dev/taskverse/pkg/ledger"
	"tableflip.dev/taskverse/pkg/task"
	"tableflip.dev/taskverse/pkg/taskstore"
	"tableflip.dev/taskverse/pkg/wallet"
	"tableflip.dev/taskverse/pkg/wallet/simulated"
)

const account = "0x52908400098527886E0F7030069857D2E4169EE7"

func newTestService(t *testing.T, withChain bool) *Service {
	t.Helper()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	n := 0
	st := taskstore.New(
		taskstore.WithClock(func() time.Time { return now }),
		taskstore.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("t%d", n)
		}),
	)
	tasks := app.NewTaskService(st, nil)
	if !withChain {
		return NewService(tasks, nil)
	}
	contract, err := ledger.NewContract()
	if err != nil {
		t.Fatal(err)
	}
	provider := simulated.New(simulated.Config{Installed: true, Accounts: []string{account}, ChainID: "0x1", Balance: "2"})
	chain := app.NewChainService(wallet.NewMachine(provider), contract, tasks)
	return NewService(tasks, chain)
}

func TestServiceAddTaskDefaults(t *testing.T) {
	svc := newTestService(t, false)
	dto, err := svc.AddTask(context.Background(), AddTaskOptions{Title: "  Write report ", Due: "2024-03-05"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if dto.Title != "Write report" {
		t.Fatalf("title = %q", dto.Title)
	}
	if dto.Priority != string(task.PriorityMedium) || dto.Status != string(task.StatusPending) {
		t.Fatalf("defaults = %s/%s", dto.Priority, dto.Status)
	}
	if dto.DueISO != "2024-03-05T00:00:00Z" {
		t.Fatalf("due = %q", dto.DueISO)
	}
}

func TestServiceAddTaskRejectsBadInput(t *testing.T) {
	svc := newTestService(t, false)
	ctx := context.Background()
	if _, err := svc.AddTask(ctx, AddTaskOptions{Title: " "}); err == nil {
		t.Fatalf("expected missing title to fail")
	}
	if _, err := svc.AddTask(ctx, AddTaskOptions{Title: "x", Due: "soon"}); err == nil {
		t.Fatalf("expected bad due date to fail")
	}
	if _, err := svc.AddTask(ctx, AddTaskOptions{Title: "x", Priority: "urgent"}); err == nil {
		t.Fatalf("expected unknown priority to fail")
	}
}

func TestServiceListTasksFilterAndSort(t *testing.T) {
	svc := newTestService(t, false)
	ctx := context.Background()
	for _, opts := range []AddTaskOptions{
		{Title: "low", Priority: "low"},
		{Title: "high", Priority: "high"},
		{Title: "medium"},
	} {
		if _, err := svc.AddTask(ctx, opts); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := svc.CompleteTask(ctx, "t1"); err != nil {
		t.Fatal(err)
	}

	list, err := svc.ListTasks(ctx, "pending", "priority")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.Count != 2 || list.Total != 3 {
		t.Fatalf("count/total = %d/%d", list.Count, list.Total)
	}
	if list.Tasks[0].Title != "high" || list.Tasks[1].Title != "medium" {
		t.Fatalf("order = %s,%s", list.Tasks[0].Title, list.Tasks[1].Title)
	}
	if st := svc.Tasks.State(); st.Filter != "all" {
		t.Fatalf("shared filter changed to %q", st.Filter)
	}

	if _, err := svc.ListTasks(ctx, "done", ""); err == nil {
		t.Fatalf("expected unknown filter to fail")
	}
}

func TestServiceCompleteAndDelete(t *testing.T) {
	svc := newTestService(t, false)
	ctx := context.Background()
	if _, err := svc.AddTask(ctx, AddTaskOptions{Title: "a"}); err != nil {
		t.Fatal(err)
	}
	dto, err := svc.CompleteTask(ctx, "t1")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !dto.IsCompleted {
		t.Fatalf("expected completed")
	}
	if _, err := svc.CompleteTask(ctx, "missing"); err == nil {
		t.Fatalf("expected unknown id to fail")
	}
	if err := svc.DeleteTask(ctx, "t1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.DeleteTask(ctx, "t1"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if _, err := svc.TaskByID(ctx, "t1"); !errors.Is(err, taskstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for deleted task, got %v", err)
	}
}

func TestServiceVerifyTaskConnectsWallet(t *testing.T) {
	svc := newTestService(t, true)
	ctx := context.Background()
	if _, err := svc.AddTask(ctx, AddTaskOptions{Title: "Ship"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.VerifyTask(ctx, "t1"); err == nil {
		t.Fatalf("expected pending task to be rejected")
	}
	if _, err := svc.CompleteTask(ctx, "t1"); err != nil {
		t.Fatal(err)
	}

	res, err := svc.VerifyTask(ctx, "t1")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !res.Task.BlockchainVerified || res.TxHash == "" {
		t.Fatalf("result = %+v", res)
	}
	st, err := svc.WalletStatus(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !st.Connected || !st.CorrectNetwork {
		t.Fatalf("wallet = %+v", st)
	}

	again, err := svc.VerifyTask(ctx, "t1")
	if err != nil {
		t.Fatalf("second verify: %v", err)
	}
	if again.TxHash != "" {
		t.Fatalf("expected no new transaction, got %s", again.TxHash)
	}
}

func TestServiceWithoutChain(t *testing.T) {
	svc := newTestService(t, false)
	if _, err := svc.WalletStatus(context.Background()); err == nil {
		t.Fatalf("expected wallet tools to be unavailable")
	}
	if _, err := svc.VerifyTask(context.Background(), "t1"); err == nil {
		t.Fatalf("expected verify to be unavailable")
	}
}

func TestTemplateArg(t *testing.T) {
	if got := templateArg(map[string]any{"id": "a"}, "id"); got != "a" {
		t.Fatalf("string = %q", got)
	}
	if got := templateArg(map[string]any{"id": []string{"b"}}, "id"); got != "b" {
		t.Fatalf("list = %q", got)
	}
	if got := templateArg(nil, "id"); got != "" {
		t.Fatalf("missing = %q", got)
	}
}
