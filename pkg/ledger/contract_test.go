package ledger

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTaskHash(t *testing.T) {
	// keccak256("") is a well known constant.
	if got := TaskHash("").Hex(); got != "0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470" {
		t.Fatalf("unexpected empty hash %s", got)
	}
	if TaskHash("a") == TaskHash("b") {
		t.Fatalf("expected distinct hashes")
	}
}

func TestContractLifecycle(t *testing.T) {
	ctx := context.Background()
	c, err := NewContract()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.MarkCompleted(ctx, "t1"); !errors.Is(err, ErrTaskNotRegistered) {
		t.Fatalf("expected ErrTaskNotRegistered, got %v", err)
	}
	tx1, err := c.AddTaskHash(ctx, "t1", TaskHash("Write report"))
	if err != nil {
		t.Fatal(err)
	}
	if done, _ := c.IsCompleted(ctx, "t1"); done {
		t.Fatalf("expected pending after registration")
	}
	tx2, err := c.MarkCompleted(ctx, "t1")
	if err != nil {
		t.Fatal(err)
	}
	if tx1 == tx2 {
		t.Fatalf("expected distinct transaction hashes")
	}
	if done, err := c.IsCompleted(ctx, "t1"); err != nil || !done {
		t.Fatalf("expected completed, got %v %v", done, err)
	}
	if h, ok := c.Hash("t1"); !ok || h != TaskHash("Write report") {
		t.Fatalf("unexpected anchored hash %s", h.Hex())
	}

	calls := c.Calls()
	if len(calls) != 4 {
		t.Fatalf("expected 4 calls, got %d", len(calls))
	}
	want := c.abi.Methods["addTaskHash"].ID
	if string(calls[0].Data[:4]) != string(want) {
		t.Fatalf("expected addTaskHash selector")
	}
}

func TestContractDeterministicHashes(t *testing.T) {
	ctx := context.Background()
	a, _ := NewContract()
	b, _ := NewContract()
	ha, _ := a.AddTaskHash(ctx, "x", TaskHash("x"))
	hb, _ := b.AddTaskHash(ctx, "x", TaskHash("x"))
	if ha != hb {
		t.Fatalf("expected equal hashes for equal calls")
	}
}

func TestContractFailureAndCancel(t *testing.T) {
	boom := errors.New("reverted")
	c, _ := NewContract(WithLatency(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.AddTaskHash(ctx, "x", TaskHash("x")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	c, _ = NewContract()
	c.FailNext("addTaskHash", boom)
	if _, err := c.AddTaskHash(context.Background(), "x", TaskHash("x")); !errors.Is(err, boom) {
		t.Fatalf("expected injected failure, got %v", err)
	}
	if _, ok := c.Hash("x"); ok {
		t.Fatalf("failed call must not register")
	}
}
