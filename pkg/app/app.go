// Package app holds the facades the CLI and MCP server drive: TaskService
// over the task store and its persistence, and ChainService over the wallet
// and the ledger.
package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"tableflip.dev/taskverse/pkg/wallet"
)

var (
	// ErrExternalCallFailed wraps failures of persistence, wallet, ledger and
	// AI collaborators.
	ErrExternalCallFailed = wallet.ErrExternalCallFailed
	// ErrTaskNotCompleted is returned when verifying a pending task.
	ErrTaskNotCompleted = errors.New("app: task is not completed")
)

// Status reports in-flight work and the most recent failure of a facade.
type Status struct {
	Pending   int    `json:"pending"`
	LastError string `json:"lastError,omitempty"`
}

// tracker counts in-flight operations and remembers the last outcome.
type tracker struct {
	mu      sync.Mutex
	pending int
	lastErr string
}

func (t *tracker) begin() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending++
}

func (t *tracker) end(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending--
	if err != nil {
		t.lastErr = err.Error()
	} else {
		t.lastErr = ""
	}
}

func (t *tracker) status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Status{Pending: t.pending, LastError: t.lastErr}
}

// sleep waits d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
