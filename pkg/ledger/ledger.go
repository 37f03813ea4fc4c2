// Package ledger anchors task hashes and completion flags on a task manager
// contract.
package ledger

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// ErrTaskNotRegistered is returned when a task id has no anchored hash.
var ErrTaskNotRegistered = errors.New("ledger: task not registered")

// Ledger is the task manager contract.
type Ledger interface {
	// AddTaskHash anchors hash under id and returns the transaction hash.
	AddTaskHash(ctx context.Context, id string, hash common.Hash) (common.Hash, error)
	// MarkCompleted flags a registered task as completed.
	MarkCompleted(ctx context.Context, id string) (common.Hash, error)
	// IsCompleted reports the completion flag of id.
	IsCompleted(ctx context.Context, id string) (bool, error)
}

// TaskHash is the keccak256 digest of a task title.
func TaskHash(title string) common.Hash {
	return ethcrypto.Keccak256Hash([]byte(title))
}
