package ledger

import (
	"context"
	"encoding/binary"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// DefaultAddress is the address the task manager is expected at.
const DefaultAddress = "0x1234567890123456789012345678901234567890"

// TaskManagerABI describes the task manager contract.
const TaskManagerABI = `[
  {"type":"function","name":"addTaskHash","stateMutability":"nonpayable",
   "inputs":[{"internalType":"string","name":"taskId","type":"string"},{"internalType":"bytes32","name":"taskHash","type":"bytes32"}],
   "outputs":[]},
  {"type":"function","name":"markTaskCompleted","stateMutability":"nonpayable",
   "inputs":[{"internalType":"string","name":"taskId","type":"string"}],
   "outputs":[]},
  {"type":"function","name":"isTaskCompleted","stateMutability":"view",
   "inputs":[{"internalType":"string","name":"taskId","type":"string"}],
   "outputs":[{"internalType":"bool","name":"","type":"bool"}]}
]`

// Call is a transaction or view call the contract received.
type Call struct {
	Method string
	Data   []byte
	TxHash common.Hash
}

type entry struct {
	hash      common.Hash
	completed bool
}

// Contract is an in-memory task manager. Calls are ABI encoded the way a
// client would send them and transaction hashes are derived from the
// calldata, so equal call sequences produce equal hashes.
type Contract struct {
	address common.Address
	abi     abi.ABI
	latency time.Duration

	mu       sync.Mutex
	nonce    uint64
	tasks    map[string]*entry
	calls    []Call
	failures map[string]error
}

// ContractOption customises a Contract.
type ContractOption func(*Contract)

// WithLatency delays every call by d.
func WithLatency(d time.Duration) ContractOption {
	return func(c *Contract) {
		c.latency = d
	}
}

// WithAddress sets the contract address. Invalid addresses are ignored.
func WithAddress(addr string) ContractOption {
	return func(c *Contract) {
		if common.IsHexAddress(addr) {
			c.address = common.HexToAddress(addr)
		}
	}
}

// NewContract parses the task manager ABI and returns an empty contract.
func NewContract(opts ...ContractOption) (*Contract, error) {
	parsed, err := abi.JSON(strings.NewReader(TaskManagerABI))
	if err != nil {
		return nil, fmt.Errorf("ledger: parse abi: %w", err)
	}
	c := &Contract{
		address:  common.HexToAddress(DefaultAddress),
		abi:      parsed,
		tasks:    map[string]*entry{},
		failures: map[string]error{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Address returns the contract address.
func (c *Contract) Address() common.Address {
	return c.address
}

// FailNext makes the next call to the named ABI method fail with err.
func (c *Contract) FailNext(method string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures[method] = err
}

// Calls returns the calls received so far.
func (c *Contract) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call{}, c.calls...)
}

// call encodes the method, waits for latency and records the call. The
// returned hash is zero for view calls.
func (c *Contract) call(ctx context.Context, method string, view bool, args ...interface{}) (common.Hash, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return common.Hash{}, fmt.Errorf("ledger: pack %s: %w", method, err)
	}
	if c.latency > 0 {
		t := time.NewTimer(c.latency)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return common.Hash{}, ctx.Err()
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.failures[method]; err != nil {
		delete(c.failures, method)
		return common.Hash{}, err
	}
	var tx common.Hash
	if !view {
		var n [8]byte
		binary.BigEndian.PutUint64(n[:], c.nonce)
		c.nonce++
		tx = ethcrypto.Keccak256Hash(c.address.Bytes(), data, n[:])
	}
	c.calls = append(c.calls, Call{Method: method, Data: data, TxHash: tx})
	return tx, nil
}

func (c *Contract) AddTaskHash(ctx context.Context, id string, hash common.Hash) (common.Hash, error) {
	tx, err := c.call(ctx, "addTaskHash", false, id, [32]byte(hash))
	if err != nil {
		return common.Hash{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.tasks[id]; ok {
		e.hash = hash
	} else {
		c.tasks[id] = &entry{hash: hash}
	}
	return tx, nil
}

func (c *Contract) MarkCompleted(ctx context.Context, id string) (common.Hash, error) {
	c.mu.Lock()
	_, ok := c.tasks[id]
	c.mu.Unlock()
	if !ok {
		return common.Hash{}, fmt.Errorf("%w: %s", ErrTaskNotRegistered, id)
	}
	tx, err := c.call(ctx, "markTaskCompleted", false, id)
	if err != nil {
		return common.Hash{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks[id].completed = true
	return tx, nil
}

func (c *Contract) IsCompleted(ctx context.Context, id string) (bool, error) {
	if _, err := c.call(ctx, "isTaskCompleted", true, id); err != nil {
		return false, err
	}
	c.mu.Lock()
	completed := false
	if e, ok := c.tasks[id]; ok {
		completed = e.completed
	}
	c.mu.Unlock()

	// Round trip through the output encoding a node would return.
	method := c.abi.Methods["isTaskCompleted"]
	out, err := method.Outputs.Pack(completed)
	if err != nil {
		return false, fmt.Errorf("ledger: pack result: %w", err)
	}
	vals, err := c.abi.Unpack("isTaskCompleted", out)
	if err != nil {
		return false, fmt.Errorf("ledger: unpack result: %w", err)
	}
	b, ok := vals[0].(bool)
	if !ok {
		return false, fmt.Errorf("ledger: unexpected result %T", vals[0])
	}
	return b, nil
}

// Hash returns the anchored hash for id.
func (c *Contract) Hash(id string) (common.Hash, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.tasks[id]
	if !ok {
		return common.Hash{}, false
	}
	return e.hash, true
}

var _ Ledger = (*Contract)(nil)
