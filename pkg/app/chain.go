package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	logger "github.com/kthomas/go-logger"

	"tableflip.dev/taskverse/pkg/auth"
	"tableflip.dev/taskverse/pkg/ledger"
	"tableflip.dev/taskverse/pkg/logging"
	"tableflip.dev/taskverse/pkg/task"
	"tableflip.dev/taskverse/pkg/taskstore"
	"tableflip.dev/taskverse/pkg/wallet"
)

// Receipt is the outcome of anchoring a completed task on the ledger.
type Receipt struct {
	Task   task.Task   `json:"task"`
	TxHash common.Hash `json:"txHash"`
}

// ChainService drives the wallet machine and the ledger. Ledger calls need a
// wallet connected to the target network and hold the machine's in-flight
// slot while they run.
type ChainService struct {
	wallet  *wallet.Machine
	ledger  ledger.Ledger
	tasks   *TaskService
	auth    *auth.Service
	log     *logger.Logger
	tracker tracker
}

// ChainOption customises a ChainService.
type ChainOption func(*ChainService)

// WithAuth binds the connected wallet address to the signed-in user.
func WithAuth(a *auth.Service) ChainOption {
	return func(c *ChainService) {
		c.auth = a
	}
}

// WithChainLogger sets the logger.
func WithChainLogger(l *logger.Logger) ChainOption {
	return func(c *ChainService) {
		c.log = l
	}
}

// NewChainService returns a facade over m and l. tasks receives verification
// results.
func NewChainService(m *wallet.Machine, l ledger.Ledger, tasks *TaskService, opts ...ChainOption) *ChainService {
	c := &ChainService{wallet: m, ledger: l, tasks: tasks}
	for _, opt := range opts {
		opt(c)
	}
	c.log = logging.Or(c.log)
	if c.auth != nil {
		m.OnChange(c.bindWallet)
	}
	return c
}

func (c *ChainService) bindWallet(st wallet.State) {
	var err error
	switch st.Phase {
	case wallet.PhaseConnected:
		_, err = c.auth.ConnectWallet(st.Address)
	case wallet.PhaseDisconnected:
		_, err = c.auth.DisconnectWallet()
	}
	if err != nil {
		c.log.Warningf("app: bind wallet; %s", err.Error())
	}
}

// State returns the wallet snapshot.
func (c *ChainService) State() wallet.State {
	return c.wallet.State()
}

// Status reports in-flight ledger operations and the last failure.
func (c *ChainService) Status() Status {
	return c.tracker.status()
}

// Detect probes for an installed wallet.
func (c *ChainService) Detect(ctx context.Context) (wallet.State, error) {
	st, err := c.wallet.Detect(ctx)
	c.log.Debugf("app: wallet detect -> %s", st.Phase)
	return st, err
}

// Connect asks the wallet for an account.
func (c *ChainService) Connect(ctx context.Context) (wallet.State, error) {
	c.log.Debugf("app: connecting wallet")
	st, err := c.wallet.Connect(ctx)
	if err != nil {
		c.log.Warningf("app: connect wallet failed; %s", err.Error())
		return st, err
	}
	c.log.Debugf("app: wallet connected %s on %s", st.ShortAddress(), st.NetworkID)
	return st, nil
}

// Disconnect forgets the connected account.
func (c *ChainService) Disconnect() (wallet.State, error) {
	return c.wallet.Disconnect()
}

// SwitchNetwork moves the wallet to the target chain.
func (c *ChainService) SwitchNetwork(ctx context.Context) (wallet.State, error) {
	c.log.Debugf("app: switching wallet to %s", c.wallet.Target().ChainName)
	st, err := c.wallet.SwitchNetwork(ctx)
	if err != nil {
		c.log.Warningf("app: switch network failed; %s", err.Error())
	}
	return st, err
}

// Ready walks the wallet to a connection on the target network, detecting
// and connecting first when needed.
func (c *ChainService) Ready(ctx context.Context) (wallet.State, error) {
	st := c.wallet.State()
	var err error
	if st.Phase == wallet.PhaseUninitialized {
		if st, err = c.Detect(ctx); err != nil {
			return st, err
		}
	}
	if !st.Connected {
		if st, err = c.Connect(ctx); err != nil {
			return st, err
		}
	}
	if !st.CorrectNetwork {
		if st, err = c.SwitchNetwork(ctx); err != nil {
			return st, err
		}
	}
	return st, nil
}

// hold runs fn while holding the wallet's in-flight slot.
func (c *ChainService) hold(op string, fn func() error) error {
	release, err := c.wallet.Acquire()
	if err != nil {
		return err
	}
	c.tracker.begin()
	err = fn()
	if err != nil {
		c.log.Warningf("app: %s failed; %s", op, err.Error())
		err = fmt.Errorf("%w: %s: %w", ErrExternalCallFailed, op, err)
	}
	release(err)
	c.tracker.end(err)
	return err
}

// AddTask anchors the keccak256 hash of title under id and returns the
// transaction hash.
func (c *ChainService) AddTask(ctx context.Context, id, title string) (common.Hash, error) {
	var tx common.Hash
	err := c.hold("add task to ledger", func() error {
		var err error
		tx, err = c.ledger.AddTaskHash(ctx, id, ledger.TaskHash(title))
		return err
	})
	if err != nil {
		return common.Hash{}, err
	}
	c.log.Debugf("app: anchored task %s in %s", id, tx.Hex())
	return tx, nil
}

// Verify reports whether the ledger has id marked completed.
func (c *ChainService) Verify(ctx context.Context, id string) (bool, error) {
	var done bool
	err := c.hold("verify task on ledger", func() error {
		var err error
		done, err = c.ledger.IsCompleted(ctx, id)
		return err
	})
	return done, err
}

// VerifyTask marks a completed task completed on the ledger, registering its
// hash first when needed, and records the verification on the task. Already
// verified tasks are returned without a ledger call.
func (c *ChainService) VerifyTask(ctx context.Context, id string) (Receipt, error) {
	t, ok := c.tasks.Get(id)
	if !ok {
		return Receipt{}, fmt.Errorf("%w: %s", taskstore.ErrNotFound, id)
	}
	if t.BlockchainVerified {
		return Receipt{Task: t}, nil
	}
	if !t.Completed() {
		return Receipt{}, fmt.Errorf("%w: %s", ErrTaskNotCompleted, id)
	}

	var tx common.Hash
	err := c.hold("verify task on ledger", func() error {
		var err error
		tx, err = c.ledger.MarkCompleted(ctx, id)
		if errors.Is(err, ledger.ErrTaskNotRegistered) {
			if _, err = c.ledger.AddTaskHash(ctx, id, ledger.TaskHash(t.Title)); err != nil {
				return err
			}
			tx, err = c.ledger.MarkCompleted(ctx, id)
		}
		if err != nil {
			return err
		}
		done, err := c.ledger.IsCompleted(ctx, id)
		if err != nil {
			return err
		}
		if !done {
			return fmt.Errorf("ledger did not record completion of %s", id)
		}
		return nil
	})
	if err != nil {
		return Receipt{}, err
	}

	verified, err := c.tasks.VerifyOnChain(ctx, id)
	if err != nil {
		return Receipt{}, err
	}
	c.log.Debugf("app: verified task %s in %s", id, tx.Hex())
	return Receipt{Task: verified, TxHash: tx}, nil
}
