package app

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"tableflip.dev/taskverse/pkg/auth"
	"tableflip.dev/taskverse/pkg/ledger"
	"tableflip.dev/taskverse/pkg/store"
	"tableflip.dev/taskverse/pkg/task"
	"tableflip.dev/taskverse/pkg/taskstore"
	"tableflip.dev/taskverse/pkg/wallet"
	"tableflip.dev/taskverse/pkg/wallet/simulated"
)

const account = "0x52908400098527886E0F7030069857D2E4169EE7"

type chainFixture struct {
	provider *simulated.Provider
	contract *ledger.Contract
	tasks    *TaskService
	chain    *ChainService
}

func newChainFixture(t *testing.T, chainID string, opts ...ChainOption) *chainFixture {
	t.Helper()
	f := &chainFixture{
		provider: simulated.New(simulated.Config{Installed: true, Accounts: []string{account}, ChainID: chainID, Balance: "1"}),
		tasks:    newTestService(t, newMemoryPersistence()),
	}
	var err error
	if f.contract, err = ledger.NewContract(); err != nil {
		t.Fatal(err)
	}
	f.chain = NewChainService(wallet.NewMachine(f.provider), f.contract, f.tasks, opts...)
	return f
}

func (f *chainFixture) connect(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	if _, err := f.chain.Detect(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := f.chain.Connect(ctx); err != nil {
		t.Fatal(err)
	}
	if !f.chain.State().CorrectNetwork {
		if _, err := f.chain.SwitchNetwork(ctx); err != nil {
			t.Fatal(err)
		}
	}
}

func (f *chainFixture) completedTask(t *testing.T) task.Task {
	t.Helper()
	ctx := context.Background()
	tk, err := f.tasks.Add(ctx, task.Draft{Title: "Ship it"})
	if err != nil {
		t.Fatal(err)
	}
	if tk, err = f.tasks.Complete(ctx, tk.ID); err != nil {
		t.Fatal(err)
	}
	return tk
}

func TestAddTaskAnchorsHash(t *testing.T) {
	f := newChainFixture(t, wallet.MumbaiChainID)
	f.connect(t)
	tx, err := f.chain.AddTask(context.Background(), "t1", "Ship it")
	if err != nil {
		t.Fatalf("add task: %v", err)
	}
	if (tx == common.Hash{}) {
		t.Fatalf("expected a transaction hash")
	}
	if h, ok := f.contract.Hash("t1"); !ok || h != ledger.TaskHash("Ship it") {
		t.Fatalf("expected keccak256 of the title anchored")
	}
	if f.chain.State().Loading {
		t.Fatalf("expected in-flight slot released")
	}
}

func TestLedgerCallsRequireConnection(t *testing.T) {
	f := newChainFixture(t, "0x1")
	if _, err := f.chain.AddTask(context.Background(), "t1", "x"); !errors.Is(err, wallet.ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
	ctx := context.Background()
	_, _ = f.chain.Detect(ctx)
	_, _ = f.chain.Connect(ctx)
	if _, err := f.chain.Verify(ctx, "t1"); !errors.Is(err, wallet.ErrWrongNetwork) {
		t.Fatalf("expected ErrWrongNetwork, got %v", err)
	}
	if len(f.contract.Calls()) != 0 {
		t.Fatalf("expected no ledger calls")
	}
}

func TestVerifyTask(t *testing.T) {
	f := newChainFixture(t, "0x1")
	f.connect(t)
	tk := f.completedTask(t)

	rcpt, err := f.chain.VerifyTask(context.Background(), tk.ID)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !rcpt.Task.BlockchainVerified || (rcpt.TxHash == common.Hash{}) {
		t.Fatalf("unexpected receipt %+v", rcpt)
	}
	if got, _ := f.tasks.Get(tk.ID); !got.BlockchainVerified {
		t.Fatalf("expected task store updated")
	}
	done, err := f.chain.Verify(context.Background(), tk.ID)
	if err != nil || !done {
		t.Fatalf("expected ledger completion, got %v %v", done, err)
	}

	calls := len(f.contract.Calls())
	if _, err := f.chain.VerifyTask(context.Background(), tk.ID); err != nil {
		t.Fatalf("second verify: %v", err)
	}
	if len(f.contract.Calls()) != calls {
		t.Fatalf("expected no ledger calls for a verified task")
	}
}

func TestVerifyTaskRejectsPending(t *testing.T) {
	f := newChainFixture(t, wallet.MumbaiChainID)
	f.connect(t)
	tk, _ := f.tasks.Add(context.Background(), task.Draft{Title: "Not yet"})
	if _, err := f.chain.VerifyTask(context.Background(), tk.ID); !errors.Is(err, ErrTaskNotCompleted) {
		t.Fatalf("expected ErrTaskNotCompleted, got %v", err)
	}
	if _, err := f.chain.VerifyTask(context.Background(), "missing"); !errors.Is(err, taskstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestVerifyTaskLedgerFailure(t *testing.T) {
	f := newChainFixture(t, wallet.MumbaiChainID)
	f.connect(t)
	tk := f.completedTask(t)
	f.contract.FailNext("addTaskHash", errors.New("execution reverted"))

	_, err := f.chain.VerifyTask(context.Background(), tk.ID)
	if !errors.Is(err, ErrExternalCallFailed) {
		t.Fatalf("expected ErrExternalCallFailed, got %v", err)
	}
	if got, _ := f.tasks.Get(tk.ID); got.BlockchainVerified {
		t.Fatalf("task must stay unverified")
	}
	st := f.chain.State()
	if st.Loading || st.Error == "" {
		t.Fatalf("expected slot released with error, got %+v", st)
	}
	if f.chain.Status().LastError == "" {
		t.Fatalf("expected last error recorded")
	}
}

type usersOnly struct {
	user  *store.User
	saved []string
}

func (u *usersOnly) CreateUser(name, email, hashed string) (*store.User, error) {
	u.user = &store.User{ID: "u1", Name: name, Email: email, Password: hashed}
	return u.user, nil
}

func (u *usersOnly) FindUserByEmail(context.Context, string) (*store.User, error) {
	return u.user, nil
}

func (u *usersOnly) SaveUser(s *store.User) error {
	u.saved = append(u.saved, s.WalletAddress)
	return nil
}

func TestWalletBindsToSession(t *testing.T) {
	users := &usersOnly{}
	session := auth.New(users, "secret")
	if _, err := session.Register(context.Background(), "Ada", "ada@example.com", "password123"); err != nil {
		t.Fatal(err)
	}
	f := newChainFixture(t, wallet.MumbaiChainID, WithAuth(session))
	f.connect(t)
	if got := session.State().User.WalletAddress; got != account {
		t.Fatalf("expected wallet bound, got %q", got)
	}
	if _, err := f.chain.Disconnect(); err != nil {
		t.Fatal(err)
	}
	if got := session.State().User.WalletAddress; got != "" {
		t.Fatalf("expected wallet cleared, got %q", got)
	}
	if len(users.saved) != 2 {
		t.Fatalf("expected two writes, got %v", users.saved)
	}
}

func TestReadyWalksToTargetNetwork(t *testing.T) {
	f := newChainFixture(t, "0x1")
	st, err := f.chain.Ready(context.Background())
	if err != nil {
		t.Fatalf("ready: %v", err)
	}
	if !st.Connected || !st.CorrectNetwork || st.Phase != wallet.PhaseConnected {
		t.Fatalf("state = %+v", st)
	}
	again, err := f.chain.Ready(context.Background())
	if err != nil {
		t.Fatalf("second ready: %v", err)
	}
	if again.Address != st.Address {
		t.Fatalf("address changed: %s -> %s", st.Address, again.Address)
	}
}

func TestReadyWithoutProvider(t *testing.T) {
	f := newChainFixture(t, wallet.MumbaiChainID)
	f.chain = NewChainService(wallet.NewMachine(simulated.New(simulated.Config{})), f.contract, f.tasks)
	if _, err := f.chain.Ready(context.Background()); !errors.Is(err, wallet.ErrProviderUnavailable) {
		t.Fatalf("err = %v", err)
	}
}
