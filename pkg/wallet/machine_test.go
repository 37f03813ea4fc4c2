package wallet

import (
	"context"
	"errors"
	"sync"
	"testing"
)

const (
	testAccount = "0x52908400098527886e0f7030069857d2e4169ee7"
	otherChain  = "0x1"
)

type fakeProvider struct {
	mu        sync.Mutex
	available bool
	accounts  []string
	granted   bool
	chainID   string
	known     map[string]bool
	balance   string
	gate      chan struct{}
	started   chan struct{}
	switchErr error
	listeners []func(Event)
}

func newFakeProvider(chainID string) *fakeProvider {
	return &fakeProvider{
		available: true,
		accounts:  []string{testAccount},
		chainID:   chainID,
		known:     map[string]bool{MumbaiChainID: true, otherChain: true},
		balance:   "0xde0b6b3a7640000",
	}
}

func (p *fakeProvider) IsAvailable() bool { return p.available }

func (p *fakeProvider) Accounts(context.Context) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.granted {
		return nil, nil
	}
	return append([]string{}, p.accounts...), nil
}

func (p *fakeProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	if p.started != nil {
		close(p.started)
	}
	if p.gate != nil {
		select {
		case <-p.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.accounts) == 0 {
		return nil, errors.New("user rejected the request")
	}
	p.granted = true
	return append([]string{}, p.accounts...), nil
}

func (p *fakeProvider) ChainID(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.chainID, nil
}

func (p *fakeProvider) Balance(context.Context, string) (string, error) {
	return p.balance, nil
}

func (p *fakeProvider) SwitchChain(_ context.Context, chainID string) error {
	p.mu.Lock()
	if p.switchErr != nil {
		p.mu.Unlock()
		return p.switchErr
	}
	if !p.known[chainID] {
		p.mu.Unlock()
		return ErrChainNotAdded
	}
	p.chainID = chainID
	p.mu.Unlock()
	p.emit(Event{Kind: EventChainChanged, ChainID: chainID})
	return nil
}

func (p *fakeProvider) AddChain(ctx context.Context, cfg ChainConfig) error {
	p.mu.Lock()
	p.known[cfg.ChainID] = true
	p.mu.Unlock()
	return p.SwitchChain(ctx, cfg.ChainID)
}

func (p *fakeProvider) Subscribe(fn func(Event)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
	return func() {}
}

func (p *fakeProvider) emit(ev Event) {
	p.mu.Lock()
	ls := append([]func(Event){}, p.listeners...)
	p.mu.Unlock()
	for _, fn := range ls {
		fn(ev)
	}
}

func checkInvariants(t *testing.T, s State) {
	t.Helper()
	if !s.Connected && (s.Address != "" || s.Balance != "") {
		t.Fatalf("disconnected state carries account data: %+v", s)
	}
}

func connected(t *testing.T, p *fakeProvider) *Machine {
	t.Helper()
	m := NewMachine(p)
	ctx := context.Background()
	if _, err := m.Detect(ctx); err != nil {
		t.Fatalf("detect: %v", err)
	}
	if _, err := m.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	return m
}

func TestDetectWithoutProvider(t *testing.T) {
	m := NewMachine(nil)
	s, err := m.Detect(context.Background())
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if s.Phase != PhaseNoProvider || s.ProviderAvailable {
		t.Fatalf("expected no-provider, got %+v", s)
	}
	s, err = m.Connect(context.Background())
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
	if s.Error == "" || s.Connected {
		t.Fatalf("expected error and no connection, got %+v", s)
	}
}

func TestDetectIdleWithoutGrant(t *testing.T) {
	m := NewMachine(newFakeProvider(MumbaiChainID))
	s, _ := m.Detect(context.Background())
	if s.Phase != PhaseProviderIdle || !s.ProviderAvailable || s.Connected {
		t.Fatalf("expected idle, got %+v", s)
	}
}

func TestDetectReconnectsGrantedAccount(t *testing.T) {
	p := newFakeProvider(MumbaiChainID)
	p.granted = true
	s, _ := NewMachine(p).Detect(context.Background())
	if s.Phase != PhaseConnected || !s.CorrectNetwork {
		t.Fatalf("expected connected on the right network, got %+v", s)
	}
	if s.Balance != "" {
		t.Fatalf("detect should not fetch a balance, got %q", s.Balance)
	}
}

func TestConnect(t *testing.T) {
	m := connected(t, newFakeProvider(MumbaiChainID))
	s := m.State()
	if s.Phase != PhaseConnected || !s.Connected || s.Loading {
		t.Fatalf("expected connected, got %+v", s)
	}
	if s.Address != "0x52908400098527886E0F7030069857D2E4169EE7" {
		t.Fatalf("expected checksummed address, got %s", s.Address)
	}
	if s.Balance != "1.0000" {
		t.Fatalf("expected 1.0000, got %s", s.Balance)
	}
	if !s.CorrectNetwork {
		t.Fatalf("expected correct network")
	}
}

func TestConnectRejected(t *testing.T) {
	p := newFakeProvider(MumbaiChainID)
	p.accounts = nil
	m := NewMachine(p)
	_, _ = m.Detect(context.Background())
	s, err := m.Connect(context.Background())
	if !errors.Is(err, ErrExternalCallFailed) {
		t.Fatalf("expected ErrExternalCallFailed, got %v", err)
	}
	if s.Phase != PhaseProviderIdle || s.Loading || s.Error == "" {
		t.Fatalf("expected idle with error, got %+v", s)
	}
	checkInvariants(t, s)
}

func TestConnectWhileLoading(t *testing.T) {
	p := newFakeProvider(MumbaiChainID)
	p.gate = make(chan struct{})
	p.started = make(chan struct{})
	m := NewMachine(p)
	_, _ = m.Detect(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := m.Connect(context.Background())
		done <- err
	}()
	<-p.started

	before := m.State()
	if before.Phase != PhaseConnecting || !before.Loading {
		t.Fatalf("expected connecting, got %+v", before)
	}
	after, err := m.Connect(context.Background())
	if !errors.Is(err, ErrAlreadyInProgress) {
		t.Fatalf("expected ErrAlreadyInProgress, got %v", err)
	}
	if after != before {
		t.Fatalf("state changed by rejected connect: %+v -> %+v", before, after)
	}

	close(p.gate)
	if err := <-done; err != nil {
		t.Fatalf("first connect: %v", err)
	}
	if !m.State().Connected {
		t.Fatalf("expected first connect to finish")
	}
}

func TestDisconnect(t *testing.T) {
	m := connected(t, newFakeProvider(MumbaiChainID))
	s, err := m.Disconnect()
	if err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	if s.Phase != PhaseDisconnected || s.NetworkID == "" {
		t.Fatalf("expected disconnected with network kept, got %+v", s)
	}
	checkInvariants(t, s)
	if _, err := m.Disconnect(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on second disconnect, got %v", err)
	}
	if s, err = m.Connect(context.Background()); err != nil || !s.Connected {
		t.Fatalf("expected reconnect, got %+v %v", s, err)
	}
}

func TestDisconnectDuringLedgerCall(t *testing.T) {
	m := connected(t, newFakeProvider(MumbaiChainID))
	release, err := m.Acquire()
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	s, err := m.Disconnect()
	if err != nil {
		t.Fatalf("disconnect while slot held: %v", err)
	}
	if s.Phase != PhaseDisconnected || s.Connected {
		t.Fatalf("expected disconnected, got %+v", s)
	}
	checkInvariants(t, s)
	if _, err := m.Connect(context.Background()); !errors.Is(err, ErrAlreadyInProgress) {
		t.Fatalf("expected slot still held, got %v", err)
	}
	release(nil)
	if s := m.State(); s.Loading || s.Phase != PhaseDisconnected {
		t.Fatalf("expected slot released and still disconnected, got %+v", s)
	}
}

func TestSwitchNetwork(t *testing.T) {
	m := connected(t, newFakeProvider(otherChain))
	if m.State().CorrectNetwork {
		t.Fatalf("expected wrong network")
	}
	s, err := m.SwitchNetwork(context.Background())
	if err != nil {
		t.Fatalf("switch: %v", err)
	}
	if s.Phase != PhaseConnected || !s.CorrectNetwork || s.NetworkID != MumbaiChainID {
		t.Fatalf("expected connected on mumbai, got %+v", s)
	}
	if s.Address == "" {
		t.Fatalf("switch should keep the account")
	}
}

func TestSwitchNetworkAddsUnknownChain(t *testing.T) {
	p := newFakeProvider(otherChain)
	delete(p.known, MumbaiChainID)
	m := connected(t, p)
	s, err := m.SwitchNetwork(context.Background())
	if err != nil {
		t.Fatalf("switch: %v", err)
	}
	if !s.CorrectNetwork || !p.known[MumbaiChainID] {
		t.Fatalf("expected chain to be added, got %+v", s)
	}
}

func TestSwitchNetworkFailureKeepsOldNetwork(t *testing.T) {
	p := newFakeProvider(otherChain)
	m := connected(t, p)
	p.switchErr = errors.New("user rejected")
	s, err := m.SwitchNetwork(context.Background())
	if !errors.Is(err, ErrExternalCallFailed) {
		t.Fatalf("expected ErrExternalCallFailed, got %v", err)
	}
	if s.Phase != PhaseConnected || s.CorrectNetwork || s.NetworkID != otherChain || s.Error == "" {
		t.Fatalf("expected connected to old network with error, got %+v", s)
	}
}

func TestSwitchNetworkWhenAlreadyCorrect(t *testing.T) {
	m := connected(t, newFakeProvider(MumbaiChainID))
	before := m.State()
	s, err := m.SwitchNetwork(context.Background())
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if s != before {
		t.Fatalf("state changed: %+v -> %+v", before, s)
	}
}

func TestSwitchNetworkRequiresConnection(t *testing.T) {
	m := NewMachine(newFakeProvider(otherChain))
	_, _ = m.Detect(context.Background())
	if _, err := m.SwitchNetwork(context.Background()); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestAccountsChangedEmptyDisconnects(t *testing.T) {
	p := newFakeProvider(MumbaiChainID)
	m := connected(t, p)
	p.emit(Event{Kind: EventAccountsChanged})
	s := m.State()
	if s.Phase != PhaseDisconnected || s.Connected {
		t.Fatalf("expected disconnected, got %+v", s)
	}
	checkInvariants(t, s)
}

func TestAccountsChangedSwitchesAccount(t *testing.T) {
	p := newFakeProvider(MumbaiChainID)
	m := connected(t, p)
	next := "0xde709f2102306220921060314715629080e2fb77"
	p.emit(Event{Kind: EventAccountsChanged, Accounts: []string{next}})
	s := m.State()
	if !s.Connected || s.Address != mustNormalize(t, next) {
		t.Fatalf("expected new account, got %+v", s)
	}
	if s.Balance != "" {
		t.Fatalf("expected stale balance cleared, got %q", s.Balance)
	}
	if !s.CorrectNetwork {
		t.Fatalf("expected network unchanged")
	}
}

func TestChainChangedResetsAndDetects(t *testing.T) {
	p := newFakeProvider(MumbaiChainID)
	m := connected(t, p)
	p.mu.Lock()
	p.chainID = otherChain
	p.mu.Unlock()
	p.emit(Event{Kind: EventChainChanged, ChainID: otherChain})
	s := m.State()
	if s.Phase != PhaseConnected || s.CorrectNetwork || s.NetworkID != otherChain {
		t.Fatalf("expected re-detected connection on the other chain, got %+v", s)
	}
	if s.Balance != "" {
		t.Fatalf("expected balance cleared by reset, got %q", s.Balance)
	}
}

func TestEventsIgnoredBeforeDetect(t *testing.T) {
	m := NewMachine(newFakeProvider(MumbaiChainID))
	m.HandleEvent(context.Background(), Event{Kind: EventChainChanged, ChainID: otherChain})
	m.HandleEvent(context.Background(), Event{Kind: EventAccountsChanged, Accounts: []string{testAccount}})
	if s := m.State(); s.Phase != PhaseUninitialized || s.Connected {
		t.Fatalf("expected untouched machine, got %+v", s)
	}
}

func TestAcquire(t *testing.T) {
	m := NewMachine(newFakeProvider(otherChain))
	if _, err := m.Acquire(); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
	_, _ = m.Detect(context.Background())
	_, _ = m.Connect(context.Background())
	if _, err := m.Acquire(); !errors.Is(err, ErrWrongNetwork) {
		t.Fatalf("expected ErrWrongNetwork, got %v", err)
	}
	_, _ = m.SwitchNetwork(context.Background())

	release, err := m.Acquire()
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if _, err := m.Acquire(); !errors.Is(err, ErrAlreadyInProgress) {
		t.Fatalf("expected ErrAlreadyInProgress, got %v", err)
	}
	if _, err := m.Connect(context.Background()); !errors.Is(err, ErrAlreadyInProgress) {
		t.Fatalf("expected connect to be blocked, got %v", err)
	}
	release(errors.New("reverted"))
	release(nil)
	s := m.State()
	if s.Loading || s.Error != "reverted" {
		t.Fatalf("expected slot released with error, got %+v", s)
	}
}

func TestOnChange(t *testing.T) {
	m := NewMachine(newFakeProvider(MumbaiChainID))
	var seen []Phase
	m.OnChange(func(s State) { seen = append(seen, s.Phase) })
	_, _ = m.Detect(context.Background())
	_, _ = m.Connect(context.Background())
	if len(seen) == 0 || seen[len(seen)-1] != PhaseConnected {
		t.Fatalf("expected listener to observe connection, got %v", seen)
	}
}

func mustNormalize(t *testing.T, addr string) string {
	t.Helper()
	out, err := NormalizeAddress(addr)
	if err != nil {
		t.Fatal(err)
	}
	return out
}
