// Package wallet tracks the connection to a single external wallet provider.
//
// The Machine applies every transition atomically under its lock. Calls that
// wait on the provider run without the lock and apply their result when the
// provider answers; at most one such connect, switch or ledger operation may
// be in flight. Results are applied in completion order, so a result that
// arrives after a newer event still overwrites the fields it owns.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrProviderUnavailable is returned when no wallet is installed.
	ErrProviderUnavailable = errors.New("wallet: provider unavailable")
	// ErrAlreadyInProgress is returned when another wallet operation is in flight.
	ErrAlreadyInProgress = errors.New("wallet: operation already in progress")
	// ErrInvalidTransition is returned when an operation is not allowed from
	// the current phase.
	ErrInvalidTransition = errors.New("wallet: invalid transition")
	// ErrNotConnected is returned by Acquire when no account is connected.
	ErrNotConnected = errors.New("wallet: not connected")
	// ErrWrongNetwork is returned by Acquire when the wallet is on another chain.
	ErrWrongNetwork = errors.New("wallet: wrong network")
	// ErrExternalCallFailed wraps provider, ledger and other collaborator
	// failures.
	ErrExternalCallFailed = errors.New("external call failed")
)

// Machine is the wallet connection state machine.
type Machine struct {
	mu          sync.Mutex
	provider    Provider
	target      ChainConfig
	state       State
	unsubscribe func()
	listeners   []func(State)
}

// Option customises a Machine.
type Option func(*Machine)

// WithTargetChain overrides the chain the wallet must be on. Defaults to Mumbai.
func WithTargetChain(cfg ChainConfig) Option {
	return func(m *Machine) {
		m.target = cfg
	}
}

// NewMachine returns a machine in PhaseUninitialized. provider may be nil,
// which detects as no provider.
func NewMachine(provider Provider, opts ...Option) *Machine {
	m := &Machine{
		provider: provider,
		target:   Mumbai,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Target returns the chain the machine expects.
func (m *Machine) Target() ChainConfig {
	return m.target
}

// State returns the current snapshot.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// OnChange registers fn to run after every transition, outside the lock.
func (m *Machine) OnChange(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Close drops the provider subscription.
func (m *Machine) Close() {
	m.mu.Lock()
	unsub := m.unsubscribe
	m.unsubscribe = nil
	m.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// transition mutates the state under the lock and notifies listeners.
func (m *Machine) transition(fn func(s *State) error) (State, error) {
	m.mu.Lock()
	err := fn(&m.state)
	if err == nil {
		enforceInvariants(&m.state)
	}
	st := m.state
	listeners := append([]func(State){}, m.listeners...)
	m.mu.Unlock()
	if err == nil {
		for _, l := range listeners {
			l(st)
		}
	}
	return st, err
}

func enforceInvariants(s *State) {
	if !s.Connected {
		s.Address = ""
		s.Balance = ""
	}
}

// Detect probes the provider. Without one the machine moves to
// PhaseNoProvider; otherwise to PhaseProviderIdle, and straight on to
// PhaseConnected when the provider already has an authorised account.
// Detect is valid from PhaseUninitialized and PhaseNoProvider.
func (m *Machine) Detect(ctx context.Context) (State, error) {
	available := m.provider != nil && m.provider.IsAvailable()
	st, err := m.transition(func(s *State) error {
		if s.Phase != PhaseUninitialized && s.Phase != PhaseNoProvider {
			return fmt.Errorf("%w: detect from %s", ErrInvalidTransition, s.Phase)
		}
		loading := s.Loading
		*s = State{Loading: loading}
		if !available {
			s.Phase = PhaseNoProvider
			return nil
		}
		s.Phase = PhaseProviderIdle
		s.ProviderAvailable = true
		return nil
	})
	if err != nil || !available {
		return st, err
	}
	m.subscribe()

	accounts, err := m.provider.Accounts(ctx)
	if err != nil || len(accounts) == 0 {
		// An unreadable account list leaves the wallet idle; connect can
		// still prompt for accounts.
		return m.State(), nil
	}
	address, err := NormalizeAddress(accounts[0])
	if err != nil {
		return m.State(), nil
	}
	chainID, err := m.provider.ChainID(ctx)
	if err != nil {
		return m.State(), nil
	}
	return m.transition(func(s *State) error {
		s.Phase = PhaseConnected
		s.Connected = true
		s.Address = address
		s.NetworkID = chainID
		s.CorrectNetwork = SameChain(chainID, m.target.ChainID)
		return nil
	})
}

func (m *Machine) subscribe() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unsubscribe != nil {
		return
	}
	m.unsubscribe = m.provider.Subscribe(func(ev Event) {
		m.HandleEvent(context.Background(), ev)
	})
}

// Connect requests accounts and moves to PhaseConnected. It is valid from
// PhaseProviderIdle and PhaseDisconnected. On failure the machine returns to
// PhaseProviderIdle with Error set.
func (m *Machine) Connect(ctx context.Context) (State, error) {
	st, err := m.transition(func(s *State) error {
		if s.Loading {
			return ErrAlreadyInProgress
		}
		if s.Phase == PhaseNoProvider || (s.Phase != PhaseUninitialized && !s.ProviderAvailable) {
			s.Error = ErrProviderUnavailable.Error()
			return nil
		}
		if s.Phase != PhaseProviderIdle && s.Phase != PhaseDisconnected {
			return fmt.Errorf("%w: connect from %s", ErrInvalidTransition, s.Phase)
		}
		s.Phase = PhaseConnecting
		s.Loading = true
		s.Error = ""
		return nil
	})
	if err != nil {
		return st, err
	}
	if st.Phase != PhaseConnecting {
		return st, ErrProviderUnavailable
	}

	address, chainID, balance, err := m.connect(ctx)
	if err != nil {
		st, _ = m.transition(func(s *State) error {
			s.Phase = PhaseProviderIdle
			s.Connected = false
			s.Loading = false
			s.Error = err.Error()
			return nil
		})
		return st, fmt.Errorf("%w: connect: %v", ErrExternalCallFailed, err)
	}
	return m.transition(func(s *State) error {
		s.Phase = PhaseConnected
		s.Connected = true
		s.Address = address
		s.NetworkID = chainID
		s.Balance = balance
		s.CorrectNetwork = SameChain(chainID, m.target.ChainID)
		s.Loading = false
		s.Error = ""
		return nil
	})
}

func (m *Machine) connect(ctx context.Context) (address, chainID, balance string, err error) {
	accounts, err := m.provider.RequestAccounts(ctx)
	if err != nil {
		return "", "", "", err
	}
	if len(accounts) == 0 {
		return "", "", "", errors.New("no accounts authorised")
	}
	address, err = NormalizeAddress(accounts[0])
	if err != nil {
		return "", "", "", err
	}
	chainID, err = m.provider.ChainID(ctx)
	if err != nil {
		return "", "", "", err
	}
	wei, err := m.provider.Balance(ctx, address)
	if err != nil {
		return "", "", "", err
	}
	balance, err = FormatEther(wei)
	if err != nil {
		return "", "", "", err
	}
	return address, chainID, balance, nil
}

// Disconnect forgets the connected account locally. The provider keeps its
// permission grant. Valid from PhaseConnected only, including while a
// ledger call holds the in-flight slot.
func (m *Machine) Disconnect() (State, error) {
	return m.transition(func(s *State) error {
		if s.Phase != PhaseConnected {
			return fmt.Errorf("%w: disconnect from %s", ErrInvalidTransition, s.Phase)
		}
		s.Phase = PhaseDisconnected
		s.Connected = false
		s.Error = ""
		return nil
	})
}

// SwitchNetwork moves a wallet connected to the wrong chain onto the target
// chain, adding the chain first when the provider does not know it. It is
// rejected with ErrInvalidTransition unless the wallet is connected to the
// wrong network. On failure the machine stays connected to the old network
// with Error set.
func (m *Machine) SwitchNetwork(ctx context.Context) (State, error) {
	st, err := m.transition(func(s *State) error {
		if s.Loading {
			return ErrAlreadyInProgress
		}
		if s.Phase != PhaseConnected {
			return fmt.Errorf("%w: switch network from %s", ErrInvalidTransition, s.Phase)
		}
		if s.CorrectNetwork {
			return fmt.Errorf("%w: already on %s", ErrInvalidTransition, m.target.ChainName)
		}
		s.Phase = PhaseSwitching
		s.Loading = true
		s.Error = ""
		return nil
	})
	if err != nil {
		return st, err
	}

	chainID, err := m.switchNetwork(ctx)
	if err != nil {
		st, _ = m.transition(func(s *State) error {
			s.Phase = PhaseConnected
			s.CorrectNetwork = false
			s.Loading = false
			s.Error = err.Error()
			return nil
		})
		return st, fmt.Errorf("%w: switch network: %v", ErrExternalCallFailed, err)
	}
	return m.transition(func(s *State) error {
		s.Phase = PhaseConnected
		s.NetworkID = chainID
		s.CorrectNetwork = true
		s.Loading = false
		s.Error = ""
		return nil
	})
}

func (m *Machine) switchNetwork(ctx context.Context) (string, error) {
	err := m.provider.SwitchChain(ctx, m.target.ChainID)
	if errors.Is(err, ErrChainNotAdded) {
		err = m.provider.AddChain(ctx, m.target)
	}
	if err != nil {
		return "", err
	}
	chainID, err := m.provider.ChainID(ctx)
	if err != nil {
		return "", err
	}
	if !SameChain(chainID, m.target.ChainID) {
		return "", fmt.Errorf("provider stayed on chain %s", chainID)
	}
	return chainID, nil
}

// Acquire reserves the in-flight slot for an operation that needs a wallet
// connected to the target network, such as a ledger call. The returned
// release must be called exactly once with the operation's outcome.
func (m *Machine) Acquire() (release func(error), err error) {
	_, err = m.transition(func(s *State) error {
		if s.Loading {
			return ErrAlreadyInProgress
		}
		if !s.Connected {
			return ErrNotConnected
		}
		if !s.CorrectNetwork {
			return ErrWrongNetwork
		}
		s.Loading = true
		s.Error = ""
		return nil
	})
	if err != nil {
		return nil, err
	}
	var once sync.Once
	return func(opErr error) {
		once.Do(func() {
			_, _ = m.transition(func(s *State) error {
				s.Loading = false
				if opErr != nil {
					s.Error = opErr.Error()
				}
				return nil
			})
		})
	}, nil
}

// HandleEvent applies a provider notification. An empty account list
// disconnects; a new account connects it and recomputes CorrectNetwork. A
// chain change resets the machine and detects again, unless the machine is
// switching networks itself, in which case only the network fields change.
// The in-flight slot is left alone: the operation holding it still
// completes and releases it.
func (m *Machine) HandleEvent(ctx context.Context, ev Event) {
	switch ev.Kind {
	case EventAccountsChanged:
		m.handleAccounts(ctx, ev.Accounts)
	case EventChainChanged:
		m.handleChain(ctx, ev.ChainID)
	}
}

func (m *Machine) handleAccounts(ctx context.Context, accounts []string) {
	st := m.State()
	if st.Phase == PhaseUninitialized || st.Phase == PhaseNoProvider {
		return
	}
	if len(accounts) == 0 {
		_, _ = m.transition(func(s *State) error {
			s.Phase = PhaseDisconnected
			s.Connected = false
			return nil
		})
		return
	}
	address, err := NormalizeAddress(accounts[0])
	if err != nil {
		return
	}
	chainID := st.NetworkID
	if chainID == "" {
		if id, err := m.provider.ChainID(ctx); err == nil {
			chainID = id
		}
	}
	_, _ = m.transition(func(s *State) error {
		if s.Address != address {
			s.Balance = ""
		}
		if s.Phase != PhaseSwitching && s.Phase != PhaseConnecting {
			s.Phase = PhaseConnected
		}
		s.Connected = true
		s.Address = address
		if s.NetworkID == "" {
			s.NetworkID = chainID
		}
		s.CorrectNetwork = SameChain(s.NetworkID, m.target.ChainID)
		return nil
	})
}

func (m *Machine) handleChain(ctx context.Context, chainID string) {
	reset := false
	_, _ = m.transition(func(s *State) error {
		switch s.Phase {
		case PhaseUninitialized, PhaseNoProvider:
		case PhaseSwitching:
			s.NetworkID = chainID
			s.CorrectNetwork = SameChain(chainID, m.target.ChainID)
		default:
			reset = true
			*s = State{Phase: PhaseUninitialized, Loading: s.Loading}
		}
		return nil
	})
	if reset {
		_, _ = m.Detect(ctx)
	}
}
