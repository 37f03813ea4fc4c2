// Package simulated provides an in-process wallet provider for the CLI and
// tests. It behaves like an injected browser wallet: accounts must be
// granted before they are visible, unknown chains must be added before they
// can be selected, and every change is announced through Subscribe.
package simulated

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"tableflip.dev/taskverse/pkg/wallet"
)

// ErrRejected is returned when the simulated user declines a request.
var ErrRejected = errors.New("simulated: user rejected the request")

// Config seeds a Provider.
type Config struct {
	Installed bool
	Accounts  []string
	ChainID   string
	// Balance is the balance of every account in ether.
	Balance string
	// KnownChains lists chain ids the wallet can switch to without adding.
	KnownChains []string
	Latency     time.Duration
}

// Provider implements wallet.Provider in memory.
type Provider struct {
	mu         sync.Mutex
	installed  bool
	granted    bool
	accounts   []string
	chainID    string
	known      map[string]wallet.ChainConfig
	balance    *big.Int
	latency    time.Duration
	failures   map[string]error
	listeners  map[int]func(wallet.Event)
	nextListen int
}

// New returns a provider seeded from cfg.
func New(cfg Config) *Provider {
	p := &Provider{
		installed: cfg.Installed,
		accounts:  append([]string{}, cfg.Accounts...),
		chainID:   cfg.ChainID,
		known:     map[string]wallet.ChainConfig{},
		balance:   parseEther(cfg.Balance),
		latency:   cfg.Latency,
		failures:  map[string]error{},
		listeners: map[int]func(wallet.Event){},
	}
	if p.chainID == "" {
		p.chainID = "0x1"
	}
	p.known[strings.ToLower(p.chainID)] = wallet.ChainConfig{ChainID: p.chainID}
	for _, id := range cfg.KnownChains {
		p.known[strings.ToLower(id)] = wallet.ChainConfig{ChainID: id}
	}
	return p
}

func parseEther(v string) *big.Int {
	r, ok := new(big.Rat).SetString(strings.TrimSpace(v))
	if !ok {
		return new(big.Int)
	}
	r.Mul(r, new(big.Rat).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)))
	return new(big.Int).Quo(r.Num(), r.Denom())
}

// FailNext makes the next call to method return err. Method names match the
// wallet.Provider interface.
func (p *Provider) FailNext(method string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures[method] = err
}

// Grant marks the accounts as authorised, as if the user had connected
// earlier.
func (p *Provider) Grant() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.granted = true
}

// SetAccounts replaces the wallet accounts and announces the change.
func (p *Provider) SetAccounts(accounts ...string) {
	p.mu.Lock()
	p.accounts = append([]string{}, accounts...)
	visible := p.granted
	p.mu.Unlock()
	if visible {
		p.emit(wallet.Event{Kind: wallet.EventAccountsChanged, Accounts: accounts})
	}
}

// SetChain changes the active chain from the wallet side and announces it.
func (p *Provider) SetChain(chainID string) {
	p.mu.Lock()
	p.chainID = chainID
	p.known[strings.ToLower(chainID)] = wallet.ChainConfig{ChainID: chainID}
	p.mu.Unlock()
	p.emit(wallet.Event{Kind: wallet.EventChainChanged, ChainID: chainID})
}

func (p *Provider) wait(ctx context.Context, method string) error {
	p.mu.Lock()
	latency := p.latency
	err := p.failures[method]
	delete(p.failures, method)
	p.mu.Unlock()
	if latency > 0 {
		t := time.NewTimer(latency)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (p *Provider) IsAvailable() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.installed
}

func (p *Provider) Accounts(ctx context.Context) ([]string, error) {
	if err := p.wait(ctx, "Accounts"); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.granted {
		return nil, nil
	}
	return append([]string{}, p.accounts...), nil
}

func (p *Provider) RequestAccounts(ctx context.Context) ([]string, error) {
	if err := p.wait(ctx, "RequestAccounts"); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.accounts) == 0 {
		return nil, ErrRejected
	}
	p.granted = true
	return append([]string{}, p.accounts...), nil
}

func (p *Provider) ChainID(ctx context.Context) (string, error) {
	if err := p.wait(ctx, "ChainID"); err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.chainID, nil
}

func (p *Provider) Balance(ctx context.Context, address string) (string, error) {
	if err := p.wait(ctx, "Balance"); err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, a := range p.accounts {
		if strings.EqualFold(a, address) {
			return hexutil.EncodeBig(p.balance), nil
		}
	}
	return "", fmt.Errorf("simulated: unknown account %s", address)
}

func (p *Provider) SwitchChain(ctx context.Context, chainID string) error {
	if err := p.wait(ctx, "SwitchChain"); err != nil {
		return err
	}
	p.mu.Lock()
	if _, ok := p.known[strings.ToLower(chainID)]; !ok {
		p.mu.Unlock()
		return wallet.ErrChainNotAdded
	}
	p.chainID = chainID
	p.mu.Unlock()
	p.emit(wallet.Event{Kind: wallet.EventChainChanged, ChainID: chainID})
	return nil
}

func (p *Provider) AddChain(ctx context.Context, cfg wallet.ChainConfig) error {
	if err := p.wait(ctx, "AddChain"); err != nil {
		return err
	}
	p.mu.Lock()
	p.known[strings.ToLower(cfg.ChainID)] = cfg
	p.chainID = cfg.ChainID
	p.mu.Unlock()
	p.emit(wallet.Event{Kind: wallet.EventChainChanged, ChainID: cfg.ChainID})
	return nil
}

func (p *Provider) Subscribe(fn func(wallet.Event)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextListen
	p.nextListen++
	p.listeners[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.listeners, id)
	}
}

func (p *Provider) emit(ev wallet.Event) {
	p.mu.Lock()
	fns := make([]func(wallet.Event), 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	p.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

var _ wallet.Provider = (*Provider)(nil)
