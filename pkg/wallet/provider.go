package wallet

import (
	"context"
	"errors"
)

// MumbaiChainID identifies the Mumbai testnet, the network tasks are
// anchored on.
const MumbaiChainID = "0x13881"

// ErrChainNotAdded is returned by Provider.SwitchChain when the wallet does
// not know the requested chain yet.
var ErrChainNotAdded = errors.New("wallet: chain not added to provider")

// Currency describes the native currency of a chain.
type Currency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// ChainConfig is the payload used to add a chain to a wallet.
type ChainConfig struct {
	ChainID           string   `json:"chainId"`
	ChainName         string   `json:"chainName"`
	NativeCurrency    Currency `json:"nativeCurrency"`
	RPCURLs           []string `json:"rpcUrls"`
	BlockExplorerURLs []string `json:"blockExplorerUrls"`
}

// Mumbai is the chain configuration offered when the wallet lacks Mumbai.
var Mumbai = ChainConfig{
	ChainID:   MumbaiChainID,
	ChainName: "Mumbai Testnet",
	NativeCurrency: Currency{
		Name:     "MATIC",
		Symbol:   "MATIC",
		Decimals: 18,
	},
	RPCURLs:           []string{"https://rpc-mumbai.maticvigil.com"},
	BlockExplorerURLs: []string{"https://mumbai.polygonscan.com"},
}

// EventKind distinguishes provider notifications.
type EventKind int

const (
	EventAccountsChanged EventKind = iota
	EventChainChanged
)

func (k EventKind) String() string {
	switch k {
	case EventAccountsChanged:
		return "accountsChanged"
	case EventChainChanged:
		return "chainChanged"
	default:
		return "unknown"
	}
}

// Event is pushed by the provider outside of any call the machine made.
type Event struct {
	Kind     EventKind
	Accounts []string
	ChainID  string
}

// Provider is an injected wallet such as a browser extension.
type Provider interface {
	// IsAvailable reports whether the wallet is installed.
	IsAvailable() bool
	// Accounts lists already authorised accounts without prompting.
	Accounts(ctx context.Context) ([]string, error)
	// RequestAccounts asks the user to authorise accounts.
	RequestAccounts(ctx context.Context) ([]string, error)
	// ChainID returns the active chain as a hex quantity.
	ChainID(ctx context.Context) (string, error)
	// Balance returns the balance of address in wei as a hex quantity.
	Balance(ctx context.Context, address string) (string, error)
	// SwitchChain changes the active chain. Unknown chains fail with
	// ErrChainNotAdded.
	SwitchChain(ctx context.Context, chainID string) error
	// AddChain registers and switches to a chain.
	AddChain(ctx context.Context, cfg ChainConfig) error
	// Subscribe registers fn for provider events and returns a function that
	// removes it.
	Subscribe(fn func(Event)) (unsubscribe func())
}
