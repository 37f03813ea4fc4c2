package wallet

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Phase is the state of the connection state machine.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseNoProvider
	PhaseProviderIdle
	PhaseConnecting
	PhaseConnected
	PhaseSwitching
	PhaseDisconnected
)

var phaseNames = [...]string{
	PhaseUninitialized: "uninitialized",
	PhaseNoProvider:    "no-provider",
	PhaseProviderIdle:  "idle",
	PhaseConnecting:    "connecting",
	PhaseConnected:     "connected",
	PhaseSwitching:     "switching",
	PhaseDisconnected:  "disconnected",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// State is a snapshot of the wallet connection. When Connected is false,
// Address and Balance are empty.
type State struct {
	Phase             Phase  `json:"phase"`
	ProviderAvailable bool   `json:"providerAvailable"`
	Connected         bool   `json:"connected"`
	Address           string `json:"address,omitempty"`
	NetworkID         string `json:"networkId,omitempty"`
	Balance           string `json:"balance,omitempty"`
	CorrectNetwork    bool   `json:"correctNetwork"`
	Loading           bool   `json:"loading"`
	Error             string `json:"error,omitempty"`
}

// ShortAddress renders the address as 0x1234...abcd.
func (s State) ShortAddress() string {
	return ShortAddress(s.Address)
}

// ShortAddress abbreviates a hex address.
func ShortAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}

var weiPerEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// FormatEther converts a hex wei quantity to ether with four decimals.
func FormatEther(hexWei string) (string, error) {
	wei, err := hexutil.DecodeBig(strings.TrimSpace(hexWei))
	if err != nil {
		return "", fmt.Errorf("wallet: decode balance %q: %w", hexWei, err)
	}
	return new(big.Rat).SetFrac(wei, weiPerEther).FloatString(4), nil
}

// NormalizeAddress validates a hex account and returns its checksummed form.
func NormalizeAddress(addr string) (string, error) {
	if !common.IsHexAddress(addr) {
		return "", fmt.Errorf("wallet: invalid account address %q", addr)
	}
	return common.HexToAddress(addr).Hex(), nil
}

// SameChain compares two hex chain ids numerically.
func SameChain(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	x, errA := hexutil.DecodeBig(strings.ToLower(a))
	y, errB := hexutil.DecodeBig(strings.ToLower(b))
	if errA != nil || errB != nil {
		return strings.EqualFold(a, b)
	}
	return x.Cmp(y) == 0
}
