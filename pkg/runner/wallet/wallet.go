// Package wallet provides the runners behind the wallet commands.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"io"

	"tableflip.dev/taskverse/pkg/app"
	"tableflip.dev/taskverse/pkg/printers"
	"tableflip.dev/taskverse/pkg/wallet"
)

// Action is a wallet command.
type Action string

const (
	Status     Action = "status"
	Connect    Action = "connect"
	Disconnect Action = "disconnect"
	Switch     Action = "switch"
)

// Wallet detects the provider and then performs Action.
type Wallet struct {
	Action Action
	JSON   bool
	Chain  *app.ChainService
	Out    io.Writer
}

func (n *Wallet) Do(ctx context.Context) error {
	if n.Chain == nil {
		return errors.New("can not use wallet, no chain service")
	}
	st, err := n.run(ctx)
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{Out: n.Out}
	if n.JSON {
		return pp.JSON(st)
	}
	pp.NewLine()
	pp.Wallet(st)
	return nil
}

func (n *Wallet) run(ctx context.Context) (wallet.State, error) {
	st := n.Chain.State()
	if st.Phase == wallet.PhaseUninitialized {
		var err error
		if st, err = n.Chain.Detect(ctx); err != nil {
			return st, err
		}
	}

	switch n.Action {
	case "", Status:
		return st, nil
	case Connect:
		if st.Connected {
			return st, nil
		}
		return n.Chain.Connect(ctx)
	case Disconnect:
		if !st.Connected {
			return st, nil
		}
		return n.Chain.Disconnect()
	case Switch:
		return n.Chain.Ready(ctx)
	default:
		return st, fmt.Errorf("unknown wallet action %q", n.Action)
	}
}
