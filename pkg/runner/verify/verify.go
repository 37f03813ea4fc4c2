// Package verify provides the runner that records completed tasks on the
// ledger.
package verify

import (
	"context"
	"errors"
	"io"

	"github.com/ethereum/go-ethereum/common"

	"tableflip.dev/taskverse/pkg/app"
	"tableflip.dev/taskverse/pkg/printers"
	"tableflip.dev/taskverse/pkg/task"
)

// Verify anchors the completion of a task, connecting the wallet and
// switching networks as needed.
type Verify struct {
	ID    string
	JSON  bool
	Chain *app.ChainService
	Out   io.Writer
}

type result struct {
	Task   task.Task `json:"task"`
	TxHash string    `json:"txHash,omitempty"`
}

func (n *Verify) Do(ctx context.Context) error {
	if n.Chain == nil {
		return errors.New("can not verify, no wallet")
	}
	st, err := n.Chain.Ready(ctx)
	if err != nil {
		return err
	}
	rcpt, err := n.Chain.VerifyTask(ctx, n.ID)
	if err != nil {
		return err
	}

	res := result{Task: rcpt.Task}
	if rcpt.TxHash != (common.Hash{}) {
		res.TxHash = rcpt.TxHash.Hex()
	}
	pp := printers.PrettyPrint{ShowID: true, Out: n.Out}
	if n.JSON {
		return pp.JSON(res)
	}
	pp.NewLine()
	pp.Wallet(st)
	pp.NewLine()
	pp.Title("Verified")
	pp.Tasks(rcpt.Task)
	if res.TxHash != "" {
		pp.Field("Transaction", res.TxHash)
	} else {
		pp.Field("Transaction", "already verified")
	}
	return nil
}
