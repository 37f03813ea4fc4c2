// Package account provides the runners behind registration and login.
package account

import (
	"context"
	"errors"
	"io"

	"tableflip.dev/taskverse/pkg/auth"
	"tableflip.dev/taskverse/pkg/printers"
)

// Action selects what the runner does.
type Action string

const (
	Register Action = "register"
	Login    Action = "login"
	WhoAmI   Action = "whoami"
)

// Account signs a user up or in and prints the session token.
type Account struct {
	Action   Action
	Name     string
	Email    string
	Password string
	Token    string
	JSON     bool

	Auth *auth.Service
	Out  io.Writer
}

func (n *Account) Do(ctx context.Context) error {
	if n.Auth == nil {
		return errors.New("can not authenticate, no auth service")
	}
	pp := printers.PrettyPrint{Out: n.Out}

	if n.Action == WhoAmI {
		id, err := n.Auth.VerifyToken(n.Token)
		if err != nil {
			return err
		}
		if n.JSON {
			return pp.JSON(map[string]string{"userId": id})
		}
		pp.Field("User", id)
		return nil
	}

	var (
		st  auth.State
		err error
	)
	switch n.Action {
	case Register:
		st, err = n.Auth.Register(ctx, n.Name, n.Email, n.Password)
	case Login:
		st, err = n.Auth.Login(ctx, n.Email, n.Password)
	default:
		return errors.New("unknown account action " + string(n.Action))
	}
	if err != nil {
		return err
	}
	if n.JSON {
		return pp.JSON(st)
	}
	pp.NewLine()
	pp.Field("User", st.User.Name+" <"+st.User.Email+">")
	if st.User.WalletAddress != "" {
		pp.Field("Wallet", st.User.WalletAddress)
	}
	pp.Field("Token", st.Token)
	return nil
}
