package commands

import (
	"context"
	"fmt"

	"tableflip.dev/taskverse/pkg/ai"
	"tableflip.dev/taskverse/pkg/app"
	"tableflip.dev/taskverse/pkg/auth"
	"tableflip.dev/taskverse/pkg/ledger"
	"tableflip.dev/taskverse/pkg/logging"
	"tableflip.dev/taskverse/pkg/store"
	"tableflip.dev/taskverse/pkg/taskstore"
	"tableflip.dev/taskverse/pkg/wallet"
	"tableflip.dev/taskverse/pkg/wallet/simulated"
)

// env is everything a command needs, built from the loaded settings.
type env struct {
	settings    *store.Settings
	persistence store.Persistence
	tasks       *app.TaskService
	chain       *app.ChainService
	auth        *auth.Service
}

// loadEnv opens the store, fetches the tasks and wires the simulated wallet
// and ledger.
func loadEnv(ctx context.Context) (*env, error) {
	if settings == nil {
		s, err := store.LoadConfig()
		if err != nil {
			return nil, err
		}
		settings = s
	}
	log := logging.Log()

	p, err := store.Load(settings)
	if err != nil {
		return nil, err
	}

	tasks := app.NewTaskService(taskstore.New(), p,
		app.WithLatency(settings.Latency),
		app.WithPrioritizer(ai.NewCanned(settings.Latency)),
		app.WithTaskLogger(log),
	)
	if _, err := tasks.Fetch(ctx); err != nil {
		return nil, err
	}

	contract, err := ledger.NewContract(
		ledger.WithLatency(settings.Latency),
		ledger.WithAddress(settings.LedgerContract),
	)
	if err != nil {
		return nil, err
	}

	provider := simulated.New(simulated.Config{
		Installed: settings.Wallet.Installed,
		Accounts:  settings.Wallet.Accounts,
		ChainID:   settings.Wallet.ChainID,
		Balance:   settings.Wallet.Balance,
		Latency:   settings.Latency,
	})
	machine := wallet.NewMachine(provider, wallet.WithTargetChain(targetChain(settings.ChainID)))

	a := auth.New(p, settings.AuthSecret, auth.WithLogger(log))
	chain := app.NewChainService(machine, contract, tasks,
		app.WithAuth(a),
		app.WithChainLogger(log),
	)

	return &env{
		settings:    settings,
		persistence: p,
		tasks:       tasks,
		chain:       chain,
		auth:        a,
	}, nil
}

// targetChain returns Mumbai unless another chain id is configured.
func targetChain(chainID string) wallet.ChainConfig {
	if chainID == "" || wallet.SameChain(chainID, wallet.MumbaiChainID) {
		return wallet.Mumbai
	}
	return wallet.ChainConfig{
		ChainID:        chainID,
		ChainName:      fmt.Sprintf("Chain %s", chainID),
		NativeCurrency: wallet.Mumbai.NativeCurrency,
	}
}
