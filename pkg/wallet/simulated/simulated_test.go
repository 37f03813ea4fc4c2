package simulated

import (
	"context"
	"errors"
	"testing"
	"time"

	"tableflip.dev/taskverse/pkg/wallet"
)

const account = "0x52908400098527886E0F7030069857D2E4169EE7"

func TestMachineOverSimulatedWallet(t *testing.T) {
	p := New(Config{Installed: true, Accounts: []string{account}, ChainID: "0x1", Balance: "2.5"})
	m := wallet.NewMachine(p)
	ctx := context.Background()

	if s, _ := m.Detect(ctx); s.Phase != wallet.PhaseProviderIdle {
		t.Fatalf("expected idle before grant, got %s", s.Phase)
	}
	s, err := m.Connect(ctx)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if s.Balance != "2.5000" || s.CorrectNetwork {
		t.Fatalf("unexpected state %+v", s)
	}
	if s, err = m.SwitchNetwork(ctx); err != nil || !s.CorrectNetwork {
		t.Fatalf("switch: %+v %v", s, err)
	}

	p.SetAccounts()
	if s = m.State(); s.Connected || s.Phase != wallet.PhaseDisconnected {
		t.Fatalf("expected disconnect on empty accounts, got %+v", s)
	}
}

func TestNotInstalled(t *testing.T) {
	m := wallet.NewMachine(New(Config{}))
	if s, _ := m.Detect(context.Background()); s.Phase != wallet.PhaseNoProvider {
		t.Fatalf("expected no provider, got %s", s.Phase)
	}
}

func TestFailNext(t *testing.T) {
	p := New(Config{Installed: true, Accounts: []string{account}})
	boom := errors.New("boom")
	p.FailNext("RequestAccounts", boom)
	if _, err := p.RequestAccounts(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected injected failure, got %v", err)
	}
	if _, err := p.RequestAccounts(context.Background()); err != nil {
		t.Fatalf("failure should apply once, got %v", err)
	}
}

func TestLatencyHonoursContext(t *testing.T) {
	p := New(Config{Installed: true, Latency: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.ChainID(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
