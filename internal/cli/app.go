package cli

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/croplog/croplog/internal/config"
	"github.com/croplog/croplog/internal/connectivity"
	"github.com/croplog/croplog/internal/queue"
	"github.com/croplog/croplog/internal/rest"
	"github.com/croplog/croplog/internal/syncengine"
)

// app wires the queue store, record service client, connectivity monitor,
// and sync engine for one command invocation.
//
// Commands are one-shot processes: connectivity is established with a
// single probe at startup, and drains are requested explicitly rather than
// through a background Run loop.
type app struct {
	cfg     config.Config
	store   *queue.Store
	client  *rest.Client
	monitor *connectivity.Monitor
	engine  *syncengine.Engine
	log     *slog.Logger

	// dropped counts operations discarded after the retry cap during this
	// invocation, so commands can report the loss instead of counting it
	// as a delivery.
	dropped atomic.Int64
}

func newApp(ctx context.Context, opts *RootOptions) (*app, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid config", err)
	}

	if dir := filepath.Dir(cfg.Database); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to create database directory", err)
		}
	}
	st, err := queue.Open(cfg.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open queue database", err)
	}

	log := slog.Default()
	client := rest.NewClient(cfg.ServiceURL, rest.WithLogger(log))
	monitor := connectivity.NewMonitor(client.Ping, cfg.Sync.ProbeInterval.Std(), log)

	a := &app{
		cfg:     cfg,
		store:   st,
		client:  client,
		monitor: monitor,
		log:     log,
	}
	a.engine = syncengine.New(ctx, st, client, monitor,
		syncengine.WithMaxAttempts(cfg.Sync.MaxAttempts),
		syncengine.WithAttemptTimeout(cfg.Sync.AttemptTimeout.Std()),
		syncengine.WithLogger(log),
		syncengine.WithDropHandler(func(op queue.Operation, cause error) {
			a.dropped.Add(1)
		}),
	)

	// One probe up front so the engine knows whether it may drain.
	monitor.Check(ctx)

	return a, nil
}

func (a *app) Close() {
	a.engine.Close()
	if err := a.store.Close(); err != nil {
		a.log.Error("error closing queue database", "error", err)
	}
}
