package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leadscout/leadscout/internal/ai"
	"github.com/leadscout/leadscout/internal/discovery"
	"github.com/leadscout/leadscout/internal/events"
	"github.com/leadscout/leadscout/internal/history"
	"github.com/leadscout/leadscout/internal/secrets"
	"github.com/leadscout/leadscout/internal/session"
	"github.com/leadscout/leadscout/internal/validation"
)

// app holds the History store and its lock for one command.
type app struct {
	store   history.Store
	lock    *history.Lock
	session *session.Session
}

// openStore locks and opens History. Only one leadscout process may hold it.
func openStore(ctx context.Context) (*app, error) {
	var lock *history.Lock
	if path := cfg.LockPath(); path != "" {
		l, err := history.AcquireLock(path)
		if err != nil {
			return nil, err
		}
		lock = l
	}

	store, err := history.Open(ctx, cfg.StorageBackend, cfg.StoragePath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("opening history: %w", err)
	}
	return &app{store: store, lock: lock}, nil
}

// openSession opens History and wires the oracle clients into a session.
func openSession(ctx context.Context, observer session.Observer) (*app, error) {
	key, source, err := secrets.ResolveAPIKey(cfg.Provider, apiKeyFlag)
	if err != nil {
		return nil, err
	}
	slog.Debug("using API key", "provider", cfg.Provider, "source", source, "key", secrets.Mask(key))

	oracle, err := ai.New(cfg.AIConfig(key))
	if err != nil {
		return nil, err
	}
	disc, err := discovery.NewClient(oracle, cfg.DiscoveryConfig())
	if err != nil {
		return nil, fmt.Errorf("discovery client: %w", err)
	}
	val, err := validation.NewClient(oracle, cfg.ValidationConfig())
	if err != nil {
		return nil, fmt.Errorf("validation client: %w", err)
	}

	a, err := openStore(ctx)
	if err != nil {
		return nil, err
	}

	s, err := session.New(ctx, session.Config{
		Store:      a.store,
		Discoverer: disc,
		Validator:  val,
		Observer:   logEvents(observer),
		Dedup:      cfg.DedupConfig(),
	})
	if err != nil {
		a.close()
		return nil, err
	}
	a.session = s
	return a, nil
}

// logEvents mirrors session events into the debug log before passing them on.
func logEvents(next session.Observer) session.Observer {
	return session.ObserverFunc(func(ev *events.Event) {
		slog.Debug("session event", "run", ev.RunID, "type", ev.Type, "severity", ev.Severity, "message", ev.Message)
		next.OnEvent(ev)
	})
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		slog.Warn("closing history", "error", err)
	}
	if err := a.lock.Unlock(); err != nil {
		slog.Warn("releasing history lock", "error", err)
	}
}
