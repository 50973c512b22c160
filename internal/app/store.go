package app

import (
	"context"
	"fmt"

	"times-go/internal/config"
	"times-go/internal/embedded"
	"times-go/internal/kv"
	"times-go/internal/memory"
	"times-go/internal/remote"
	"times-go/internal/times"
)

// NewStoreFromConfig opens the backend selected by cfg.Store.Type. Stores
// that hold resources implement io.Closer.
func NewStoreFromConfig(ctx context.Context, cfg *config.Config, logger times.Logger, clock times.Clock) (times.Store, error) {
	switch cfg.Store.Type {
	case "memory":
		return memory.NewStore(clock), nil
	case "embedded", "":
		engine, err := kv.NewEngineFromConfig(cfg.Store)
		if err != nil {
			return nil, fmt.Errorf("opening kv engine: %w", err)
		}
		s, err := embedded.Open(ctx, engine, embedded.WithClock(clock), embedded.WithLogger(logger))
		if err != nil {
			engine.Close()
			return nil, err
		}
		return s, nil
	case "remote":
		if cfg.Store.Address == "" {
			return nil, fmt.Errorf("remote store requires address to be set")
		}
		return remote.Dial(ctx, cfg.Store.Address, remote.WithLogger(logger))
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Store.Type)
	}
}
