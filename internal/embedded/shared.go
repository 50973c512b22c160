package embedded

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"times-go/internal/kv"
	"times-go/internal/times"
)

// shared is the engine handle every Store, TimesStore and leaf store
// derived from one Open holds. mu is a single coarse lock: readers and
// writers are not distinguished. It is taken for one key access at a
// time and never held while calling back into a handle.
type shared struct {
	mu     sync.Mutex
	engine kv.Engine
	clock  times.Clock
	logger times.Logger
}

// read decodes the record stored under key into v.
// A missing key is reported as times.ErrNotFound.
func (s *shared) read(ctx context.Context, key string, v any) error {
	s.mu.Lock()
	data, err := s.engine.Get(ctx, key)
	s.mu.Unlock()

	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return fmt.Errorf("%s: %w", key, times.ErrNotFound)
		}
		return fmt.Errorf("reading %s: %w: %w", key, times.ErrBackendFailure, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w: %w", key, times.ErrBackendFailure, err)
	}
	return nil
}

// write encodes v and stores it under key.
func (s *shared) write(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w: %w", key, times.ErrBackendFailure, err)
	}

	s.mu.Lock()
	err = s.engine.Put(ctx, key, data)
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("writing %s: %w: %w", key, times.ErrBackendFailure, err)
	}
	return nil
}

// loadIndex reads the index at key, writing an empty one if it does not exist yet.
func (s *shared) loadIndex(ctx context.Context, key string) (index, error) {
	var ix index
	err := s.read(ctx, key, &ix)
	if err == nil {
		return ix, nil
	}
	if !errors.Is(err, times.ErrNotFound) {
		return index{}, err
	}

	ix = index{IDs: []uint64{}}
	if err := s.write(ctx, key, ix); err != nil {
		return index{}, err
	}
	s.logger.Debug("index created", "key", key)
	return ix, nil
}
