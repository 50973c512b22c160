// Package embedded persists the times.Store contract into a flat
// key-value engine, simulating the Times/Post/Todo hierarchy with
// path-like keys and small index records per scope.
package embedded

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"times-go/internal/kv"
	"times-go/internal/times"
)

// Option configures a Store.
type Option func(*shared)

// WithClock sets the clock used for created/updated/done stamps.
func WithClock(c times.Clock) Option {
	return func(s *shared) { s.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l times.Logger) Option {
	return func(s *shared) { s.logger = l }
}

// Store is the embedded key-value implementation of times.Store.
// Titles are unique within one Store.
type Store struct {
	sh *shared

	mu      sync.Mutex
	index   index
	handles map[uint64]*TimesStore
}

// Open reads the root index from engine, creating it if absent, and
// builds one TimesStore per listed Times. The Store takes ownership of
// engine and closes it on Close.
func Open(ctx context.Context, engine kv.Engine, opts ...Option) (*Store, error) {
	sh := &shared{
		engine: engine,
		clock:  times.RealClock{},
		logger: times.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(sh)
	}

	ix, err := sh.loadIndex(ctx, rootIndexKey)
	if err != nil {
		return nil, fmt.Errorf("opening root index: %w", err)
	}

	s := &Store{
		sh:      sh,
		index:   ix,
		handles: make(map[uint64]*TimesStore, len(ix.IDs)),
	}
	for _, tid := range ix.IDs {
		h, err := loadTimesStore(ctx, s, tid)
		if err != nil {
			return nil, err
		}
		s.handles[tid] = h
	}

	sh.logger.Info("embedded store opened", "times", len(ix.IDs), "next_id", ix.NextID)
	return s, nil
}

// Check reads the root index to prove the engine is reachable.
func (s *Store) Check(ctx context.Context) error {
	var ix index
	if err := s.sh.read(ctx, rootIndexKey, &ix); err != nil {
		return fmt.Errorf("check: %w", err)
	}
	return nil
}

// Get returns the handles in root index order.
func (s *Store) Get(context.Context) ([]times.TimesStore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	handles := make([]times.TimesStore, 0, len(s.index.IDs))
	for _, tid := range s.index.IDs {
		handles = append(handles, s.handles[tid])
	}
	return handles, nil
}

// Create writes the Times record, then registers it in the root index.
func (s *Store) Create(ctx context.Context, title string) (times.TimesStore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.titleTaken(title, nil) {
		return nil, fmt.Errorf("times %q: %w", title, times.ErrAlreadyExists)
	}

	tid := s.index.NextID
	t := times.Times{
		ID:        tid,
		Title:     title,
		CreatedAt: s.sh.clock.Now(),
	}
	if err := s.sh.write(ctx, timesKey(tid), t); err != nil {
		return nil, fmt.Errorf("creating times %d: %w", tid, err)
	}

	// Index sync: write released the engine lock, so this write can take it.
	next := s.index.with(tid)
	if err := s.sh.write(ctx, rootIndexKey, next); err != nil {
		return nil, fmt.Errorf("indexing times %d: %w", tid, err)
	}
	s.index = next

	h := &TimesStore{sh: s.sh, owner: s, times: t}
	s.handles[tid] = h

	s.sh.logger.Info("times created", "id", tid, "title", title)
	return h, nil
}

// Delete is not supported.
func (s *Store) Delete(_ context.Context, tid uint64) error {
	return fmt.Errorf("delete times %d: %w", tid, times.ErrUnsupported)
}

// BackupTo writes a consistent copy of the data file to destPath.
// The engine lock is held for the duration so no write interleaves.
func (s *Store) BackupTo(ctx context.Context, destPath string) error {
	snap, ok := s.sh.engine.(kv.Snapshotter)
	if !ok {
		return fmt.Errorf("snapshot: engine %T: %w", s.sh.engine, times.ErrUnsupported)
	}

	s.sh.mu.Lock()
	defer s.sh.mu.Unlock()

	if err := snap.BackupTo(ctx, destPath); err != nil {
		return fmt.Errorf("snapshot: %w: %w", times.ErrBackendFailure, err)
	}
	return nil
}

// Close closes the underlying engine. Handles must not be used afterwards.
func (s *Store) Close() error {
	s.sh.mu.Lock()
	defer s.sh.mu.Unlock()
	return s.sh.engine.Close()
}

// titleTaken reports whether a Times other than except already uses
// title. s.mu must be held.
func (s *Store) titleTaken(title string, except *TimesStore) bool {
	for _, h := range s.handles {
		if h != except && h.Get().Title == title {
			return true
		}
	}
	return false
}

func loadTimesStore(ctx context.Context, s *Store, tid uint64) (*TimesStore, error) {
	var t times.Times
	if err := s.sh.read(ctx, timesKey(tid), &t); err != nil {
		if errors.Is(err, times.ErrNotFound) {
			return nil, fmt.Errorf("times %d is indexed but has no record: %w", tid, times.ErrBackendFailure)
		}
		return nil, fmt.Errorf("loading times %d: %w", tid, err)
	}
	return &TimesStore{sh: s.sh, owner: s, times: t}, nil
}

var _ times.Store = (*Store)(nil)
