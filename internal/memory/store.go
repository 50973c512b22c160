// Package memory is the in-process reference implementation of the
// times.Store contract. Nothing is persisted; it is the behavioural
// baseline the other backends are tested against.
package memory

import (
	"context"
	"fmt"
	"sync"

	"times-go/internal/times"
)

// bucket holds one Times and everything it owns.
type bucket struct {
	times      times.Times
	posts      map[uint64]times.Post
	nextPostID uint64
	todos      map[uint64]times.Todo
	nextTodoID uint64
}

// Store is an in-memory implementation of the times.Store contract.
// It is safe for concurrent use. Titles are not required to be unique.
type Store struct {
	mu      sync.Mutex
	buckets map[uint64]*bucket
	nextID  uint64
	clock   times.Clock
}

// NewStore creates an empty in-memory store stamped by clock.
func NewStore(clock times.Clock) *Store {
	if clock == nil {
		clock = times.RealClock{}
	}
	return &Store{
		buckets: make(map[uint64]*bucket),
		clock:   clock,
	}
}

// Check always succeeds for the in-memory store.
func (s *Store) Check(context.Context) error {
	return nil
}

// Get returns a handle per Times.
func (s *Store) Get(context.Context) ([]times.TimesStore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	handles := make([]times.TimesStore, 0, len(s.buckets))
	for tid := range s.buckets {
		handles = append(handles, &TimesStore{store: s, tid: tid})
	}
	return handles, nil
}

// Create allocates the next Times id.
func (s *Store) Create(_ context.Context, title string) (times.TimesStore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tid := s.nextID
	s.nextID++
	s.buckets[tid] = &bucket{
		times: times.Times{ID: tid, Title: title, CreatedAt: s.clock.Now()},
		posts: make(map[uint64]times.Post),
		todos: make(map[uint64]times.Todo),
	}
	return &TimesStore{store: s, tid: tid}, nil
}

// Delete is not supported.
func (s *Store) Delete(_ context.Context, tid uint64) error {
	return fmt.Errorf("delete times %d: %w", tid, times.ErrUnsupported)
}

// bucket returns the bucket for tid. Callers must hold s.mu.
func (s *Store) bucket(tid uint64) (*bucket, error) {
	b, ok := s.buckets[tid]
	if !ok {
		return nil, fmt.Errorf("times %d: %w", tid, times.ErrNotFound)
	}
	return b, nil
}

// TimesStore is a handle on one Times of a memory Store.
type TimesStore struct {
	store *Store
	tid   uint64
}

// Get returns the current Times record.
func (h *TimesStore) Get() times.Times {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	return h.store.buckets[h.tid].times
}

// Update replaces the title and stamps UpdatedAt.
func (h *TimesStore) Update(_ context.Context, t times.Times) (times.Times, error) {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	b, err := h.store.bucket(h.tid)
	if err != nil {
		return times.Times{}, err
	}

	now := h.store.clock.Now()
	b.times = times.Times{
		ID:        b.times.ID,
		Title:     t.Title,
		CreatedAt: b.times.CreatedAt,
		UpdatedAt: &now,
	}
	return b.times, nil
}

// PostStore returns the post handle for this Times.
func (h *TimesStore) PostStore(context.Context) (times.PostStore, error) {
	return &PostStore{store: h.store, tid: h.tid}, nil
}

// TodoStore returns the todo handle for this Times.
func (h *TimesStore) TodoStore(context.Context) (times.TodoStore, error) {
	return &TodoStore{store: h.store, tid: h.tid}, nil
}

// Compile-time checks that the memory handles implement the contract.
var (
	_ times.Store      = (*Store)(nil)
	_ times.TimesStore = (*TimesStore)(nil)
)
