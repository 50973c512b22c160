package embedded

import (
	"context"
	"fmt"
	"sync"

	"times-go/internal/times"
)

// TimesStore is bound to one Times id. It caches the Times record and
// the leaf stores, which are built on first request.
type TimesStore struct {
	sh    *shared
	owner *Store

	mu    sync.Mutex
	times times.Times
	posts *PostStore
	todos *TodoStore
}

// Get returns the cached record without reading the engine.
func (h *TimesStore) Get() times.Times {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.times
}

// Update persists a replacement record. Only the title is taken from t,
// and it must not belong to another Times in the same Store.
func (h *TimesStore) Update(ctx context.Context, t times.Times) (times.Times, error) {
	h.owner.mu.Lock()
	defer h.owner.mu.Unlock()

	if h.owner.titleTaken(t.Title, h) {
		return times.Times{}, fmt.Errorf("times %q: %w", t.Title, times.ErrAlreadyExists)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.sh.clock.Now()
	next := times.Times{
		ID:        h.times.ID,
		Title:     t.Title,
		CreatedAt: h.times.CreatedAt,
		UpdatedAt: &now,
	}
	if err := h.sh.write(ctx, timesKey(next.ID), next); err != nil {
		return times.Times{}, fmt.Errorf("updating times %d: %w", next.ID, err)
	}
	h.times = next
	return next, nil
}

func (h *TimesStore) PostStore(ctx context.Context) (times.PostStore, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.posts == nil {
		tid := h.times.ID
		c, err := openCollection[times.Post](ctx, h.sh, "post", postIndexKey(tid), func(pid uint64) string {
			return postKey(tid, pid)
		})
		if err != nil {
			return nil, fmt.Errorf("times %d: %w", tid, err)
		}
		h.posts = &PostStore{tid: tid, sh: h.sh, posts: c}
	}
	return h.posts, nil
}

func (h *TimesStore) TodoStore(ctx context.Context) (times.TodoStore, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.todos == nil {
		tid := h.times.ID
		c, err := openCollection[times.Todo](ctx, h.sh, "todo", todoIndexKey(tid), func(tdid uint64) string {
			return todoKey(tid, tdid)
		})
		if err != nil {
			return nil, fmt.Errorf("times %d: %w", tid, err)
		}
		h.todos = &TodoStore{tid: tid, sh: h.sh, todos: c}
	}
	return h.todos, nil
}

var _ times.TimesStore = (*TimesStore)(nil)
