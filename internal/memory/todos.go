package memory

import (
	"context"
	"fmt"
	"sort"

	"times-go/internal/times"
)

// TodoStore manages the todos of one Times in a memory Store.
type TodoStore struct {
	store *Store
	tid   uint64
}

// Get returns the todos sorted by ascending id.
func (t *TodoStore) Get(context.Context) ([]times.Todo, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	b, err := t.store.bucket(t.tid)
	if err != nil {
		return nil, err
	}
	todos := make([]times.Todo, 0, len(b.todos))
	for _, td := range b.todos {
		todos = append(todos, td)
	}
	sort.Slice(todos, func(i, j int) bool { return todos[i].ID < todos[j].ID })
	return todos, nil
}

func (t *TodoStore) New(_ context.Context, content string) (times.Todo, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	b, err := t.store.bucket(t.tid)
	if err != nil {
		return times.Todo{}, err
	}

	td := times.Todo{
		ID:        b.nextTodoID,
		Content:   content,
		CreatedAt: t.store.clock.Now(),
	}
	b.nextTodoID++
	b.todos[td.ID] = td
	return td, nil
}

func (t *TodoStore) Done(_ context.Context, tdid uint64, done bool) (times.Todo, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	b, err := t.store.bucket(t.tid)
	if err != nil {
		return times.Todo{}, err
	}
	td, ok := b.todos[tdid]
	if !ok {
		return times.Todo{}, fmt.Errorf("todo %d in times %d: %w", tdid, t.tid, times.ErrNotFound)
	}

	if (td.State() == times.Done) == done {
		return times.Todo{}, fmt.Errorf("todo %d is already %s: %w", tdid, td.State(), times.ErrInvalidStateTransition)
	}
	if done {
		now := t.store.clock.Now()
		td.DoneAt = &now
	} else {
		td.DoneAt = nil
	}
	b.todos[tdid] = td
	return td, nil
}

// Update replaces content and detail of an existing todo. Completion is
// only changed through Done.
func (t *TodoStore) Update(_ context.Context, td times.Todo) (times.Todo, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	b, err := t.store.bucket(t.tid)
	if err != nil {
		return times.Todo{}, err
	}
	old, ok := b.todos[td.ID]
	if !ok {
		return times.Todo{}, fmt.Errorf("update todo %d in times %d: %w", td.ID, t.tid, times.ErrNotFound)
	}

	old.Content = td.Content
	old.Detail = td.Detail
	b.todos[td.ID] = old
	return old, nil
}

func (t *TodoStore) Delete(_ context.Context, tdid uint64) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	b, err := t.store.bucket(t.tid)
	if err != nil {
		return err
	}
	if _, ok := b.todos[tdid]; !ok {
		return fmt.Errorf("delete todo %d in times %d: %w", tdid, t.tid, times.ErrNotFound)
	}
	delete(b.todos, tdid)
	return nil
}

var _ times.TodoStore = (*TodoStore)(nil)
