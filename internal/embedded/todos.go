package embedded

import (
	"context"
	"fmt"

	"times-go/internal/times"
)

// TodoStore manages the todos of one Times. Update and Delete are not
// supported by this backend.
type TodoStore struct {
	tid   uint64
	sh    *shared
	todos *collection[times.Todo]
}

func (t *TodoStore) Get(ctx context.Context) ([]times.Todo, error) {
	return t.todos.all(ctx)
}

func (t *TodoStore) New(ctx context.Context, content string) (times.Todo, error) {
	now := t.sh.clock.Now()
	td, err := t.todos.insert(ctx, func(id uint64) times.Todo {
		return times.Todo{
			ID:        id,
			Content:   content,
			CreatedAt: now,
		}
	})
	if err != nil {
		return times.Todo{}, fmt.Errorf("times %d: %w", t.tid, err)
	}
	return td, nil
}

// Done rewrites the todo record with the requested state. Asking for the
// current state is rejected.
func (t *TodoStore) Done(ctx context.Context, tdid uint64, done bool) (times.Todo, error) {
	td, err := t.todos.modify(ctx, tdid, func(td *times.Todo) error {
		if (td.State() == times.Done) == done {
			return fmt.Errorf("todo %d is already %s: %w", tdid, td.State(), times.ErrInvalidStateTransition)
		}
		if done {
			now := t.sh.clock.Now()
			td.DoneAt = &now
		} else {
			td.DoneAt = nil
		}
		return nil
	})
	if err != nil {
		return times.Todo{}, fmt.Errorf("times %d: %w", t.tid, err)
	}
	return td, nil
}

func (t *TodoStore) Update(_ context.Context, td times.Todo) (times.Todo, error) {
	return times.Todo{}, fmt.Errorf("update todo %d in times %d: %w", td.ID, t.tid, times.ErrUnsupported)
}

func (t *TodoStore) Delete(_ context.Context, tdid uint64) error {
	return fmt.Errorf("delete todo %d in times %d: %w", tdid, t.tid, times.ErrUnsupported)
}

var _ times.TodoStore = (*TodoStore)(nil)
