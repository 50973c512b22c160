package times

import "context"

// Store is the root of the storage contract. Every backend (memory,
// embedded key-value file, remote proxy) implements it with the same
// observable behaviour.
type Store interface {
	// Check is a liveness probe. It must not mutate state.
	Check(ctx context.Context) error

	// Get returns one handle per existing Times. Order is not guaranteed;
	// callers sort if they need to.
	Get(ctx context.Context) ([]TimesStore, error)

	// Create allocates a new Times with the given title.
	// Whether titles must be unique is backend specific.
	Create(ctx context.Context, title string) (TimesStore, error)

	// Delete removes a Times and everything it owns.
	// No backend supports this yet; it returns ErrUnsupported.
	Delete(ctx context.Context, tid uint64) error
}

// TimesStore is a handle scoped to exactly one Times id for its lifetime.
type TimesStore interface {
	// Get returns the Times record held by the handle without touching storage.
	Get() Times

	// Update replaces the stored record and stamps UpdatedAt with the
	// current time, ignoring any stamp supplied by the caller.
	// ID and CreatedAt are kept from the stored record.
	Update(ctx context.Context, t Times) (Times, error)

	// PostStore returns the post handle for this Times, bootstrapping
	// its index on first use. Repeated calls return an equivalent handle.
	PostStore(ctx context.Context) (PostStore, error)

	// TodoStore returns the todo handle for this Times, bootstrapping
	// its index on first use.
	TodoStore(ctx context.Context) (TodoStore, error)
}

// PostStore manages the Posts of one Times.
type PostStore interface {
	// Get returns the post with id pid or ErrNotFound.
	Get(ctx context.Context, pid uint64) (Post, error)

	// GetAll returns every post of the Times.
	GetAll(ctx context.Context) ([]Post, error)

	// Post creates a post with the next id. UpdatedAt is nil.
	Post(ctx context.Context, text string, file *File) (Post, error)

	// Update replaces a post and stamps UpdatedAt.
	Update(ctx context.Context, p Post) (Post, error)

	// Delete removes a post.
	Delete(ctx context.Context, pid uint64) error
}

// TodoStore manages the Todos of one Times.
type TodoStore interface {
	// Get returns every todo of the Times.
	Get(ctx context.Context) ([]Todo, error)

	// New creates a pending todo with the next id.
	New(ctx context.Context, content string) (Todo, error)

	// Done moves a todo to Done (done=true) or back to Pending (done=false).
	// Requesting the state the todo is already in fails with
	// ErrInvalidStateTransition.
	Done(ctx context.Context, tdid uint64, done bool) (Todo, error)

	// Update replaces a todo.
	Update(ctx context.Context, t Todo) (Todo, error)

	// Delete removes a todo.
	Delete(ctx context.Context, tdid uint64) error
}
