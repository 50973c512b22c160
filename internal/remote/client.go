package remote

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"sync"

	"times-go/internal/times"
)

// Option configures a client Store.
type Option func(*Store)

// WithLogger sets the client logger.
func WithLogger(l times.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Store is a times.Store whose operations run on a remote Server.
// Transport failures are reported as times.ErrBackendFailure.
type Store struct {
	client *rpc.Client
	logger times.Logger
}

// Dial connects to the server at addr.
func Dial(ctx context.Context, addr string, opts ...Option) (*Store, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w: %w", addr, times.ErrBackendFailure, err)
	}
	s := NewClient(conn, opts...)
	s.logger.Info("connected to store", "addr", addr)
	return s, nil
}

// NewClient returns a Store speaking JSON-RPC over conn.
func NewClient(conn io.ReadWriteCloser, opts ...Option) *Store {
	s := &Store{
		client: jsonrpc.NewClient(conn),
		logger: times.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close closes the connection. Handles must not be used afterwards.
func (s *Store) Close() error {
	return s.client.Close()
}

// call invokes method and waits for the reply or ctx.
func (s *Store) call(ctx context.Context, method string, args any, reply replier) error {
	call := s.client.Go(ServiceName+"."+method, args, reply, make(chan *rpc.Call, 1))
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w: %w", method, times.ErrBackendFailure, ctx.Err())
	case <-call.Done:
	}
	if call.Error != nil {
		s.logger.Warn("remote call failed", "method", method, "error", call.Error)
		return fmt.Errorf("%s: %w: %w", method, times.ErrBackendFailure, call.Error)
	}
	if st := reply.status(); st.Err != nil {
		return fmt.Errorf("%s: %w", method, st.Err)
	}
	return nil
}

func (s *Store) Check(ctx context.Context) error {
	return s.call(ctx, "Check", &NoArgs{}, &Status{})
}

func (s *Store) Get(ctx context.Context) ([]times.TimesStore, error) {
	var reply ListReply
	if err := s.call(ctx, "List", &NoArgs{}, &reply); err != nil {
		return nil, err
	}
	handles := make([]times.TimesStore, 0, len(reply.Times))
	for _, t := range reply.Times {
		handles = append(handles, &TimesStore{store: s, times: t})
	}
	return handles, nil
}

func (s *Store) Create(ctx context.Context, title string) (times.TimesStore, error) {
	var reply TimesReply
	if err := s.call(ctx, "Create", &CreateArgs{Title: title}, &reply); err != nil {
		return nil, err
	}
	return &TimesStore{store: s, times: reply.Times}, nil
}

func (s *Store) Delete(ctx context.Context, tid uint64) error {
	return s.call(ctx, "Delete", &TimesArgs{TID: tid}, &Status{})
}

// TimesStore is a client handle on one remote Times.
type TimesStore struct {
	store *Store

	mu    sync.Mutex
	times times.Times
	posts *PostStore
	todos *TodoStore
}

func (h *TimesStore) Get() times.Times {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.times
}

func (h *TimesStore) Update(ctx context.Context, t times.Times) (times.Times, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	t.ID = h.times.ID
	var reply TimesReply
	if err := h.store.call(ctx, "Update", &UpdateTimesArgs{Times: t}, &reply); err != nil {
		return times.Times{}, err
	}
	h.times = reply.Times
	return reply.Times, nil
}

func (h *TimesStore) PostStore(ctx context.Context) (times.PostStore, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.posts == nil {
		if err := h.store.call(ctx, "OpenPosts", &TimesArgs{TID: h.times.ID}, &Status{}); err != nil {
			return nil, err
		}
		h.posts = &PostStore{store: h.store, tid: h.times.ID}
	}
	return h.posts, nil
}

func (h *TimesStore) TodoStore(ctx context.Context) (times.TodoStore, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.todos == nil {
		if err := h.store.call(ctx, "OpenTodos", &TimesArgs{TID: h.times.ID}, &Status{}); err != nil {
			return nil, err
		}
		h.todos = &TodoStore{store: h.store, tid: h.times.ID}
	}
	return h.todos, nil
}

// PostStore forwards post operations for one Times.
type PostStore struct {
	store *Store
	tid   uint64
}

// Get fetches every post of the Times and picks pid from the result.
func (p *PostStore) Get(ctx context.Context, pid uint64) (times.Post, error) {
	posts, err := p.GetAll(ctx)
	if err != nil {
		return times.Post{}, err
	}
	for _, post := range posts {
		if post.ID == pid {
			return post, nil
		}
	}
	return times.Post{}, fmt.Errorf("post %d: %w", pid, times.ErrNotFound)
}

func (p *PostStore) GetAll(ctx context.Context) ([]times.Post, error) {
	var reply PostsReply
	if err := p.store.call(ctx, "Posts", &TimesArgs{TID: p.tid}, &reply); err != nil {
		return nil, err
	}
	return reply.Posts, nil
}

func (p *PostStore) Post(ctx context.Context, text string, file *times.File) (times.Post, error) {
	var reply PostReply
	if err := p.store.call(ctx, "NewPost", &NewPostArgs{TID: p.tid, Text: text, File: file}, &reply); err != nil {
		return times.Post{}, err
	}
	return reply.Post, nil
}

func (p *PostStore) Update(ctx context.Context, post times.Post) (times.Post, error) {
	var reply PostReply
	if err := p.store.call(ctx, "UpdatePost", &UpdatePostArgs{TID: p.tid, Post: post}, &reply); err != nil {
		return times.Post{}, err
	}
	return reply.Post, nil
}

func (p *PostStore) Delete(ctx context.Context, pid uint64) error {
	return p.store.call(ctx, "DeletePost", &PostArgs{TID: p.tid, PID: pid}, &Status{})
}

// TodoStore forwards todo operations for one Times.
type TodoStore struct {
	store *Store
	tid   uint64
}

func (t *TodoStore) Get(ctx context.Context) ([]times.Todo, error) {
	var reply TodosReply
	if err := t.store.call(ctx, "Todos", &TimesArgs{TID: t.tid}, &reply); err != nil {
		return nil, err
	}
	return reply.Todos, nil
}

func (t *TodoStore) New(ctx context.Context, content string) (times.Todo, error) {
	var reply TodoReply
	if err := t.store.call(ctx, "NewTodo", &NewTodoArgs{TID: t.tid, Content: content}, &reply); err != nil {
		return times.Todo{}, err
	}
	return reply.Todo, nil
}

func (t *TodoStore) Done(ctx context.Context, tdid uint64, done bool) (times.Todo, error) {
	var reply TodoReply
	if err := t.store.call(ctx, "DoneTodo", &DoneArgs{TID: t.tid, TDID: tdid, Done: done}, &reply); err != nil {
		return times.Todo{}, err
	}
	return reply.Todo, nil
}

func (t *TodoStore) Update(ctx context.Context, td times.Todo) (times.Todo, error) {
	var reply TodoReply
	if err := t.store.call(ctx, "UpdateTodo", &UpdateTodoArgs{TID: t.tid, Todo: td}, &reply); err != nil {
		return times.Todo{}, err
	}
	return reply.Todo, nil
}

func (t *TodoStore) Delete(ctx context.Context, tdid uint64) error {
	return t.store.call(ctx, "DeleteTodo", &TodoArgs{TID: t.tid, TDID: tdid}, &Status{})
}

var (
	_ times.Store      = (*Store)(nil)
	_ times.TimesStore = (*TimesStore)(nil)
	_ times.PostStore  = (*PostStore)(nil)
	_ times.TodoStore  = (*TodoStore)(nil)
)
