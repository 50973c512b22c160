// Package app wires configuration, logging and a storage backend into the
// operations exposed by the times command.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"times-go/internal/config"
	"times-go/internal/encryption"
	"times-go/internal/remote"
	"times-go/internal/times"
	"times-go/internal/vault"
)

// App is the layer between the CLI and a times.Store.
type App struct {
	cfg     *config.Config
	store   times.Store
	logger  times.Logger
	clock   times.Clock
	op      *Operation
	logFile *os.File

	// Built on first use.
	vault     times.Vault
	encryptor times.Encryptor
}

// NewApp opens the configured store and the log file. operation names the
// command being run. The caller must call Close.
func NewApp(ctx context.Context, cfg *config.Config, operation string) (*App, error) {
	clock := times.RealClock{}
	op := NewOperation(operation, clock)

	logger, logFile, err := newLogger(cfg.LogDir, op.ID, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	adapter := &slogAdapter{l: logger.With("op", op.Name)}

	store, err := NewStoreFromConfig(ctx, cfg, adapter, clock)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("opening store: %w", err)
	}

	a := newApp(cfg, store, adapter, clock)
	a.op = op
	a.logFile = logFile
	return a, nil
}

func newApp(cfg *config.Config, store times.Store, logger times.Logger, clock times.Clock) *App {
	return &App{
		cfg:    cfg,
		store:  store,
		logger: logger,
		clock:  clock,
		op:     NewOperation("", clock),
	}
}

// Store returns the opened backend.
func (a *App) Store() times.Store { return a.store }

// Close closes the store and the log file.
func (a *App) Close() error {
	var err error
	if c, ok := a.store.(io.Closer); ok {
		err = c.Close()
	}
	a.logger.Info("operation finished", "status", a.op.Status)
	if a.logFile != nil {
		a.logFile.Close()
	}
	return err
}

// ListTimes returns every Times ordered by id.
func (a *App) ListTimes(ctx context.Context) ([]times.Times, error) {
	handles, err := a.store.Get(ctx)
	if err != nil {
		return nil, a.op.Fail(err)
	}
	times.SortTimes(handles)
	out := make([]times.Times, len(handles))
	for i, h := range handles {
		out[i] = h.Get()
	}
	return out, nil
}

func (a *App) CreateTimes(ctx context.Context, title string) (times.Times, error) {
	if strings.TrimSpace(title) == "" {
		return times.Times{}, a.op.Fail(fmt.Errorf("title must not be empty"))
	}
	ts, err := a.store.Create(ctx, title)
	if err != nil {
		return times.Times{}, a.op.Fail(err)
	}
	return ts.Get(), nil
}

func (a *App) RenameTimes(ctx context.Context, tid uint64, title string) (times.Times, error) {
	ts, err := times.FindTimes(ctx, a.store, tid)
	if err != nil {
		return times.Times{}, a.op.Fail(err)
	}
	t := ts.Get()
	t.Title = title
	updated, err := ts.Update(ctx, t)
	return updated, a.op.Fail(err)
}

// AddPost posts text to a Times, attaching the file at attachPath when set.
func (a *App) AddPost(ctx context.Context, tid uint64, text, attachPath string) (times.Post, error) {
	var file *times.File
	if attachPath != "" {
		f, err := loadAttachment(attachPath)
		if err != nil {
			return times.Post{}, a.op.Fail(err)
		}
		file = f
	}

	ps, err := a.postStore(ctx, tid)
	if err != nil {
		return times.Post{}, a.op.Fail(err)
	}
	p, err := ps.Post(ctx, text, file)
	return p, a.op.Fail(err)
}

func (a *App) ListPosts(ctx context.Context, tid uint64) ([]times.Post, error) {
	ps, err := a.postStore(ctx, tid)
	if err != nil {
		return nil, a.op.Fail(err)
	}
	posts, err := ps.GetAll(ctx)
	if err != nil {
		return nil, a.op.Fail(err)
	}
	times.SortPosts(posts)
	return posts, nil
}

func (a *App) AddTodo(ctx context.Context, tid uint64, content string) (times.Todo, error) {
	tds, err := a.todoStore(ctx, tid)
	if err != nil {
		return times.Todo{}, a.op.Fail(err)
	}
	td, err := tds.New(ctx, content)
	return td, a.op.Fail(err)
}

func (a *App) ListTodos(ctx context.Context, tid uint64) ([]times.Todo, error) {
	tds, err := a.todoStore(ctx, tid)
	if err != nil {
		return nil, a.op.Fail(err)
	}
	todos, err := tds.Get(ctx)
	return todos, a.op.Fail(err)
}

func (a *App) SetTodoDone(ctx context.Context, tid, tdid uint64, done bool) (times.Todo, error) {
	tds, err := a.todoStore(ctx, tid)
	if err != nil {
		return times.Todo{}, a.op.Fail(err)
	}
	td, err := tds.Done(ctx, tdid, done)
	return td, a.op.Fail(err)
}

func (a *App) postStore(ctx context.Context, tid uint64) (times.PostStore, error) {
	ts, err := times.FindTimes(ctx, a.store, tid)
	if err != nil {
		return nil, err
	}
	return ts.PostStore(ctx)
}

func (a *App) todoStore(ctx context.Context, tid uint64) (times.TodoStore, error) {
	ts, err := times.FindTimes(ctx, a.store, tid)
	if err != nil {
		return nil, err
	}
	return ts.TodoStore(ctx)
}

// Serve hosts the store on cfg.Server.Listen until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	listen := a.cfg.Server.Listen
	if listen == "" {
		listen = config.DefaultListen
	}
	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return a.op.Fail(fmt.Errorf("listening on %s: %w", listen, err))
	}
	return a.serve(ctx, ln)
}

func (a *App) serve(ctx context.Context, ln net.Listener) error {
	srv, err := remote.NewServer(a.store,
		remote.WithServerLogger(a.logger),
		remote.WithMaxConnections(a.cfg.Server.MaxConnections),
	)
	if err != nil {
		ln.Close()
		return a.op.Fail(err)
	}
	return a.op.Fail(srv.Serve(ctx, ln))
}

// SetupEncryption generates the snapshot key pair.
func (a *App) SetupEncryption(passphrase string) error {
	enc, err := a.getEncryptor()
	if err != nil {
		return a.op.Fail(err)
	}
	if err := enc.Setup(passphrase); err != nil {
		if errors.Is(err, encryption.ErrKeysExist) {
			return a.op.Fail(fmt.Errorf("encryption is already set up: %w", err))
		}
		return a.op.Fail(err)
	}
	a.logger.Info("encryption keys generated")
	return nil
}

func (a *App) getVault(ctx context.Context) (times.Vault, error) {
	if a.vault != nil {
		return a.vault, nil
	}
	if len(a.cfg.Vaults) == 0 {
		return nil, fmt.Errorf("no vaults configured")
	}
	v, err := vault.NewVaultFromConfig(ctx, a.cfg.Vaults[0])
	if err != nil {
		return nil, fmt.Errorf("creating vault: %w", err)
	}
	a.vault = v
	return v, nil
}

func (a *App) getEncryptor() (times.Encryptor, error) {
	if a.encryptor != nil {
		return a.encryptor, nil
	}
	enc, err := encryption.NewEncryptorFromConfig(a.cfg.Encryption)
	if err != nil {
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}
	a.encryptor = enc
	return enc, nil
}
