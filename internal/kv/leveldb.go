package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"
)

// LevelDBEngine stores keys in a LevelDB directory.
type LevelDBEngine struct {
	db   *leveldb.DB
	path string
}

// NewLevelDBEngine opens (creating if needed) the LevelDB database at path.
func NewLevelDBEngine(path string) (*LevelDBEngine, error) {
	db, err := leveldb.OpenFile(path, &ldb_opt.Options{ErrorIfMissing: false})
	if err != nil {
		return nil, fmt.Errorf("opening leveldb %s: %w", path, err)
	}
	return &LevelDBEngine{db: db, path: path}, nil
}

func (e *LevelDBEngine) Get(_ context.Context, key string) ([]byte, error) {
	value, err := e.db.Get([]byte(key), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return value, nil
}

// Put writes synchronously so an acknowledged write survives a crash.
func (e *LevelDBEngine) Put(_ context.Context, key string, value []byte) error {
	if err := e.db.Put([]byte(key), value, &ldb_opt.WriteOptions{Sync: true}); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

func (e *LevelDBEngine) Close() error {
	return e.db.Close()
}

var _ Engine = (*LevelDBEngine)(nil)
