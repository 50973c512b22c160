package embedded

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"times-go/internal/times"
)

// collection is an indexed set of records of one kind under one Times.
// mu serializes operations on the collection and is always taken before
// shared.mu, never after.
type collection[T any] struct {
	sh        *shared
	name      string
	indexKey  string
	recordKey func(id uint64) string

	mu    sync.Mutex
	index index
}

func openCollection[T any](ctx context.Context, sh *shared, name, indexKey string, recordKey func(uint64) string) (*collection[T], error) {
	ix, err := sh.loadIndex(ctx, indexKey)
	if err != nil {
		return nil, fmt.Errorf("opening %s index: %w", name, err)
	}
	return &collection[T]{
		sh:        sh,
		name:      name,
		indexKey:  indexKey,
		recordKey: recordKey,
		index:     ix,
	}, nil
}

// insert allocates the next id, writes the record built for it and then
// registers the id in the index. A failure after the record write leaves
// an unindexed record that the next insert overwrites.
func (c *collection[T]) insert(ctx context.Context, build func(id uint64) T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.index.NextID
	rec := build(id)
	if err := c.sh.write(ctx, c.recordKey(id), rec); err != nil {
		var zero T
		return zero, fmt.Errorf("creating %s %d: %w", c.name, id, err)
	}

	// The engine lock was released by write above; updating the index
	// takes it again.
	next := c.index.with(id)
	if err := c.sh.write(ctx, c.indexKey, next); err != nil {
		var zero T
		return zero, fmt.Errorf("indexing %s %d: %w", c.name, id, err)
	}
	c.index = next
	return rec, nil
}

// get returns the record for id. Ids missing from the index are not found
// even if a stray record exists.
func (c *collection[T]) get(ctx context.Context, id uint64) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getLocked(ctx, id)
}

func (c *collection[T]) getLocked(ctx context.Context, id uint64) (T, error) {
	var rec T
	if !c.index.contains(id) {
		return rec, fmt.Errorf("%s %d: %w", c.name, id, times.ErrNotFound)
	}
	if err := c.sh.read(ctx, c.recordKey(id), &rec); err != nil {
		if errors.Is(err, times.ErrNotFound) {
			return rec, fmt.Errorf("%s %d is indexed but has no record: %w", c.name, id, times.ErrBackendFailure)
		}
		return rec, err
	}
	return rec, nil
}

// all returns every indexed record in index order.
func (c *collection[T]) all(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	recs := make([]T, 0, len(c.index.IDs))
	for _, id := range c.index.IDs {
		rec, err := c.getLocked(ctx, id)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// modify reads the record for id, applies fn and writes the result back.
// The index is not touched.
func (c *collection[T]) modify(ctx context.Context, id uint64, fn func(*T) error) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, err := c.getLocked(ctx, id)
	if err != nil {
		return rec, err
	}
	if err := fn(&rec); err != nil {
		var zero T
		return zero, err
	}
	if err := c.sh.write(ctx, c.recordKey(id), rec); err != nil {
		var zero T
		return zero, fmt.Errorf("updating %s %d: %w", c.name, id, err)
	}
	return rec, nil
}
