package embedded

import "fmt"

// Key layout. This is part of the durable file format: renaming a key or
// changing the shape of index breaks existing data files.
//
//	meta.data              root index of Times ids
//	{tid}/meta.data        Times record
//	{tid}/posts/meta.data  post index
//	{tid}/posts/{pid}      post record
//	{tid}/todos/meta.data  todo index
//	{tid}/todos/{tdid}     todo record
const rootIndexKey = "meta.data"

func timesKey(tid uint64) string {
	return fmt.Sprintf("%d/meta.data", tid)
}

func postIndexKey(tid uint64) string {
	return fmt.Sprintf("%d/posts/meta.data", tid)
}

func postKey(tid, pid uint64) string {
	return fmt.Sprintf("%d/posts/%d", tid, pid)
}

func todoIndexKey(tid uint64) string {
	return fmt.Sprintf("%d/todos/meta.data", tid)
}

func todoKey(tid, tdid uint64) string {
	return fmt.Sprintf("%d/todos/%d", tid, tdid)
}

// index enumerates the live ids of one scope and the next id to issue.
type index struct {
	NextID uint64   `json:"next_id"`
	IDs    []uint64 `json:"ids"`
}

func (ix index) contains(id uint64) bool {
	for _, v := range ix.IDs {
		if v == id {
			return true
		}
	}
	return false
}

// with returns a copy of ix with id registered. The receiver is not modified.
func (ix index) with(id uint64) index {
	ids := make([]uint64, len(ix.IDs), len(ix.IDs)+1)
	copy(ids, ix.IDs)
	next := ix.NextID
	if id >= next {
		next = id + 1
	}
	return index{NextID: next, IDs: append(ids, id)}
}
