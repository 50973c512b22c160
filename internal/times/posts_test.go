package times

import (
	"context"
	"errors"
	"testing"
)

// slicePostStore is a read-only PostStore over a fixed slice.
type slicePostStore struct {
	posts []Post
}

func (s *slicePostStore) Get(_ context.Context, pid uint64) (Post, error) {
	for _, p := range s.posts {
		if p.ID == pid {
			return p, nil
		}
	}
	return Post{}, ErrNotFound
}

func (s *slicePostStore) GetAll(context.Context) ([]Post, error) { return s.posts, nil }

func (s *slicePostStore) Post(context.Context, string, *File) (Post, error) {
	return Post{}, ErrUnsupported
}

func (s *slicePostStore) Update(context.Context, Post) (Post, error) { return Post{}, ErrUnsupported }

func (s *slicePostStore) Delete(context.Context, uint64) error { return ErrUnsupported }

func TestSortPosts(t *testing.T) {
	posts := []Post{{ID: 3}, {ID: 0}, {ID: 2}, {ID: 1}}
	SortPosts(posts)

	for i, p := range posts {
		if p.ID != uint64(i) {
			t.Fatalf("posts[%d].ID = %d, want %d", i, p.ID, i)
		}
	}
}

func TestLatestPost(t *testing.T) {
	ctx := context.Background()

	t.Run("returns highest id", func(t *testing.T) {
		ps := &slicePostStore{posts: []Post{{ID: 4, Text: "d"}, {ID: 9, Text: "i"}, {ID: 1, Text: "a"}}}

		got, err := LatestPost(ctx, ps)
		if err != nil {
			t.Fatalf("LatestPost() error = %v", err)
		}
		if got.ID != 9 || got.Text != "i" {
			t.Errorf("LatestPost() = %+v, want id 9", got)
		}
	})

	t.Run("empty store is not found", func(t *testing.T) {
		_, err := LatestPost(ctx, &slicePostStore{})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("LatestPost() error = %v, want ErrNotFound", err)
		}
	})
}

func TestTodoState(t *testing.T) {
	var todo Todo
	if todo.State() != Pending {
		t.Errorf("State() = %v, want pending", todo.State())
	}

	now := todo.CreatedAt
	todo.DoneAt = &now
	if todo.State() != Done {
		t.Errorf("State() = %v, want done", todo.State())
	}
	if Done.String() != "done" || Pending.String() != "pending" {
		t.Errorf("unexpected state strings %q %q", Done, Pending)
	}
}
