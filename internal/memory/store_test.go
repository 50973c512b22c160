package memory

import (
	"context"
	"testing"

	"times-go/internal/testutil"
	"times-go/internal/times"
	"times-go/internal/times/timestest"
)

func TestStore_Contract(t *testing.T) {
	timestest.Run(t, func(t *testing.T, clock times.Clock) times.Store {
		return NewStore(clock)
	}, timestest.Capabilities{UniqueTitles: false, Mutations: true})
}

func TestPostStore_GetAllSorted(t *testing.T) {
	ctx := context.Background()
	s := NewStore(testutil.FixedClock())
	ts, err := s.Create(ctx, "sorted")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	ps, _ := ts.PostStore(ctx)

	for _, text := range []string{"a", "b", "c", "d"} {
		if _, err := ps.Post(ctx, text, nil); err != nil {
			t.Fatalf("Post() error = %v", err)
		}
	}
	if err := ps.Delete(ctx, 1); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	posts, err := ps.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	want := []uint64{0, 2, 3}
	if len(posts) != len(want) {
		t.Fatalf("GetAll() returned %d posts, want %d", len(posts), len(want))
	}
	for i, id := range want {
		if posts[i].ID != id {
			t.Errorf("posts[%d].ID = %d, want %d", i, posts[i].ID, id)
		}
	}
}

func TestPostStore_Latest(t *testing.T) {
	ctx := context.Background()
	s := NewStore(testutil.FixedClock())
	ts, _ := s.Create(ctx, "latest")
	ps, _ := ts.PostStore(ctx)

	for _, text := range []string{"first", "second", "third"} {
		if _, err := ps.Post(ctx, text, nil); err != nil {
			t.Fatalf("Post() error = %v", err)
		}
	}
	if err := ps.Delete(ctx, 2); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	latest, err := ps.(*PostStore).Latest(ctx)
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if latest.Text != "second" {
		t.Errorf("Latest() = %q, want second", latest.Text)
	}
}

func TestStore_DefaultsToRealClock(t *testing.T) {
	s := NewStore(nil)
	ts, err := s.Create(context.Background(), "now")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if ts.Get().CreatedAt.IsZero() {
		t.Error("CreatedAt is zero with default clock")
	}
}
