// Package timestest provides a behavioural test suite shared by every
// times.Store backend.
package timestest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"times-go/internal/testutil"
	"times-go/internal/times"
)

// Capabilities describes the operations and quirks of a backend.
type Capabilities struct {
	// UniqueTitles is true when Create rejects duplicate titles.
	UniqueTitles bool

	// Mutations is true when Post and Todo Update/Delete are implemented.
	Mutations bool
}

// Factory opens a fresh, empty store stamped by clock.
type Factory func(t *testing.T, clock times.Clock) times.Store

// Run executes the contract suite against the backend built by newStore.
func Run(t *testing.T, newStore Factory, caps Capabilities) {
	t.Run("scenario", func(t *testing.T) { testScenario(t, newStore) })
	t.Run("check", func(t *testing.T) { testCheck(t, newStore) })
	t.Run("monotonic ids", func(t *testing.T) { testMonotonicIDs(t, newStore) })
	t.Run("times update stamps", func(t *testing.T) { testTimesUpdate(t, newStore) })
	t.Run("todo transitions", func(t *testing.T) { testTodoTransitions(t, newStore) })
	t.Run("not found", func(t *testing.T) { testNotFound(t, newStore) })
	t.Run("delete times unsupported", func(t *testing.T) { testDeleteTimes(t, newStore) })
	t.Run("duplicate titles", func(t *testing.T) { testDuplicateTitles(t, newStore, caps) })
	t.Run("post attachments", func(t *testing.T) { testPostAttachment(t, newStore) })
	t.Run("repeated handles", func(t *testing.T) { testRepeatedHandles(t, newStore) })
	t.Run("concurrent posts", func(t *testing.T) { testConcurrentPosts(t, newStore) })
	t.Run("index consistency", func(t *testing.T) { testIndexConsistency(t, newStore) })
	t.Run("latest post", func(t *testing.T) { testLatestPost(t, newStore) })
	if caps.Mutations {
		t.Run("post mutations", func(t *testing.T) { testPostMutations(t, newStore) })
		t.Run("todo mutations", func(t *testing.T) { testTodoMutations(t, newStore) })
	} else {
		t.Run("mutations unsupported", func(t *testing.T) { testMutationsUnsupported(t, newStore) })
	}
}

func mustCreate(t *testing.T, s times.Store, title string) times.TimesStore {
	t.Helper()
	ts, err := s.Create(context.Background(), title)
	if err != nil {
		t.Fatalf("Create(%q) error = %v", title, err)
	}
	return ts
}

func mustPostStore(t *testing.T, ts times.TimesStore) times.PostStore {
	t.Helper()
	ps, err := ts.PostStore(context.Background())
	if err != nil {
		t.Fatalf("PostStore() error = %v", err)
	}
	return ps
}

func mustTodoStore(t *testing.T, ts times.TimesStore) times.TodoStore {
	t.Helper()
	tds, err := ts.TodoStore(context.Background())
	if err != nil {
		t.Fatalf("TodoStore() error = %v", err)
	}
	return tds
}

func testScenario(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t, testutil.FixedClock())

	ts := mustCreate(t, s, "2024-01-01")
	if got := ts.Get(); got.ID != 0 || got.Title != "2024-01-01" || got.UpdatedAt != nil {
		t.Fatalf("Create() = %+v, want id 0 titled 2024-01-01 with no update stamp", got)
	}

	ps := mustPostStore(t, ts)
	morning, err := ps.Post(ctx, "morning note", nil)
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if morning.ID != 0 || morning.UpdatedAt != nil {
		t.Errorf("first post = %+v, want id 0 without update stamp", morning)
	}

	evening, err := ps.Post(ctx, "evening note", nil)
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if evening.ID != 1 {
		t.Errorf("second post id = %d, want 1", evening.ID)
	}

	posts, err := ps.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(posts) != 2 || posts[0].Text != "morning note" || posts[1].Text != "evening note" {
		t.Errorf("GetAll() = %+v, want [morning note, evening note]", posts)
	}

	tds := mustTodoStore(t, ts)
	todo, err := tds.New(ctx, "buy milk")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if todo.ID != 0 || todo.State() != times.Pending {
		t.Errorf("New() = %+v, want pending todo 0", todo)
	}

	done, err := tds.Done(ctx, 0, true)
	if err != nil {
		t.Fatalf("Done(0, true) error = %v", err)
	}
	if done.State() != times.Done || done.DoneAt == nil {
		t.Errorf("Done(0, true) = %+v, want done with stamp", done)
	}

	if _, err := tds.Done(ctx, 0, true); !errors.Is(err, times.ErrInvalidStateTransition) {
		t.Errorf("second Done(0, true) error = %v, want ErrInvalidStateTransition", err)
	}
}

func testCheck(t *testing.T, newStore Factory) {
	s := newStore(t, testutil.FixedClock())
	if err := s.Check(context.Background()); err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	handles, err := s.Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(handles) != 0 {
		t.Errorf("Check() must not create Times, Get() returned %d", len(handles))
	}
}

func testMonotonicIDs(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t, testutil.TickingClock())

	var last times.TimesStore
	for i := 0; i < 5; i++ {
		ts := mustCreate(t, s, fmt.Sprintf("bucket-%d", i))
		if got := ts.Get().ID; got != uint64(i) {
			t.Errorf("times #%d id = %d, want %d", i, got, i)
		}
		last = ts
	}

	ps := mustPostStore(t, last)
	tds := mustTodoStore(t, last)
	var prevPost, prevTodo uint64
	for i := 0; i < 5; i++ {
		p, err := ps.Post(ctx, fmt.Sprintf("post %d", i), nil)
		if err != nil {
			t.Fatalf("Post() error = %v", err)
		}
		td, err := tds.New(ctx, fmt.Sprintf("todo %d", i))
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if i > 0 && (p.ID <= prevPost || td.ID <= prevTodo) {
			t.Errorf("ids not increasing: post %d after %d, todo %d after %d", p.ID, prevPost, td.ID, prevTodo)
		}
		prevPost, prevTodo = p.ID, td.ID
	}

	handles, err := s.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(handles) != 5 {
		t.Fatalf("Get() returned %d handles, want 5", len(handles))
	}
	times.SortTimes(handles)
	for i, h := range handles {
		if h.Get().ID != uint64(i) {
			t.Errorf("sorted handle %d id = %d", i, h.Get().ID)
		}
	}
}

func testTimesUpdate(t *testing.T, newStore Factory) {
	ctx := context.Background()
	clock := testutil.FixedClock()
	s := newStore(t, clock)

	ts := mustCreate(t, s, "draft")
	created := ts.Get()
	if created.UpdatedAt != nil {
		t.Fatalf("new Times has UpdatedAt = %v", created.UpdatedAt)
	}

	clock.Advance(time.Hour)
	bogus := time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)
	replacement := created
	replacement.Title = "final"
	replacement.ID = created.ID + 42
	replacement.UpdatedAt = &bogus

	updated, err := ts.Update(ctx, replacement)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Title != "final" {
		t.Errorf("Title = %q, want final", updated.Title)
	}
	if updated.ID != created.ID {
		t.Errorf("ID = %d, want %d", updated.ID, created.ID)
	}
	if updated.UpdatedAt == nil || updated.UpdatedAt.Equal(bogus) {
		t.Fatalf("UpdatedAt = %v, want current time", updated.UpdatedAt)
	}
	if updated.UpdatedAt.Before(updated.CreatedAt) {
		t.Errorf("UpdatedAt %v before CreatedAt %v", updated.UpdatedAt, updated.CreatedAt)
	}
	if got := ts.Get(); got.Title != "final" || got.UpdatedAt == nil {
		t.Errorf("handle not refreshed after Update: %+v", got)
	}

	handles, err := s.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(handles) != 1 || handles[0].Get().Title != "final" {
		t.Errorf("Get() after Update does not see new title")
	}
}

func testTodoTransitions(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t, testutil.TickingClock())
	tds := mustTodoStore(t, mustCreate(t, s, "todos"))

	todo, err := tds.New(ctx, "water plants")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if todo.DoneAt != nil {
		t.Fatalf("New() DoneAt = %v, want nil", todo.DoneAt)
	}

	if _, err := tds.Done(ctx, todo.ID, false); !errors.Is(err, times.ErrInvalidStateTransition) {
		t.Errorf("Done(pending, false) error = %v, want ErrInvalidStateTransition", err)
	}

	done, err := tds.Done(ctx, todo.ID, true)
	if err != nil {
		t.Fatalf("Done(true) error = %v", err)
	}
	if done.DoneAt == nil || done.DoneAt.Before(done.CreatedAt) {
		t.Errorf("DoneAt = %v, want stamp after %v", done.DoneAt, done.CreatedAt)
	}

	if _, err := tds.Done(ctx, todo.ID, true); !errors.Is(err, times.ErrInvalidStateTransition) {
		t.Errorf("Done(done, true) error = %v, want ErrInvalidStateTransition", err)
	}

	reopened, err := tds.Done(ctx, todo.ID, false)
	if err != nil {
		t.Fatalf("Done(false) error = %v", err)
	}
	if reopened.State() != times.Pending {
		t.Errorf("state after Done(false) = %v, want pending", reopened.State())
	}

	all, err := tds.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(all) != 1 || all[0].State() != times.Pending {
		t.Errorf("Get() = %+v, want one pending todo", all)
	}
}

func testNotFound(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t, testutil.FixedClock())
	ts := mustCreate(t, s, "empty")

	if _, err := mustPostStore(t, ts).Get(ctx, 7); !errors.Is(err, times.ErrNotFound) {
		t.Errorf("PostStore.Get(7) error = %v, want ErrNotFound", err)
	}
	if _, err := mustTodoStore(t, ts).Done(ctx, 7, true); !errors.Is(err, times.ErrNotFound) {
		t.Errorf("TodoStore.Done(7) error = %v, want ErrNotFound", err)
	}
	if _, err := times.FindTimes(ctx, s, 99); !errors.Is(err, times.ErrNotFound) {
		t.Errorf("FindTimes(99) error = %v, want ErrNotFound", err)
	}
}

func testDeleteTimes(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t, testutil.FixedClock())
	ts := mustCreate(t, s, "keep")

	if err := s.Delete(ctx, ts.Get().ID); !errors.Is(err, times.ErrUnsupported) {
		t.Errorf("Delete() error = %v, want ErrUnsupported", err)
	}

	handles, err := s.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(handles) != 1 {
		t.Errorf("Get() returned %d handles after unsupported Delete, want 1", len(handles))
	}
}

// Title uniqueness is enforced by the embedded backend only. The memory
// backend accepts duplicates; both behaviours are pinned here.
func testDuplicateTitles(t *testing.T, newStore Factory, caps Capabilities) {
	ctx := context.Background()
	s := newStore(t, testutil.FixedClock())
	mustCreate(t, s, "same")

	_, err := s.Create(ctx, "same")
	if caps.UniqueTitles {
		if !errors.Is(err, times.ErrAlreadyExists) {
			t.Fatalf("duplicate Create() error = %v, want ErrAlreadyExists", err)
		}
		handles, err := s.Get(ctx)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if len(handles) != 1 {
			t.Errorf("rejected Create() left %d Times, want 1", len(handles))
		}

		other := mustCreate(t, s, "other")
		if _, err := other.Update(ctx, times.Times{Title: "same"}); !errors.Is(err, times.ErrAlreadyExists) {
			t.Fatalf("Update() to a taken title error = %v, want ErrAlreadyExists", err)
		}
		if got := other.Get().Title; got != "other" {
			t.Errorf("rejected Update() changed title to %q", got)
		}
		if _, err := other.Update(ctx, times.Times{Title: "other"}); err != nil {
			t.Errorf("Update() keeping own title error = %v", err)
		}
		return
	}
	if err != nil {
		t.Fatalf("duplicate Create() error = %v, want success", err)
	}
}

func testPostAttachment(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t, testutil.FixedClock())
	ps := mustPostStore(t, mustCreate(t, s, "files"))

	file := &times.File{Name: "pixel.png", Kind: times.FileImage, Data: []byte{0x89, 'P', 'N', 'G', 0x00, 0xff}}
	p, err := ps.Post(ctx, "look", file)
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}

	got, err := ps.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.File == nil {
		t.Fatal("Get() lost the attachment")
	}
	if got.File.Name != "pixel.png" || got.File.Kind != times.FileImage || string(got.File.Data) != string(file.Data) {
		t.Errorf("attachment = %+v, want %+v", got.File, file)
	}
	if !got.CreatedAt.Equal(p.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, p.CreatedAt)
	}

	text, err := ps.Post(ctx, "note", times.NewTextFile("a.txt", "hello"))
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	got, err = ps.Get(ctx, text.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.File == nil || got.File.Text() != "hello" {
		t.Errorf("text attachment = %+v, want hello", got.File)
	}
}

func testRepeatedHandles(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t, testutil.FixedClock())
	ts := mustCreate(t, s, "shared")

	first := mustPostStore(t, ts)
	if _, err := first.Post(ctx, "one", nil); err != nil {
		t.Fatalf("Post() error = %v", err)
	}

	second := mustPostStore(t, ts)
	p, err := second.Post(ctx, "two", nil)
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if p.ID != 1 {
		t.Errorf("post via second handle id = %d, want 1", p.ID)
	}

	posts, err := first.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(posts) != 2 {
		t.Errorf("GetAll() via first handle = %d posts, want 2", len(posts))
	}
}

func testConcurrentPosts(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t, testutil.FixedClock())
	ps := mustPostStore(t, mustCreate(t, s, "busy"))

	const n = 16
	var wg sync.WaitGroup
	ids := make(chan uint64, n)
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := ps.Post(ctx, fmt.Sprintf("post %d", i), nil)
			if err != nil {
				errs <- err
				return
			}
			ids <- p.ID
		}(i)
	}
	wg.Wait()
	close(ids)
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent Post() error = %v", err)
	}

	seen := make(map[uint64]bool)
	for id := range ids {
		if seen[id] {
			t.Errorf("id %d issued twice", id)
		}
		seen[id] = true
	}
	for id := uint64(0); id < n; id++ {
		if !seen[id] {
			t.Errorf("id %d never issued", id)
		}
	}
}

func testIndexConsistency(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t, testutil.FixedClock())

	for i := 0; i < 3; i++ {
		ts := mustCreate(t, s, fmt.Sprintf("t%d", i))
		ps := mustPostStore(t, ts)
		for j := 0; j <= i; j++ {
			if _, err := ps.Post(ctx, fmt.Sprintf("t%d p%d", i, j), nil); err != nil {
				t.Fatalf("Post() error = %v", err)
			}
		}
	}

	handles, err := s.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	for _, h := range handles {
		ps := mustPostStore(t, h)
		posts, err := ps.GetAll(ctx)
		if err != nil {
			t.Fatalf("GetAll() error = %v", err)
		}
		if want := int(h.Get().ID) + 1; len(posts) != want {
			t.Errorf("times %d has %d posts, want %d", h.Get().ID, len(posts), want)
		}
		for _, p := range posts {
			got, err := ps.Get(ctx, p.ID)
			if err != nil {
				t.Errorf("indexed post %d not retrievable: %v", p.ID, err)
				continue
			}
			if got.Text != p.Text {
				t.Errorf("post %d text = %q, want %q", p.ID, got.Text, p.Text)
			}
		}
	}
}

func testLatestPost(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t, testutil.FixedClock())
	ps := mustPostStore(t, mustCreate(t, s, "latest"))

	if _, err := times.LatestPost(ctx, ps); !errors.Is(err, times.ErrNotFound) {
		t.Errorf("LatestPost() on empty store error = %v, want ErrNotFound", err)
	}

	for _, text := range []string{"a", "b", "c"} {
		if _, err := ps.Post(ctx, text, nil); err != nil {
			t.Fatalf("Post() error = %v", err)
		}
	}

	latest, err := times.LatestPost(ctx, ps)
	if err != nil {
		t.Fatalf("LatestPost() error = %v", err)
	}
	if latest.ID != 2 || latest.Text != "c" {
		t.Errorf("LatestPost() = %+v, want post 2", latest)
	}
}

func testPostMutations(t *testing.T, newStore Factory) {
	ctx := context.Background()
	clock := testutil.FixedClock()
	s := newStore(t, clock)
	ps := mustPostStore(t, mustCreate(t, s, "edit"))

	p, err := ps.Post(ctx, "typo", nil)
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	clock.Advance(time.Minute)

	p.Text = "fixed"
	updated, err := ps.Update(ctx, p)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Text != "fixed" || updated.UpdatedAt == nil || updated.UpdatedAt.Before(updated.CreatedAt) {
		t.Errorf("Update() = %+v, want fixed text with update stamp", updated)
	}

	if _, err := ps.Update(ctx, times.Post{ID: 99, Text: "ghost"}); !errors.Is(err, times.ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}

	if err := ps.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := ps.Get(ctx, p.ID); !errors.Is(err, times.ErrNotFound) {
		t.Errorf("Get() after Delete error = %v, want ErrNotFound", err)
	}
	if err := ps.Delete(ctx, p.ID); !errors.Is(err, times.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}

	next, err := ps.Post(ctx, "after delete", nil)
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if next.ID <= p.ID {
		t.Errorf("id %d reused after delete of %d", next.ID, p.ID)
	}
}

func testTodoMutations(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t, testutil.FixedClock())
	tds := mustTodoStore(t, mustCreate(t, s, "chores"))

	td, err := tds.New(ctx, "laundry")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	detail := "whites only"
	td.Content = "laundry (whites)"
	td.Detail = &detail
	updated, err := tds.Update(ctx, td)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Content != "laundry (whites)" || updated.Detail == nil || *updated.Detail != detail {
		t.Errorf("Update() = %+v", updated)
	}

	if err := tds.Delete(ctx, td.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	all, err := tds.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(all) != 0 {
		t.Errorf("Get() after Delete returned %d todos", len(all))
	}

	next, err := tds.New(ctx, "dishes")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if next.ID <= td.ID {
		t.Errorf("todo id %d reused after delete of %d", next.ID, td.ID)
	}
}

func testMutationsUnsupported(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t, testutil.FixedClock())
	ts := mustCreate(t, s, "frozen")
	ps := mustPostStore(t, ts)
	tds := mustTodoStore(t, ts)

	p, err := ps.Post(ctx, "immutable", nil)
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	td, err := tds.New(ctx, "immutable")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := ps.Update(ctx, p); !errors.Is(err, times.ErrUnsupported) {
		t.Errorf("PostStore.Update() error = %v, want ErrUnsupported", err)
	}
	if err := ps.Delete(ctx, p.ID); !errors.Is(err, times.ErrUnsupported) {
		t.Errorf("PostStore.Delete() error = %v, want ErrUnsupported", err)
	}
	if _, err := tds.Update(ctx, td); !errors.Is(err, times.ErrUnsupported) {
		t.Errorf("TodoStore.Update() error = %v, want ErrUnsupported", err)
	}
	if err := tds.Delete(ctx, td.ID); !errors.Is(err, times.ErrUnsupported) {
		t.Errorf("TodoStore.Delete() error = %v, want ErrUnsupported", err)
	}

	if _, err := ps.Get(ctx, p.ID); err != nil {
		t.Errorf("post vanished after unsupported Delete: %v", err)
	}
}
