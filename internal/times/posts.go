package times

import (
	"context"
	"fmt"
	"sort"
)

// SortPosts orders posts by ascending id in place.
func SortPosts(posts []Post) {
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID < posts[j].ID })
}

// SortTimes orders handles by ascending Times id in place.
func SortTimes(handles []TimesStore) {
	sort.Slice(handles, func(i, j int) bool { return handles[i].Get().ID < handles[j].Get().ID })
}

type latestPoster interface {
	Latest(ctx context.Context) (Post, error)
}

// LatestPost returns the post with the highest id, or ErrNotFound when
// the Times has no posts. Backends that track it natively are asked directly.
func LatestPost(ctx context.Context, ps PostStore) (Post, error) {
	if lp, ok := ps.(latestPoster); ok {
		return lp.Latest(ctx)
	}

	posts, err := ps.GetAll(ctx)
	if err != nil {
		return Post{}, err
	}
	if len(posts) == 0 {
		return Post{}, fmt.Errorf("latest post: %w", ErrNotFound)
	}

	latest := posts[0]
	for _, p := range posts[1:] {
		if p.ID > latest.ID {
			latest = p
		}
	}
	return latest, nil
}

// FindTimes returns the handle for tid among the store's Times.
func FindTimes(ctx context.Context, s Store, tid uint64) (TimesStore, error) {
	handles, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	for _, h := range handles {
		if h.Get().ID == tid {
			return h, nil
		}
	}
	return nil, fmt.Errorf("times %d: %w", tid, ErrNotFound)
}
