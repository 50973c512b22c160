package memory

import (
	"context"
	"fmt"

	"times-go/internal/times"
)

// PostStore manages the posts of one Times in a memory Store.
type PostStore struct {
	store *Store
	tid   uint64
}

func (p *PostStore) Get(_ context.Context, pid uint64) (times.Post, error) {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()

	b, err := p.store.bucket(p.tid)
	if err != nil {
		return times.Post{}, err
	}
	post, ok := b.posts[pid]
	if !ok {
		return times.Post{}, fmt.Errorf("post %d in times %d: %w", pid, p.tid, times.ErrNotFound)
	}
	return post, nil
}

// GetAll returns the posts sorted by ascending id.
func (p *PostStore) GetAll(context.Context) ([]times.Post, error) {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()

	b, err := p.store.bucket(p.tid)
	if err != nil {
		return nil, err
	}
	posts := make([]times.Post, 0, len(b.posts))
	for _, post := range b.posts {
		posts = append(posts, post)
	}
	times.SortPosts(posts)
	return posts, nil
}

// Latest returns the post with the highest id.
func (p *PostStore) Latest(context.Context) (times.Post, error) {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()

	b, err := p.store.bucket(p.tid)
	if err != nil {
		return times.Post{}, err
	}

	var (
		latest times.Post
		found  bool
	)
	for _, post := range b.posts {
		if !found || post.ID > latest.ID {
			latest, found = post, true
		}
	}
	if !found {
		return times.Post{}, fmt.Errorf("latest post in times %d: %w", p.tid, times.ErrNotFound)
	}
	return latest, nil
}

func (p *PostStore) Post(_ context.Context, text string, file *times.File) (times.Post, error) {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()

	b, err := p.store.bucket(p.tid)
	if err != nil {
		return times.Post{}, err
	}

	post := times.Post{
		ID:        b.nextPostID,
		Text:      text,
		CreatedAt: p.store.clock.Now(),
		File:      file,
	}
	b.nextPostID++
	b.posts[post.ID] = post
	return post, nil
}

// Update replaces text, attachment and tag of an existing post.
func (p *PostStore) Update(_ context.Context, post times.Post) (times.Post, error) {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()

	b, err := p.store.bucket(p.tid)
	if err != nil {
		return times.Post{}, err
	}
	old, ok := b.posts[post.ID]
	if !ok {
		return times.Post{}, fmt.Errorf("update post %d in times %d: %w", post.ID, p.tid, times.ErrNotFound)
	}

	now := p.store.clock.Now()
	post.CreatedAt = old.CreatedAt
	post.UpdatedAt = &now
	b.posts[post.ID] = post
	return post, nil
}

func (p *PostStore) Delete(_ context.Context, pid uint64) error {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()

	b, err := p.store.bucket(p.tid)
	if err != nil {
		return err
	}
	if _, ok := b.posts[pid]; !ok {
		return fmt.Errorf("delete post %d in times %d: %w", pid, p.tid, times.ErrNotFound)
	}
	delete(b.posts, pid)
	return nil
}

var _ times.PostStore = (*PostStore)(nil)
