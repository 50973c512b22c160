package embedded

import (
	"context"
	"fmt"

	"times-go/internal/times"
)

// PostStore manages the posts of one Times. Update and Delete are not
// supported by this backend.
type PostStore struct {
	tid   uint64
	sh    *shared
	posts *collection[times.Post]
}

func (p *PostStore) Get(ctx context.Context, pid uint64) (times.Post, error) {
	return p.posts.get(ctx, pid)
}

// GetAll returns the posts in creation order.
func (p *PostStore) GetAll(ctx context.Context) ([]times.Post, error) {
	return p.posts.all(ctx)
}

func (p *PostStore) Post(ctx context.Context, text string, file *times.File) (times.Post, error) {
	now := p.sh.clock.Now()
	post, err := p.posts.insert(ctx, func(id uint64) times.Post {
		return times.Post{
			ID:        id,
			Text:      text,
			CreatedAt: now,
			File:      file,
		}
	})
	if err != nil {
		return times.Post{}, fmt.Errorf("times %d: %w", p.tid, err)
	}
	p.sh.logger.Debug("post created", "times", p.tid, "id", post.ID)
	return post, nil
}

func (p *PostStore) Update(_ context.Context, post times.Post) (times.Post, error) {
	return times.Post{}, fmt.Errorf("update post %d in times %d: %w", post.ID, p.tid, times.ErrUnsupported)
}

func (p *PostStore) Delete(_ context.Context, pid uint64) error {
	return fmt.Errorf("delete post %d in times %d: %w", pid, p.tid, times.ErrUnsupported)
}

var _ times.PostStore = (*PostStore)(nil)
