package ports

import (
	"context"
	"time"

	"github.com/socialfeed/gateway/internal/core/domain"
)

// PostRepository is the persistence gateway for posts. Update and Delete
// enforce ownership themselves: a requester other than the creator gets
// domain.ErrForbidden even if the caller skipped its own check.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) (*domain.Post, error)
	FindByID(ctx context.Context, id string) (*domain.Post, error)
	// Update atomically applies patch and returns the post as it was before.
	Update(ctx context.Context, id string, patch domain.PostPatch, requesterID string, at time.Time) (*domain.Post, error)
	// Delete atomically removes the post and returns it.
	Delete(ctx context.Context, id, requesterID string) (*domain.Post, error)
	// List returns one page (1-based) ordered newest first, plus the total count.
	List(ctx context.Context, page, pageSize int) ([]*domain.Post, int64, error)
}
