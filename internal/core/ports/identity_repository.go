package ports

import (
	"context"
	"time"

	"github.com/socialfeed/gateway/internal/core/domain"
)

// IdentityRepository persists registered users.
type IdentityRepository interface {
	// Create inserts a user. A duplicate email yields domain.ErrConflict.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByEmail looks up the login key. Unknown emails yield domain.ErrNotFound.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByIDs returns the users that exist among ids, keyed by id.
	FindByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error)
	UpdatePasswordHash(ctx context.Context, id, hash string, at time.Time) error
}
