// Package memory provides process-local implementations of the persistence
// ports. It backs STORE_DRIVER=memory for local runs and the HTTP tests; every
// write is atomic under a single mutex, mirroring per-document atomicity of
// the Mongo store.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/socialfeed/gateway/internal/core/domain"
)

// Store holds identities, posts and idempotency keys.
type Store struct {
	mu      sync.RWMutex
	users   map[string]domain.User
	byEmail map[string]string
	posts   map[string]domain.Post
	keys    map[string]string
}

func NewStore() *Store {
	return &Store{
		users:   make(map[string]domain.User),
		byEmail: make(map[string]string),
		posts:   make(map[string]domain.Post),
		keys:    make(map[string]string),
	}
}

func newID() string {
	return primitive.NewObjectID().Hex()
}

// ── Identities ────────────────────────────────────────────────────────────────

func (s *Store) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, taken := s.byEmail[email]; taken {
		return nil, domain.ErrConflict
	}
	u := *user
	u.ID = newID()
	u.Email = email
	s.users[u.ID] = u
	s.byEmail[email] = u.ID
	return &u, nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u := s.users[id]
	return &u, nil
}

func (s *Store) FindByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*domain.User, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out[id] = &u
		}
	}
	return out, nil
}

func (s *Store) UpdatePasswordHash(ctx context.Context, id, hash string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.PasswordHash = hash
	u.UpdatedAt = at
	s.users[id] = u
	return nil
}

// ── Idempotency ───────────────────────────────────────────────────────────────

func (s *Store) Lookup(ctx context.Context, scope, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.keys[scope+":"+key]
	return v, ok, nil
}

func (s *Store) Remember(ctx context.Context, scope, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.keys[scope+":"+key]; !ok {
		s.keys[scope+":"+key] = value
	}
	return nil
}

// ── Posts ─────────────────────────────────────────────────────────────────────

// Posts exposes the post half of the store, whose method names collide with
// the identity half.
func (s *Store) Posts() *PostRepository {
	return &PostRepository{s: s}
}

// PostRepository implements ports.PostRepository over a Store.
type PostRepository struct {
	s *Store
}

func (r *PostRepository) Create(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p := *post
	p.ID = newID()
	r.s.posts[p.ID] = p
	return &p, nil
}

func (r *PostRepository) FindByID(ctx context.Context, id string) (*domain.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.posts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r *PostRepository) Update(ctx context.Context, id string, patch domain.PostPatch, requesterID string, at time.Time) (*domain.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, err := r.owned(id, requesterID)
	if err != nil {
		return nil, err
	}
	r.s.posts[id] = patch.Apply(p, at)
	return &p, nil
}

func (r *PostRepository) Delete(ctx context.Context, id, requesterID string) (*domain.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, err := r.owned(id, requesterID)
	if err != nil {
		return nil, err
	}
	delete(r.s.posts, id)
	return &p, nil
}

// owned must be called with the write lock held.
func (r *PostRepository) owned(id, requesterID string) (domain.Post, error) {
	p, ok := r.s.posts[id]
	if !ok {
		return domain.Post{}, domain.ErrNotFound
	}
	if p.CreatorID != requesterID {
		return domain.Post{}, domain.ErrForbidden
	}
	return p, nil
}

func (r *PostRepository) List(ctx context.Context, page, pageSize int) ([]*domain.Post, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.s.mu.RLock()
	all := make([]domain.Post, 0, len(r.s.posts))
	for _, p := range r.s.posts {
		all = append(all, p)
	}
	r.s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	total := int64(len(all))
	offset, ok := domain.PageOffset(page, pageSize, total)
	if !ok {
		return []*domain.Post{}, total, nil
	}
	skip := int(offset)
	end := min(skip+pageSize, len(all))

	out := make([]*domain.Post, 0, end-skip)
	for i := skip; i < end; i++ {
		out = append(out, &all[i])
	}
	return out, total, nil
}
