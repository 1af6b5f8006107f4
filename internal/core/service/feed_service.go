package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/socialfeed/gateway/internal/core/domain"
	"github.com/socialfeed/gateway/internal/core/ports"
	"github.com/socialfeed/gateway/internal/pkg/metrics"
)

const defaultPageSize = 2

// FeedService implements the post operations. Authorization has already been
// enforced by the resolver layer when these methods run; the repository
// re-checks ownership on writes.
type FeedService struct {
	posts      ports.PostRepository
	identities ports.IdentityRepository
	notifier   ports.Notifier
	assets     ports.AssetCleaner
	idem       ports.IdempotencyStore
	pageSize   int
	log        zerolog.Logger
	now        func() time.Time
}

// NewFeedService wires the feed operations. idem may be nil, which disables
// idempotent createPost replays.
func NewFeedService(
	posts ports.PostRepository,
	identities ports.IdentityRepository,
	notifier ports.Notifier,
	assets ports.AssetCleaner,
	idem ports.IdempotencyStore,
	pageSize int,
	log zerolog.Logger,
) *FeedService {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &FeedService{
		posts:      posts,
		identities: identities,
		notifier:   notifier,
		assets:     assets,
		idem:       idem,
		pageSize:   pageSize,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// ListPosts returns one feed page, newest first. Pages past the end are
// empty but still report the total.
func (s *FeedService) ListPosts(ctx context.Context, _ domain.AuthContext, in ports.ListPostsInput) (*ports.PostPage, error) {
	page := max(in.Page, 1)

	posts, total, err := s.posts.List(ctx, page, s.pageSize)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.CreatorID)
	}
	creators, err := s.identities.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list posts: load creators: %w", err)
	}

	views := make([]ports.PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, toPostView(p, creators[p.CreatorID]))
	}
	return &ports.PostPage{Posts: views, TotalItems: total, Page: page, PageSize: s.pageSize}, nil
}

func (s *FeedService) GetPost(ctx context.Context, _ domain.AuthContext, in ports.GetPostInput) (*ports.PostView, error) {
	post, err := s.posts.FindByID(ctx, in.ID)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	view := toPostView(post, nil)
	view.Creator = s.creatorView(ctx, post.CreatorID)
	return &view, nil
}

// PostOwner reports the creator of a post; it backs the owner policy of
// updatePost and deletePost.
func (s *FeedService) PostOwner(ctx context.Context, id string) (string, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("post owner: %w", err)
	}
	return post.CreatorID, nil
}

// CreatePost stores a post owned by the caller. The creator is always taken
// from the AuthContext.
func (s *FeedService) CreatePost(ctx context.Context, ac domain.AuthContext, in ports.CreatePostInput) (*ports.PostView, error) {
	creatorID := ac.IdentityID()

	if replay, ok := s.replay(ctx, creatorID, in.IdempotencyKey); ok {
		return replay, nil
	}

	creator, err := s.identities.FindByID(ctx, creatorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotAuthenticated
		}
		return nil, fmt.Errorf("create post: load creator: %w", err)
	}

	now := s.now()
	created, err := s.posts.Create(ctx, &domain.Post{
		Title:     in.Title,
		Content:   in.Content,
		ImageURL:  in.ImageURL,
		CreatorID: creatorID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		s.log.Error().Err(err).Str("creator_id", creatorID).Msg("failed to create post")
		return nil, fmt.Errorf("create post: %w", err)
	}

	// Past the commit point: nothing below may fail the call.
	detached := context.WithoutCancel(ctx)
	if in.IdempotencyKey != "" && s.idem != nil {
		if err := s.idem.Remember(detached, creatorID, in.IdempotencyKey, created.ID); err != nil {
			s.log.Warn().Err(err).Str("post_id", created.ID).Msg("failed to store idempotency key")
		}
	}
	metrics.PostsCreatedTotal.Inc()
	s.log.Info().Str("post_id", created.ID).Str("creator_id", creatorID).Msg("post created")

	view := toPostView(created, creator)
	s.publish(detached, domain.EventPostCreated, view)
	return &view, nil
}

// replay answers a repeated createPost from the stored result. Lookup
// failures are logged and the create proceeds.
func (s *FeedService) replay(ctx context.Context, creatorID, key string) (*ports.PostView, bool) {
	if key == "" || s.idem == nil {
		return nil, false
	}
	postID, found, err := s.idem.Lookup(ctx, creatorID, key)
	if err != nil {
		s.log.Warn().Err(err).Str("creator_id", creatorID).Msg("idempotency lookup failed, creating anyway")
		return nil, false
	}
	if !found {
		return nil, false
	}
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		// The original post is gone; treat the key as fresh.
		s.log.Warn().Err(err).Str("post_id", postID).Msg("idempotent replay target missing")
		return nil, false
	}
	metrics.IdempotentReplaysTotal.Inc()
	s.log.Info().Str("post_id", postID).Msg("idempotent replay")
	view := toPostView(post, nil)
	view.Creator = s.creatorView(ctx, post.CreatorID)
	return &view, true
}

// UpdatePost replaces title and content, and the image when a new one is
// given. A replaced image is scheduled for removal after the commit.
func (s *FeedService) UpdatePost(ctx context.Context, ac domain.AuthContext, in ports.UpdatePostInput) (*ports.PostView, error) {
	patch := domain.PostPatch{Title: &in.Title, Content: &in.Content}
	if in.ImageURL != "" {
		patch.ImageURL = &in.ImageURL
	}

	now := s.now()
	previous, err := s.posts.Update(ctx, in.ID, patch, ac.IdentityID(), now)
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}

	detached := context.WithoutCancel(ctx)
	if patch.ReplacesImage(*previous) {
		s.assets.Schedule(previous.ImageURL)
	}
	updated := patch.Apply(*previous, now)
	s.log.Info().Str("post_id", updated.ID).Msg("post updated")

	view := toPostView(&updated, nil)
	view.Creator = s.creatorView(detached, updated.CreatorID)
	s.publish(detached, domain.EventPostUpdated, view)
	return &view, nil
}

// DeletePost removes the caller's post and schedules removal of its image.
func (s *FeedService) DeletePost(ctx context.Context, ac domain.AuthContext, in ports.DeletePostInput) (*ports.DeletedPost, error) {
	deleted, err := s.posts.Delete(ctx, in.ID, ac.IdentityID())
	if err != nil {
		return nil, fmt.Errorf("delete post: %w", err)
	}

	if deleted.ImageURL != "" {
		s.assets.Schedule(deleted.ImageURL)
	}
	s.log.Info().Str("post_id", deleted.ID).Msg("post deleted")

	out := &ports.DeletedPost{ID: deleted.ID}
	s.publish(context.WithoutCancel(ctx), domain.EventPostDeleted, out)
	return out, nil
}

func (s *FeedService) publish(ctx context.Context, kind string, payload any) {
	ev, err := domain.NewEvent(kind, payload)
	if err != nil {
		s.log.Error().Err(err).Str("kind", kind).Msg("failed to encode event")
		return
	}
	s.notifier.Publish(ctx, ev)
}

// creatorView resolves the author's display name. Failures degrade to an
// id-only view rather than failing an already committed call.
func (s *FeedService) creatorView(ctx context.Context, id string) ports.CreatorView {
	user, err := s.identities.FindByID(ctx, id)
	if err != nil {
		s.log.Warn().Err(err).Str("creator_id", id).Msg("failed to load creator")
		return ports.CreatorView{ID: id}
	}
	return ports.CreatorView{ID: user.ID, Name: user.Name}
}

func toPostView(p *domain.Post, creator *domain.User) ports.PostView {
	v := ports.PostView{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		ImageURL:  p.ImageURL,
		Creator:   ports.CreatorView{ID: p.CreatorID},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if creator != nil {
		v.Creator.Name = creator.Name
	}
	return v
}
