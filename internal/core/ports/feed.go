package ports

import (
	"strings"
	"time"
)

// ListPostsInput selects a feed page. Zero means the first page.
type ListPostsInput struct {
	Page int `json:"page" validate:"gte=0"`
}

type GetPostInput struct {
	ID string `json:"id" validate:"required"`
}

// CreatePostInput carries a new post. The creator is always the caller.
type CreatePostInput struct {
	Title          string `json:"title"    validate:"required,min=5"`
	Content        string `json:"content"  validate:"required,min=5"`
	ImageURL       string `json:"imageUrl" validate:"required"`
	IdempotencyKey string `json:"idempotencyKey,omitempty" validate:"omitempty,max=128"`
}

func (in *CreatePostInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	in.IdempotencyKey = strings.TrimSpace(in.IdempotencyKey)
}

// UpdatePostInput replaces title and content. An empty ImageURL keeps the
// current image.
type UpdatePostInput struct {
	ID       string `json:"id"       validate:"required"`
	Title    string `json:"title"    validate:"required,min=5"`
	Content  string `json:"content"  validate:"required,min=5"`
	ImageURL string `json:"imageUrl"`
}

func (in *UpdatePostInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
}

type DeletePostInput struct {
	ID string `json:"id" validate:"required"`
}

// CreatorView is the public projection of a post's author.
type CreatorView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PostView is the shape returned to callers and pushed to observers.
type PostView struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Content   string      `json:"content"`
	ImageURL  string      `json:"imageUrl"`
	Creator   CreatorView `json:"creator"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// PostPage is one page of the feed.
type PostPage struct {
	Posts      []PostView `json:"posts"`
	TotalItems int64      `json:"totalItems"`
	Page       int        `json:"page"`
	PageSize   int        `json:"pageSize"`
}

// DeletedPost is returned by deletePost and used as the post.deleted payload.
type DeletedPost struct {
	ID string `json:"id"`
}
