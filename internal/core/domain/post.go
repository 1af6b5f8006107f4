package domain

import "time"

// Post is a user-authored content item. CreatorID is fixed at creation and
// is the sole owner for mutation and deletion.
type Post struct {
	ID        string
	Title     string
	Content   string
	ImageURL  string
	CreatorID string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PostPatch carries the mutable fields of a Post. A nil field is left untouched.
type PostPatch struct {
	Title    *string
	Content  *string
	ImageURL *string
}

// Apply returns a copy of p with the patch applied and UpdatedAt set to at.
func (pp PostPatch) Apply(p Post, at time.Time) Post {
	if pp.Title != nil {
		p.Title = *pp.Title
	}
	if pp.Content != nil {
		p.Content = *pp.Content
	}
	if pp.ImageURL != nil {
		p.ImageURL = *pp.ImageURL
	}
	p.UpdatedAt = at
	return p
}

// ReplacesImage reports whether applying the patch to p swaps out an
// existing stored image.
func (pp PostPatch) ReplacesImage(p Post) bool {
	return pp.ImageURL != nil && p.ImageURL != "" && *pp.ImageURL != p.ImageURL
}

// PageOffset returns how many posts precede page, or false when the page
// starts past the last of total posts.
func PageOffset(page, pageSize int, total int64) (int64, bool) {
	if pageSize <= 0 {
		return 0, false
	}
	size := int64(pageSize)
	pages := (total + size - 1) / size
	if int64(max(page, 1)-1) >= pages {
		return 0, false
	}
	return int64(max(page, 1)-1) * size, true
}
