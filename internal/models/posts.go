package models

import "time"

// Status is the publication state of a post.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Statuses lists every status in the order forms offer them.
var Statuses = []Status{StatusDraft, StatusPublished}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

type Post struct {
	ID         int       // Unique identifier
	Title      string    // Post title
	Slug       string    // URL identifier, unique across posts
	CategoryID int       // Category the post is filed under
	Content    string    // Markdown source
	Status     Status    // draft or published
	AuthorID   int       // Author
	Created    time.Time // Creation time
	Updated    time.Time // Last edit time
	// Joined data
	AuthorName   string
	CategoryName string
	CategorySlug string
}

// IsPublished reports whether the post is publicly visible.
func (p *Post) IsPublished() bool {
	return p.Status == StatusPublished
}

// PostInput carries the author-editable fields of a post.
type PostInput struct {
	Title      string
	CategoryID int
	Content    string
	Status     Status
}
