// Package activity defines the content items fetched for a user and turns
// them into citation-tagged records.
package activity

import (
	"strings"
	"time"

	"github.com/redlens/redlens/internal/citation"
)

// Kind tells a comment from a post.
type Kind string

const (
	KindComment Kind = "comment"
	KindPost    Kind = "post"
)

// EmptyBodyPlaceholder replaces the body of a post that has no self-text.
const EmptyBodyPlaceholder = "[No self-text]"

// Item is one fetched comment or post. Build it with NewComment or NewPost.
type Item struct {
	Kind      Kind      `json:"kind"`
	Title     string    `json:"title,omitempty"`
	Body      string    `json:"body"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// NewComment creates a comment item.
func NewComment(body, url string, createdAt time.Time) Item {
	return Item{Kind: KindComment, Body: body, URL: url, CreatedAt: createdAt.UTC()}
}

// NewPost creates a post item. A blank body becomes EmptyBodyPlaceholder.
func NewPost(title, body, url string, createdAt time.Time) Item {
	if strings.TrimSpace(body) == "" {
		body = EmptyBodyPlaceholder
	}
	return Item{Kind: KindPost, Title: title, Body: body, URL: url, CreatedAt: createdAt.UTC()}
}

// Collection is everything fetched for one user, in fetch order.
type Collection struct {
	Username string `json:"username"`
	Comments []Item `json:"comments"`
	Posts    []Item `json:"posts"`
}

// All returns comments followed by posts.
func (c Collection) All() []Item {
	out := make([]Item, 0, len(c.Comments)+len(c.Posts))
	out = append(out, c.Comments...)
	return append(out, c.Posts...)
}

// Len returns the total number of items.
func (c Collection) Len() int { return len(c.Comments) + len(c.Posts) }

// ProcessedItem is an Item with its citation ID and budgeted text.
type ProcessedItem struct {
	CitationID string `json:"citation_id"`
	Kind       Kind   `json:"kind"`
	Title      string `json:"title,omitempty"`
	// DisplayText is the comment body, or "Title: {title}. Body: {body}"
	// for posts, truncated when over the summarization threshold.
	DisplayText string `json:"display_text"`
	// Content is the body as it appears in the packed context. For posts
	// it excludes the title, which the context line carries separately.
	Content   string    `json:"content"`
	Truncated bool      `json:"truncated,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Processed is the cached result of processing a Collection.
type Processed struct {
	Items    []ProcessedItem    `json:"items"`
	Registry *citation.Registry `json:"registry"`
}
