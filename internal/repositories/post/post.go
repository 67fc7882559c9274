package post

import (
	"context"
	"errors"

	"github.com/orgball2608/social-gallery-engine/internal/domain"
)

var (
	ErrAlreadyExists = errors.New("post already exists")
	ErrNotFound      = errors.New("post not found")
)

// Filter narrows a post listing. Zero values mean "no constraint".
type Filter struct {
	Offset     int
	Limit      int
	Keyword    string // matched against id, title and content
	Platform   string // platform key membership
	DateFilter string // bucket label, see BucketRange
	UID        string // tenant scope
}

// Result is one listed page plus the counts the wire format reports.
type Result struct {
	Posts    []domain.Post
	Total    int // records in the tenant scope, unfiltered
	Filtered int // records matching the filter
}

// Repository stores aggregated posts for the preview API server.
type Repository interface {
	// List returns one page of posts matching the filter, newest first.
	List(ctx context.Context, f Filter) (*Result, error)

	// GetByID returns a single post.
	GetByID(ctx context.Context, id string) (*domain.Post, error)

	// Create seeds a post.
	Create(ctx context.Context, p domain.Post, uid string) error
}
