package postsource

import (
	"context"

	"github.com/orgball2608/social-gallery-engine/internal/domain"
)

// Query parameterizes one page fetch against the aggregation API.
type Query struct {
	Offset     int    // page index, >= 0
	PageSize   int    // > 0, fixed at 20 by callers
	Keyword    string // empty means no keyword filter
	Platform   string // empty means all platforms
	DateFilter string // "all" or empty means no date filter, else a bucket label
	UID        string // tenant user id, always caller-supplied
	Domain     string // non-empty overrides the configured base URL; never transmitted
}

// Lookup carries the per-instance parameters of a single-post fetch.
type Lookup struct {
	UID    string
	Domain string
}

// Source issues paginated queries against the remote aggregation API.
//
// Search and GetByID are deliberately distinct operations: the wire
// protocol overloads the keyword parameter for id lookup, but that
// conflation stays inside the transport implementation.
type Source interface {
	Search(ctx context.Context, q Query) (*domain.Page, error)
	GetByID(ctx context.Context, id string, l Lookup) (*domain.Post, error)
}
