// Package host mounts and unmounts view instances at page anchors and
// passes configuration and callbacks through to them.
package host

import (
	"github.com/orgball2608/social-gallery-engine/internal/domain"
	"github.com/orgball2608/social-gallery-engine/internal/pagination"
	"github.com/orgball2608/social-gallery-engine/internal/view"
)

// ViewType selects which view a mount creates.
type ViewType string

const (
	TypeGallery ViewType = "gallery"
	TypeSingle  ViewType = "single"
)

// Surface is the rendering collaborator a host supplies per mount. It
// owns painting; the engine only pushes view-model snapshots at it.
type Surface interface {
	view.GallerySurface
	view.DetailSurface
}

// Options is the mount directive a host page provides.
type Options struct {
	Type ViewType

	// Gallery: optional pre-fetched posts (skips the initial fetch).
	Posts []domain.Post
	// Single: the post id to resolve, or an already-available post.
	PostID string
	Post   *domain.Post

	// BaseURL / Domain override the configured API base URL for this
	// instance; Domain wins when both are set.
	BaseURL string
	UID     string
	Domain  string

	OnPostClick func(domain.Post)
	OnBackClick func()

	Surface Surface
	// Observer is the sentinel signal source driving infinite scroll.
	// Optional; without one, pagination advances only via explicit
	// LoadMore calls.
	Observer pagination.BoundaryObserver
}

// effectiveDomain resolves the per-instance base-URL override.
func (o Options) effectiveDomain() string {
	if o.Domain != "" {
		return o.Domain
	}
	return o.BaseURL
}
