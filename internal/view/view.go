// Package view composes fetched pages, filters and resolved media into
// the view models a rendering surface paints.
package view

import (
	"github.com/orgball2608/social-gallery-engine/internal/domain"
	"github.com/orgball2608/social-gallery-engine/internal/embed"
	"github.com/orgball2608/social-gallery-engine/internal/engagement"
	"github.com/orgball2608/social-gallery-engine/internal/media"
	"github.com/orgball2608/social-gallery-engine/pkg/formatter"
)

// GallerySurface is the rendering collaborator of a gallery view. It
// receives immutable snapshots and emits nothing back; user interaction
// re-enters through the view's methods.
type GallerySurface interface {
	RenderGallery(vm domain.GalleryViewModel)
}

// DetailSurface is the rendering collaborator of a detail view.
type DetailSurface interface {
	RenderDetail(vm domain.DetailViewModel)
}

// BuildCard derives the full per-post view model: plain-text title,
// resolved thumbnail and video, engagement totals, embeddable platform
// links and the formatted date.
func BuildCard(p domain.Post) domain.PostCard {
	title := p.Body.Title
	if title == "" {
		title = p.Body.Content
	}
	thumb, hasThumb := media.Thumbnail(&p)
	video, hasVideo := media.Video(&p)

	return domain.PostCard{
		Post:       p,
		Title:      media.StripHTML(title),
		Thumbnail:  thumb,
		HasThumb:   hasThumb,
		VideoURL:   video,
		HasVideo:   hasVideo,
		Engagement: engagement.Aggregate(p.PlatformAnalytics),
		Embeds:     embed.AvailableLinks(&p),
		PostedAt:   formatter.FormatISODate(p.Body.Date),
	}
}
