// Package media resolves a post's displayable thumbnail and video from
// its open metadata, and strips markup from card titles.
package media

import (
	"html"
	"strings"

	"github.com/orgball2608/social-gallery-engine/internal/domain"
)

var (
	imageExts = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}
	videoExts = []string{".mp4", ".mov", ".webm"}
	// avi counts as playable video but never as a thumbnail fallback.
	playableExts = []string{".mp4", ".mov", ".webm", ".avi"}
)

func matchesAny(u string, exts []string) bool {
	for _, ext := range exts {
		if strings.Contains(u, ext) {
			return true
		}
	}
	return false
}

// Thumbnail picks the post's display thumbnail. An explicit
// meta.thumbnail wins outright; otherwise the first image-looking media
// URL, then the first video-looking one.
func Thumbnail(p *domain.Post) (string, bool) {
	if p.Meta.Thumbnail != "" {
		return p.Meta.Thumbnail, true
	}
	for _, u := range p.Meta.MediaURLs {
		if u != "" && matchesAny(u, imageExts) {
			return u, true
		}
	}
	for _, u := range p.Meta.MediaURLs {
		if u != "" && matchesAny(u, videoExts) {
			return u, true
		}
	}
	return "", false
}

// Video picks the post's playable video independently of what Thumbnail
// chose; a post may report both, either, or neither.
func Video(p *domain.Post) (string, bool) {
	for _, u := range p.Meta.MediaURLs {
		if u != "" && matchesAny(u, playableExts) {
			return u, true
		}
	}
	return "", false
}

// IsVideoURL classifies a URL as playable video.
func IsVideoURL(u string) bool {
	return u != "" && matchesAny(u, playableExts)
}

// StripHTML removes tags and unescapes entities so post titles render as
// plain text.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(html.UnescapeString(b.String()))
}
