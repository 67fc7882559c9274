// Package embed derives platform-hosted, iframe-ready URLs from raw
// social-media post URLs.
package embed

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/orgball2608/social-gallery-engine/internal/domain"
)

var (
	instagramRe = regexp.MustCompile(`/(reel|p)/([^/?]+)`)
	twitterRe   = regexp.MustCompile(`status/(\d+)`)
	youtubeRe   = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([^&\n?#]+)`)
	tiktokRe    = regexp.MustCompile(`/video/(\d+)`)
)

// Resolve maps a raw platform post URL to its embeddable form. The
// platform key is matched case-insensitively; false means the platform or
// URL shape is unsupported.
func Resolve(platform, sourceURL string) (string, bool) {
	if sourceURL == "" {
		return "", false
	}

	switch strings.ToLower(platform) {
	case "facebook":
		href := url.QueryEscape(sourceURL)
		if strings.Contains(sourceURL, "/watch") {
			return "https://www.facebook.com/plugins/video.php?href=" + href +
				"&show_text=0&width=500&height=500&autoplay=true&loop=true", true
		}
		return "https://www.facebook.com/plugins/post.php?href=" + href +
			"&width=500&show_text=true&height=500", true

	case "instagram":
		m := instagramRe.FindStringSubmatch(sourceURL)
		if m == nil {
			return "", false
		}
		if m[1] == "reel" {
			return "https://www.instagram.com/reel/" + m[2] + "/embed/?autoplay=true&loop=1&hidecaption=1", true
		}
		return "https://www.instagram.com/p/" + m[2] + "/embed/?hidecaption=1", true

	case "twitter", "x":
		m := twitterRe.FindStringSubmatch(sourceURL)
		if m == nil {
			return "", false
		}
		return "https://platform.twitter.com/embed/Tweet.html?id=" + m[1], true

	case "youtube":
		m := youtubeRe.FindStringSubmatch(sourceURL)
		if m == nil {
			return "", false
		}
		// playlist=<id> makes the single video loop.
		return "https://www.youtube.com/embed/" + m[1] + "?loop=1&rel=0&playlist=" + m[1] + "&autoplay=1", true

	case "tiktok":
		m := tiktokRe.FindStringSubmatch(sourceURL)
		if m == nil {
			return "", false
		}
		return "https://www.tiktok.com/embed/v2/" + m[1] + "?autoplay=1&loop=1", true
	}

	return "", false
}

// AvailableLinks computes a post's resolvable embeds, in the post's own
// platform order. The video URL is preferred over the image URL as the
// source; platforms that do not resolve are skipped. The first element is
// the default selection for display.
func AvailableLinks(p *domain.Post) []domain.PlatformEmbed {
	if p == nil || len(p.Platforms) == 0 || len(p.Links) == 0 {
		return nil
	}

	var out []domain.PlatformEmbed
	for _, platform := range p.Platforms {
		link, ok := p.Link(platform)
		if !ok {
			continue
		}
		source := link.VideoURL
		if source == "" {
			source = link.ImageURL
		}
		embedURL, ok := Resolve(platform, source)
		if !ok {
			continue
		}
		out = append(out, domain.PlatformEmbed{
			Platform:  platform,
			SourceURL: source,
			EmbedURL:  embedURL,
		})
	}
	return out
}
