package domain

import (
	"encoding/json"
	"strings"
)

// ID is a post identifier. The aggregation API emits it as either a JSON
// number or a numeric string depending on the source platform, so it is
// normalized to its string form on decode.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*id = ""
		return nil
	}
	if len(s) > 0 && s[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*id = ID(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Author of a post. Display only.
type Author struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Body holds the editorial content of a post.
type Body struct {
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	Date     string  `json:"date"`     // ISO 8601
	Modified *string `json:"modified"` // ISO 8601 or null
}

// PlatformLink is the pair of source URLs a post carries for one platform.
// Either may be empty.
type PlatformLink struct {
	VideoURL string `json:"video_url"`
	ImageURL string `json:"image_url"`
}

// PlatformAnalytics is a partial per-platform analytics record. Every
// field is optional and platform-dependent; nil means the platform did
// not report the metric, which is distinct from reporting zero.
type PlatformAnalytics struct {
	LikeCount      *int `json:"like_count,omitempty"`
	TotalReactions *int `json:"total_reactions,omitempty"`
	VideoViews     *int `json:"video_views,omitempty"`
	SharesCount    *int `json:"shares_count,omitempty"`
	CommentsCount  *int `json:"comments_count,omitempty"`
	Impressions    *int `json:"impressions,omitempty"`
}

// Meta is the open post metadata mapping. Thumbnail and MediaURLs are the
// recognized keys; everything else is kept raw in Extra.
type Meta struct {
	Thumbnail string
	MediaURLs []string
	Extra     map[string]json.RawMessage
}

func (m *Meta) UnmarshalJSON(b []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if v, ok := raw["thumbnail"]; ok {
		// A non-string thumbnail is treated as absent, not as an error.
		_ = json.Unmarshal(v, &m.Thumbnail)
		delete(raw, "thumbnail")
	}
	if v, ok := raw["mediaUrls"]; ok {
		_ = json.Unmarshal(v, &m.MediaURLs)
		delete(raw, "mediaUrls")
	}
	m.Extra = raw
	return nil
}

func (m Meta) MarshalJSON() ([]byte, error) {
	out := map[string]any{}
	for k, v := range m.Extra {
		out[k] = v
	}
	if m.Thumbnail != "" {
		out["thumbnail"] = m.Thumbnail
	}
	if len(m.MediaURLs) > 0 {
		out["mediaUrls"] = m.MediaURLs
	}
	return json.Marshal(out)
}

// Post is one social-media content item aggregated from one or more
// platforms.
type Post struct {
	ID                ID                           `json:"id"`
	Author            Author                       `json:"author"`
	Body              Body                         `json:"post"`
	Platforms         []string                     `json:"platforms"`
	Links             map[string]PlatformLink      `json:"links"`
	PlatformAnalytics map[string]PlatformAnalytics `json:"platform_analytics,omitempty"`
	Meta              Meta                         `json:"meta"`
}

// Link returns the link entry for a platform key, matched
// case-insensitively. A platform listed without a link entry is "no
// link", never an error.
func (p *Post) Link(platform string) (PlatformLink, bool) {
	if l, ok := p.Links[strings.ToLower(platform)]; ok {
		return l, true
	}
	for k, l := range p.Links {
		if strings.EqualFold(k, platform) {
			return l, true
		}
	}
	return PlatformLink{}, false
}

// HasPlatform reports whether the post was published to the given
// platform key.
func (p *Post) HasPlatform(platform string) bool {
	for _, key := range p.Platforms {
		if strings.EqualFold(key, platform) {
			return true
		}
	}
	return false
}
