package domain

// EngagementTotals is the normalized engagement record summed across all
// platforms a post reports analytics for.
type EngagementTotals struct {
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
	Shares   int `json:"shares"`
	Views    int `json:"views"`
}

// PlatformEmbed is a resolved, iframe-ready link for one of a post's
// platforms. Derived per render, never persisted.
type PlatformEmbed struct {
	Platform  string `json:"platform"`
	SourceURL string `json:"source_url"`
	EmbedURL  string `json:"embed_url"`
}

// PostCard is the per-post view model the rendering surface paints.
type PostCard struct {
	Post       Post
	Title      string
	Thumbnail  string
	HasThumb   bool
	VideoURL   string
	HasVideo   bool
	Engagement EngagementTotals
	Embeds     []PlatformEmbed
	PostedAt   string
}

// GalleryViewModel is the list-view feed handed to the rendering surface.
type GalleryViewModel struct {
	Cards       []PostCard
	Loading     bool
	LoadingMore bool
	ShownCount  int
	TotalCount  int
	Empty       bool
	Failed      bool
}

// RelatedViewModel is the related-posts rail of the detail view.
type RelatedViewModel struct {
	Cards       []PostCard
	Loading     bool
	LoadingMore bool
	TotalCount  int
}

// DetailViewModel is the single-post view model plus its related rail.
type DetailViewModel struct {
	Found            bool
	Loading          bool
	Card             PostCard
	Embeds           []PlatformEmbed
	SelectedPlatform string
	Related          RelatedViewModel
}
