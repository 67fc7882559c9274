package view

import (
	"context"
	"strings"
	"sync"

	"github.com/orgball2608/social-gallery-engine/internal/domain"
	"github.com/orgball2608/social-gallery-engine/internal/media"
	"github.com/orgball2608/social-gallery-engine/internal/pagination"
	"github.com/orgball2608/social-gallery-engine/internal/postsource"
	"github.com/orgball2608/social-gallery-engine/pkg/logger"
)

// PlatformAll is the filter value meaning "no platform filter".
const PlatformAll = "all"

// GalleryOptions configures a gallery view instance.
type GalleryOptions struct {
	Source       postsource.Source
	Surface      GallerySurface
	Logger       logger.Logger
	UID          string
	Domain       string
	PageSize     int
	InitialPosts []domain.Post
	OnPostClick  func(domain.Post)
}

// Gallery owns the grid's filter state and one pagination controller.
// Every state transition pushes a fresh snapshot to the surface.
type Gallery struct {
	source      postsource.Source
	surface     GallerySurface
	logger      logger.Logger
	onPostClick func(domain.Post)
	uid         string
	domainURL   string
	pageSize    int
	seed        []domain.Post

	ctrl *pagination.Controller

	mu         sync.Mutex
	search     string
	platform   string // PlatformAll or a platform key
	dateFilter string
	failed     bool
}

// NewGallery wires a gallery view. Call Start to load the first page.
func NewGallery(opts GalleryOptions) *Gallery {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	g := &Gallery{
		source:      opts.Source,
		surface:     opts.Surface,
		logger:      log.WithComponent("GalleryView"),
		onPostClick: opts.OnPostClick,
		uid:         opts.UID,
		domainURL:   opts.Domain,
		pageSize:    pageSize,
		seed:        opts.InitialPosts,
		platform:    PlatformAll,
		dateFilter:  "all",
	}
	g.ctrl = pagination.New(g.fetchPage,
		pagination.WithLogger(log),
		pagination.WithOnChange(g.publish),
	)
	return g
}

// Start performs the initial load, or seeds the grid when the host
// supplied posts at mount (no fetch in that case).
func (g *Gallery) Start(ctx context.Context) error {
	if len(g.seed) > 0 {
		g.ctrl.Seed(g.seed)
		return nil
	}
	return g.Refresh(ctx)
}

// Refresh reloads the grid from the first page with the current filters.
func (g *Gallery) Refresh(ctx context.Context) error {
	err := g.ctrl.Reset(ctx)
	g.mu.Lock()
	g.failed = err != nil
	g.mu.Unlock()
	if err != nil {
		g.publish()
	}
	return err
}

// SetSearch replaces the search text and fully resets pagination.
func (g *Gallery) SetSearch(ctx context.Context, term string) error {
	g.mu.Lock()
	g.search = term
	g.mu.Unlock()
	return g.Refresh(ctx)
}

// SetPlatform replaces the platform filter ("all" clears it) and fully
// resets pagination.
func (g *Gallery) SetPlatform(ctx context.Context, platform string) error {
	if platform == "" {
		platform = PlatformAll
	}
	g.mu.Lock()
	g.platform = platform
	g.mu.Unlock()
	return g.Refresh(ctx)
}

// SetDateFilter replaces the date bucket ("all" clears it) and fully
// resets pagination.
func (g *Gallery) SetDateFilter(ctx context.Context, filter string) error {
	if filter == "" {
		filter = "all"
	}
	g.mu.Lock()
	g.dateFilter = filter
	g.mu.Unlock()
	return g.Refresh(ctx)
}

// Arm subscribes infinite scrolling to a sentinel observer.
func (g *Gallery) Arm(obs pagination.BoundaryObserver) {
	g.ctrl.Arm(obs)
}

// LoadMore exposes a manual next-page trigger.
func (g *Gallery) LoadMore(ctx context.Context) error {
	return g.ctrl.LoadMore(ctx)
}

// Click reports a grid item selection to the host.
func (g *Gallery) Click(p domain.Post) {
	if g.onPostClick != nil {
		g.onPostClick(p)
	}
}

// Close tears the view down; no further triggers or snapshot pushes.
func (g *Gallery) Close() {
	g.ctrl.Close()
}

func (g *Gallery) fetchPage(ctx context.Context, offset int) (*domain.Page, error) {
	g.mu.Lock()
	q := postsource.Query{
		Offset:     offset,
		PageSize:   g.pageSize,
		Keyword:    g.search,
		Platform:   g.platformParam(),
		DateFilter: g.dateFilter,
		UID:        g.uid,
		Domain:     g.domainURL,
	}
	g.mu.Unlock()
	return g.source.Search(ctx, q)
}

// platformParam translates the displayed filter into the wire value.
// Caller holds g.mu.
func (g *Gallery) platformParam() string {
	if g.platform == PlatformAll {
		return ""
	}
	return g.platform
}

// Snapshot builds the current list view model: accumulated posts refined
// by the search and platform filters, plus loading/empty/error state.
func (g *Gallery) Snapshot() domain.GalleryViewModel {
	snap := g.ctrl.Snapshot()
	g.mu.Lock()
	search := g.search
	platform := g.platform
	failed := g.failed
	g.mu.Unlock()

	cards := make([]domain.PostCard, 0, len(snap.Posts))
	for i := range snap.Posts {
		p := snap.Posts[i]
		if !matchesFilters(&p, search, platform) {
			continue
		}
		cards = append(cards, BuildCard(p))
	}

	return domain.GalleryViewModel{
		Cards:       cards,
		Loading:     snap.LoadingInitial,
		LoadingMore: snap.LoadingMore,
		ShownCount:  len(cards),
		TotalCount:  snap.Total,
		Empty:       !snap.LoadingInitial && !failed && len(cards) == 0,
		Failed:      failed,
	}
}

func (g *Gallery) publish() {
	if g.surface == nil {
		return
	}
	g.surface.RenderGallery(g.Snapshot())
}

// matchesFilters refines server pages client-side: the title (falling
// back to content) must contain the search text, and the post must carry
// the selected platform.
func matchesFilters(p *domain.Post, search, platform string) bool {
	if search != "" {
		title := p.Body.Title
		if title == "" {
			title = p.Body.Content
		}
		title = media.StripHTML(title)
		if !strings.Contains(strings.ToLower(title), strings.ToLower(search)) {
			return false
		}
	}
	if platform != PlatformAll && !p.HasPlatform(platform) {
		return false
	}
	return true
}
