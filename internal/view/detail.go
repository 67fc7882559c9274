package view

import (
	"context"
	"strings"
	"sync"

	"github.com/orgball2608/social-gallery-engine/internal/domain"
	"github.com/orgball2608/social-gallery-engine/internal/embed"
	"github.com/orgball2608/social-gallery-engine/internal/pagination"
	"github.com/orgball2608/social-gallery-engine/internal/postsource"
	apperrors "github.com/orgball2608/social-gallery-engine/pkg/errors"
	"github.com/orgball2608/social-gallery-engine/pkg/logger"
)

// DetailOptions configures a detail view instance. Exactly one of Post
// and PostID is expected; a supplied Post skips the lookup entirely.
type DetailOptions struct {
	Source      postsource.Source
	Surface     DetailSurface
	Logger      logger.Logger
	UID         string
	Domain      string
	PageSize    int
	PostID      string
	Post        *domain.Post
	OnPostClick func(domain.Post)
	OnBackClick func()
}

// Detail resolves one post, owns the platform-switcher state and runs an
// independent pagination controller for the related-posts rail.
type Detail struct {
	source      postsource.Source
	surface     DetailSurface
	logger      logger.Logger
	onPostClick func(domain.Post)
	onBackClick func()
	uid         string
	domainURL   string
	pageSize    int

	related *pagination.Controller

	mu               sync.Mutex
	postID           string
	post             *domain.Post
	loading          bool
	selectedPlatform string
}

// NewDetail wires a detail view. Call Start to resolve the post and load
// the related rail.
func NewDetail(opts DetailOptions) *Detail {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	d := &Detail{
		source:      opts.Source,
		surface:     opts.Surface,
		logger:      log.WithComponent("DetailView"),
		onPostClick: opts.OnPostClick,
		onBackClick: opts.OnBackClick,
		uid:         opts.UID,
		domainURL:   opts.Domain,
		pageSize:    pageSize,
		postID:      opts.PostID,
		loading:     opts.Post == nil,
	}
	if opts.Post != nil {
		p := *opts.Post
		d.post = &p
		d.postID = p.ID.String()
		d.selectedPlatform = defaultPlatform(&p)
	}
	d.related = pagination.New(d.fetchRelatedPage,
		pagination.WithLogger(log),
		pagination.WithOnChange(d.publish),
	)
	return d
}

// Start loads the related rail and resolves the current post. Resolution
// order: the post supplied at construction, then an id match inside the
// freshly loaded rail, then a single-post lookup. A failed lookup leaves
// the view in its not-found state.
func (d *Detail) Start(ctx context.Context) error {
	d.publish()

	// The rail is loaded first so an already-available record can satisfy
	// the lookup without a second request.
	if err := d.related.Reset(ctx); err != nil {
		d.logger.Warn("Related rail load failed", "error", err)
	}

	d.mu.Lock()
	resolved := d.post != nil
	id := d.postID
	d.mu.Unlock()

	if !resolved && id != "" {
		post := d.findInRelated(id)
		if post == nil {
			fetched, err := d.source.GetByID(ctx, id, postsource.Lookup{UID: d.uid, Domain: d.domainURL})
			if err != nil {
				if !apperrors.IsNotFound(err) {
					d.logger.Warn("Single post lookup failed", "post_id", id, "error", err)
				}
			} else {
				post = fetched
			}
		}
		d.mu.Lock()
		d.post = post
		if post != nil {
			d.selectedPlatform = defaultPlatform(post)
		}
		d.mu.Unlock()
	}

	d.mu.Lock()
	d.loading = false
	d.mu.Unlock()
	d.publish()
	return nil
}

// SelectPlatform switches the embed the player shows. Unknown platforms
// are ignored.
func (d *Detail) SelectPlatform(platform string) {
	d.mu.Lock()
	if d.post == nil {
		d.mu.Unlock()
		return
	}
	for _, link := range embed.AvailableLinks(d.post) {
		if strings.EqualFold(link.Platform, platform) {
			d.selectedPlatform = link.Platform
			d.mu.Unlock()
			d.publish()
			return
		}
	}
	d.mu.Unlock()
}

// ClickRelated reports a rail selection to the host; without a host
// handler the detail view swaps the clicked post in place.
func (d *Detail) ClickRelated(p domain.Post) {
	if d.onPostClick != nil {
		d.onPostClick(p)
		return
	}
	d.mu.Lock()
	post := p
	d.post = &post
	d.postID = p.ID.String()
	d.selectedPlatform = defaultPlatform(&post)
	d.mu.Unlock()
	d.publish()
}

// Back reports explicit navigation back to the grid; only fires when the
// host supplied a handler.
func (d *Detail) Back() {
	if d.onBackClick != nil {
		d.onBackClick()
	}
}

// ArmRelated subscribes the rail's infinite scrolling to a sentinel
// observer.
func (d *Detail) ArmRelated(obs pagination.BoundaryObserver) {
	d.related.Arm(obs)
}

// LoadMoreRelated exposes a manual rail next-page trigger.
func (d *Detail) LoadMoreRelated(ctx context.Context) error {
	return d.related.LoadMore(ctx)
}

// Close tears the view down.
func (d *Detail) Close() {
	d.related.Close()
}

// fetchRelatedPage loads the rail with empty filters; the rail is the
// general feed minus the current post.
func (d *Detail) fetchRelatedPage(ctx context.Context, offset int) (*domain.Page, error) {
	return d.source.Search(ctx, postsource.Query{
		Offset:   offset,
		PageSize: d.pageSize,
		UID:      d.uid,
		Domain:   d.domainURL,
	})
}

func (d *Detail) findInRelated(id string) *domain.Post {
	snap := d.related.Snapshot()
	for i := range snap.Posts {
		if snap.Posts[i].ID.String() == id {
			p := snap.Posts[i]
			return &p
		}
	}
	return nil
}

// Snapshot builds the detail view model plus its related rail, excluding
// the current post from the rail.
func (d *Detail) Snapshot() domain.DetailViewModel {
	relSnap := d.related.Snapshot()
	d.mu.Lock()
	post := d.post
	loading := d.loading
	selected := d.selectedPlatform
	currentID := d.postID
	d.mu.Unlock()

	vm := domain.DetailViewModel{
		Found:            post != nil,
		Loading:          loading,
		SelectedPlatform: selected,
	}
	if post != nil {
		vm.Card = BuildCard(*post)
		vm.Embeds = vm.Card.Embeds
	}

	cards := make([]domain.PostCard, 0, len(relSnap.Posts))
	for i := range relSnap.Posts {
		if currentID != "" && relSnap.Posts[i].ID.String() == currentID {
			continue
		}
		cards = append(cards, BuildCard(relSnap.Posts[i]))
	}
	vm.Related = domain.RelatedViewModel{
		Cards:       cards,
		Loading:     relSnap.LoadingInitial,
		LoadingMore: relSnap.LoadingMore,
		TotalCount:  relSnap.Total,
	}
	return vm
}

func (d *Detail) publish() {
	if d.surface == nil {
		return
	}
	d.surface.RenderDetail(d.Snapshot())
}

func defaultPlatform(p *domain.Post) string {
	links := embed.AvailableLinks(p)
	if len(links) == 0 {
		return ""
	}
	return links[0].Platform
}
