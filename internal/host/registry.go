package host

import (
	"context"
	"sync"

	"github.com/orgball2608/social-gallery-engine/internal/pagination"
	"github.com/orgball2608/social-gallery-engine/internal/postsource"
	"github.com/orgball2608/social-gallery-engine/internal/view"
	"github.com/orgball2608/social-gallery-engine/pkg/config"
	apperrors "github.com/orgball2608/social-gallery-engine/pkg/errors"
	"github.com/orgball2608/social-gallery-engine/pkg/logger"
	"go.uber.org/fx"
)

// Handle is the live instance returned by Mount.
type Handle struct {
	selector string
	registry *Registry

	gallery  *view.Gallery
	detail   *view.Detail
	observer pagination.BoundaryObserver
	cancel   context.CancelFunc

	closeOnce sync.Once
}

// Gallery returns the gallery view, or nil for a single mount.
func (h *Handle) Gallery() *view.Gallery { return h.gallery }

// Detail returns the detail view, or nil for a gallery mount.
func (h *Handle) Detail() *view.Detail { return h.detail }

// Unmount removes this instance from its registry. Reports whether it
// was still mounted.
func (h *Handle) Unmount() bool {
	return h.registry.Unmount(h.selector)
}

// close tears the instance down exactly once: future triggers stop and a
// late fetch completion is discarded, not applied.
func (h *Handle) close() {
	h.closeOnce.Do(func() {
		h.cancel()
		if h.observer != nil {
			h.observer.Close()
		}
		if h.gallery != nil {
			h.gallery.Close()
		}
		if h.detail != nil {
			h.detail.Close()
		}
	})
}

// RegistryOpts holds dependencies for creating the mount registry.
type RegistryOpts struct {
	fx.In
	Source postsource.Source
	Logger logger.Logger
	Config *config.Config
}

// Registry owns the selector-to-instance mapping. It behaves as
// page-scoped singleton state but is an explicit object, not module
// globals.
type Registry struct {
	source   postsource.Source
	logger   logger.Logger
	uid      string
	pageSize int

	mu        sync.Mutex
	instances map[string]*Handle
}

// NewRegistry creates the mount registry.
func NewRegistry(opts RegistryOpts) *Registry {
	pageSize := 20
	uid := ""
	if opts.Config != nil {
		if opts.Config.Gallery.PageSize > 0 {
			pageSize = opts.Config.Gallery.PageSize
		}
		uid = opts.Config.Gallery.UID
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Registry{
		source:    opts.Source,
		logger:    log.WithComponent("HostRegistry"),
		uid:       uid,
		pageSize:  pageSize,
		instances: make(map[string]*Handle),
	}
}

// Mount creates a view instance at the selector and starts loading it.
// Mounting over a live selector tears the prior instance down exactly
// once before the new one starts (idempotent replace).
func (r *Registry) Mount(selector string, opts Options) (*Handle, error) {
	if selector == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "empty selector")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if prior, ok := r.instances[selector]; ok {
		delete(r.instances, selector)
		prior.close()
		r.logger.Info("Replacing mounted instance", "selector", selector)
	}

	uid := opts.UID
	if uid == "" {
		uid = r.uid
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &Handle{
		selector: selector,
		registry: r,
		observer: opts.Observer,
		cancel:   cancel,
	}

	switch opts.Type {
	case TypeSingle:
		h.detail = view.NewDetail(view.DetailOptions{
			Source:      r.source,
			Surface:     opts.Surface,
			Logger:      r.logger,
			UID:         uid,
			Domain:      opts.effectiveDomain(),
			PageSize:    r.pageSize,
			PostID:      opts.PostID,
			Post:        opts.Post,
			OnPostClick: opts.OnPostClick,
			OnBackClick: opts.OnBackClick,
		})
		if opts.Observer != nil {
			h.detail.ArmRelated(opts.Observer)
		}
		go func() {
			if err := h.detail.Start(ctx); err != nil {
				r.logger.Warn("Detail start failed", "selector", selector, "error", err)
			}
		}()
	default:
		h.gallery = view.NewGallery(view.GalleryOptions{
			Source:       r.source,
			Surface:      opts.Surface,
			Logger:       r.logger,
			UID:          uid,
			Domain:       opts.effectiveDomain(),
			PageSize:     r.pageSize,
			InitialPosts: opts.Posts,
			OnPostClick:  opts.OnPostClick,
		})
		if opts.Observer != nil {
			h.gallery.Arm(opts.Observer)
		}
		go func() {
			if err := h.gallery.Start(ctx); err != nil {
				r.logger.Warn("Gallery start failed", "selector", selector, "error", err)
			}
		}()
	}

	r.instances[selector] = h
	return h, nil
}

// Get returns the live instance at a selector, if any.
func (r *Registry) Get(selector string) (*Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.instances[selector]
	return h, ok
}

// Unmount tears down the instance at a selector. Reports whether one was
// mounted.
func (r *Registry) Unmount(selector string) bool {
	r.mu.Lock()
	h, ok := r.instances[selector]
	if ok {
		delete(r.instances, selector)
	}
	r.mu.Unlock()
	if ok {
		h.close()
	}
	return ok
}

// UnmountAll tears down every mounted instance.
func (r *Registry) UnmountAll() {
	r.mu.Lock()
	handles := make([]*Handle, 0, len(r.instances))
	for _, h := range r.instances {
		handles = append(handles, h)
	}
	r.instances = make(map[string]*Handle)
	r.mu.Unlock()
	for _, h := range handles {
		h.close()
	}
}

// Len reports the number of mounted instances.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.instances)
}

// ForEachGallery visits every mounted gallery view; the refresh
// scheduler uses it to walk live grids.
func (r *Registry) ForEachGallery(fn func(selector string, g *view.Gallery)) {
	r.mu.Lock()
	type entry struct {
		selector string
		gallery  *view.Gallery
	}
	entries := make([]entry, 0, len(r.instances))
	for sel, h := range r.instances {
		if h.gallery != nil {
			entries = append(entries, entry{sel, h.gallery})
		}
	}
	r.mu.Unlock()
	for _, e := range entries {
		fn(e.selector, e.gallery)
	}
}
