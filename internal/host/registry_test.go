package host

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/orgball2608/social-gallery-engine/internal/domain"
	"github.com/orgball2608/social-gallery-engine/internal/postsource"
	"github.com/orgball2608/social-gallery-engine/internal/view"
	"github.com/orgball2608/social-gallery-engine/pkg/config"
	apperrors "github.com/orgball2608/social-gallery-engine/pkg/errors"
)

type stubSource struct {
	mu      sync.Mutex
	queries []postsource.Query
}

func (s *stubSource) Search(_ context.Context, q postsource.Query) (*domain.Page, error) {
	s.mu.Lock()
	s.queries = append(s.queries, q)
	s.mu.Unlock()
	return &domain.Page{Status: domain.StatusSuccess, Data: []domain.Post{{ID: "1"}}, RecordsTotal: 1}, nil
}

func (s *stubSource) waitQuery(t *testing.T) postsource.Query {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		if len(s.queries) > 0 {
			q := s.queries[len(s.queries)-1]
			s.mu.Unlock()
			return q
		}
		s.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("source never queried")
	return postsource.Query{}
}

func (s *stubSource) GetByID(context.Context, string, postsource.Lookup) (*domain.Post, error) {
	return &domain.Post{ID: "1"}, nil
}

type stubSurface struct {
	mu       sync.Mutex
	gallery  int
	detail   int
	lastG    domain.GalleryViewModel
	lastD    domain.DetailViewModel
	rendered chan struct{}
}

func newStubSurface() *stubSurface {
	return &stubSurface{rendered: make(chan struct{}, 16)}
}

func (s *stubSurface) RenderGallery(vm domain.GalleryViewModel) {
	s.mu.Lock()
	s.gallery++
	s.lastG = vm
	s.mu.Unlock()
	select {
	case s.rendered <- struct{}{}:
	default:
	}
}

func (s *stubSurface) RenderDetail(vm domain.DetailViewModel) {
	s.mu.Lock()
	s.detail++
	s.lastD = vm
	s.mu.Unlock()
	select {
	case s.rendered <- struct{}{}:
	default:
	}
}

func (s *stubSurface) waitRender(t *testing.T) {
	t.Helper()
	select {
	case <-s.rendered:
	case <-time.After(2 * time.Second):
		t.Fatal("surface never rendered")
	}
}

type countingObserver struct {
	mu     sync.Mutex
	ch     chan struct{}
	closes int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{ch: make(chan struct{}, 1)}
}

func (o *countingObserver) Events() <-chan struct{} { return o.ch }

func (o *countingObserver) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closes++
	if o.closes == 1 {
		close(o.ch)
	}
}

func (o *countingObserver) closeCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.closes
}

func newTestRegistry() (*Registry, *stubSource) {
	src := &stubSource{}
	return NewRegistry(RegistryOpts{Source: src}), src
}

func TestMountRejectsEmptySelector(t *testing.T) {
	r, _ := newTestRegistry()
	if _, err := r.Mount("", Options{Type: TypeGallery}); !apperrors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("Mount(\"\") error = %v, want invalid input", err)
	}
}

func TestMountGallery(t *testing.T) {
	r, _ := newTestRegistry()
	defer r.UnmountAll()

	surface := newStubSurface()
	h, err := r.Mount("#grid", Options{Type: TypeGallery, Surface: surface})
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	if h.Gallery() == nil || h.Detail() != nil {
		t.Error("gallery mount did not produce a gallery view")
	}
	surface.waitRender(t)

	got, ok := r.Get("#grid")
	if !ok || got != h {
		t.Error("Get did not return the mounted handle")
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestMountSingle(t *testing.T) {
	r, _ := newTestRegistry()
	defer r.UnmountAll()

	surface := newStubSurface()
	h, err := r.Mount("#player", Options{Type: TypeSingle, PostID: "1", Surface: surface})
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	if h.Detail() == nil || h.Gallery() != nil {
		t.Error("single mount did not produce a detail view")
	}
	surface.waitRender(t)
}

func TestRemountReplacesPriorExactlyOnce(t *testing.T) {
	r, _ := newTestRegistry()
	defer r.UnmountAll()

	obs := newCountingObserver()
	first, err := r.Mount("#grid", Options{Type: TypeGallery, Observer: obs})
	if err != nil {
		t.Fatalf("first Mount() error = %v", err)
	}

	second, err := r.Mount("#grid", Options{Type: TypeGallery})
	if err != nil {
		t.Fatalf("second Mount() error = %v", err)
	}
	if first == second {
		t.Fatal("remount returned the prior handle")
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d after remount, want 1", r.Len())
	}
	if got, _ := r.Get("#grid"); got != second {
		t.Error("Get returned the torn-down handle")
	}
	if obs.closeCount() != 1 {
		t.Errorf("prior observer closed %d times, want exactly 1", obs.closeCount())
	}

	// Unmounting the replaced handle must not tear the live one down.
	if first.Unmount() {
		t.Error("stale handle Unmount() = true, want false")
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d after stale unmount, want 1", r.Len())
	}
	if obs.closeCount() != 1 {
		t.Errorf("observer closed %d times after stale unmount, want 1", obs.closeCount())
	}
}

func TestUnmountReportsPresence(t *testing.T) {
	r, _ := newTestRegistry()

	obs := newCountingObserver()
	if _, err := r.Mount("#grid", Options{Type: TypeGallery, Observer: obs}); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	if !r.Unmount("#grid") {
		t.Error("Unmount() = false for a mounted selector")
	}
	if r.Unmount("#grid") {
		t.Error("second Unmount() = true, want false")
	}
	if obs.closeCount() != 1 {
		t.Errorf("observer closed %d times, want 1", obs.closeCount())
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}

func TestUnmountAll(t *testing.T) {
	r, _ := newTestRegistry()

	for _, sel := range []string{"#a", "#b", "#c"} {
		if _, err := r.Mount(sel, Options{Type: TypeGallery}); err != nil {
			t.Fatalf("Mount(%s) error = %v", sel, err)
		}
	}
	r.UnmountAll()
	if r.Len() != 0 {
		t.Errorf("Len() = %d after UnmountAll, want 0", r.Len())
	}
}

func TestForEachGallerySkipsDetailMounts(t *testing.T) {
	r, _ := newTestRegistry()
	defer r.UnmountAll()

	if _, err := r.Mount("#grid", Options{Type: TypeGallery}); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	if _, err := r.Mount("#player", Options{Type: TypeSingle, PostID: "1"}); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}

	var visited []string
	r.ForEachGallery(func(selector string, _ *view.Gallery) {
		visited = append(visited, selector)
	})
	if len(visited) != 1 || visited[0] != "#grid" {
		t.Errorf("visited %v, want only #grid", visited)
	}
}

func TestMountUsesConfiguredDefaults(t *testing.T) {
	src := &stubSource{}
	cfg := &config.Config{}
	cfg.Gallery.UID = "default-brand"
	cfg.Gallery.PageSize = 12
	r := NewRegistry(RegistryOpts{Source: src, Config: cfg})
	defer r.UnmountAll()

	if _, err := r.Mount("#grid", Options{Type: TypeGallery}); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	q := src.waitQuery(t)
	if q.UID != "default-brand" {
		t.Errorf("query uid = %q, want the configured default", q.UID)
	}
	if q.PageSize != 12 {
		t.Errorf("query page size = %d, want 12", q.PageSize)
	}
}

func TestMountUIDOverridesDefault(t *testing.T) {
	src := &stubSource{}
	cfg := &config.Config{}
	cfg.Gallery.UID = "default-brand"
	r := NewRegistry(RegistryOpts{Source: src, Config: cfg})
	defer r.UnmountAll()

	if _, err := r.Mount("#grid", Options{Type: TypeGallery, UID: "caller-brand"}); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	if q := src.waitQuery(t); q.UID != "caller-brand" {
		t.Errorf("query uid = %q, caller uid must win", q.UID)
	}
}
