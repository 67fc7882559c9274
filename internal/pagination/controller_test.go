package pagination

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/orgball2608/social-gallery-engine/internal/domain"
	"github.com/orgball2608/social-gallery-engine/internal/ratelimit"
)

// pagedFetch serves deterministic fixed-size pages out of a total of n
// posts and counts how many requests it saw.
type pagedFetch struct {
	mu       sync.Mutex
	total    int
	pageSize int
	calls    int
	offsets  []int
	err      error
}

func (f *pagedFetch) fetch(_ context.Context, offset int) (*domain.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.offsets = append(f.offsets, offset)
	if f.err != nil {
		return nil, f.err
	}
	start := offset * f.pageSize
	var data []domain.Post
	for i := start; i < start+f.pageSize && i < f.total; i++ {
		data = append(data, domain.Post{ID: domain.ID(fmt.Sprintf("post-%d", i))})
	}
	return &domain.Page{
		Status:       domain.StatusSuccess,
		Data:         data,
		RecordsTotal: f.total,
	}, nil
}

func (f *pagedFetch) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestResetLoadsFirstPage(t *testing.T) {
	f := &pagedFetch{total: 45, pageSize: 20}
	c := New(f.fetch)
	defer c.Close()

	if err := c.Reset(context.Background()); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	snap := c.Snapshot()
	if len(snap.Posts) != 20 {
		t.Errorf("got %d posts, want 20", len(snap.Posts))
	}
	if snap.Total != 45 {
		t.Errorf("got total %d, want 45", snap.Total)
	}
	if snap.Posts[0].ID != "post-0" {
		t.Errorf("got first post %q, want post-0", snap.Posts[0].ID)
	}
	if !c.HasMore() {
		t.Error("HasMore() = false, want true")
	}
}

func TestLoadMoreAppendsSequentialPages(t *testing.T) {
	f := &pagedFetch{total: 45, pageSize: 20}
	c := New(f.fetch)
	defer c.Close()

	ctx := context.Background()
	if err := c.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if err := c.LoadMore(ctx); err != nil {
		t.Fatalf("LoadMore() error = %v", err)
	}
	if err := c.LoadMore(ctx); err != nil {
		t.Fatalf("LoadMore() error = %v", err)
	}

	snap := c.Snapshot()
	if len(snap.Posts) != 45 {
		t.Fatalf("got %d posts, want 45", len(snap.Posts))
	}
	for i, p := range snap.Posts {
		if want := domain.ID(fmt.Sprintf("post-%d", i)); p.ID != want {
			t.Fatalf("posts out of order at %d: got %q, want %q", i, p.ID, want)
		}
	}
	if want := []int{0, 1, 2}; len(f.offsets) != 3 || f.offsets[0] != want[0] || f.offsets[1] != want[1] || f.offsets[2] != want[2] {
		t.Errorf("got fetch offsets %v, want %v", f.offsets, want)
	}
	if c.HasMore() {
		t.Error("HasMore() = true after all pages, want false")
	}
}

func TestLoadMoreIsNoOpAtTotal(t *testing.T) {
	f := &pagedFetch{total: 15, pageSize: 20}
	c := New(f.fetch)
	defer c.Close()

	ctx := context.Background()
	if err := c.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	before := f.callCount()
	if err := c.LoadMore(ctx); err != nil {
		t.Fatalf("LoadMore() error = %v", err)
	}
	if got := f.callCount(); got != before {
		t.Errorf("LoadMore issued a request at total, calls %d -> %d", before, got)
	}
}

func TestLoadMoreIsNoOpWithoutTotal(t *testing.T) {
	f := &pagedFetch{total: 30, pageSize: 20}
	c := New(f.fetch)
	defer c.Close()

	// No Reset: total is still zero.
	if err := c.LoadMore(context.Background()); err != nil {
		t.Fatalf("LoadMore() error = %v", err)
	}
	if got := f.callCount(); got != 0 {
		t.Errorf("LoadMore issued %d requests with no known total, want 0", got)
	}
}

func TestLoadMoreIsNoOpWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	var mu sync.Mutex
	calls := 0

	fetch := func(_ context.Context, offset int) (*domain.Page, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 2 {
			close(entered)
			<-release
		}
		return &domain.Page{Status: domain.StatusSuccess, Data: []domain.Post{{ID: "a"}}, RecordsTotal: 10}, nil
	}

	c := New(fetch)
	defer c.Close()

	ctx := context.Background()
	if err := c.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- c.LoadMore(ctx) }()
	<-entered

	// A second trigger while the first is in flight must not fetch.
	if err := c.LoadMore(ctx); err != nil {
		t.Fatalf("concurrent LoadMore() error = %v", err)
	}
	mu.Lock()
	got := calls
	mu.Unlock()
	if got != 2 {
		t.Errorf("got %d fetches, want 2 (reset + one in-flight load)", got)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("LoadMore() error = %v", err)
	}
}

func TestResetSupersedesInFlightLoad(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	var mu sync.Mutex
	calls := 0

	fetch := func(_ context.Context, offset int) (*domain.Page, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 2 {
			close(entered)
			<-release
			// Stale second page; must never land.
			return &domain.Page{Status: domain.StatusSuccess, Data: []domain.Post{{ID: "stale"}}, RecordsTotal: 99}, nil
		}
		return &domain.Page{Status: domain.StatusSuccess, Data: []domain.Post{{ID: domain.ID(fmt.Sprintf("fresh-%d", n))}}, RecordsTotal: 10}, nil
	}

	c := New(fetch)
	defer c.Close()

	ctx := context.Background()
	if err := c.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- c.LoadMore(ctx) }()
	<-entered

	if err := c.Reset(ctx); err != nil {
		t.Fatalf("second Reset() error = %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("superseded LoadMore() error = %v", err)
	}

	snap := c.Snapshot()
	if len(snap.Posts) != 1 {
		t.Fatalf("got %d posts, want 1 (stale completion must be discarded)", len(snap.Posts))
	}
	for _, p := range snap.Posts {
		if p.ID == "stale" {
			t.Error("stale page landed after reset")
		}
	}
	if snap.Total == 99 {
		t.Error("stale total landed after reset")
	}
}

func TestLoadMoreFailureStaysRetryable(t *testing.T) {
	f := &pagedFetch{total: 45, pageSize: 20}
	c := New(f.fetch)
	defer c.Close()

	ctx := context.Background()
	if err := c.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	f.mu.Lock()
	f.err = errors.New("upstream down")
	f.mu.Unlock()

	if err := c.LoadMore(ctx); err == nil {
		t.Fatal("LoadMore() error = nil, want failure")
	}
	snap := c.Snapshot()
	if len(snap.Posts) != 20 {
		t.Errorf("failure changed accumulation: got %d posts, want 20", len(snap.Posts))
	}

	f.mu.Lock()
	f.err = nil
	f.mu.Unlock()

	// The retry fetches the same page again.
	if err := c.LoadMore(ctx); err != nil {
		t.Fatalf("retried LoadMore() error = %v", err)
	}
	if got := f.offsets[len(f.offsets)-1]; got != 1 {
		t.Errorf("retry fetched offset %d, want 1", got)
	}
	if got := len(c.Snapshot().Posts); got != 40 {
		t.Errorf("got %d posts after retry, want 40", got)
	}
}

func TestResetFailureLeavesEmptyAccumulation(t *testing.T) {
	f := &pagedFetch{total: 45, pageSize: 20, err: errors.New("boom")}
	c := New(f.fetch)
	defer c.Close()

	if err := c.Reset(context.Background()); err == nil {
		t.Fatal("Reset() error = nil, want failure")
	}
	snap := c.Snapshot()
	if len(snap.Posts) != 0 || snap.Total != 0 {
		t.Errorf("got %d posts total %d after failed reset, want empty", len(snap.Posts), snap.Total)
	}
	if snap.LoadingInitial || snap.LoadingMore {
		t.Error("controller stuck in loading state after failure")
	}
}

func TestSeedStandsInForFirstPage(t *testing.T) {
	f := &pagedFetch{total: 45, pageSize: 20}
	c := New(f.fetch)
	defer c.Close()

	c.Seed([]domain.Post{{ID: "s1"}, {ID: "s2"}})

	snap := c.Snapshot()
	if len(snap.Posts) != 2 || snap.Total != 2 {
		t.Errorf("got %d posts total %d, want 2/2", len(snap.Posts), snap.Total)
	}
	if f.callCount() != 0 {
		t.Errorf("Seed issued %d fetches, want 0", f.callCount())
	}
	if c.HasMore() {
		t.Error("HasMore() = true for a fully seeded list")
	}
}

func TestOnChangeFiresOnTransitions(t *testing.T) {
	f := &pagedFetch{total: 45, pageSize: 20}
	var mu sync.Mutex
	changes := 0
	c := New(f.fetch, WithOnChange(func() {
		mu.Lock()
		changes++
		mu.Unlock()
	}))
	defer c.Close()

	if err := c.Reset(context.Background()); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	mu.Lock()
	got := changes
	mu.Unlock()
	// Loading enter + loading leave.
	if got != 2 {
		t.Errorf("got %d change notifications, want 2", got)
	}
}

func TestArmDrivesLoadMoreFromObserver(t *testing.T) {
	f := &pagedFetch{total: 45, pageSize: 20}
	c := New(f.fetch, WithLimiter(ratelimit.Unlimited()))
	defer c.Close()

	if err := c.Reset(context.Background()); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	obs := NewChannelObserver()
	defer obs.Close()
	c.Arm(obs)

	obs.Signal()

	deadline := time.After(2 * time.Second)
	for len(c.Snapshot().Posts) < 40 {
		select {
		case <-deadline:
			t.Fatalf("observer signal never produced a page, have %d posts", len(c.Snapshot().Posts))
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestCloseDiscardsInFlightCompletion(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	var once sync.Once

	fetch := func(_ context.Context, offset int) (*domain.Page, error) {
		if offset == 1 {
			once.Do(func() { close(entered) })
			<-release
		}
		return &domain.Page{Status: domain.StatusSuccess, Data: []domain.Post{{ID: "a"}}, RecordsTotal: 10}, nil
	}

	c := New(fetch)
	ctx := context.Background()
	if err := c.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- c.LoadMore(ctx) }()
	<-entered

	c.Close()
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("LoadMore() after close error = %v", err)
	}

	if got := len(c.Snapshot().Posts); got != 1 {
		t.Errorf("late completion landed after Close: got %d posts, want 1", got)
	}
}

func TestChannelObserverCoalescesAndClosesIdempotently(t *testing.T) {
	obs := NewChannelObserver()

	obs.Signal()
	obs.Signal()
	obs.Signal()

	select {
	case <-obs.Events():
	default:
		t.Fatal("no event pending after Signal")
	}
	select {
	case <-obs.Events():
		t.Fatal("signals did not coalesce to one pending event")
	default:
	}

	obs.Close()
	obs.Close()
	obs.Signal() // safe after close

	if _, ok := <-obs.Events(); ok {
		t.Error("events channel still open after Close")
	}
}
