// Package pagination owns the load-state machine behind every infinite
// scrolling list: current offset, accumulated records, load-more gating
// and sentinel-driven triggering.
package pagination

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/orgball2608/social-gallery-engine/internal/domain"
	"github.com/orgball2608/social-gallery-engine/internal/ratelimit"
	"github.com/orgball2608/social-gallery-engine/pkg/logger"
)

// FetchFunc fetches one page at the given page index.
type FetchFunc func(ctx context.Context, offset int) (*domain.Page, error)

// State of the controller.
type State int

const (
	Idle State = iota
	LoadingInitial
	LoadingMore
)

// Snapshot is an immutable view of the controller state.
type Snapshot struct {
	Posts          []domain.Post
	Total          int
	LoadingInitial bool
	LoadingMore    bool
}

var instanceSeq atomic.Int64

// Option configures a Controller.
type Option func(*Controller)

func WithLogger(log logger.Logger) Option {
	return func(c *Controller) { c.logger = log.WithComponent("Pagination") }
}

func WithLimiter(l ratelimit.Limiter) Option {
	return func(c *Controller) { c.limiter = l }
}

// WithOnChange registers a callback invoked (outside the lock) after
// every state transition; views use it to push fresh snapshots.
func WithOnChange(fn func()) Option {
	return func(c *Controller) { c.onChange = fn }
}

// Controller is the pagination state machine for one list instance. The
// gallery grid and the related-posts rail each own an independent one.
//
// Invariant: at most one fetch is in flight at any time, enforced by the
// state guard rather than request cancellation. A Reset supersedes any
// outstanding fetch: the stale completion is discarded, never applied.
type Controller struct {
	id       string
	fetch    FetchFunc
	limiter  ratelimit.Limiter
	logger   logger.Logger
	onChange func()

	mu     sync.Mutex
	state  State
	posts  []domain.Post
	offset int
	total  int
	gen    uint64
	closed bool

	armCancel context.CancelFunc
}

// New creates a controller around a page fetcher.
func New(fetch FetchFunc, opts ...Option) *Controller {
	c := &Controller{
		id:      "pager-" + strconv.FormatInt(instanceSeq.Add(1), 10),
		fetch:   fetch,
		limiter: ratelimit.NewInMemoryLimiter(2, time.Second, 4),
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reset discards accumulated posts, returns the offset to zero and loads
// the first page. On success the returned records replace (never append
// to) the accumulation; on failure the accumulation stays empty.
func (c *Controller) Reset(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.gen++
	gen := c.gen
	c.state = LoadingInitial
	c.posts = nil
	c.offset = 0
	c.total = 0
	c.mu.Unlock()
	c.notify()

	page, err := c.fetch(ctx, 0)

	c.mu.Lock()
	if c.closed || gen != c.gen {
		// Superseded or torn down; the response is discarded.
		c.mu.Unlock()
		return nil
	}
	c.state = Idle
	if err != nil {
		c.mu.Unlock()
		c.notify()
		c.logger.Warn("Initial page load failed", "instance", c.id, "error", err)
		return err
	}
	c.posts = append([]domain.Post(nil), page.Data...)
	c.offset = 1
	c.total = page.Total()
	c.mu.Unlock()
	c.notify()
	return nil
}

// Seed pre-populates the controller with host-provided posts, standing in
// for a completed first page.
func (c *Controller) Seed(posts []domain.Post) {
	c.mu.Lock()
	c.gen++
	c.state = Idle
	c.posts = append([]domain.Post(nil), posts...)
	c.offset = 1
	c.total = len(posts)
	c.mu.Unlock()
	c.notify()
}

// LoadMore fetches the next page and appends it. It is an immediate
// no-op, with no request issued, while any fetch is in flight or once the
// accumulation has reached the reported total (a zero or absent total
// means it never fires). On failure the state reverts with no change to
// posts or offset, so a later trigger retries the same page.
func (c *Controller) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	if c.closed || c.state != Idle || c.total <= 0 || len(c.posts) >= c.total {
		c.mu.Unlock()
		return nil
	}
	c.state = LoadingMore
	gen := c.gen
	offset := c.offset
	c.mu.Unlock()
	c.notify()

	page, err := c.fetch(ctx, offset)

	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return nil
	}
	c.state = Idle
	if err != nil {
		c.mu.Unlock()
		c.notify()
		c.logger.Warn("Load-more failed, page stays retryable", "instance", c.id, "offset", offset, "error", err)
		return err
	}
	c.posts = append(c.posts, page.Data...)
	c.offset++
	c.total = page.Total()
	c.mu.Unlock()
	c.notify()
	return nil
}

// Arm subscribes the controller to a boundary observer: every sentinel
// visibility signal attempts a LoadMore, throttled per instance. Arming
// again replaces the previous subscription (sentinel or container
// identity changed).
func (c *Controller) Arm(obs BoundaryObserver) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.armCancel != nil {
		c.armCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.armCancel = cancel
	c.mu.Unlock()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-obs.Events():
				if !ok {
					return
				}
				if !c.limiter.Allow(c.id) {
					continue
				}
				_ = c.LoadMore(ctx)
			}
		}
	}()
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Posts:          append([]domain.Post(nil), c.posts...),
		Total:          c.total,
		LoadingInitial: c.state == LoadingInitial,
		LoadingMore:    c.state == LoadingMore,
	}
}

// HasMore reports whether another page remains.
func (c *Controller) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total > 0 && len(c.posts) < c.total
}

// Close tears the controller down: triggers stop and any in-flight
// completion is discarded rather than applied.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.gen++
	if c.armCancel != nil {
		c.armCancel()
		c.armCancel = nil
	}
	c.mu.Unlock()
}

func (c *Controller) notify() {
	if c.onChange != nil {
		c.onChange()
	}
}
