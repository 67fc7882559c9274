package pagination

import "sync"

// BoundaryObserver is an external signal source the controller subscribes
// to: each event means the sentinel crossed into the viewport. The
// abstraction stands in for browser intersection observation so the
// controller is testable without a real viewport.
type BoundaryObserver interface {
	// Events yields boundary-crossing signals. The channel closing ends
	// the subscription.
	Events() <-chan struct{}
	// Close tears the observer down; no further events are delivered.
	Close()
}

// ChannelObserver is the standard BoundaryObserver: hosts call Signal
// whenever their sentinel becomes visible.
type ChannelObserver struct {
	mu     sync.Mutex
	ch     chan struct{}
	closed bool
}

// NewChannelObserver creates an observer with a one-signal buffer;
// signals arriving while one is already pending coalesce.
func NewChannelObserver() *ChannelObserver {
	return &ChannelObserver{ch: make(chan struct{}, 1)}
}

// Signal records one boundary crossing. Never blocks.
func (o *ChannelObserver) Signal() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	select {
	case o.ch <- struct{}{}:
	default:
	}
}

func (o *ChannelObserver) Events() <-chan struct{} { return o.ch }

// Close is idempotent.
func (o *ChannelObserver) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.closed = true
	close(o.ch)
}
