package core

import (
	"context"
	"sync"
)

// DefaultEventBuffer is the per-subscriber channel depth. It decouples fast
// writers from slow consumers without reordering batches.
const DefaultEventBuffer = 64

type subscriber struct {
	ch  chan []Change
	ctx context.Context
}

// Broadcaster fans change batches out to Watch subscribers. Adapters publish
// under their own write ordering so each subscriber observes batches in the
// order the writes happened.
type Broadcaster struct {
	mu     sync.Mutex
	subs   []*subscriber
	buffer int
	closed bool
}

// NewBroadcaster creates a broadcaster with the given per-subscriber buffer.
// A non-positive buffer falls back to DefaultEventBuffer.
func NewBroadcaster(buffer int) *Broadcaster {
	if buffer <= 0 {
		buffer = DefaultEventBuffer
	}
	return &Broadcaster{buffer: buffer}
}

// Subscribe registers a new subscriber. The channel is closed when ctx is
// canceled or the broadcaster shuts down.
func (b *Broadcaster) Subscribe(ctx context.Context) <-chan []Change {
	sub := &subscriber{
		ch:  make(chan []Change, b.buffer),
		ctx: ctx,
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(sub.ch)
		return sub.ch
	}
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	return sub.ch
}

// Publish delivers one batch to every live subscriber. A subscriber whose
// context is done is dropped; otherwise delivery blocks until the buffered
// channel accepts the batch, preserving order.
func (b *Broadcaster) Publish(batch []Change) {
	if len(batch) == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	live := b.subs[:0]
	for _, sub := range b.subs {
		select {
		case <-sub.ctx.Done():
			close(sub.ch)
			continue
		default:
		}

		select {
		case sub.ch <- batch:
			live = append(live, sub)
		case <-sub.ctx.Done():
			close(sub.ch)
		}
	}
	b.subs = live
}

// Close terminates all subscriptions.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for _, sub := range b.subs {
		close(sub.ch)
	}
	b.subs = nil
}
