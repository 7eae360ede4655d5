package qtm

import (
	"sync"
	"time"
)

// SnapshotFilter decides whether a subscriber wants a snapshot.
type SnapshotFilter func(Snapshot) bool

// HaltingOnly passes snapshots taken once the superposition is halting.
func HaltingOnly(s Snapshot) bool {
	return s.Halting
}

// EveryNth passes every n-th step.
func EveryNth(n int) SnapshotFilter {
	return func(s Snapshot) bool {
		return n <= 1 || s.Step%n == 0
	}
}

/*
Broadcast fans snapshots out to channel subscribers.

It is an Observer, so it can be handed to Execute or registered with
WithObserver. Delivery never blocks the machine: a subscriber whose buffer
is full misses the snapshot and the drop is counted.
*/
type Broadcast struct {
	mu sync.RWMutex

	subscribers map[string]*subscription
	metrics     BroadcastMetrics
	closed      bool
}

type subscription struct {
	ch      chan Snapshot
	filters []SnapshotFilter
}

// BroadcastMetrics counts what a Broadcast delivered and dropped.
type BroadcastMetrics struct {
	Delivered    int64
	Dropped      int64
	Filtered     int64
	Subscribers  int
	LastDelivery time.Time
}

func NewBroadcast() *Broadcast {
	return &Broadcast{
		subscribers: make(map[string]*subscription),
	}
}

/*
Subscribe registers a buffered channel under id. A snapshot reaches the
subscriber only if every filter passes it. Subscribing again under the same
id closes the previous channel.
*/
func (b *Broadcast) Subscribe(id string, buffer int, filters ...SnapshotFilter) <-chan Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Snapshot, buffer)
	if b.closed {
		close(ch)
		return ch
	}

	if old, ok := b.subscribers[id]; ok {
		close(old.ch)
		b.metrics.Subscribers--
	}

	b.subscribers[id] = &subscription{ch: ch, filters: filters}
	b.metrics.Subscribers++

	return ch
}

// Unsubscribe closes and forgets the subscriber's channel.
func (b *Broadcast) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sub, ok := b.subscribers[id]; ok {
		close(sub.ch)
		delete(b.subscribers, id)
		b.metrics.Subscribers--
	}
}

func (b *Broadcast) OnStep(s Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	for _, sub := range b.subscribers {
		if !sub.accepts(s) {
			b.metrics.Filtered++
			continue
		}

		select {
		case sub.ch <- s:
			b.metrics.Delivered++
		default:
			b.metrics.Dropped++
		}
	}

	b.metrics.LastDelivery = time.Now()
}

func (sub *subscription) accepts(s Snapshot) bool {
	for _, filter := range sub.filters {
		if !filter(s) {
			return false
		}
	}
	return true
}

// Metrics returns a copy of the counters.
func (b *Broadcast) Metrics() BroadcastMetrics {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.metrics
}

// Close closes every subscriber channel. Later snapshots are ignored.
func (b *Broadcast) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	for id, sub := range b.subscribers {
		close(sub.ch)
		delete(b.subscribers, id)
	}

	b.metrics.Subscribers = 0
	b.closed = true
}
