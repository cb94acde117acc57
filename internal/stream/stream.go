// Package stream provides the in-process change notification used by the
// repositories to expose observable list reads: writers signal a Notifier
// after every committed mutation, and Watch re-queries and pushes a fresh
// snapshot to each subscriber.
package stream

import (
	"context"
	"log"
	"sync"
)

// Notifier fans out change signals to subscribers. Signals carry no payload;
// subscribers re-query for the current state. Notify never blocks: bursts of
// writes coalesce into a single pending signal per subscriber.
type Notifier struct {
	mu   sync.Mutex
	subs map[uint64]chan struct{}
	next uint64
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[uint64]chan struct{})}
}

// Notify signals every subscriber that underlying rows changed.
func (n *Notifier) Notify() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Subscribe registers a new subscriber. The returned func removes it; calling
// it more than once is safe.
func (n *Notifier) Subscribe() (<-chan struct{}, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.next
	n.next++
	ch := make(chan struct{}, 1)
	n.subs[id] = ch

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs, id)
			n.mu.Unlock()
		})
	}
	return ch, unsubscribe
}

// SubscriberCount reports the number of active subscriptions.
func (n *Notifier) SubscriberCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}

// Watch emits an initial snapshot, then a fresh one after every change signal
// from the notifier, in write order. The stream has no inherent termination:
// it runs until ctx is cancelled or the returned cancel func is called, then
// the channel closes. Query failures are logged and the previous snapshot
// stands.
func Watch[T any](ctx context.Context, notifier *Notifier, query func() (T, error)) (<-chan T, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	out := make(chan T, 1)
	signal, unsubscribe := notifier.Subscribe()

	go func() {
		defer close(out)
		defer unsubscribe()

		push := func() bool {
			snapshot, err := query()
			if err != nil {
				log.Printf("stream: snapshot query failed: %v", err)
				return true
			}
			select {
			case out <- snapshot:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !push() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-signal:
				if !push() {
					return
				}
			}
		}
	}()

	return out, cancel
}
