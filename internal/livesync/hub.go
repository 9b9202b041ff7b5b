// Package livesync fans committed team state out to every active subscriber
// of an invite code. Delivery is push-based: no polling, no cross-team
// leakage, and only the latest published state is guaranteed to arrive when
// events land close together. The hub is payload-agnostic; the feeds in this
// package bind it to the menu and message-board services.
package livesync

import "sync"

type subscriber[T any] struct {
	// mailbox holds at most one pending update; publishing replaces a stale
	// pending state instead of queueing, so a slow consumer always observes
	// the latest published state.
	mailbox chan T
	stop    chan struct{}
	once    sync.Once
}

func (s *subscriber[T]) offer(v T) {
	for {
		select {
		case s.mailbox <- v:
			return
		default:
		}
		select {
		case <-s.mailbox:
		default:
		}
	}
}

// Hub is an in-process registry of subscribers keyed by invite code.
type Hub[T any] struct {
	mu     sync.Mutex
	topics map[string]map[*subscriber[T]]struct{}
}

// NewHub creates an empty Hub.
func NewHub[T any]() *Hub[T] {
	return &Hub[T]{topics: make(map[string]map[*subscriber[T]]struct{})}
}

// Subscribe registers onChange for every future publish to the given invite
// code and returns a cancellation func. Cancelling is idempotent and safe
// after the underlying connection is gone; once it returns, no new deliveries
// start, though a callback already in flight may still complete.
func (h *Hub[T]) Subscribe(inviteCode string, onChange func(T)) (cancel func()) {
	sub := &subscriber[T]{
		mailbox: make(chan T, 1),
		stop:    make(chan struct{}),
	}

	h.mu.Lock()
	subs, ok := h.topics[inviteCode]
	if !ok {
		subs = make(map[*subscriber[T]]struct{})
		h.topics[inviteCode] = subs
	}
	subs[sub] = struct{}{}
	h.mu.Unlock()

	go func() {
		for {
			select {
			case <-sub.stop:
				return
			case v := <-sub.mailbox:
				select {
				case <-sub.stop:
					return
				default:
				}
				onChange(v)
			}
		}
	}()

	return func() {
		sub.once.Do(func() {
			h.mu.Lock()
			if subs, ok := h.topics[inviteCode]; ok {
				delete(subs, sub)
				if len(subs) == 0 {
					delete(h.topics, inviteCode)
				}
			}
			h.mu.Unlock()
			close(sub.stop)
		})
	}
}

// Publish delivers a state to every subscriber of the invite code.
// Subscribers of other codes never observe it.
func (h *Hub[T]) Publish(inviteCode string, v T) {
	h.mu.Lock()
	targets := make([]*subscriber[T], 0, len(h.topics[inviteCode]))
	for sub := range h.topics[inviteCode] {
		targets = append(targets, sub)
	}
	h.mu.Unlock()

	for _, sub := range targets {
		sub.offer(v)
	}
}

// SubscriberCount reports active subscriptions for an invite code.
func (h *Hub[T]) SubscriberCount(inviteCode string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.topics[inviteCode])
}
