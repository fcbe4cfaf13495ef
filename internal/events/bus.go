// Package events is the in-process broadcast primitive that replaces the
// web storefront's string-keyed DOM events with statically checkable
// publisher/subscriber contracts.
package events

import "sync"

// WishlistEventKind enumerates the wishlist delta notifications.
type WishlistEventKind string

const (
	WishlistSet    WishlistEventKind = "set"
	WishlistAdd    WishlistEventKind = "add"
	WishlistRemove WishlistEventKind = "remove"
	WishlistClear  WishlistEventKind = "clear"
)

// WishlistEvent is broadcast after every successful wishlist mutation.
// Count is authoritative for "set", Delta is additive for "add"/"remove",
// "clear" resets to zero.
type WishlistEvent struct {
	Kind  WishlistEventKind
	Count int
	Delta int
}

// Bus delivers values of T synchronously to the currently registered
// handlers, in registration order. There is no buffering: a subscriber
// registered after an emit never sees it.
type Bus[T any] struct {
	mu   sync.Mutex
	next int
	subs []subscription[T]
}

type subscription[T any] struct {
	id int
	fn func(T)
}

func NewBus[T any]() *Bus[T] {
	return &Bus[T]{}
}

// Subscribe registers fn and returns its unsubscribe function.
func (b *Bus[T]) Subscribe(fn func(T)) func() {
	b.mu.Lock()
	b.next++
	id := b.next
	b.subs = append(b.subs, subscription[T]{id: id, fn: fn})
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Emit delivers ev to every live subscriber before returning. Handlers run
// on the caller's goroutine; ordering across concurrent Emit calls is
// whatever the callers' own ordering is.
func (b *Bus[T]) Emit(ev T) {
	b.mu.Lock()
	subs := make([]subscription[T], len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()
	for _, s := range subs {
		s.fn(ev)
	}
}

// Len reports the current subscriber count (tests).
func (b *Bus[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
