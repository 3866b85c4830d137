// Package queue provides the bounded, context-aware mailbox each worker
// uses as its inbound queue, generalizing the teacher's ctx.Done()-guarded
// channel idiom into a reusable generic type.
package queue

import (
	"context"

	"github.com/siantika/dispenserd/internal/domain"
)

// Mailbox is a bounded FIFO queue of T with context-aware, non-blocking-
// forever Put and Get. A full Put after its deadline elapses returns a
// *domain.Error with ErrCodeQueueFull rather than blocking the producer
// indefinitely.
type Mailbox[T any] struct {
	ch chan T
}

// NewMailbox creates a mailbox with the given buffer capacity.
func NewMailbox[T any](capacity int) *Mailbox[T] {
	return &Mailbox[T]{ch: make(chan T, capacity)}
}

// Put enqueues item, blocking only until ctx is done or the item is
// accepted. Returns a *domain.Error with ErrCodeQueueFull if ctx expires
// first.
func (m *Mailbox[T]) Put(ctx context.Context, item T) error {
	select {
	case m.ch <- item:
		return nil
	case <-ctx.Done():
		return domain.New("mailbox.Put", domain.ErrCodeQueueFull, "queue full or receiver not draining")
	}
}

// TryPut enqueues item without blocking, returning false if the mailbox is
// currently full.
func (m *Mailbox[T]) TryPut(item T) bool {
	select {
	case m.ch <- item:
		return true
	default:
		return false
	}
}

// Get dequeues the next item, blocking until one is available or ctx is
// done.
func (m *Mailbox[T]) Get(ctx context.Context) (T, error) {
	var zero T
	select {
	case item := <-m.ch:
		return item, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// TryGet dequeues the next item without blocking. ok is false if the
// mailbox was empty.
func (m *Mailbox[T]) TryGet() (item T, ok bool) {
	select {
	case item = <-m.ch:
		return item, true
	default:
		return item, false
	}
}

// Len reports the number of items currently buffered.
func (m *Mailbox[T]) Len() int {
	return len(m.ch)
}
