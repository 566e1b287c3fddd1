package collector

import "sync"

// queue is the shared ready-handle conduit between a collector's
// asynchronous readiness reports and the dispatcher's polling drain.
// FIFO per the order handles were reported.
type queue[T any] struct {
	mu    sync.Mutex
	items []*Handle[T]
	ready chan struct{}
}

func newQueue[T any]() *queue[T] {
	return &queue[T]{
		ready: make(chan struct{}, 1),
	}
}

// push appends a ready handle and signals readiness without blocking.
func (q *queue[T]) push(h *Handle[T]) {
	q.mu.Lock()
	q.items = append(q.items, h)
	q.mu.Unlock()

	// Coalesced wake-up: one buffered signal covers any backlog.
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// drain removes and returns all queued handles in arrival order.
func (q *queue[T]) drain() []*Handle[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}

// len returns the number of queued handles.
func (q *queue[T]) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
