// Package dedupe tracks client request IDs so a resubmitted assessment is
// answered with the assessment it created the first time.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper maps request IDs to the assessment IDs they produced.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it with
	// assessmentID if not. When id was already seen it returns the assessment
	// ID recorded first and true.
	SeenAndRecord(ctx context.Context, id, assessmentID string) (string, bool)

	// Unrecord forgets id so the request can be retried. Used when an
	// assessment was accepted but could not be enqueued.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// node is an entry in the insertion-ordered list.
type node struct {
	id           string
	assessmentID string
	prev, next   *node
}

func (n *node) reset() {
	*n = node{}
}

// inMemoryDeduper keeps entries in a map plus a doubly linked list ordered by
// insertion. In bounded mode (maxSize > 0) the oldest entry is evicted first;
// otherwise nothing is evicted.
type inMemoryDeduper struct {
	mu       sync.Mutex
	seen     map[string]*node
	head     *node // newest
	tail     *node // oldest
	maxSize  int
	size     atomic.Int64
	nodePool sync.Pool
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 50000,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]*node)
	d.nodePool = sync.Pool{
		New: func() interface{} {
			return &node{}
		},
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id, assessmentID string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if n, exists := d.seen[id]; exists {
		return n.assessmentID, true
	}

	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		d.evictOldest()
	}

	n := d.nodePool.Get().(*node)
	n.id = id
	n.assessmentID = assessmentID
	n.next = d.head
	if d.head != nil {
		d.head.prev = n
	}
	d.head = n
	if d.tail == nil {
		d.tail = n
	}
	d.seen[id] = n
	d.size.Add(1)
	return assessmentID, false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if n, exists := d.seen[id]; exists {
		d.remove(n)
	}
}

// evictOldest drops the tail. Must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	if d.tail != nil {
		d.remove(d.tail)
	}
}

// remove unlinks n and returns it to the pool. Must be called with d.mu held.
func (d *inMemoryDeduper) remove(n *node) {
	delete(d.seen, n.id)
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		d.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		d.tail = n.prev
	}
	n.reset()
	d.nodePool.Put(n)
	d.size.Add(-1)
}

// Size returns the current number of entries in the deduper.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
