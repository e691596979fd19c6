// Package dedupe tracks idempotency keys so a retried request is not
// persisted twice.
package dedupe

import (
	"container/list"
	"context"
	"sync"
)

// Deduper records seen keys.
type Deduper interface {
	// SeenAndRecord reports whether key was already seen and records it if not.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets key so a failed request can be retried with it.
	Unrecord(ctx context.Context, key string)

	Size() int
}

// inMemoryDeduper keeps at most maxSize keys and evicts the oldest first.
// A non-positive maxSize keeps every key.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List
	maxSize int
}

// NewInMemoryDeduper creates an in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: 100_000}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]*list.Element)
	d.order = list.New()
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}
	if d.maxSize > 0 && d.order.Len() >= d.maxSize {
		oldest := d.order.Front()
		d.order.Remove(oldest)
		delete(d.seen, oldest.Value.(string))
	}
	d.seen[key] = d.order.PushBack(key)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[key]; ok {
		d.order.Remove(el)
		delete(d.seen, key)
	}
}

func (d *inMemoryDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.order.Len()
}
