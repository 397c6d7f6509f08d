// Package dedupe tracks ball event IDs so a retried submission is scored
// at most once.
package dedupe

import (
	"context"
	"strings"
	"sync"
)

// Deduper records seen event keys.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets key so the event can be submitted again. Used when
	// a recorded event was rejected or never reached its match.
	Unrecord(ctx context.Context, key string)

	// Forget drops every key recorded for a match.
	Forget(ctx context.Context, matchID string)

	Size() int64
}

// Key scopes an event ID to its match.
func Key(matchID, eventID string) string {
	return matchID + ":" + eventID
}

type slot struct {
	key string
	gen uint64
}

// inMemoryDeduper keeps keys in a map. In bounded mode a ring of insertion
// slots evicts the oldest key once the limit is reached; a slot whose
// generation no longer matches the map was unrecorded and is skipped.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]uint64 // key -> generation
	ring    []slot
	next    int
	gen     uint64
	maxSize int // 0 or negative = unbounded
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 50000,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]uint64)
	if d.maxSize > 0 {
		d.ring = make([]slot, d.maxSize)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[key]; exists {
		return true
	}
	d.gen++
	if d.maxSize > 0 {
		if old := d.ring[d.next]; old.gen != 0 {
			if g, ok := d.seen[old.key]; ok && g == old.gen {
				delete(d.seen, old.key)
			}
		}
		d.ring[d.next] = slot{key: key, gen: d.gen}
		d.next = (d.next + 1) % d.maxSize
	}
	d.seen[key] = d.gen
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, key)
}

func (d *inMemoryDeduper) Forget(_ context.Context, matchID string) {
	prefix := matchID + ":"
	d.mu.Lock()
	defer d.mu.Unlock()
	for k := range d.seen {
		if strings.HasPrefix(k, prefix) {
			delete(d.seen, k)
		}
	}
}

// Size returns the current number of recorded keys.
func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}
