package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/okian/crease/internal/domain/model"
	"github.com/okian/crease/pkg/metrics"
)

// MemoryStore keeps matches in process memory. It is the default store and
// the one tests use.
type MemoryStore struct {
	mu      sync.RWMutex
	matches map[string]*model.Match
	logs    map[string][]LogEntry
	closed  bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		matches: make(map[string]*model.Match),
		logs:    make(map[string][]LogEntry),
	}
}

// Save implements Store.
func (s *MemoryStore) Save(ctx context.Context, snap model.Snapshot, entry LogEntry) error { //nolint:gocritic // hugeParam: snapshots are values by contract
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	defer observe("save", start)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		metrics.RecordStoreError("save")
		return ErrClosed
	}

	if cur, ok := s.matches[snap.ID]; !ok || snap.Version >= cur.Version {
		s.matches[snap.ID] = snap.Clone()
	}
	if entry.Kind == "" {
		return nil
	}
	log := s.logs[snap.ID]
	for _, e := range log {
		if e.Version == entry.Version {
			return nil
		}
	}
	entry.MatchID = snap.ID
	entry.Payload = append([]byte(nil), entry.Payload...)
	log = append(log, entry)
	sort.SliceStable(log, func(i, j int) bool { return log[i].Version < log[j].Version })
	s.logs[snap.ID] = log
	return nil
}

// Load implements Store.
func (s *MemoryStore) Load(ctx context.Context, matchID string) (model.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return model.Snapshot{}, err
	}
	start := time.Now()
	defer observe("load", start)

	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.matches[matchID]
	if !ok {
		return model.Snapshot{}, ErrNotFound
	}
	return m.Snapshot(), nil
}

// List implements Store.
func (s *MemoryStore) List(ctx context.Context) ([]model.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	defer observe("list", start)

	s.mu.RLock()
	out := make([]model.Snapshot, 0, len(s.matches))
	for _, m := range s.matches {
		out = append(out, m.Snapshot())
	}
	s.mu.RUnlock()

	sortByCreation(out)
	return out, nil
}

// Log implements Store.
func (s *MemoryStore) Log(ctx context.Context, matchID string) ([]LogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.matches[matchID]; !ok {
		return nil, ErrNotFound
	}
	return append([]LogEntry{}, s.logs[matchID]...), nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func sortByCreation(snaps []model.Snapshot) {
	sort.SliceStable(snaps, func(i, j int) bool {
		if snaps[i].CreatedAt.Equal(snaps[j].CreatedAt) {
			return snaps[i].ID < snaps[j].ID
		}
		return snaps[i].CreatedAt.Before(snaps[j].CreatedAt)
	})
}

func observe(op string, start time.Time) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Microseconds())/1000)
}
