// Package repository persists match snapshots and the append-only log of
// commands that produced them.
package repository

import (
	"context"
	"time"

	"github.com/okian/crease/internal/domain/model"
)

// LogEntry is one applied command in a match's history.
type LogEntry struct {
	MatchID   string    `json:"match_id"`
	Version   uint64    `json:"version"`
	Kind      string    `json:"kind"`
	Payload   []byte    `json:"payload,omitempty"`
	AppliedAt time.Time `json:"applied_at"`
}

// Store provides durable access to matches.
type Store interface {
	// Save stores snap as the latest state of its match and appends entry to
	// the match log. Older versions never overwrite newer ones, and an entry
	// whose version is already logged is ignored.
	Save(ctx context.Context, snap model.Snapshot, entry LogEntry) error

	// Load returns the latest stored snapshot of a match.
	// Returns ErrNotFound if the match is unknown.
	Load(ctx context.Context, matchID string) (model.Snapshot, error)

	// List returns every stored match ordered by creation time.
	List(ctx context.Context) ([]model.Snapshot, error)

	// Log returns the command log of a match in version order.
	Log(ctx context.Context, matchID string) ([]LogEntry, error)

	// Close releases the underlying resources.
	Close() error
}
