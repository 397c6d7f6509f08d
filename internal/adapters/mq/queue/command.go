package queue

import (
	"time"

	"github.com/okian/crease/internal/domain/model"
	"github.com/okian/crease/internal/domain/scoring"
)

// CommandKind names a match mutation.
type CommandKind string

const (
	CommandStartMatch    CommandKind = "start_match"
	CommandApplyBall     CommandKind = "apply_ball"
	CommandAssignBowler  CommandKind = "assign_bowler"
	CommandAssignBatsman CommandKind = "assign_batsman"
	CommandStartInnings  CommandKind = "start_innings"
	CommandAbandon       CommandKind = "abandon"
)

// Command is one mutation addressed to a match. Only the fields of its kind
// are set.
type Command struct {
	Kind       CommandKind         `json:"kind"`
	MatchID    string              `json:"match_id"`
	Ball       *scoring.BallInput  `json:"ball,omitempty"`
	Start      *scoring.StartInput `json:"start,omitempty"`
	PlayerID   string              `json:"player_id,omitempty"`
	Reason     string              `json:"reason,omitempty"`
	EnqueuedAt time.Time           `json:"enqueued_at"`
	Reply      chan Result         `json:"-"`
}

// Result is what the worker sends back on the reply channel.
type Result struct {
	Snapshot model.Snapshot
	Err      error
}

// NewCommand builds a command with a one-slot reply channel, so the worker
// never blocks on a caller that stopped waiting.
func NewCommand(kind CommandKind, matchID string) Command {
	return Command{
		Kind:       kind,
		MatchID:    matchID,
		EnqueuedAt: time.Now(),
		Reply:      make(chan Result, 1),
	}
}

// Respond delivers the outcome without blocking.
func (c Command) Respond(snap model.Snapshot, err error) {
	if c.Reply == nil {
		return
	}
	select {
	case c.Reply <- Result{Snapshot: snap, Err: err}:
	default:
	}
}
