// Package simulate plays random matches against a running crease server and
// checks the scorecards it gets back.
package simulate

import (
	"sync/atomic"
	"time"
)

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL string        // Base URL of the service
	Matches int           // Number of matches to play
	Overs   int           // Overs per innings
	Workers int           // Matches played concurrently
	Timeout time.Duration // HTTP request timeout
	Seed    uint64        // Seed for the ball generator; 0 picks one
	Replay  float64       // Share of balls sent twice to exercise idempotency
	Watch   bool          // Follow every match over its live websocket
	Verbose bool          // Log every match result
}

// Stats holds run statistics. Counters are updated by concurrent matches.
type Stats struct {
	MatchesPlayed   atomic.Int64
	MatchesVerified atomic.Int64
	MatchesFailed   atomic.Int64
	BallsSent       atomic.Int64
	Duplicates      atomic.Int64
	Commands        atomic.Int64
	FramesReceived  atomic.Int64

	StartTime time.Time
	Duration  time.Duration
}
