// Package model contains the match aggregate passed between layers.
//
// Player and team identifiers are opaque strings; the empty string stands
// for "no player" (for example a vacant crease after a dismissal).
package model

import "time"

// Scoring constants shared by the engine and read projections.
const (
	BallsPerOver    = 6
	MaxWickets      = 10
	PlayersPerSide  = 11
	InningsPerMatch = 2
)

// Status is the lifecycle state of a match.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusLive      Status = "live"
	StatusCompleted Status = "completed"
	StatusAbandoned Status = "abandoned"
)

// TossDecision is what the toss winner chose to do first.
type TossDecision string

const (
	TossBat  TossDecision = "bat"
	TossBowl TossDecision = "bowl"
)

// MarginKind tells how a result margin is measured.
type MarginKind string

const (
	MarginNone    MarginKind = ""
	MarginRuns    MarginKind = "runs"
	MarginWickets MarginKind = "wickets"
)

// Toss records the toss outcome.
type Toss struct {
	WinningTeam string       `json:"winning_team"`
	Decision    TossDecision `json:"decision"`
}

// Roster is one side's playing eleven.
type Roster struct {
	TeamID  string   `json:"team_id"`
	Players []string `json:"players"`
}

// Has reports whether playerID is part of the roster.
func (r Roster) Has(playerID string) bool {
	for _, p := range r.Players {
		if p == playerID {
			return true
		}
	}
	return false
}

// Result is the decided outcome of a completed or abandoned match.
type Result struct {
	Winner      string     `json:"winner,omitempty"`
	MarginKind  MarginKind `json:"margin_kind,omitempty"`
	MarginValue int        `json:"margin_value,omitempty"`
	IsTie       bool       `json:"is_tie"`
	NoResult    bool       `json:"no_result,omitempty"`
	Summary     string     `json:"summary"`
}

// Match is the aggregate root. It exclusively owns its innings, overs,
// balls and performances.
type Match struct {
	ID                 string     `json:"id"`
	Teams              [2]string  `json:"teams"`
	OversLimit         int        `json:"overs_limit"`
	Status             Status     `json:"status"`
	Toss               *Toss      `json:"toss,omitempty"`
	Playing11          [2]Roster  `json:"playing11"`
	Innings            []*Innings `json:"innings"`
	CurrentInningIndex int        `json:"current_inning_index"`
	Result             *Result    `json:"result,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	StartedAt          *time.Time `json:"started_at,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	Version            uint64     `json:"version"`
}

// NewMatch builds a scheduled match between two teams.
func NewMatch(id string, teamA, teamB string, oversLimit int, now time.Time) *Match {
	return &Match{
		ID:         id,
		Teams:      [2]string{teamA, teamB},
		OversLimit: oversLimit,
		Status:     StatusScheduled,
		Innings:    make([]*Innings, 0, InningsPerMatch),
		CreatedAt:  now,
	}
}

// CurrentInnings returns the innings addressed by CurrentInningIndex, or nil.
func (m *Match) CurrentInnings() *Innings {
	if m.CurrentInningIndex < 1 || m.CurrentInningIndex > len(m.Innings) {
		return nil
	}
	return m.Innings[m.CurrentInningIndex-1]
}

// RosterOf returns the playing eleven of teamID.
func (m *Match) RosterOf(teamID string) (Roster, bool) {
	for _, r := range m.Playing11 {
		if r.TeamID == teamID {
			return r, true
		}
	}
	return Roster{}, false
}

// Opponent returns the other team of the match.
func (m *Match) Opponent(teamID string) string {
	if m.Teams[0] == teamID {
		return m.Teams[1]
	}
	return m.Teams[0]
}

// IsFinal reports whether the match no longer accepts mutations.
func (m *Match) IsFinal() bool {
	return m.Status == StatusCompleted || m.Status == StatusAbandoned
}

// MaxLegalBalls is the number of legal deliveries allowed per innings.
func (m *Match) MaxLegalBalls() int {
	return m.OversLimit * BallsPerOver
}
