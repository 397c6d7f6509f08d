// Package scoring turns ball events into match state.
//
// An Engine owns a single match aggregate. Every command is validated in
// full before anything is mutated, so a rejected command leaves the match
// exactly as it was. Successful commands bump the match version and hand a
// deep snapshot to the registered observers.
package scoring

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/okian/crease/internal/domain/model"
	"github.com/okian/crease/pkg/logger"
)

// Observer receives the snapshot produced by every successful mutation.
type Observer interface {
	OnSnapshot(ctx context.Context, snap model.Snapshot)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, snap model.Snapshot)

// OnSnapshot calls f.
func (f ObserverFunc) OnSnapshot(ctx context.Context, snap model.Snapshot) { f(ctx, snap) }

// StartInput carries the toss and the two playing elevens.
type StartInput struct {
	TossWinner   string             `json:"toss_winner"`
	TossDecision model.TossDecision `json:"toss_decision"`
	Playing11    [2]model.Roster    `json:"playing11"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver registers an observer for post-mutation snapshots.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observers = append(e.observers, o)
		}
	}
}

// WithClock overrides the time source used for lifecycle timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithBowlerRest controls whether the previous over's bowler may bowl the
// next over.
func WithBowlerRest(enforce bool) Option {
	return func(e *Engine) {
		e.enforceRest = enforce
	}
}

// WithLogger sets the engine logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// Engine applies commands to one match.
type Engine struct {
	mu          sync.Mutex
	match       *model.Match
	observers   []Observer
	now         func() time.Time
	enforceRest bool
	log         logger.Logger
}

// New wraps m in an engine. The engine takes ownership of m.
func New(m *model.Match, opts ...Option) *Engine {
	e := &Engine{
		match:       m,
		now:         time.Now,
		enforceRest: true,
		log:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ID returns the identifier of the owned match.
func (e *Engine) ID() string {
	return e.match.ID
}

// Snapshot returns a deep copy of the current match state.
func (e *Engine) Snapshot() model.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.match.Snapshot()
}

// mutate runs fn under the engine lock. fn must validate before it writes:
// an error return means the match was not touched.
func (e *Engine) mutate(ctx context.Context, fn func(m *model.Match) error) (model.Snapshot, error) {
	e.mu.Lock()
	if err := fn(e.match); err != nil {
		e.mu.Unlock()
		return model.Snapshot{}, err
	}
	e.match.Version++
	snap := e.match.Snapshot()
	e.mu.Unlock()

	for _, o := range e.observers {
		o.OnSnapshot(ctx, snap)
	}
	return snap, nil
}

// StartMatch records the toss and playing elevens and opens the first innings.
func (e *Engine) StartMatch(ctx context.Context, in StartInput) (model.Snapshot, error) {
	return e.mutate(ctx, func(m *model.Match) error {
		const op = "scoring.start_match"
		if m.IsFinal() {
			return newError(KindMatchNotLive, op, "status", "match is "+string(m.Status))
		}
		if m.Status != model.StatusScheduled {
			return newError(KindIllegalState, op, "status", "match already started")
		}
		if err := validateStart(m, in); err != nil {
			return err
		}

		batting := in.TossWinner
		if in.TossDecision == model.TossBowl {
			batting = m.Opponent(in.TossWinner)
		}
		m.Toss = &model.Toss{WinningTeam: in.TossWinner, Decision: in.TossDecision}
		for i, r := range in.Playing11 {
			m.Playing11[i] = model.Roster{TeamID: r.TeamID, Players: trimmed(r.Players)}
		}
		m.Innings = append(m.Innings[:0], model.NewInnings(1, batting, m.Opponent(batting)))
		m.CurrentInningIndex = 1
		m.Status = model.StatusLive
		t := e.now()
		m.StartedAt = &t

		e.log.Info(ctx, "match started",
			logger.String("match_id", m.ID),
			logger.String("batting_first", batting))
		return nil
	})
}

func validateStart(m *model.Match, in StartInput) error {
	const op = "scoring.start_match"
	if in.TossWinner != m.Teams[0] && in.TossWinner != m.Teams[1] {
		return newError(KindInvalidRoster, op, "toss_winner", "toss winner must be one of the two teams")
	}
	if in.TossDecision != model.TossBat && in.TossDecision != model.TossBowl {
		return newError(KindInvalidRoster, op, "toss_decision", "toss decision must be bat or bowl")
	}
	if in.Playing11[0].TeamID == in.Playing11[1].TeamID {
		return newError(KindInvalidRoster, op, "playing11", "one roster per team is required")
	}

	seen := make(map[string]string, 2*model.PlayersPerSide)
	for _, r := range in.Playing11 {
		if r.TeamID != m.Teams[0] && r.TeamID != m.Teams[1] {
			return newError(KindInvalidRoster, op, "playing11", "unknown team "+r.TeamID)
		}
		if len(r.Players) != model.PlayersPerSide {
			return newError(KindInvalidRoster, op, "playing11",
				r.TeamID+" has "+strconv.Itoa(len(r.Players))+" players, want "+strconv.Itoa(model.PlayersPerSide))
		}
		for _, p := range r.Players {
			p = strings.TrimSpace(p)
			if p == "" {
				return newError(KindInvalidRoster, op, "playing11", r.TeamID+" has an empty player id")
			}
			if team, dup := seen[p]; dup {
				if team == r.TeamID {
					return newError(KindInvalidRoster, op, "playing11", "player "+p+" listed twice for "+team)
				}
				return newError(KindInvalidRoster, op, "playing11", "player "+p+" plays for both teams")
			}
			seen[p] = r.TeamID
		}
	}
	return nil
}

func trimmed(players []string) []string {
	out := make([]string, len(players))
	for i, p := range players {
		out[i] = strings.TrimSpace(p)
	}
	return out
}

// live returns the open innings of a live match.
func live(m *model.Match, op string) (*model.Innings, error) {
	if m.Status != model.StatusLive {
		return nil, newError(KindMatchNotLive, op, "status", "match is "+string(m.Status))
	}
	inn := m.CurrentInnings()
	if inn == nil || inn.Closed {
		return nil, newError(KindIllegalState, op, "innings", "no open innings")
	}
	return inn, nil
}

// AssignBowler sets the bowler of the next over.
func (e *Engine) AssignBowler(ctx context.Context, playerID string) (model.Snapshot, error) {
	return e.mutate(ctx, func(m *model.Match) error {
		const op = "scoring.assign_bowler"
		inn, err := live(m, op)
		if err != nil {
			return err
		}
		playerID = strings.TrimSpace(playerID)
		roster, _ := m.RosterOf(inn.BowlingTeam)
		if !roster.Has(playerID) {
			return newError(KindIllegalState, op, "player_id", playerID+" is not in the fielding eleven")
		}
		if o := inn.OpenOver(); o != nil && len(o.Balls) > 0 {
			return newError(KindIllegalState, op, "player_id", "over "+strconv.Itoa(o.Number)+" is in progress")
		}
		if e.enforceRest && playerID == inn.PreviousBowler {
			return newError(KindIllegalState, op, "player_id", playerID+" bowled the previous over")
		}

		inn.CurrentBowler = playerID
		if o := inn.OpenOver(); o != nil {
			o.Bowler = playerID
		}
		inn.BowlerFor(playerID)
		return nil
	})
}

// AssignBatsman sends a new batsman to the vacant end, striker's end first.
func (e *Engine) AssignBatsman(ctx context.Context, playerID string) (model.Snapshot, error) {
	return e.mutate(ctx, func(m *model.Match) error {
		const op = "scoring.assign_batsman"
		inn, err := live(m, op)
		if err != nil {
			return err
		}
		playerID = strings.TrimSpace(playerID)
		roster, _ := m.RosterOf(inn.BattingTeam)
		if !roster.Has(playerID) {
			return newError(KindIllegalState, op, "player_id", playerID+" is not in the batting eleven")
		}
		if inn.AtCrease(playerID) {
			return newError(KindIllegalState, op, "player_id", playerID+" is already at the crease")
		}
		if bp, ok := inn.Batting[playerID]; ok && bp.IsOut {
			return newError(KindIllegalState, op, "player_id", playerID+" is already out")
		}
		if !fill(inn, playerID) {
			return newError(KindIllegalState, op, "player_id", "no vacant end")
		}
		return nil
	})
}

// StartInnings closes the first innings (as declared if it is still open)
// and opens the second.
func (e *Engine) StartInnings(ctx context.Context) (model.Snapshot, error) {
	return e.mutate(ctx, func(m *model.Match) error {
		const op = "scoring.start_innings"
		if m.Status != model.StatusLive {
			return newError(KindMatchNotLive, op, "status", "match is "+string(m.Status))
		}
		if len(m.Innings) >= model.InningsPerMatch {
			return newError(KindIllegalState, op, "innings", "second innings already started")
		}
		first := m.Innings[0]
		if !first.Closed {
			closeInnings(first, model.ClosedDeclared)
		}
		openSecondInnings(m)
		e.log.Info(ctx, "innings started",
			logger.String("match_id", m.ID),
			logger.Int("innings", 2))
		return nil
	})
}

// Abandon ends a live match without a result.
func (e *Engine) Abandon(ctx context.Context, reason string) (model.Snapshot, error) {
	return e.mutate(ctx, func(m *model.Match) error {
		const op = "scoring.abandon"
		if m.Status != model.StatusLive {
			return newError(KindMatchNotLive, op, "status", "match is "+string(m.Status))
		}
		if inn := m.CurrentInnings(); inn != nil && !inn.Closed {
			closeInnings(inn, model.ClosedAbandoned)
		}
		summary := "match abandoned"
		if r := strings.TrimSpace(reason); r != "" {
			summary += ": " + r
		}
		m.Status = model.StatusAbandoned
		m.Result = &model.Result{NoResult: true, Summary: summary}
		t := e.now()
		m.CompletedAt = &t
		return nil
	})
}

// ApplyBall scores one delivery.
func (e *Engine) ApplyBall(ctx context.Context, in BallInput) (model.Snapshot, error) {
	return e.mutate(ctx, func(m *model.Match) error {
		inn, ev, err := validateBall(m, in)
		if err != nil {
			return err
		}

		over := overFor(inn)
		b := newBall(len(over.Balls)+1, in.EventID, inn, ev)
		overComplete := record(inn, over, b)
		credit(inn, over, b)
		if overComplete {
			closeOver(inn, over)
		}
		rotate(inn, ev, b, overComplete)
		settle(m, e.now())

		if m.Status == model.StatusCompleted {
			e.log.Info(ctx, "match completed",
				logger.String("match_id", m.ID),
				logger.String("result", m.Result.Summary))
		}
		return nil
	})
}

// validateBall runs every check a ball must pass before it may be applied.
func validateBall(m *model.Match, in BallInput) (*model.Innings, Event, error) {
	const op = "scoring.apply_ball"
	inn, err := live(m, op)
	if err != nil {
		return nil, nil, err
	}
	ev, err := Parse(in)
	if err != nil {
		return nil, nil, err
	}

	if inn.CurrentBowler == "" {
		if last := inn.LastOver(); last != nil && last.Closed {
			return nil, nil, newError(KindOverAlreadyClosed, op, "bowler",
				"over "+strconv.Itoa(last.Number)+" is complete; assign the next bowler")
		}
		return nil, nil, newError(KindIllegalState, op, "bowler", "no bowler assigned")
	}
	if inn.CurrentStriker == "" || inn.NonStriker == "" {
		return nil, nil, newError(KindIllegalState, op, "batsman", "both ends must be occupied")
	}

	if in.Striker != "" && in.Striker != inn.CurrentStriker {
		return nil, nil, newError(KindIllegalState, op, "striker", "striker is "+inn.CurrentStriker)
	}
	if in.Bowler != "" && in.Bowler != inn.CurrentBowler {
		return nil, nil, newError(KindIllegalState, op, "bowler", "bowler is "+inn.CurrentBowler)
	}
	if want := expectedOver(inn); in.Over != 0 && in.Over != want {
		return nil, nil, newError(KindIllegalState, op, "over", "current over is "+strconv.Itoa(want))
	}

	if d, ok := ev.(DismissalEvent); ok && d.Fielder != "" {
		roster, _ := m.RosterOf(inn.BowlingTeam)
		if !roster.Has(d.Fielder) {
			return nil, nil, newError(KindIllegalState, op, "fielder", d.Fielder+" is not in the fielding eleven")
		}
	}
	return inn, ev, nil
}
