package simulate

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/okian/crease/internal/adapters/broadcast"
	"github.com/okian/crease/internal/domain/model"
	"github.com/okian/crease/internal/domain/scoring"
	"github.com/okian/crease/internal/domain/types"
)

const (
	bowlersPerSide = 5
	// stepsPerBall bounds the commands a match may take per legal ball,
	// leaving room for extras, bowler changes and new batters.
	stepsPerBall = 4
	watchSettle  = 2 * time.Second
)

// outcome is one weighted ball in the generator table.
type outcome struct {
	weight int
	tag    string
}

// outcomes is loosely shaped like a limited-overs innings.
var outcomes = []outcome{
	{30, "0"}, {25, "1"}, {8, "2"}, {2, "3"}, {10, "4"}, {4, "6"},
	{4, "wide:1"}, {2, "noball:1"}, {2, "bye:1"}, {2, "legbye:1"},
	{2, "bowled"}, {3, "caught"}, {2, "lbw"}, {1, "stumped"}, {1, "runout"},
}

var totalWeight = func() int {
	n := 0
	for _, o := range outcomes {
		n += o.weight
	}
	return n
}()

// player drives one match from creation to result.
type player struct {
	cfg   *Config
	c     *client
	rng   *rand.Rand
	stats *Stats

	// last is the newest version seen on the live stream.
	last atomic.Uint64
}

func newPlayer(cfg *Config, c *client, seed uint64, n int, stats *Stats) *player {
	return &player{
		cfg:   cfg,
		c:     c,
		rng:   rand.New(rand.NewPCG(seed, uint64(n))),
		stats: stats,
	}
}

// play runs a whole match and returns its final snapshot.
func (p *player) play(ctx context.Context) (model.Snapshot, error) {
	suffix := uuid.NewString()[:8]
	teams := [2]string{"north-" + suffix, "south-" + suffix}

	snap, err := p.c.create(ctx, types.CreateMatchInput{Teams: teams, Overs: p.cfg.Overs})
	if err != nil {
		return model.Snapshot{}, err
	}
	p.stats.Commands.Add(1)

	if p.cfg.Watch {
		conn, err := p.c.watch(ctx, snap.ID)
		if err != nil {
			return model.Snapshot{}, err
		}
		defer func() { _ = conn.Close() }()
		go p.follow(conn)
	}

	decision := model.TossBat
	if p.rng.IntN(2) == 1 {
		decision = model.TossBowl
	}
	snap, err = p.c.start(ctx, snap.ID, scoring.StartInput{
		TossWinner:   teams[p.rng.IntN(2)],
		TossDecision: decision,
		Playing11:    [2]model.Roster{roster(teams[0]), roster(teams[1])},
	})
	if err != nil {
		return model.Snapshot{}, err
	}
	p.stats.Commands.Add(1)

	budget := stepsPerBall * model.InningsPerMatch * p.cfg.Overs * model.BallsPerOver
	for step := 0; !snap.IsFinal(); step++ {
		if step > budget {
			return snap, fmt.Errorf("%w: %s after %d commands", ErrStuck, snap.ID, step)
		}
		if snap, err = p.next(ctx, &snap); err != nil {
			return snap, err
		}
	}

	if p.cfg.Watch {
		p.settle(snap.Version)
	}
	return snap, nil
}

// next issues whichever command the current innings is waiting for.
func (p *player) next(ctx context.Context, snap *model.Snapshot) (model.Snapshot, error) {
	inn := snap.CurrentInnings()
	if inn == nil {
		return *snap, fmt.Errorf("%w: %s has no open innings", ErrMismatch, snap.ID)
	}
	p.stats.Commands.Add(1)

	if inn.CurrentStriker == "" || inn.NonStriker == "" {
		batting, _ := snap.RosterOf(inn.BattingTeam)
		return p.c.assign(ctx, snap.ID, "batsman", nextBatter(inn, batting))
	}
	if inn.CurrentBowler == "" {
		fielding, _ := snap.RosterOf(inn.BowlingTeam)
		return p.c.assign(ctx, snap.ID, "bowler", nextBowler(inn, fielding))
	}

	fielding, _ := snap.RosterOf(inn.BowlingTeam)
	in := p.delivery(fielding)
	ack, err := p.c.ball(ctx, snap.ID, in)
	if err != nil {
		return *snap, err
	}
	p.stats.BallsSent.Add(1)

	if !ack.Match.IsFinal() && p.rng.Float64() < p.cfg.Replay {
		again, err := p.c.ball(ctx, snap.ID, in)
		if err != nil {
			return ack.Match, err
		}
		p.stats.BallsSent.Add(1)
		if !again.Duplicate || again.Match.Version != ack.Match.Version {
			return ack.Match, fmt.Errorf("%w: replay of %s gave version %d, want %d",
				ErrMismatch, in.EventID, again.Match.Version, ack.Match.Version)
		}
		p.stats.Duplicates.Add(1)
	}
	return ack.Match, nil
}

// delivery draws a random ball.
func (p *player) delivery(fielding model.Roster) scoring.BallInput {
	in := scoring.BallInput{EventID: uuid.NewString()}
	n := p.rng.IntN(totalWeight)
	for _, o := range outcomes {
		if n < o.weight {
			in.Tag = o.tag
			break
		}
		n -= o.weight
	}

	switch in.Tag {
	case "caught", "stumped":
		in.Fielder = fielding.Players[p.rng.IntN(len(fielding.Players))]
	case "runout":
		in.Fielder = fielding.Players[p.rng.IntN(len(fielding.Players))]
		in.DismissedEnd = string(model.EndStriker)
		if p.rng.IntN(2) == 1 {
			in.DismissedEnd = string(model.EndNonStriker)
		}
		in.RunOutRuns = p.rng.IntN(2)
	case "noball:1":
		in.BatRuns = p.rng.IntN(5)
	}
	return in
}

// follow records the versions pushed on the live stream until it closes.
func (p *player) follow(conn *websocket.Conn) {
	for {
		var f broadcast.Frame
		if err := conn.ReadJSON(&f); err != nil {
			return
		}
		p.stats.FramesReceived.Add(1)
		if f.Version > p.last.Load() {
			p.last.Store(f.Version)
		}
	}
}

// settle waits for the live stream to catch up with the final version.
func (p *player) settle(version uint64) {
	deadline := time.Now().Add(watchSettle)
	for time.Now().Before(deadline) {
		if p.last.Load() >= version {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func roster(team string) model.Roster {
	players := make([]string, model.PlayersPerSide)
	for i := range players {
		players[i] = fmt.Sprintf("%s-%02d", team, i+1)
	}
	return model.Roster{TeamID: team, Players: players}
}

// nextBatter is the first player in the order who has not batted yet.
func nextBatter(inn *model.Innings, batting model.Roster) string {
	for _, id := range batting.Players {
		if _, batted := inn.Batting[id]; batted || inn.AtCrease(id) {
			continue
		}
		return id
	}
	return ""
}

// nextBowler rotates through the tail of the fielding side, skipping whoever
// bowled the previous over.
func nextBowler(inn *model.Innings, fielding model.Roster) string {
	bowlers := fielding.Players[len(fielding.Players)-bowlersPerSide:]
	for i := range bowlers {
		id := bowlers[(len(inn.Overs)+i)%len(bowlers)]
		if id != inn.PreviousBowler {
			return id
		}
	}
	return bowlers[0]
}
