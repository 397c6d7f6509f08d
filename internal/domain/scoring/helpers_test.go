package scoring_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/okian/crease/internal/domain/model"
	"github.com/okian/crease/internal/domain/scoring"
)

var fixedNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func roster(team string) model.Roster {
	players := make([]string, model.PlayersPerSide)
	for i := range players {
		players[i] = fmt.Sprintf("%s%d", team, i+1)
	}
	return model.Roster{TeamID: team, Players: players}
}

func startInput() scoring.StartInput {
	return scoring.StartInput{
		TossWinner:   "A",
		TossDecision: model.TossBat,
		Playing11:    [2]model.Roster{roster("A"), roster("B")},
	}
}

// newEngine returns an engine over a scheduled match between A and B.
func newEngine(overs int, opts ...scoring.Option) *scoring.Engine {
	opts = append([]scoring.Option{scoring.WithClock(func() time.Time { return fixedNow })}, opts...)
	return scoring.New(model.NewMatch("m-1", "A", "B", overs, fixedNow), opts...)
}

// driver plays a match through the engine, sending in batsmen and
// alternating bowlers whenever the engine waits for them.
type driver struct {
	t   *testing.T
	ctx context.Context
	e   *scoring.Engine
}

func newDriver(t *testing.T, overs int, opts ...scoring.Option) *driver {
	t.Helper()
	d := &driver{t: t, ctx: context.Background(), e: newEngine(overs, opts...)}
	snap, err := d.e.StartMatch(d.ctx, startInput())
	if err != nil {
		t.Fatalf("start match: %v", err)
	}
	d.prepare(snap)
	return d
}

func (d *driver) must(snap model.Snapshot, err error) model.Snapshot {
	d.t.Helper()
	if err != nil {
		d.t.Fatalf("unexpected engine error: %v", err)
	}
	return snap
}

// prepare fills the crease and picks a bowler for a live innings.
func (d *driver) prepare(snap model.Snapshot) model.Snapshot {
	d.t.Helper()
	for snap.Status == model.StatusLive {
		inn := snap.CurrentInnings()
		switch {
		case inn.CurrentStriker == "" || inn.NonStriker == "":
			r, _ := snap.RosterOf(inn.BattingTeam)
			snap = d.must(d.e.AssignBatsman(d.ctx, r.Players[len(inn.BattingOrder)]))
		case inn.CurrentBowler == "":
			r, _ := snap.RosterOf(inn.BowlingTeam)
			bowler := r.Players[10]
			if bowler == inn.PreviousBowler {
				bowler = r.Players[9]
			}
			snap = d.must(d.e.AssignBowler(d.ctx, bowler))
		default:
			return snap
		}
	}
	return snap
}

// play applies each tag as a ball and readies the next delivery.
func (d *driver) play(tags ...string) model.Snapshot {
	d.t.Helper()
	snap := d.e.Snapshot()
	for _, tag := range tags {
		snap = d.must(d.e.ApplyBall(d.ctx, scoring.BallInput{Tag: tag}))
		snap = d.prepare(snap)
	}
	return snap
}

func repeat(tag string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = tag
	}
	return out
}

func seq(parts ...[]string) []string {
	var out []string
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
