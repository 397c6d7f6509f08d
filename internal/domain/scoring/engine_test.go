package scoring_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/okian/crease/internal/domain/model"
	"github.com/okian/crease/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestStartMatch(t *testing.T) {
	Convey("Given a scheduled match", t, func() {
		ctx := context.Background()
		e := newEngine(20)

		Convey("When the toss winner chooses to bat", func() {
			snap, err := e.StartMatch(ctx, startInput())

			Convey("Then the first innings is opened for the toss winner", func() {
				So(err, ShouldBeNil)
				So(snap.Status, ShouldEqual, model.StatusLive)
				So(snap.CurrentInningIndex, ShouldEqual, 1)
				So(snap.Innings, ShouldHaveLength, 1)
				So(snap.Innings[0].BattingTeam, ShouldEqual, "A")
				So(snap.Innings[0].BowlingTeam, ShouldEqual, "B")
				So(snap.StartedAt, ShouldNotBeNil)
				So(snap.Version, ShouldEqual, 1)
			})

			Convey("And starting again is rejected", func() {
				_, err := e.StartMatch(ctx, startInput())
				So(errors.Is(err, scoring.ErrIllegalState), ShouldBeTrue)
			})
		})

		Convey("When the toss winner chooses to bowl", func() {
			in := startInput()
			in.TossDecision = model.TossBowl
			snap, err := e.StartMatch(ctx, in)
			So(err, ShouldBeNil)
			So(snap.Innings[0].BattingTeam, ShouldEqual, "B")
		})

		Convey("When the rosters are malformed", func() {
			cases := []struct {
				name   string
				mutate func(in *scoring.StartInput)
			}{
				{"ten players", func(in *scoring.StartInput) {
					in.Playing11[0].Players = in.Playing11[0].Players[:10]
				}},
				{"duplicate player", func(in *scoring.StartInput) {
					in.Playing11[0].Players[1] = in.Playing11[0].Players[0]
				}},
				{"player on both sides", func(in *scoring.StartInput) {
					in.Playing11[1].Players[0] = "A1"
				}},
				{"unknown team", func(in *scoring.StartInput) {
					in.Playing11[1].TeamID = "C"
				}},
				{"same team twice", func(in *scoring.StartInput) {
					in.Playing11[1] = roster("A")
				}},
				{"empty player id", func(in *scoring.StartInput) {
					in.Playing11[1].Players[4] = " "
				}},
				{"toss winner not playing", func(in *scoring.StartInput) {
					in.TossWinner = "C"
				}},
				{"unknown toss decision", func(in *scoring.StartInput) {
					in.TossDecision = "field"
				}},
			}
			for _, tc := range cases {
				in := startInput()
				tc.mutate(&in)
				_, err := e.StartMatch(ctx, in)
				So(scoring.KindOf(err), ShouldEqual, scoring.KindInvalidRoster)
			}

			Convey("Then the match stays scheduled", func() {
				snap := e.Snapshot()
				So(snap.Status, ShouldEqual, model.StatusScheduled)
				So(snap.Version, ShouldEqual, 0)
			})
		})
	})
}

func TestApplyBallPreconditions(t *testing.T) {
	Convey("Given a live match", t, func() {
		ctx := context.Background()

		Convey("When the match has not started", func() {
			e := newEngine(20)
			_, err := e.ApplyBall(ctx, scoring.BallInput{Tag: "1"})
			So(errors.Is(err, scoring.ErrMatchNotLive), ShouldBeTrue)
		})

		Convey("When no bowler has been assigned", func() {
			e := newEngine(20)
			_, err := e.StartMatch(ctx, startInput())
			So(err, ShouldBeNil)
			_, _ = e.AssignBatsman(ctx, "A1")
			_, _ = e.AssignBatsman(ctx, "A2")
			_, err = e.ApplyBall(ctx, scoring.BallInput{Tag: "1"})
			So(scoring.KindOf(err), ShouldEqual, scoring.KindIllegalState)
		})

		Convey("When only one batsman is at the crease", func() {
			e := newEngine(20)
			_, err := e.StartMatch(ctx, startInput())
			So(err, ShouldBeNil)
			_, _ = e.AssignBatsman(ctx, "A1")
			_, _ = e.AssignBowler(ctx, "B11")
			_, err = e.ApplyBall(ctx, scoring.BallInput{Tag: "1"})
			So(scoring.KindOf(err), ShouldEqual, scoring.KindIllegalState)
		})

		Convey("When the event tag is not recognised", func() {
			d := newDriver(t, 20)
			before := d.e.Snapshot()
			_, err := d.e.ApplyBall(ctx, scoring.BallInput{Tag: "5"})
			So(errors.Is(err, scoring.ErrUnrecognizedEvent), ShouldBeTrue)

			Convey("Then the match is untouched", func() {
				So(d.e.Snapshot(), ShouldResemble, before)
			})
		})

		Convey("When the scorer's context is stale", func() {
			d := newDriver(t, 20)
			before := d.e.Snapshot()

			_, err := d.e.ApplyBall(ctx, scoring.BallInput{Tag: "1", Striker: "A2"})
			So(scoring.KindOf(err), ShouldEqual, scoring.KindIllegalState)
			_, err = d.e.ApplyBall(ctx, scoring.BallInput{Tag: "1", Bowler: "B10"})
			So(scoring.KindOf(err), ShouldEqual, scoring.KindIllegalState)
			_, err = d.e.ApplyBall(ctx, scoring.BallInput{Tag: "1", Over: 2})
			So(scoring.KindOf(err), ShouldEqual, scoring.KindIllegalState)
			So(d.e.Snapshot(), ShouldResemble, before)

			_, err = d.e.ApplyBall(ctx, scoring.BallInput{Tag: "1", Striker: "A1", Bowler: "B11", Over: 1})
			So(err, ShouldBeNil)
		})

		Convey("When a catch is credited to a player outside the fielding side", func() {
			d := newDriver(t, 20)
			_, err := d.e.ApplyBall(ctx, scoring.BallInput{Tag: "caught", Fielder: "A5"})
			So(scoring.KindOf(err), ShouldEqual, scoring.KindIllegalState)
		})
	})
}

func TestOverCompletion(t *testing.T) {
	Convey("Given an over of six legal deliveries", t, func() {
		ctx := context.Background()
		d := newDriver(t, 20)
		var snap model.Snapshot
		for i := 0; i < model.BallsPerOver; i++ {
			snap = d.must(d.e.ApplyBall(ctx, scoring.BallInput{Tag: "0"}))
		}
		inn := snap.CurrentInnings()

		Convey("Then the over is closed and the bowler released", func() {
			So(inn.Overs, ShouldHaveLength, 1)
			So(inn.Overs[0].Closed, ShouldBeTrue)
			So(inn.Overs[0].LegalBalls, ShouldEqual, 6)
			So(inn.CurrentBowler, ShouldBeEmpty)
			So(inn.PreviousBowler, ShouldEqual, "B11")
			So(inn.Bowling["B11"].Maidens, ShouldEqual, 1)
			So(inn.Bowling["B11"].Overs(), ShouldEqual, "1.0")
		})

		Convey("Then the ends have changed for the next over", func() {
			So(inn.CurrentStriker, ShouldEqual, "A2")
			So(inn.NonStriker, ShouldEqual, "A1")
		})

		Convey("When a ball arrives before a new bowler is assigned", func() {
			_, err := d.e.ApplyBall(ctx, scoring.BallInput{Tag: "1"})

			Convey("Then it is rejected as against a closed over", func() {
				So(errors.Is(err, scoring.ErrOverAlreadyClosed), ShouldBeTrue)
			})
		})

		Convey("When the same bowler is assigned again", func() {
			_, err := d.e.AssignBowler(ctx, "B11")
			So(scoring.KindOf(err), ShouldEqual, scoring.KindIllegalState)
		})

		Convey("When a fresh bowler is assigned", func() {
			_, err := d.e.AssignBowler(ctx, "B10")
			So(err, ShouldBeNil)
			snap, err := d.e.ApplyBall(ctx, scoring.BallInput{Tag: "2"})
			So(err, ShouldBeNil)
			inn := snap.CurrentInnings()
			So(inn.Overs, ShouldHaveLength, 2)
			So(inn.Overs[1].Number, ShouldEqual, 2)
			So(inn.Overs[1].Bowler, ShouldEqual, "B10")

			Convey("And the bowler cannot be changed mid over", func() {
				_, err := d.e.AssignBowler(ctx, "B9")
				So(scoring.KindOf(err), ShouldEqual, scoring.KindIllegalState)
			})
		})
	})

	Convey("Given bowler rest is not enforced", t, func() {
		d := newDriver(t, 20, scoring.WithBowlerRest(false))
		for i := 0; i < model.BallsPerOver; i++ {
			d.must(d.e.ApplyBall(d.ctx, scoring.BallInput{Tag: "0"}))
		}
		_, err := d.e.AssignBowler(d.ctx, "B11")
		So(err, ShouldBeNil)
	})
}

func TestStrikeRotation(t *testing.T) {
	Convey("Given openers A1 (striker) and A2", t, func() {
		d := newDriver(t, 20)
		crease := func(snap model.Snapshot) [2]string {
			inn := snap.CurrentInnings()
			return [2]string{inn.CurrentStriker, inn.NonStriker}
		}

		Convey("Odd runs swap the ends exactly once", func() {
			So(crease(d.play("1")), ShouldEqual, [2]string{"A2", "A1"})
			So(crease(d.play("3")), ShouldEqual, [2]string{"A1", "A2"})
		})

		Convey("Even runs and boundaries keep the ends", func() {
			for _, tag := range []string{"0", "2", "4", "6"} {
				So(crease(d.play(tag)), ShouldEqual, [2]string{"A1", "A2"})
			}
		})

		Convey("Odd byes are run and swap the ends", func() {
			So(crease(d.play("bye:1")), ShouldEqual, [2]string{"A2", "A1"})
			So(crease(d.play("lb:3")), ShouldEqual, [2]string{"A1", "A2"})
		})

		Convey("Illegal deliveries do not swap", func() {
			So(crease(d.play("wide:1")), ShouldEqual, [2]string{"A1", "A2"})
			So(crease(d.play("nb:1")), ShouldEqual, [2]string{"A1", "A2"})
		})

		Convey("Odd runs off the last ball are not swapped a second time", func() {
			snap := d.play(seq(repeat("0", 5), []string{"1"})...)
			inn := snap.CurrentInnings()
			So(inn.Overs[0].Closed, ShouldBeTrue)
			So(crease(snap), ShouldEqual, [2]string{"A2", "A1"})
		})

		Convey("A dismissal vacates the striker's end for the next batsman", func() {
			snap, err := d.e.ApplyBall(d.ctx, scoring.BallInput{Tag: "bowled"})
			So(err, ShouldBeNil)
			So(crease(snap), ShouldEqual, [2]string{"", "A2"})

			_, err = d.e.ApplyBall(d.ctx, scoring.BallInput{Tag: "1"})
			So(scoring.KindOf(err), ShouldEqual, scoring.KindIllegalState)

			_, err = d.e.AssignBatsman(d.ctx, "A1")
			So(scoring.KindOf(err), ShouldEqual, scoring.KindIllegalState)

			snap, err = d.e.AssignBatsman(d.ctx, "A3")
			So(err, ShouldBeNil)
			So(crease(snap), ShouldEqual, [2]string{"A3", "A2"})

			_, err = d.e.AssignBatsman(d.ctx, "A4")
			So(scoring.KindOf(err), ShouldEqual, scoring.KindIllegalState)
		})

		Convey("A run out at the non-striker's end sends the new batsman to strike", func() {
			snap, err := d.e.ApplyBall(d.ctx, scoring.BallInput{
				Tag: "run_out", DismissedEnd: "non_striker", RunOutRuns: 1,
			})
			So(err, ShouldBeNil)
			So(crease(snap), ShouldEqual, [2]string{"", "A1"})

			inn := snap.CurrentInnings()
			So(inn.Runs, ShouldEqual, 1)
			So(inn.Batting["A1"].Runs, ShouldEqual, 1)
			So(inn.Batting["A2"].IsOut, ShouldBeTrue)
			So(inn.Bowling["B11"].Wickets, ShouldEqual, 0)
			So(inn.FallOfWickets[0].Runs, ShouldEqual, 1)
			So(inn.FallOfWickets[0].BatsmanOut, ShouldEqual, "A2")

			snap, err = d.e.AssignBatsman(d.ctx, "A3")
			So(err, ShouldBeNil)
			So(crease(snap), ShouldEqual, [2]string{"A3", "A1"})

			snap, err = d.e.ApplyBall(d.ctx, scoring.BallInput{Tag: "0", Striker: "A3"})
			So(err, ShouldBeNil)
			So(snap.CurrentInnings().Batting["A3"].BallsFaced, ShouldEqual, 1)
		})
	})
}

func TestLedger(t *testing.T) {
	Convey("Given a live innings", t, func() {
		d := newDriver(t, 20)

		Convey("A wide of one run", func() {
			snap := d.play("wide:1")
			inn := snap.CurrentInnings()

			Convey("Then no ball is faced and the over does not advance", func() {
				So(inn.Batting["A1"].BallsFaced, ShouldEqual, 0)
				So(inn.Batting["A2"].BallsFaced, ShouldEqual, 0)
				So(inn.Overs[0].LegalBalls, ShouldEqual, 0)
				So(inn.LegalBalls, ShouldEqual, 0)
			})

			Convey("Then the run is an extra charged to the bowler", func() {
				So(inn.Runs, ShouldEqual, 1)
				So(inn.Extras.Wides, ShouldEqual, 1)
				So(inn.Extras.Total, ShouldEqual, 1)
				So(inn.Bowling["B11"].RunsConceded, ShouldEqual, 1)
				So(inn.Bowling["B11"].Wides, ShouldEqual, 1)
				So(inn.Bowling["B11"].LegalBalls, ShouldEqual, 0)
			})
		})

		Convey("A no-ball hit for four", func() {
			snap, err := d.e.ApplyBall(d.ctx, scoring.BallInput{Tag: "nb:1", BatRuns: 4})
			So(err, ShouldBeNil)
			inn := snap.CurrentInnings()
			So(inn.Runs, ShouldEqual, 5)
			So(inn.Extras.NoBalls, ShouldEqual, 1)
			So(inn.Batting["A1"].Runs, ShouldEqual, 4)
			So(inn.Batting["A1"].Fours, ShouldEqual, 1)
			So(inn.Batting["A1"].BallsFaced, ShouldEqual, 0)
			So(inn.Bowling["B11"].RunsConceded, ShouldEqual, 5)
		})

		Convey("Byes and leg-byes", func() {
			snap := d.play("bye:2", "lb:4")
			inn := snap.CurrentInnings()
			So(inn.Runs, ShouldEqual, 6)
			So(inn.Extras.Byes, ShouldEqual, 2)
			So(inn.Extras.LegByes, ShouldEqual, 4)
			So(inn.Batting["A1"].Runs, ShouldEqual, 0)
			So(inn.Batting["A1"].BallsFaced, ShouldEqual, 2)
			So(inn.Bowling["B11"].RunsConceded, ShouldEqual, 0)
			So(inn.Bowling["B11"].LegalBalls, ShouldEqual, 2)
		})

		Convey("Boundaries and a catch", func() {
			snap := d.play("4", "6")
			snap = d.must(d.e.ApplyBall(d.ctx, scoring.BallInput{Tag: "caught", Fielder: "B3"}))
			inn := snap.CurrentInnings()

			a1 := inn.Batting["A1"]
			So(a1.Runs, ShouldEqual, 10)
			So(a1.Fours, ShouldEqual, 1)
			So(a1.Sixes, ShouldEqual, 1)
			So(a1.BallsFaced, ShouldEqual, 3)
			So(a1.IsOut, ShouldBeTrue)
			So(a1.DismissalType, ShouldEqual, model.DismissalCaught)
			So(a1.Bowler, ShouldEqual, "B11")
			So(a1.Fielder, ShouldEqual, "B3")
			So(a1.StrikeRate(), ShouldAlmostEqual, 333.33, 0.01)

			So(inn.Bowling["B11"].Wickets, ShouldEqual, 1)
			So(inn.Wickets, ShouldEqual, 1)
			So(inn.FallOfWickets, ShouldHaveLength, 1)
			So(inn.FallOfWickets[0], ShouldResemble, model.FallOfWicket{
				Wicket: 1, Runs: 10, Over: 1, Ball: 3, BatsmanOut: "A1", Kind: model.DismissalCaught,
			})

			ball := inn.Overs[0].Balls[2]
			So(ball.Dismissal.Kind, ShouldEqual, model.DismissalCaught)
			So(ball.Striker, ShouldEqual, "A1")
			So(ball.Sequence, ShouldEqual, 3)
		})
	})
}

func TestInvariantsUnderRandomPlay(t *testing.T) {
	Convey("Given a match played with random legal events", t, func() {
		tags := []string{"0", "0", "1", "1", "2", "3", "4", "6", "wide:1", "nb:1", "bye:1", "lb:2", "bowled", "lbw"}
		rng := rand.New(rand.NewSource(7))
		d := newDriver(t, 20)

		for i := 0; i < 400; i++ {
			snap := d.e.Snapshot()
			if snap.Status != model.StatusLive {
				break
			}
			snap = d.play(tags[rng.Intn(len(tags))])

			for _, inn := range snap.Innings {
				total := 0
				for _, o := range inn.Overs {
					for _, b := range o.Balls {
						total += b.RunsScored
					}
					So(o.LegalBalls, ShouldBeLessThanOrEqualTo, model.BallsPerOver)
				}
				So(inn.Runs, ShouldEqual, total)
				So(inn.Wickets, ShouldEqual, len(inn.FallOfWickets))
				if inn.CurrentStriker != "" {
					So(inn.CurrentStriker, ShouldNotEqual, inn.NonStriker)
				}
			}
		}

		Convey("Then the match finishes with a result", func() {
			snap := d.e.Snapshot()
			So(snap.Status, ShouldEqual, model.StatusCompleted)
			So(snap.Result, ShouldNotBeNil)
			So(snap.Result.Summary, ShouldNotBeEmpty)
		})
	})
}

func TestMatchLifecycle(t *testing.T) {
	Convey("Scenario: two overs of dot balls", t, func() {
		d := newDriver(t, 2)
		snap := d.play(repeat("0", 12)...)

		first := snap.Innings[0]
		So(first.Runs, ShouldEqual, 0)
		So(first.Wickets, ShouldEqual, 0)
		So(first.Closed, ShouldBeTrue)
		So(first.ClosedReason, ShouldEqual, model.ClosedOversExhausted)
		So(snap.CurrentInningIndex, ShouldEqual, 2)
		So(snap.Innings[1].BattingTeam, ShouldEqual, "B")
		So(snap.Status, ShouldEqual, model.StatusLive)
	})

	// First innings: 30 fours and 90 dots, 120 from 20 overs.
	firstInnings := seq(repeat("4", 30), repeat("0", 90))

	Convey("Scenario: chase completed with wickets in hand", t, func() {
		d := newDriver(t, 20)
		d.play(firstInnings...)
		snap := d.play(seq(repeat("0", 68), repeat("bowled", 3), repeat("4", 30), []string{"1"})...)

		chase := snap.Innings[1]
		So(chase.Runs, ShouldEqual, 121)
		So(chase.Wickets, ShouldEqual, 3)
		So(snap.MaxLegalBalls()-chase.LegalBalls, ShouldEqual, 18)
		So(chase.ClosedReason, ShouldEqual, model.ClosedTargetReached)
		So(snap.Status, ShouldEqual, model.StatusCompleted)
		So(*snap.Result, ShouldResemble, model.Result{
			Winner: "B", MarginKind: model.MarginWickets, MarginValue: 7, Summary: "B won by 7 wickets",
		})
		So(snap.CompletedAt, ShouldNotBeNil)

		Convey("And further balls are rejected", func() {
			_, err := d.e.ApplyBall(d.ctx, scoring.BallInput{Tag: "1"})
			So(errors.Is(err, scoring.ErrMatchNotLive), ShouldBeTrue)
		})
	})

	Convey("Scenario: chasing side bowled out short", t, func() {
		d := newDriver(t, 20)
		d.play(firstInnings...)
		snap := d.play(seq(repeat("4", 25), repeat("bowled", 10))...)

		So(snap.Innings[1].Runs, ShouldEqual, 100)
		So(snap.Innings[1].ClosedReason, ShouldEqual, model.ClosedAllOut)
		So(*snap.Result, ShouldResemble, model.Result{
			Winner: "A", MarginKind: model.MarginRuns, MarginValue: 20, Summary: "A won by 20 runs",
		})
	})

	Convey("Scenario: scores level when the last wicket falls", t, func() {
		d := newDriver(t, 20)
		d.play(firstInnings...)
		snap := d.play(seq(repeat("4", 30), repeat("bowled", 10))...)

		So(snap.Innings[1].Runs, ShouldEqual, 120)
		So(snap.Result.IsTie, ShouldBeTrue)
		So(snap.Result.Winner, ShouldBeEmpty)
		So(snap.Status, ShouldEqual, model.StatusCompleted)
	})

	Convey("Scenario: chasing side runs out of overs", t, func() {
		d := newDriver(t, 2)
		d.play("4", "4", "0", "0", "0", "0", "0", "0", "0", "0", "0", "0")
		snap := d.play(seq([]string{"6"}, repeat("0", 11))...)

		So(snap.Innings[1].ClosedReason, ShouldEqual, model.ClosedOversExhausted)
		So(snap.Result.Winner, ShouldEqual, "A")
		So(snap.Result.MarginValue, ShouldEqual, 2)
	})

	Convey("Scenario: scores level when the overs run out", t, func() {
		d := newDriver(t, 2)
		d.play(seq([]string{"4", "4"}, repeat("0", 10))...)
		snap := d.play(seq([]string{"4", "4"}, repeat("0", 10))...)

		So(snap.Innings[1].Runs, ShouldEqual, 8)
		So(snap.Innings[1].Wickets, ShouldEqual, 0)
		So(snap.Innings[1].ClosedReason, ShouldEqual, model.ClosedOversExhausted)
		So(snap.Result.IsTie, ShouldBeTrue)
		So(snap.Result.Winner, ShouldBeEmpty)
		So(snap.Result.Summary, ShouldEqual, "match tied")
		So(snap.Status, ShouldEqual, model.StatusCompleted)
	})
}

func TestStartInningsAndAbandon(t *testing.T) {
	Convey("Given a match that has not started", t, func() {
		e := newEngine(20)

		Convey("Then it cannot be abandoned", func() {
			_, err := e.Abandon(context.Background(), "rain")
			So(errors.Is(err, scoring.ErrMatchNotLive), ShouldBeTrue)
			So(e.Snapshot().Status, ShouldEqual, model.StatusScheduled)
			So(e.Snapshot().Result, ShouldBeNil)
		})
	})

	Convey("Given a live first innings", t, func() {
		d := newDriver(t, 20)
		d.play("4", "1")

		Convey("When the batting side declares", func() {
			snap, err := d.e.StartInnings(d.ctx)
			So(err, ShouldBeNil)
			So(snap.Innings[0].ClosedReason, ShouldEqual, model.ClosedDeclared)
			So(snap.Innings[0].CurrentBowler, ShouldBeEmpty)
			So(snap.CurrentInningIndex, ShouldEqual, 2)
			So(snap.Innings[1].CurrentStriker, ShouldBeEmpty)

			Convey("Then a third innings cannot be started", func() {
				_, err := d.e.StartInnings(d.ctx)
				So(scoring.KindOf(err), ShouldEqual, scoring.KindIllegalState)
			})
		})

		Convey("When the match is abandoned", func() {
			snap, err := d.e.Abandon(d.ctx, "rain")
			So(err, ShouldBeNil)
			So(snap.Status, ShouldEqual, model.StatusAbandoned)
			So(snap.Result.NoResult, ShouldBeTrue)
			So(snap.Result.Summary, ShouldEqual, "match abandoned: rain")
			So(snap.Innings[0].ClosedReason, ShouldEqual, model.ClosedAbandoned)

			_, err = d.e.ApplyBall(d.ctx, scoring.BallInput{Tag: "1"})
			So(errors.Is(err, scoring.ErrMatchNotLive), ShouldBeTrue)
			_, err = d.e.Abandon(d.ctx, "")
			So(errors.Is(err, scoring.ErrMatchNotLive), ShouldBeTrue)
		})
	})
}

func TestObservers(t *testing.T) {
	Convey("Given an engine with an observer", t, func() {
		var seen []uint64
		obs := scoring.ObserverFunc(func(_ context.Context, snap model.Snapshot) {
			seen = append(seen, snap.Version)
		})
		d := newDriver(t, 20, scoring.WithObserver(obs))

		Convey("Then every successful mutation is observed in order", func() {
			// start, two batsmen, bowler
			So(seen, ShouldResemble, []uint64{1, 2, 3, 4})
			d.play("1")
			So(seen[len(seen)-1], ShouldEqual, 5)
		})

		Convey("Then rejected commands are not observed", func() {
			n := len(seen)
			_, err := d.e.ApplyBall(d.ctx, scoring.BallInput{Tag: "9"})
			So(err, ShouldNotBeNil)
			So(seen, ShouldHaveLength, n)
		})

		Convey("Then snapshots do not share memory with the engine", func() {
			snap := d.play("4")
			snap.Innings[0].Runs = 999
			snap.Innings[0].Batting["A1"].Runs = 999
			again := d.e.Snapshot()
			So(again.Innings[0].Runs, ShouldEqual, 4)
			So(again.Innings[0].Batting["A1"].Runs, ShouldEqual, 4)
		})
	})
}
