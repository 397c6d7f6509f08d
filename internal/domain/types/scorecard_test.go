package types

import (
	"testing"
	"time"

	"github.com/okian/crease/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var fixedTime = time.Date(2026, 5, 1, 14, 0, 0, 0, time.UTC)

func TestBuildScorecard(t *testing.T) {
	Convey("Given a match in its second innings", t, func() {
		m := model.NewMatch("m-1", "A", "B", 20, fixedTime)
		m.Status = model.StatusLive

		first := model.NewInnings(1, "A", "B")
		first.Runs, first.Wickets, first.LegalBalls = 150, 10, 114
		first.Closed, first.ClosedReason = true, model.ClosedAllOut
		out := first.BatterFor("A1")
		out.Runs, out.BallsFaced, out.IsOut = 40, 20, true
		out.DismissalType, out.Bowler, out.Fielder = model.DismissalCaught, "B9", "B2"
		first.BowlerFor("B9").LegalBalls = 24
		first.Bowling["B9"].RunsConceded = 30

		second := model.NewInnings(2, "B", "A")
		second.Runs, second.LegalBalls = 12, 6
		second.BatterFor("B1").Runs = 12
		second.CurrentStriker = "B1"
		second.BowlerFor("A11")

		m.Innings = []*model.Innings{first, second}
		m.CurrentInningIndex = 2
		snap := m.Snapshot()

		sc := BuildScorecard(&snap)

		Convey("Then each innings has its card", func() {
			So(sc.Innings, ShouldHaveLength, 2)
			So(sc.Innings[0].Score, ShouldEqual, "150/10")
			So(sc.Innings[0].Overs, ShouldEqual, "19.0")
			So(sc.Innings[0].ClosedReason, ShouldEqual, model.ClosedAllOut)
			So(sc.Innings[1].Target, ShouldEqual, 151)
			So(sc.Innings[1].RunRate, ShouldEqual, 12.0)
		})

		Convey("Then batting and bowling lines are rendered", func() {
			So(sc.Innings[0].Batting[0].Dismissal, ShouldEqual, "c B2 b B9")
			So(sc.Innings[0].Batting[0].StrikeRate, ShouldEqual, 200.0)
			So(*sc.Innings[0].Bowling[0].Economy, ShouldEqual, 7.5)
			So(sc.Innings[1].Batting[0].Dismissal, ShouldEqual, "not out")
			So(sc.Innings[1].Batting[0].OnStrike, ShouldBeTrue)
			So(sc.Innings[1].Bowling[0].Economy, ShouldBeNil)
		})
	})
}

func TestDismissalText(t *testing.T) {
	Convey("Dismissals use scorecard shorthand", t, func() {
		cases := []struct {
			bp   model.BattingPerformance
			want string
		}{
			{model.BattingPerformance{}, "not out"},
			{model.BattingPerformance{IsOut: true, DismissalType: model.DismissalBowled, Bowler: "X"}, "b X"},
			{model.BattingPerformance{IsOut: true, DismissalType: model.DismissalLBW, Bowler: "X"}, "lbw b X"},
			{model.BattingPerformance{IsOut: true, DismissalType: model.DismissalCaught, Bowler: "X"}, "c & b X"},
			{model.BattingPerformance{IsOut: true, DismissalType: model.DismissalStumped, Bowler: "X", Fielder: "K"}, "st K b X"},
			{model.BattingPerformance{IsOut: true, DismissalType: model.DismissalRunOut, Fielder: "F"}, "run out (F)"},
			{model.BattingPerformance{IsOut: true, DismissalType: model.DismissalRunOut}, "run out"},
		}
		for _, c := range cases {
			bp := c.bp
			So(dismissalText(&bp), ShouldEqual, c.want)
		}
	})
}
