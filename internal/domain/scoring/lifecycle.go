package scoring

import (
	"strconv"
	"time"

	"github.com/okian/crease/internal/domain/model"
)

// settle checks the current innings for an end condition after a ball and
// moves the match on: to the second innings, or to a result.
func settle(m *model.Match, now time.Time) {
	inn := m.CurrentInnings()
	if inn == nil || inn.Closed {
		return
	}

	if inn.Number == model.InningsPerMatch {
		if res, reason := decide(m, inn); res != nil {
			closeInnings(inn, reason)
			complete(m, res, now)
		}
		return
	}

	if reason := inningsOver(m, inn); reason != "" {
		closeInnings(inn, reason)
		openSecondInnings(m)
	}
}

// inningsOver reports why the innings can take no more balls, or "".
func inningsOver(m *model.Match, inn *model.Innings) model.ClosedReason {
	switch {
	case inn.Wickets >= model.MaxWickets:
		return model.ClosedAllOut
	case inn.LegalBalls >= m.MaxLegalBalls():
		return model.ClosedOversExhausted
	default:
		return ""
	}
}

// decide resolves the match during the chase. It returns nil while the
// chase is still open.
func decide(m *model.Match, chase *model.Innings) (*model.Result, model.ClosedReason) {
	first := m.Innings[0]
	target := first.Runs + 1

	if chase.Runs >= target {
		margin := model.MaxWickets - chase.Wickets
		return &model.Result{
			Winner:      chase.BattingTeam,
			MarginKind:  model.MarginWickets,
			MarginValue: margin,
			Summary:     chase.BattingTeam + " won by " + plural(margin, "wicket"),
		}, model.ClosedTargetReached
	}

	reason := inningsOver(m, chase)
	if reason == "" {
		return nil, ""
	}
	if chase.Runs == first.Runs {
		return &model.Result{IsTie: true, Summary: "match tied"}, reason
	}
	margin := first.Runs - chase.Runs
	return &model.Result{
		Winner:      first.BattingTeam,
		MarginKind:  model.MarginRuns,
		MarginValue: margin,
		Summary:     first.BattingTeam + " won by " + plural(margin, "run"),
	}, reason
}

func plural(n int, unit string) string {
	s := strconv.Itoa(n) + " " + unit
	if n != 1 {
		s += "s"
	}
	return s
}

// closeInnings seals the innings. An over cut short stays as bowled.
func closeInnings(inn *model.Innings, reason model.ClosedReason) {
	if o := inn.OpenOver(); o != nil {
		o.Closed = true
		if len(o.Balls) == 0 {
			inn.Overs = inn.Overs[:len(inn.Overs)-1]
		}
	}
	if inn.CurrentBowler != "" {
		inn.PreviousBowler = inn.CurrentBowler
		inn.CurrentBowler = ""
	}
	inn.Closed = true
	inn.ClosedReason = reason
}

// openSecondInnings swaps the sides and leaves the crease empty.
func openSecondInnings(m *model.Match) {
	first := m.Innings[0]
	m.Innings = append(m.Innings, model.NewInnings(2, first.BowlingTeam, first.BattingTeam))
	m.CurrentInningIndex = 2
}

func complete(m *model.Match, res *model.Result, now time.Time) {
	m.Status = model.StatusCompleted
	m.Result = res
	t := now
	m.CompletedAt = &t
}
