package simulate

import (
	"fmt"

	"github.com/okian/crease/internal/domain/model"
	"github.com/okian/crease/internal/domain/types"
)

// verifyMatch checks that a finished match adds up: every run lands in
// exactly one batter's or extras column, and the result follows from the
// two totals.
func verifyMatch(snap *model.Snapshot, card *types.Scorecard) error {
	if snap.Status != model.StatusCompleted || snap.Result == nil {
		return fmt.Errorf("%w: %s is %s without a result", ErrMismatch, snap.ID, snap.Status)
	}
	if len(snap.Innings) != model.InningsPerMatch {
		return fmt.Errorf("%w: %s has %d innings", ErrMismatch, snap.ID, len(snap.Innings))
	}
	for _, inn := range snap.Innings {
		if err := verifyInnings(snap.ID, inn); err != nil {
			return err
		}
	}
	if err := verifyResult(snap); err != nil {
		return err
	}
	return verifyScorecard(snap, card)
}

func verifyInnings(matchID string, inn *model.Innings) error {
	var bat, conceded, balls, legal int
	for _, bp := range inn.Batting {
		bat += bp.Runs
	}
	for _, bp := range inn.Bowling {
		conceded += bp.RunsConceded
		legal += bp.LegalBalls
	}
	for _, o := range inn.Overs {
		for _, b := range o.Balls {
			balls += b.RunsScored
		}
	}
	ex := inn.Extras
	extras := ex.Wides + ex.NoBalls + ex.Byes + ex.LegByes

	checks := []struct {
		what      string
		got, want int
	}{
		{"extras total", ex.Total, extras},
		{"batting plus extras", bat + extras, inn.Runs},
		{"ball by ball", balls, inn.Runs},
		{"bowling plus byes", conceded + ex.Byes + ex.LegByes, inn.Runs},
		{"legal balls", legal, inn.LegalBalls},
		{"fall of wickets", len(inn.FallOfWickets), inn.Wickets},
	}
	for _, c := range checks {
		if c.got != c.want {
			return fmt.Errorf("%w: %s innings %d %s: got %d, want %d",
				ErrMismatch, matchID, inn.Number, c.what, c.got, c.want)
		}
	}
	return nil
}

func verifyResult(snap *model.Snapshot) error {
	first, chase := snap.Innings[0], snap.Innings[1]
	res := snap.Result

	var want string
	switch {
	case chase.Runs > first.Runs:
		want = chase.BattingTeam
		if res.MarginKind != model.MarginWickets || res.MarginValue != model.MaxWickets-chase.Wickets {
			return fmt.Errorf("%w: %s margin %d %s", ErrMismatch, snap.ID, res.MarginValue, res.MarginKind)
		}
	case chase.Runs < first.Runs:
		want = first.BattingTeam
		if res.MarginKind != model.MarginRuns || res.MarginValue != first.Runs-chase.Runs {
			return fmt.Errorf("%w: %s margin %d %s", ErrMismatch, snap.ID, res.MarginValue, res.MarginKind)
		}
	default:
		if !res.IsTie {
			return fmt.Errorf("%w: %s level scores but no tie", ErrMismatch, snap.ID)
		}
	}
	if res.Winner != want {
		return fmt.Errorf("%w: %s winner %q, want %q", ErrMismatch, snap.ID, res.Winner, want)
	}
	return nil
}

func verifyScorecard(snap *model.Snapshot, card *types.Scorecard) error {
	if card.MatchID != snap.ID || len(card.Innings) != len(snap.Innings) {
		return fmt.Errorf("%w: %s scorecard does not cover the match", ErrMismatch, snap.ID)
	}
	if want := snap.Innings[0].Runs + 1; card.Innings[1].Target != want {
		return fmt.Errorf("%w: %s target %d, want %d", ErrMismatch, snap.ID, card.Innings[1].Target, want)
	}
	return nil
}
