package types

import (
	"strconv"

	"github.com/okian/crease/internal/domain/model"
)

// Scorecard is the read projection of a match.
type Scorecard struct {
	MatchID string        `json:"match_id"`
	Teams   [2]string     `json:"teams"`
	Status  model.Status  `json:"status"`
	Toss    *model.Toss   `json:"toss,omitempty"`
	Result  string        `json:"result,omitempty"`
	Innings []InningsCard `json:"innings"`
}

// InningsCard is one innings of the scorecard.
type InningsCard struct {
	Number        int                  `json:"number"`
	BattingTeam   string               `json:"batting_team"`
	BowlingTeam   string               `json:"bowling_team"`
	Score         string               `json:"score"`
	Overs         string               `json:"overs"`
	RunRate       float64              `json:"run_rate"`
	Target        int                  `json:"target,omitempty"`
	Batting       []BattingLine        `json:"batting"`
	Bowling       []BowlingLine        `json:"bowling"`
	Extras        model.Extras         `json:"extras"`
	FallOfWickets []model.FallOfWicket `json:"fall_of_wickets"`
	Closed        bool                 `json:"closed"`
	ClosedReason  model.ClosedReason   `json:"closed_reason,omitempty"`
}

// BattingLine is one batter's row.
type BattingLine struct {
	Player     string  `json:"player"`
	Dismissal  string  `json:"dismissal"`
	Runs       int     `json:"runs"`
	Balls      int     `json:"balls"`
	Fours      int     `json:"fours"`
	Sixes      int     `json:"sixes"`
	StrikeRate float64 `json:"strike_rate"`
	OnStrike   bool    `json:"on_strike,omitempty"`
}

// BowlingLine is one bowler's row. Economy is omitted until a legal ball
// has been bowled.
type BowlingLine struct {
	Player  string   `json:"player"`
	Overs   string   `json:"overs"`
	Maidens int      `json:"maidens"`
	Runs    int      `json:"runs"`
	Wickets int      `json:"wickets"`
	Wides   int      `json:"wides"`
	NoBalls int      `json:"no_balls"`
	Economy *float64 `json:"economy,omitempty"`
}

// BuildScorecard projects snap into a scorecard.
func BuildScorecard(snap *model.Snapshot) Scorecard {
	sc := Scorecard{
		MatchID: snap.ID,
		Teams:   snap.Teams,
		Status:  snap.Status,
		Toss:    snap.Toss,
		Innings: make([]InningsCard, 0, len(snap.Innings)),
	}
	if snap.Result != nil {
		sc.Result = snap.Result.Summary
	}
	for i, in := range snap.Innings {
		card := inningsCard(in)
		if i == 1 {
			card.Target = snap.Innings[0].Runs + 1
		}
		sc.Innings = append(sc.Innings, card)
	}
	return sc
}

func inningsCard(in *model.Innings) InningsCard {
	card := InningsCard{
		Number:        in.Number,
		BattingTeam:   in.BattingTeam,
		BowlingTeam:   in.BowlingTeam,
		Score:         strconv.Itoa(in.Runs) + "/" + strconv.Itoa(in.Wickets),
		Overs:         in.OversText(),
		Batting:       make([]BattingLine, 0, len(in.BattingOrder)),
		Bowling:       make([]BowlingLine, 0, len(in.BowlingOrder)),
		Extras:        in.Extras,
		FallOfWickets: in.FallOfWickets,
		Closed:        in.Closed,
		ClosedReason:  in.ClosedReason,
	}
	if in.LegalBalls > 0 {
		card.RunRate = float64(in.Runs) * model.BallsPerOver / float64(in.LegalBalls)
	}
	for _, id := range in.BattingOrder {
		bp := in.Batting[id]
		card.Batting = append(card.Batting, BattingLine{
			Player:     id,
			Dismissal:  dismissalText(bp),
			Runs:       bp.Runs,
			Balls:      bp.BallsFaced,
			Fours:      bp.Fours,
			Sixes:      bp.Sixes,
			StrikeRate: bp.StrikeRate(),
			OnStrike:   !in.Closed && in.CurrentStriker == id,
		})
	}
	for _, id := range in.BowlingOrder {
		bp := in.Bowling[id]
		line := BowlingLine{
			Player:  id,
			Overs:   bp.Overs(),
			Maidens: bp.Maidens,
			Runs:    bp.RunsConceded,
			Wickets: bp.Wickets,
			Wides:   bp.Wides,
			NoBalls: bp.NoBalls,
		}
		if econ, ok := bp.Economy(); ok {
			line.Economy = &econ
		}
		card.Bowling = append(card.Bowling, line)
	}
	return card
}

// dismissalText renders how a batter got out in scorecard shorthand.
func dismissalText(bp *model.BattingPerformance) string {
	if !bp.IsOut {
		return "not out"
	}
	switch bp.DismissalType {
	case model.DismissalBowled:
		return "b " + bp.Bowler
	case model.DismissalLBW:
		return "lbw b " + bp.Bowler
	case model.DismissalCaught:
		if bp.Fielder == "" || bp.Fielder == bp.Bowler {
			return "c & b " + bp.Bowler
		}
		return "c " + bp.Fielder + " b " + bp.Bowler
	case model.DismissalStumped:
		return "st " + bp.Fielder + " b " + bp.Bowler
	case model.DismissalRunOut:
		if bp.Fielder == "" {
			return "run out"
		}
		return "run out (" + bp.Fielder + ")"
	default:
		return string(bp.DismissalType)
	}
}
