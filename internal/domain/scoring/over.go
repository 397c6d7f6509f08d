package scoring

import "github.com/okian/crease/internal/domain/model"

// expectedOver is the number of the over the next ball belongs to.
func expectedOver(inn *model.Innings) int {
	if o := inn.OpenOver(); o != nil {
		return o.Number
	}
	return len(inn.Overs) + 1
}

// overFor returns the open over, starting a new one for the current bowler
// when the previous over has closed.
func overFor(inn *model.Innings) *model.Over {
	if o := inn.OpenOver(); o != nil {
		return o
	}
	o := &model.Over{
		Number: len(inn.Overs) + 1,
		Bowler: inn.CurrentBowler,
		Balls:  []model.Ball{},
	}
	inn.Overs = append(inn.Overs, o)
	return o
}

// record appends the ball to the over and advances the legal-ball counters.
// It reports whether the ball completed the over.
func record(inn *model.Innings, over *model.Over, b model.Ball) bool {
	over.Balls = append(over.Balls, b)
	if !b.IsLegalDelivery {
		return false
	}
	over.LegalBalls++
	inn.LegalBalls++
	return over.LegalBalls == model.BallsPerOver
}

// closeOver seals a completed over and hands the ball back to the scorer
// for a new bowler.
func closeOver(inn *model.Innings, over *model.Over) {
	over.Closed = true
	if chargedInOver(over) == 0 {
		inn.BowlerFor(over.Bowler).Maidens++
	}
	inn.PreviousBowler = inn.CurrentBowler
	inn.CurrentBowler = ""
}

// chargedInOver sums the runs of the over charged to its bowler.
func chargedInOver(over *model.Over) int {
	total := 0
	for _, b := range over.Balls {
		total += chargedToBowler(b)
	}
	return total
}
