package scoring

import "github.com/okian/crease/internal/domain/model"

// newBall builds the immutable ball record for a validated event.
func newBall(seq int, eventID string, inn *model.Innings, ev Event) model.Ball {
	b := model.Ball{
		Sequence:        seq,
		EventID:         eventID,
		Striker:         inn.CurrentStriker,
		NonStriker:      inn.NonStriker,
		Bowler:          inn.CurrentBowler,
		ExtraKind:       model.ExtraNone,
		Boundary:        model.BoundaryNone,
		Dismissal:       model.Dismissal{Kind: model.DismissalNone},
		IsLegalDelivery: ev.Legal(),
		RunsScored:      ev.Total(),
	}
	switch e := ev.(type) {
	case RunsEvent:
		b.BatRuns = e.Runs
		b.Boundary = e.Boundary()
	case ExtraEvent:
		b.ExtraKind = e.Kind
		b.ExtraRuns = e.Runs
		b.BatRuns = e.BatRuns
		b.Boundary = boundaryOf(e.BatRuns)
	case DismissalEvent:
		b.BatRuns = e.Runs
		out := inn.CurrentStriker
		if e.End == model.EndNonStriker {
			out = inn.NonStriker
		}
		b.Dismissal = model.Dismissal{
			Kind:       e.Kind,
			BatsmanOut: out,
			End:        e.End,
			Fielder:    e.Fielder,
		}
	}
	return b
}

// chargedToBowler is the part of a ball's runs that counts against the
// bowler. Byes and leg-byes are charged to the fielding side only.
func chargedToBowler(b model.Ball) int {
	switch b.ExtraKind {
	case model.ExtraWide, model.ExtraNoBall:
		return b.BatRuns + b.ExtraRuns
	default:
		return b.BatRuns
	}
}

// credit applies the ball's effects to the innings totals and to the
// batting and bowling performances.
func credit(inn *model.Innings, over *model.Over, b model.Ball) {
	striker := inn.BatterFor(b.Striker)
	bowler := inn.BowlerFor(b.Bowler)

	inn.Runs += b.RunsScored
	over.TotalRuns += b.RunsScored

	striker.Runs += b.BatRuns
	switch b.Boundary {
	case model.BoundaryFour:
		striker.Fours++
	case model.BoundarySix:
		striker.Sixes++
	}
	if b.IsLegalDelivery {
		striker.BallsFaced++
		bowler.LegalBalls++
	}
	bowler.RunsConceded += chargedToBowler(b)

	switch b.ExtraKind {
	case model.ExtraWide:
		inn.Extras.Wides += b.ExtraRuns
		bowler.Wides++
	case model.ExtraNoBall:
		inn.Extras.NoBalls += b.ExtraRuns
		bowler.NoBalls++
	case model.ExtraBye:
		inn.Extras.Byes += b.ExtraRuns
	case model.ExtraLegBye:
		inn.Extras.LegByes += b.ExtraRuns
	}
	inn.Extras.Total += b.ExtraRuns
	over.Extras += b.ExtraRuns

	if b.Dismissal.Kind != model.DismissalNone {
		dismiss(inn, over, bowler, b)
	}
}

func dismiss(inn *model.Innings, over *model.Over, bowler *model.BowlingPerformance, b model.Ball) {
	out := inn.BatterFor(b.Dismissal.BatsmanOut)
	out.IsOut = true
	out.DismissalType = b.Dismissal.Kind
	out.Fielder = b.Dismissal.Fielder
	if b.Dismissal.Kind.CreditsBowler() {
		out.Bowler = b.Bowler
		bowler.Wickets++
	}

	inn.Wickets++
	over.Wickets++
	inn.FallOfWickets = append(inn.FallOfWickets, model.FallOfWicket{
		Wicket:     inn.Wickets,
		Runs:       inn.Runs,
		Over:       over.Number,
		Ball:       over.LegalBalls,
		BatsmanOut: out.Player,
		Kind:       b.Dismissal.Kind,
	})
}
