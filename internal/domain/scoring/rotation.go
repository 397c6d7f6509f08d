package scoring

import "github.com/okian/crease/internal/domain/model"

// rotate moves the batsmen after a ball has been credited.
//
// Odd runs physically run on a legal, non-dismissal ball swap the ends. The
// end of an over swaps them too, unless the ball already did. A dismissal
// clears the striker's end, shifting the survivor when the non-striker is
// out; the next batsman is placed there by AssignBatsman.
func rotate(inn *model.Innings, ev Event, b model.Ball, overComplete bool) {
	swapped := false
	if b.IsLegalDelivery && b.Dismissal.Kind == model.DismissalNone && RunsRun(ev)%2 == 1 {
		swapEnds(inn)
		swapped = true
	}
	if overComplete && !swapped {
		swapEnds(inn)
	}
	if b.Dismissal.Kind != model.DismissalNone {
		vacate(inn, b.Dismissal.BatsmanOut)
	}
}

func swapEnds(inn *model.Innings) {
	inn.CurrentStriker, inn.NonStriker = inn.NonStriker, inn.CurrentStriker
}

// vacate leaves the striker's end empty for the incoming batsman. When the
// non-striker is out, the survivor crosses to the non-striker's end.
func vacate(inn *model.Innings, player string) {
	switch player {
	case inn.CurrentStriker:
		inn.CurrentStriker = ""
	case inn.NonStriker:
		inn.NonStriker = inn.CurrentStriker
		inn.CurrentStriker = ""
	}
}

// fill places a new batsman at the vacant end, striker's end first.
func fill(inn *model.Innings, player string) bool {
	switch {
	case inn.CurrentStriker == "":
		inn.CurrentStriker = player
	case inn.NonStriker == "":
		inn.NonStriker = player
	default:
		return false
	}
	inn.BatterFor(player)
	return true
}
