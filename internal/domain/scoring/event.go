package scoring

import (
	"strconv"
	"strings"

	"github.com/okian/crease/internal/domain/model"
)

// Bounds on amounts carried by event tags.
const (
	maxExtraRuns   = 7
	maxRunningRuns = 6
)

// BallInput is the raw ball event as submitted by a scorer.
type BallInput struct {
	EventID string `json:"event_id"`
	// Tag is the event tag, e.g. "4", "wide:1", "caught", "runOut".
	Tag string `json:"event"`

	// Optional context used to detect a scorer working from stale state.
	Striker string `json:"striker,omitempty"`
	Bowler  string `json:"bowler,omitempty"`
	Over    int    `json:"over,omitempty"`

	Fielder      string `json:"fielder,omitempty"`
	DismissedEnd string `json:"dismissed_end,omitempty"`
	RunOutRuns   int    `json:"run_out_runs,omitempty"`
	// BatRuns are runs off the bat on a no-ball.
	BatRuns int `json:"bat_runs,omitempty"`
}

// Event is the closed set of validated ball events.
type Event interface {
	// Legal reports whether the delivery counts toward the six-ball over.
	Legal() bool
	// Total is the number of runs the event adds to the innings.
	Total() int
	isEvent()
}

// RunsEvent is a legal delivery with runs off the bat (0 for a dot ball).
type RunsEvent struct {
	Runs int
}

// ExtraEvent is a bye, leg-bye, wide or no-ball.
type ExtraEvent struct {
	Kind    model.ExtraKind
	Runs    int
	BatRuns int
}

// DismissalEvent is a wicket. Runs are completed before a run out.
type DismissalEvent struct {
	Kind    model.DismissalKind
	Fielder string
	End     model.End
	Runs    int
}

func (RunsEvent) Legal() bool  { return true }
func (e RunsEvent) Total() int { return e.Runs }
func (RunsEvent) isEvent()     {}

func (e ExtraEvent) Legal() bool { return !e.Kind.Illegal() }
func (e ExtraEvent) Total() int  { return e.Runs + e.BatRuns }
func (ExtraEvent) isEvent()      {}

func (DismissalEvent) Legal() bool  { return true }
func (e DismissalEvent) Total() int { return e.Runs }
func (DismissalEvent) isEvent()     {}

// Boundary reports the boundary reached by the runs, if any.
func (e RunsEvent) Boundary() model.Boundary {
	return boundaryOf(e.Runs)
}

func boundaryOf(runs int) model.Boundary {
	switch runs {
	case 4:
		return model.BoundaryFour
	case 6:
		return model.BoundarySix
	default:
		return model.BoundaryNone
	}
}

// RunsRun is the number of runs physically run between the wickets on a
// legal delivery; boundaries are not run.
func RunsRun(ev Event) int {
	switch e := ev.(type) {
	case RunsEvent:
		if e.Boundary() != model.BoundaryNone {
			return 0
		}
		return e.Runs
	case ExtraEvent:
		if e.Kind == model.ExtraBye || e.Kind == model.ExtraLegBye {
			return e.Runs
		}
	}
	return 0
}

var extraAliases = map[string]model.ExtraKind{
	"bye":     model.ExtraBye,
	"b":       model.ExtraBye,
	"legbye":  model.ExtraLegBye,
	"leg_bye": model.ExtraLegBye,
	"lb":      model.ExtraLegBye,
	"wide":    model.ExtraWide,
	"wd":      model.ExtraWide,
	"noball":  model.ExtraNoBall,
	"no_ball": model.ExtraNoBall,
	"nb":      model.ExtraNoBall,
}

var dismissalAliases = map[string]model.DismissalKind{
	"bowled":  model.DismissalBowled,
	"caught":  model.DismissalCaught,
	"lbw":     model.DismissalLBW,
	"stumped": model.DismissalStumped,
	"runout":  model.DismissalRunOut,
	"run_out": model.DismissalRunOut,
}

// Parse classifies a raw ball event into a typed variant. It checks the
// shape of the input only; rules that depend on match state are enforced
// by the engine.
func Parse(in BallInput) (Event, error) {
	const op = "scoring.parse"
	tag := strings.ToLower(strings.TrimSpace(in.Tag))
	if tag == "" {
		return nil, newError(KindUnrecognizedEvent, op, "event", "missing event tag")
	}

	if n, err := strconv.Atoi(tag); err == nil {
		switch n {
		case 0, 1, 2, 3, 4, 6:
			return RunsEvent{Runs: n}, nil
		default:
			return nil, newError(KindUnrecognizedEvent, op, "event", "unsupported run value "+tag)
		}
	}

	if name, amount, ok := strings.Cut(tag, ":"); ok {
		kind, known := extraAliases[name]
		if !known {
			return nil, newError(KindUnrecognizedEvent, op, "event", "unknown extra "+name)
		}
		n, err := strconv.Atoi(amount)
		if err != nil || n < 1 || n > maxExtraRuns {
			return nil, newError(KindUnrecognizedEvent, op, "event", "extra runs must be 1-7")
		}
		ev := ExtraEvent{Kind: kind, Runs: n}
		if in.BatRuns != 0 {
			if kind != model.ExtraNoBall {
				return nil, newError(KindUnrecognizedEvent, op, "bat_runs", "bat runs only apply to a no-ball")
			}
			if in.BatRuns < 0 || in.BatRuns > maxRunningRuns || in.BatRuns == 5 {
				return nil, newError(KindUnrecognizedEvent, op, "bat_runs", "unsupported bat runs")
			}
			ev.BatRuns = in.BatRuns
		}
		return ev, nil
	}

	kind, known := dismissalAliases[tag]
	if !known {
		return nil, newError(KindUnrecognizedEvent, op, "event", "unknown event "+in.Tag)
	}
	ev := DismissalEvent{Kind: kind, Fielder: strings.TrimSpace(in.Fielder), End: model.EndStriker}
	switch kind {
	case model.DismissalCaught, model.DismissalStumped:
		if ev.Fielder == "" {
			return nil, newError(KindUnrecognizedEvent, op, "fielder", string(kind)+" requires a fielder")
		}
	case model.DismissalRunOut:
		end, err := parseEnd(in.DismissedEnd)
		if err != nil {
			return nil, err
		}
		if in.RunOutRuns < 0 || in.RunOutRuns > maxRunningRuns {
			return nil, newError(KindUnrecognizedEvent, op, "run_out_runs", "run out runs must be 0-6")
		}
		ev.End = end
		ev.Runs = in.RunOutRuns
	default:
		// Bowled and lbw need no fielder; ignore one if sent.
		ev.Fielder = ""
	}
	return ev, nil
}

func parseEnd(s string) (model.End, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "striker":
		return model.EndStriker, nil
	case "non_striker", "non-striker", "nonstriker":
		return model.EndNonStriker, nil
	case "":
		return "", newError(KindUnrecognizedEvent, "scoring.parse", "dismissed_end", "run out requires the dismissed end")
	default:
		return "", newError(KindUnrecognizedEvent, "scoring.parse", "dismissed_end", "unknown end "+s)
	}
}
