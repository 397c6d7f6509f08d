package model

// ExtraKind classifies the extra (if any) conceded on a ball.
type ExtraKind string

const (
	ExtraNone   ExtraKind = "none"
	ExtraWide   ExtraKind = "wide"
	ExtraNoBall ExtraKind = "no_ball"
	ExtraBye    ExtraKind = "bye"
	ExtraLegBye ExtraKind = "leg_bye"
)

// Illegal reports whether the extra makes the delivery illegal.
func (k ExtraKind) Illegal() bool {
	return k == ExtraWide || k == ExtraNoBall
}

// DismissalKind is the mode of dismissal recorded on a ball.
type DismissalKind string

const (
	DismissalNone    DismissalKind = "none"
	DismissalBowled  DismissalKind = "bowled"
	DismissalCaught  DismissalKind = "caught"
	DismissalLBW     DismissalKind = "lbw"
	DismissalStumped DismissalKind = "stumped"
	DismissalRunOut  DismissalKind = "run_out"
)

// CreditsBowler reports whether the bowler is credited with the wicket.
func (k DismissalKind) CreditsBowler() bool {
	switch k {
	case DismissalBowled, DismissalCaught, DismissalLBW, DismissalStumped:
		return true
	default:
		return false
	}
}

// End identifies one of the two batting ends.
type End string

const (
	EndStriker    End = "striker"
	EndNonStriker End = "non_striker"
)

// Boundary marks a ball that reached the rope.
type Boundary string

const (
	BoundaryNone Boundary = "none"
	BoundaryFour Boundary = "four"
	BoundarySix  Boundary = "six"
)

// ClosedReason explains why an innings ended.
type ClosedReason string

const (
	ClosedAllOut         ClosedReason = "all_out"
	ClosedOversExhausted ClosedReason = "overs_exhausted"
	ClosedTargetReached  ClosedReason = "target_reached"
	ClosedDeclared       ClosedReason = "declared"
	ClosedAbandoned      ClosedReason = "abandoned"
)

// Dismissal details of a ball; Kind is DismissalNone for most deliveries.
type Dismissal struct {
	Kind       DismissalKind `json:"kind"`
	BatsmanOut string        `json:"batsman_out,omitempty"`
	End        End           `json:"end,omitempty"`
	Fielder    string        `json:"fielder,omitempty"`
}

// Ball is one processed delivery. Balls are appended once and never mutated.
type Ball struct {
	Sequence        int       `json:"sequence"`
	EventID         string    `json:"event_id,omitempty"`
	Striker         string    `json:"striker"`
	NonStriker      string    `json:"non_striker"`
	Bowler          string    `json:"bowler"`
	RunsScored      int       `json:"runs_scored"`
	BatRuns         int       `json:"bat_runs"`
	ExtraKind       ExtraKind `json:"extra_kind"`
	ExtraRuns       int       `json:"extra_runs"`
	Boundary        Boundary  `json:"boundary"`
	Dismissal       Dismissal `json:"dismissal"`
	IsLegalDelivery bool      `json:"is_legal_delivery"`
}

// Over groups the deliveries of one bowler; it closes after six legal balls.
type Over struct {
	Number     int    `json:"over_number"`
	Bowler     string `json:"bowler"`
	Balls      []Ball `json:"balls"`
	LegalBalls int    `json:"legal_balls"`
	TotalRuns  int    `json:"total_runs"`
	Wickets    int    `json:"wickets"`
	Extras     int    `json:"extras"`
	Closed     bool   `json:"closed"`
}

// Extras tallies extras conceded in an innings, in runs.
type Extras struct {
	Wides   int `json:"wides"`
	NoBalls int `json:"no_balls"`
	Byes    int `json:"byes"`
	LegByes int `json:"leg_byes"`
	Total   int `json:"total"`
}

// FallOfWicket records the score when a batter was dismissed.
type FallOfWicket struct {
	Wicket     int           `json:"wicket"`
	Runs       int           `json:"runs_at_fall"`
	Over       int           `json:"over"`
	Ball       int           `json:"ball"`
	BatsmanOut string        `json:"batsman_out"`
	Kind       DismissalKind `json:"kind"`
}

// Innings is one side's batting turn.
type Innings struct {
	Number         int                            `json:"number"`
	BattingTeam    string                         `json:"batting_team"`
	BowlingTeam    string                         `json:"bowling_team"`
	Runs           int                            `json:"runs"`
	Wickets        int                            `json:"wickets"`
	LegalBalls     int                            `json:"legal_balls"`
	Overs          []*Over                        `json:"overs"`
	Extras         Extras                         `json:"extras"`
	FallOfWickets  []FallOfWicket                 `json:"fall_of_wickets"`
	BattingOrder   []string                       `json:"batting_order"`
	Batting        map[string]*BattingPerformance `json:"batting_performances"`
	BowlingOrder   []string                       `json:"bowling_order"`
	Bowling        map[string]*BowlingPerformance `json:"bowling_performances"`
	CurrentStriker string                         `json:"current_striker,omitempty"`
	NonStriker     string                         `json:"non_striker,omitempty"`
	CurrentBowler  string                         `json:"current_bowler,omitempty"`
	PreviousBowler string                         `json:"previous_bowler,omitempty"`
	Closed         bool                           `json:"closed"`
	ClosedReason   ClosedReason                   `json:"closed_reason,omitempty"`
}

// NewInnings opens an empty innings for battingTeam.
func NewInnings(number int, battingTeam, bowlingTeam string) *Innings {
	return &Innings{
		Number:        number,
		BattingTeam:   battingTeam,
		BowlingTeam:   bowlingTeam,
		Overs:         []*Over{},
		FallOfWickets: []FallOfWicket{},
		BattingOrder:  []string{},
		Batting:       map[string]*BattingPerformance{},
		BowlingOrder:  []string{},
		Bowling:       map[string]*BowlingPerformance{},
	}
}

// OpenOver returns the last over if it still accepts balls.
func (in *Innings) OpenOver() *Over {
	if len(in.Overs) == 0 {
		return nil
	}
	last := in.Overs[len(in.Overs)-1]
	if last.Closed {
		return nil
	}
	return last
}

// LastOver returns the most recent over, open or closed.
func (in *Innings) LastOver() *Over {
	if len(in.Overs) == 0 {
		return nil
	}
	return in.Overs[len(in.Overs)-1]
}

// BatterFor returns the batting record of player, creating it in batting
// order when it does not exist yet.
func (in *Innings) BatterFor(player string) *BattingPerformance {
	if bp, ok := in.Batting[player]; ok {
		return bp
	}
	bp := &BattingPerformance{Player: player}
	in.Batting[player] = bp
	in.BattingOrder = append(in.BattingOrder, player)
	return bp
}

// BowlerFor returns the bowling record of player, creating it on first use.
func (in *Innings) BowlerFor(player string) *BowlingPerformance {
	if bp, ok := in.Bowling[player]; ok {
		return bp
	}
	bp := &BowlingPerformance{Player: player}
	in.Bowling[player] = bp
	in.BowlingOrder = append(in.BowlingOrder, player)
	return bp
}

// AtCrease reports whether player currently occupies either end.
func (in *Innings) AtCrease(player string) bool {
	return player != "" && (in.CurrentStriker == player || in.NonStriker == player)
}

// OversText renders legal balls as cricket overs notation, e.g. "12.3".
func (in *Innings) OversText() string {
	return oversNotation(in.LegalBalls)
}
