package model

import "strconv"

// Snapshot is a deep, immutable copy of a match handed to observers,
// persistence and readers. It shares no memory with the live aggregate.
type Snapshot = Match

// Snapshot returns a deep copy of the match.
func (m *Match) Snapshot() Snapshot {
	cp := *m
	if m.Toss != nil {
		t := *m.Toss
		cp.Toss = &t
	}
	for i := range m.Playing11 {
		cp.Playing11[i] = Roster{
			TeamID:  m.Playing11[i].TeamID,
			Players: append([]string(nil), m.Playing11[i].Players...),
		}
	}
	cp.Innings = make([]*Innings, len(m.Innings))
	for i, in := range m.Innings {
		cp.Innings[i] = in.clone()
	}
	if m.Result != nil {
		r := *m.Result
		cp.Result = &r
	}
	if m.StartedAt != nil {
		t := *m.StartedAt
		cp.StartedAt = &t
	}
	if m.CompletedAt != nil {
		t := *m.CompletedAt
		cp.CompletedAt = &t
	}
	return cp
}

// Clone returns a deep copy of the match as a new aggregate.
func (m *Match) Clone() *Match {
	s := m.Snapshot()
	return &s
}

func (in *Innings) clone() *Innings {
	cp := *in
	cp.Overs = make([]*Over, len(in.Overs))
	for i, o := range in.Overs {
		oc := *o
		oc.Balls = append([]Ball{}, o.Balls...)
		cp.Overs[i] = &oc
	}
	cp.FallOfWickets = append([]FallOfWicket{}, in.FallOfWickets...)
	cp.BattingOrder = append([]string{}, in.BattingOrder...)
	cp.BowlingOrder = append([]string{}, in.BowlingOrder...)
	cp.Batting = make(map[string]*BattingPerformance, len(in.Batting))
	for k, v := range in.Batting {
		bp := *v
		cp.Batting[k] = &bp
	}
	cp.Bowling = make(map[string]*BowlingPerformance, len(in.Bowling))
	for k, v := range in.Bowling {
		bp := *v
		cp.Bowling[k] = &bp
	}
	return &cp
}

// Summary is the compact listing shape of a match.
type Summary struct {
	ID         string    `json:"id"`
	Teams      [2]string `json:"teams"`
	Status     Status    `json:"status"`
	OversLimit int       `json:"overs_limit"`
	Score      []string  `json:"score"`
	Result     string    `json:"result,omitempty"`
}

// Summarize builds the listing view of a match.
func (m *Match) Summarize() Summary {
	s := Summary{
		ID:         m.ID,
		Teams:      m.Teams,
		Status:     m.Status,
		OversLimit: m.OversLimit,
		Score:      make([]string, 0, len(m.Innings)),
	}
	for _, in := range m.Innings {
		s.Score = append(s.Score, scoreLine(in))
	}
	if m.Result != nil {
		s.Result = m.Result.Summary
	}
	return s
}

func scoreLine(in *Innings) string {
	return in.BattingTeam + " " + strconv.Itoa(in.Runs) + "/" + strconv.Itoa(in.Wickets) + " (" + in.OversText() + ")"
}
