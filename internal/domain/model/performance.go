package model

import "strconv"

// BattingPerformance aggregates one batter's innings.
type BattingPerformance struct {
	Player        string        `json:"player"`
	Runs          int           `json:"runs"`
	BallsFaced    int           `json:"balls_faced"`
	Fours         int           `json:"fours"`
	Sixes         int           `json:"sixes"`
	IsOut         bool          `json:"is_out"`
	DismissalType DismissalKind `json:"dismissal_type,omitempty"`
	Bowler        string        `json:"bowler,omitempty"`
	Fielder       string        `json:"fielder,omitempty"`
}

// StrikeRate is runs per hundred balls; zero before the first ball faced.
func (b *BattingPerformance) StrikeRate() float64 {
	if b.BallsFaced == 0 {
		return 0
	}
	return float64(b.Runs) * 100 / float64(b.BallsFaced)
}

// BowlingPerformance aggregates one bowler's figures in an innings.
type BowlingPerformance struct {
	Player       string `json:"player"`
	LegalBalls   int    `json:"legal_balls"`
	RunsConceded int    `json:"runs_conceded"`
	Wickets      int    `json:"wickets"`
	Wides        int    `json:"wides"`
	NoBalls      int    `json:"no_balls"`
	Maidens      int    `json:"maidens"`
}

// Overs renders the bowler's legal balls in overs notation.
func (b *BowlingPerformance) Overs() string {
	return oversNotation(b.LegalBalls)
}

// Economy is runs conceded per six legal balls. The second return value is
// false while no legal ball has been bowled.
func (b *BowlingPerformance) Economy() (float64, bool) {
	if b.LegalBalls == 0 {
		return 0, false
	}
	return float64(b.RunsConceded) * BallsPerOver / float64(b.LegalBalls), true
}

func oversNotation(legalBalls int) string {
	return strconv.Itoa(legalBalls/BallsPerOver) + "." + strconv.Itoa(legalBalls%BallsPerOver)
}
