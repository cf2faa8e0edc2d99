package model

import "time"

// Match is one ranked result of the name finder
type Match struct {
	Name            string  `json:"name" yaml:"name"`   // Display text ("John Smith", or "Williams, Sarah" when reversed)
	First           string  `json:"first" yaml:"first"` // First-name token as written
	Last            string  `json:"last" yaml:"last"`   // Surname token as written
	Score           float64 `json:"score" yaml:"score"`
	Distance        int     `json:"distance" yaml:"distance"`
	FirstIndex      int     `json:"first_index" yaml:"first_index"`
	LastIndex       int     `json:"last_index" yaml:"last_index"`
	FirstOffset     int     `json:"first_offset" yaml:"first_offset"`
	LastOffset      int     `json:"last_offset" yaml:"last_offset"`
	Position        int     `json:"position" yaml:"position"` // min(FirstIndex, LastIndex)
	Reversed        bool    `json:"reversed,omitempty" yaml:"reversed,omitempty"`
	FirstNameWeight float64 `json:"first_name_weight" yaml:"first_name_weight"`
	SurnameWeight   float64 `json:"surname_weight" yaml:"surname_weight"`

	Demographics *Demographics `json:"demographics,omitempty" yaml:"demographics,omitempty"`
}

// Demographics summarizes the estimates attached to a match on request
type Demographics struct {
	Sex            Sex     `json:"sex,omitempty" yaml:"sex,omitempty"`
	SexProbability float64 `json:"sex_probability,omitempty" yaml:"sex_probability,omitempty"`
	Age            int     `json:"age,omitempty" yaml:"age,omitempty"`
	PeakYear       int     `json:"peak_year,omitempty" yaml:"peak_year,omitempty"`
	Race           string  `json:"race,omitempty" yaml:"race,omitempty"`
	RacePercentage float64 `json:"race_percentage,omitempty" yaml:"race_percentage,omitempty"`
	Trend          string  `json:"trend,omitempty" yaml:"trend,omitempty"`
}

// MatchFromPair converts a scored pair into a result record
func MatchFromPair(p Pair) Match {
	name := p.First.Text + " " + p.Last.Text
	position := p.First.Index
	if p.Reversed() {
		name = p.Last.Text + ", " + p.First.Text
		position = p.Last.Index
	}

	return Match{
		Name:            name,
		First:           p.First.Text,
		Last:            p.Last.Text,
		Score:           p.Score,
		Distance:        p.Distance,
		FirstIndex:      p.First.Index,
		LastIndex:       p.Last.Index,
		FirstOffset:     p.First.Offset,
		LastOffset:      p.Last.Offset,
		Position:        position,
		Reversed:        p.Reversed(),
		FirstNameWeight: p.First.FirstNameWeight,
		SurnameWeight:   p.Last.SurnameWeight,
	}
}

// Report is the result of scanning one document
type Report struct {
	ID          string    `json:"id" yaml:"id"`
	Source      string    `json:"source" yaml:"source"` // File path, URL or "stdin"
	ContentType string    `json:"content_type,omitempty" yaml:"content_type,omitempty"`
	ScannedAt   time.Time `json:"scanned_at" yaml:"scanned_at"`

	TokenCount     int `json:"token_count" yaml:"token_count"`
	CandidateCount int `json:"candidate_count" yaml:"candidate_count"`
	PairCount      int `json:"pair_count" yaml:"pair_count"` // Pairs formed before score filtering

	Matches  []Match        `json:"matches" yaml:"matches"`
	Settings FinderSettings `json:"settings" yaml:"settings"`
}
