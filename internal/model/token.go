package model

// Token is a single word taken from the input text
type Token struct {
	Text   string `json:"text"`   // Token text with surrounding punctuation stripped
	Offset int    `json:"offset"` // Byte offset of the token start in the input
	Index  int    `json:"index"`  // Position in the original word sequence (0-based)
}

// Candidate is a token classified against the reference tables.
// A token may be a first-name and a surname candidate at the same time.
type Candidate struct {
	Token

	IsFirstName     bool    `json:"is_first_name"`
	IsSurname       bool    `json:"is_surname"`
	FirstNameWeight float64 `json:"first_name_weight,omitempty"` // total count / max total count, in (0,1]
	SurnameWeight   float64 `json:"surname_weight,omitempty"`    // 1 - (rank-1)/max rank, in (0,1]
}

// Pair is a (first name, surname) combination found within the distance window
type Pair struct {
	First    Candidate `json:"first"`
	Last     Candidate `json:"last"`
	Distance int       `json:"distance"` // Absolute difference of token indices
	Score    float64   `json:"score"`
}

// Reversed reports whether the surname precedes the first name in the text
func (p Pair) Reversed() bool {
	return p.Last.Index < p.First.Index
}

// Key identifies the physical token pair regardless of role assignment
func (p Pair) Key() [2]int {
	if p.First.Index < p.Last.Index {
		return [2]int{p.First.Index, p.Last.Index}
	}
	return [2]int{p.Last.Index, p.First.Index}
}
