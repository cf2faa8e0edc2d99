package extract

import (
	"strings"

	"github.com/ppiankov/namecrawler/internal/model"
)

// Reference is the part of the reference store the matcher needs
type Reference interface {
	FirstNameWeight(name string) (float64, bool)
	SurnameWeight(name string) (float64, bool)
}

// Matcher classifies tokens as first-name and/or surname candidates
type Matcher struct {
	stopWords map[string]bool
}

// NewMatcher creates a matcher that ignores the given stop words (case-insensitive)
func NewMatcher(stopWords []string) *Matcher {
	m := &Matcher{stopWords: make(map[string]bool, len(stopWords))}
	for _, w := range stopWords {
		m.stopWords[strings.ToLower(strings.TrimSpace(w))] = true
	}
	return m
}

// IsStopWord reports whether the token text is ignored
func (m *Matcher) IsStopWord(text string) bool {
	return m.stopWords[strings.ToLower(text)]
}

// Match looks every token up in both tables. A token found in neither is
// dropped; a token found in both stays a candidate for either role.
func (m *Matcher) Match(ref Reference, tokens []model.Token) []model.Candidate {
	var candidates []model.Candidate

	for _, tok := range tokens {
		if m.IsStopWord(tok.Text) {
			continue
		}

		c := model.Candidate{Token: tok}
		c.FirstNameWeight, c.IsFirstName = ref.FirstNameWeight(tok.Text)
		c.SurnameWeight, c.IsSurname = ref.SurnameWeight(tok.Text)

		if c.IsFirstName || c.IsSurname {
			candidates = append(candidates, c)
		}
	}

	return candidates
}
