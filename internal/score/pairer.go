// Package score pairs name candidates and ranks the pairs.
package score

import (
	"sort"

	"github.com/ppiankov/namecrawler/internal/model"
)

// Pairer combines first-name and surname candidates that sit close together
type Pairer struct {
	maxDistance int
}

// NewPairer creates a pairer accepting surnames up to maxDistance tokens away in either direction
func NewPairer(maxDistance int) *Pairer {
	return &Pairer{maxDistance: maxDistance}
}

// Pair forms one pair for every first-name candidate and every other surname
// candidate within the window. Roles are not exclusive: an ambiguous token
// may appear as the first name of one pair and the surname of another.
func (p *Pairer) Pair(candidates []model.Candidate) []model.Pair {
	sorted := candidates
	if !sort.SliceIsSorted(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index }) {
		sorted = append([]model.Candidate(nil), candidates...)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })
	}

	var pairs []model.Pair
	for i, first := range sorted {
		if !first.IsFirstName {
			continue
		}

		for j := i - 1; j >= 0 && first.Index-sorted[j].Index <= p.maxDistance; j-- {
			pairs = p.appendPair(pairs, first, sorted[j])
		}
		for j := i + 1; j < len(sorted) && sorted[j].Index-first.Index <= p.maxDistance; j++ {
			pairs = p.appendPair(pairs, first, sorted[j])
		}
	}

	return pairs
}

func (p *Pairer) appendPair(pairs []model.Pair, first, last model.Candidate) []model.Pair {
	if !last.IsSurname || last.Index == first.Index {
		return pairs
	}
	distance := last.Index - first.Index
	if distance < 0 {
		distance = -distance
	}
	return append(pairs, model.Pair{First: first, Last: last, Distance: distance})
}
