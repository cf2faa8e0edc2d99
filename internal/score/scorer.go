package score

import (
	"sort"
	"strings"

	"github.com/ppiankov/namecrawler/internal/model"
)

// Scorer weighs pairs by popularity and proximity and ranks them
type Scorer struct {
	settings model.FinderSettings
}

// NewScorer creates a new scorer
func NewScorer(settings model.FinderSettings) *Scorer {
	return &Scorer{settings: settings}
}

// Proximity is 1.0 for adjacent tokens and decays with every token in between
func Proximity(distance int) float64 {
	gap := distance - 1
	if gap < 0 {
		gap = 0
	}
	return 1 / (1 + float64(gap))
}

// Score combines the popularity product and the proximity of a pair
func (s *Scorer) Score(p model.Pair) float64 {
	popularity := p.First.FirstNameWeight * p.Last.SurnameWeight
	return s.settings.PopularityWeight*popularity + s.settings.ProximityWeight*Proximity(p.Distance)
}

// Rank scores every pair and returns the ones reaching the minimum score:
//  1. score each pair
//  2. drop pairs below min_score
//  3. collapse pairs over the same two tokens, keeping the best role assignment
//  4. sort by score desc, distance asc, first-name position asc, surname position asc
//  5. with unique names, keep only the best pair per (first, last) text
func (s *Scorer) Rank(pairs []model.Pair) []model.Pair {
	best := make(map[[2]int]model.Pair, len(pairs))
	for _, p := range pairs {
		p.Score = s.Score(p)
		if p.Score < s.settings.MinScore {
			continue
		}

		key := p.Key()
		cur, seen := best[key]
		if !seen || p.Score > cur.Score || (p.Score == cur.Score && cur.Reversed() && !p.Reversed()) {
			best[key] = p
		}
	}

	ranked := make([]model.Pair, 0, len(best))
	for _, p := range best {
		ranked = append(ranked, p)
	}

	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Distance != b.Distance {
			return a.Distance < b.Distance
		}
		if a.First.Index != b.First.Index {
			return a.First.Index < b.First.Index
		}
		return a.Last.Index < b.Last.Index
	})

	if s.settings.UniqueNames {
		ranked = uniqueByName(ranked)
	}

	return ranked
}

// uniqueByName keeps the first (best ranked) pair of every first/last spelling
func uniqueByName(ranked []model.Pair) []model.Pair {
	seen := make(map[[2]string]bool, len(ranked))
	out := ranked[:0]
	for _, p := range ranked {
		key := [2]string{strings.ToUpper(p.First.Text), strings.ToUpper(p.Last.Text)}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}
