package estimate

import (
	"sort"

	"github.com/ppiankov/namecrawler/internal/model"
)

// Survival interpolates the probability of being alive at a given age
type Survival struct {
	points []model.SurvivalPoint
}

// NewSurvival validates and sorts a survival table
func NewSurvival(points []model.SurvivalPoint) (*Survival, error) {
	if err := model.ValidateSurvival(points); err != nil {
		return nil, err
	}
	sorted := append([]model.SurvivalPoint(nil), points...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Age < sorted[j].Age })
	return &Survival{points: sorted}, nil
}

// At returns the survival probability at age, linearly interpolated.
// Ages past the table keep its last probability.
func (s *Survival) At(age float64) float64 {
	if age <= 0 {
		return 1
	}

	last := s.points[len(s.points)-1]
	if age >= float64(last.Age) {
		return last.Probability
	}

	i := sort.Search(len(s.points), func(i int) bool { return float64(s.points[i].Age) >= age })
	cur := s.points[i]
	if float64(cur.Age) == age {
		return cur.Probability
	}

	prev := s.points[i-1]
	ratio := (age - float64(prev.Age)) / float64(cur.Age-prev.Age)
	return prev.Probability - (prev.Probability-cur.Probability)*ratio
}
