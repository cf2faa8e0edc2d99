package estimate

import (
	"fmt"

	"github.com/ppiankov/namecrawler/internal/model"
)

// SexEstimate is the likely sex of a bearer of a first name
type SexEstimate struct {
	Name              string    `json:"name" yaml:"name"`
	Sex               model.Sex `json:"sex" yaml:"sex"`
	Probability       float64   `json:"probability" yaml:"probability"` // Share of the winning sex, [0.5,1]
	Male              int64     `json:"male" yaml:"male"`
	Female            int64     `json:"female" yaml:"female"`
	MaleProbability   float64   `json:"male_probability" yaml:"male_probability"`
	FemaleProbability float64   `json:"female_probability" yaml:"female_probability"`
}

// Sex returns the majority sex of the first-name component; a tie goes to F
func (e *Estimator) Sex(name string) (SexEstimate, error) {
	first := ParseName(name).First

	snap, err := e.snapshot()
	if err != nil {
		return SexEstimate{}, err
	}
	agg, err := e.aggregate(snap, first)
	if err != nil {
		return SexEstimate{}, err
	}

	male, female := agg.BySex[model.SexMale], agg.BySex[model.SexFemale]
	total := male + female
	if total == 0 {
		return SexEstimate{}, fmt.Errorf("first name %q: %w", first, model.ErrNotFound)
	}

	est := SexEstimate{
		Name:              displayName(agg.Name),
		Male:              male,
		Female:            female,
		MaleProbability:   float64(male) / float64(total),
		FemaleProbability: float64(female) / float64(total),
	}

	if male > female {
		est.Sex = model.SexMale
		est.Probability = est.MaleProbability
	} else {
		est.Sex = model.SexFemale
		est.Probability = est.FemaleProbability
	}

	return est, nil
}
