package estimate

import (
	"fmt"
	"math"

	"github.com/ppiankov/namecrawler/internal/model"
)

// minLivingBearers is the expected number of living bearers below which no age is estimated
const minLivingBearers = 1.0

// AgeEstimate is the estimated age of a bearer of a first name
type AgeEstimate struct {
	Name          string  `json:"name" yaml:"name"`
	Age           int     `json:"age" yaml:"age"`
	PeakYear      int     `json:"peak_year" yaml:"peak_year"`
	ReferenceYear int     `json:"reference_year" yaml:"reference_year"`
	Normalized    bool    `json:"normalized" yaml:"normalized"`
	Confidence    float64 `json:"confidence,omitempty" yaml:"confidence,omitempty"` // Surviving share of all bearers (normalized only)
	Estimated     bool    `json:"estimated" yaml:"estimated"`                       // False when too few bearers are likely alive
}

// Age estimates the age of someone called name from the first-name component.
// Without normalize the age is the distance to the peak birth year. With
// normalize every birth year is weighted by the share of that cohort still
// alive, which pulls the estimate towards the living population.
func (e *Estimator) Age(name string, normalize bool) (AgeEstimate, error) {
	first := ParseName(name).First
	snap, err := e.snapshot()
	if err != nil {
		return AgeEstimate{}, err
	}

	agg, err := e.aggregate(snap, first)
	if err != nil {
		return AgeEstimate{}, err
	}

	ref := e.ReferenceYear()
	est := AgeEstimate{
		Name:          displayName(agg.Name),
		PeakYear:      agg.PeakYear,
		ReferenceYear: ref,
		Normalized:    normalize,
	}

	if !normalize {
		est.Age = ref - agg.PeakYear
		est.Estimated = true
		return est, nil
	}

	counts := snap.YearCounts(first)
	var weighted, surviving, total float64
	for _, year := range sortedYears(counts) {
		if year > ref {
			continue
		}
		age := float64(ref - year)
		count := float64(counts[year])
		w := count * e.survival.At(age)

		weighted += age * w
		surviving += w
		total += count
	}

	if total == 0 {
		return AgeEstimate{}, fmt.Errorf("first name %q has no births before %d: %w", first, ref, model.ErrNotFound)
	}

	est.Confidence = round2(surviving / total)
	if surviving < minLivingBearers {
		return est, nil
	}

	est.Age = int(math.Round(weighted / surviving))
	est.Estimated = true
	return est, nil
}
