package estimate

import (
	"github.com/ppiankov/namecrawler/internal/model"
)

// RaceEstimate is the most common race/ethnicity of bearers of a surname
type RaceEstimate struct {
	Name       string             `json:"name" yaml:"name"`
	Category   string             `json:"category" yaml:"category"`
	Percentage float64            `json:"percentage" yaml:"percentage"`
	Breakdown  map[string]float64 `json:"breakdown,omitempty" yaml:"breakdown,omitempty"`
}

// Race returns the largest Census category of the surname component.
// An unknown surname is not an error: its category is "unknown", as is that
// of a surname whose shares are all suppressed.
func (e *Estimator) Race(name string) (RaceEstimate, error) {
	last := ParseName(name).Last

	snap, err := e.snapshot()
	if err != nil {
		return RaceEstimate{}, err
	}

	r, ok := snap.LookupSurname(last)
	if !ok {
		return RaceEstimate{Name: displayName(last), Category: model.RaceUnknown}, nil
	}

	est := RaceEstimate{Name: displayName(r.Name), Category: model.RaceUnknown, Breakdown: r.Percentages()}
	// categories are visited in a fixed order so equal shares resolve the same way every time
	for _, category := range model.RaceCategories {
		pct, ok := est.Breakdown[category]
		if !ok {
			continue
		}
		if pct > est.Percentage {
			est.Category = category
			est.Percentage = pct
		}
	}

	return est, nil
}
