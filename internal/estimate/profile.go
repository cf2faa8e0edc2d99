package estimate

import (
	"errors"

	"github.com/ppiankov/namecrawler/internal/model"
)

// Profile gathers every estimate for a matched first/last name pair.
// Estimates that do not apply are left empty; only unexpected errors are returned.
func (e *Estimator) Profile(first, last string, normalize bool) (*model.Demographics, error) {
	d := &model.Demographics{}

	sex, err := e.Sex(first)
	switch {
	case err == nil:
		d.Sex = sex.Sex
		d.SexProbability = round2(sex.Probability)
	case !errors.Is(err, model.ErrNotFound):
		return nil, err
	}

	age, err := e.Age(first, normalize)
	switch {
	case err == nil:
		d.PeakYear = age.PeakYear
		if age.Estimated {
			d.Age = age.Age
		}
	case !errors.Is(err, model.ErrNotFound):
		return nil, err
	}

	pop, err := e.Popularity(first)
	switch {
	case err == nil:
		d.Trend = string(pop.Trend)
	case !errors.Is(err, model.ErrNotFound):
		return nil, err
	}

	race, err := e.Race(last)
	if err != nil {
		return nil, err
	}
	if race.Category != model.RaceUnknown {
		d.Race = race.Category
		d.RacePercentage = race.Percentage
	}

	return d, nil
}
