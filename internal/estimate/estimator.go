// Package estimate derives demographic estimates from the reference tables:
// age and sex from first names, race/ethnicity from surnames, and the
// popularity trend of a first name over time.
package estimate

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ppiankov/namecrawler/internal/model"
	"github.com/ppiankov/namecrawler/internal/store"
)

var errNoSnapshot = errors.New("no reference snapshot loaded")

// Estimator answers demographic queries against the current snapshot
type Estimator struct {
	source        store.Source
	survival      *Survival
	popularity    model.PopularityConfig
	referenceYear int
	now           func() time.Time
}

// NewEstimator creates an estimator; the survival table and trend thresholds are validated up front
func NewEstimator(source store.Source, age model.AgeConfig, popularity model.PopularityConfig) (*Estimator, error) {
	survival, err := NewSurvival(age.Survival)
	if err != nil {
		return nil, err
	}
	if err := popularity.Validate(); err != nil {
		return nil, err
	}
	return &Estimator{
		source:        source,
		survival:      survival,
		popularity:    popularity,
		referenceYear: age.ReferenceYear,
		now:           time.Now,
	}, nil
}

// WithClock overrides the clock used when no reference year is configured
func (e *Estimator) WithClock(now func() time.Time) *Estimator {
	e.now = now
	return e
}

// ReferenceYear is the year ages are computed against
func (e *Estimator) ReferenceYear() int {
	if e.referenceYear > 0 {
		return e.referenceYear
	}
	return e.now().Year()
}

// snapshot takes the current snapshot once per query
func (e *Estimator) snapshot() (*store.Snapshot, error) {
	snap := e.source.Current()
	if snap == nil {
		return nil, &model.DataIntegrityError{Err: errNoSnapshot}
	}
	return snap, nil
}

func (e *Estimator) aggregate(snap *store.Snapshot, first string) (model.Aggregate, error) {
	agg, ok := snap.AggregateFirstName(first)
	if !ok || agg.Total == 0 {
		return model.Aggregate{}, fmt.Errorf("first name %q: %w", first, model.ErrNotFound)
	}
	return agg, nil
}

// sortedYears returns the years of counts in ascending order
func sortedYears(counts map[int]int64) []int {
	years := make([]int, 0, len(counts))
	for y := range counts {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// displayName title-cases table keys such as "SMITH" for output
func displayName(name string) string {
	return cases.Title(language.Und).String(name)
}
