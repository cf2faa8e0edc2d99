package estimate

import (
	"github.com/ppiankov/namecrawler/internal/model"
)

// Trend classifies how the use of a name developed
type Trend string

const (
	TrendRising   Trend = "rising"
	TrendFalling  Trend = "falling"
	TrendStable   Trend = "stable"
	TrendHistoric Trend = "historic"
)

// PopularityEstimate is the yearly history of a first name with its trend
type PopularityEstimate struct {
	model.Aggregate `yaml:",inline"`
	Trend           Trend   `json:"trend" yaml:"trend"`
	RecentRate      float64 `json:"recent_rate" yaml:"recent_rate"`   // Births per year in the last recorded decade
	AverageRate     float64 `json:"average_rate" yaml:"average_rate"` // Births per year over the whole record
}

// Popularity aggregates the first-name component and classifies its trend
func (e *Estimator) Popularity(name string) (PopularityEstimate, error) {
	first := ParseName(name).First

	snap, err := e.snapshot()
	if err != nil {
		return PopularityEstimate{}, err
	}
	agg, err := e.aggregate(snap, first)
	if err != nil {
		return PopularityEstimate{}, err
	}
	agg.Name = displayName(agg.Name)

	est := PopularityEstimate{Aggregate: agg}
	est.Trend, est.RecentRate, est.AverageRate = e.classify(agg)
	return est, nil
}

// classify compares the last decade against the whole record. A name whose
// peak lies many decades back and whose recent use is a small fraction of
// that peak is historic regardless of the rates.
func (e *Estimator) classify(agg model.Aggregate) (Trend, float64, float64) {
	lastDecade := model.Decade(agg.LastYear)
	peakDecade := model.Decade(agg.PeakYear)

	start := lastDecade
	if agg.FirstYear > start {
		start = agg.FirstYear
	}
	recent := float64(agg.Decades[lastDecade]) / float64(agg.LastYear-start+1)
	average := float64(agg.Total) / float64(agg.LastYear-agg.FirstYear+1)

	cfg := e.popularity
	decadesSincePeak := (lastDecade - peakDecade) / 10
	if decadesSincePeak > cfg.HistoricDecades &&
		float64(agg.Decades[lastDecade]) < cfg.HistoricRecentRatio*float64(agg.Decades[peakDecade]) {
		return TrendHistoric, recent, average
	}

	switch {
	case average > 0 && recent >= cfg.RisingRatio*average:
		return TrendRising, recent, average
	case recent <= cfg.FallingRatio*average:
		return TrendFalling, recent, average
	default:
		return TrendStable, recent, average
	}
}
