// Package store holds the read-only reference tables: SSA first names by
// year and Census surnames with race/ethnicity percentages.
//
// A Snapshot is immutable once built. Consumers take one snapshot per query
// (see Source) so a reload never shows them a half-updated table.
package store

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/ppiankov/namecrawler/internal/model"
	"github.com/ppiankov/namecrawler/internal/validate"
)

// Source hands out the snapshot a query should run against
type Source interface {
	Current() *Snapshot
}

// Stats describes a loaded snapshot
type Stats struct {
	Source       string    `json:"source" yaml:"source"`
	LoadedAt     time.Time `json:"loaded_at" yaml:"loaded_at"`
	FirstNames   int       `json:"first_names" yaml:"first_names"`
	FirstRows    int       `json:"first_rows" yaml:"first_rows"`
	Surnames     int       `json:"surnames" yaml:"surnames"`
	MaxTotal     int64     `json:"max_total" yaml:"max_total"`
	MaxTotalName string    `json:"max_total_name" yaml:"max_total_name"`
	MaxRank      int       `json:"max_rank" yaml:"max_rank"`
	FirstYear    int       `json:"first_year" yaml:"first_year"`
	LastYear     int       `json:"last_year" yaml:"last_year"`
}

// Snapshot is an immutable, indexed copy of both reference tables
type Snapshot struct {
	first    map[string][]model.NameRecord // rows ordered by year, then sex
	totals   map[string]int64
	surnames map[string]model.SurnameRecord
	maxTotal int64
	maxRank  int
	stats    Stats
}

// Key normalizes a name for lookup: NFC, trimmed, upper case
func Key(name string) string {
	return strings.ToUpper(norm.NFC.String(strings.TrimSpace(name)))
}

// NewSnapshot builds an in-memory snapshot from raw rows
func NewSnapshot(first []model.NameRecord, surnames []model.SurnameRecord) (*Snapshot, error) {
	return Build("memory", first, surnames)
}

// Build validates and indexes raw rows; source labels errors and stats
func Build(source string, first []model.NameRecord, surnames []model.SurnameRecord) (*Snapshot, error) {
	if issues := validate.NewValidator(1).Validate(first, surnames); len(issues) > 0 {
		issue := issues[0]
		return nil, &model.DataIntegrityError{
			Source: source,
			Table:  issue.Table,
			Row:    issue.Row,
			Err:    fmt.Errorf("%s", issue.Reason),
		}
	}

	s := &Snapshot{
		first:    make(map[string][]model.NameRecord),
		totals:   make(map[string]int64),
		surnames: make(map[string]model.SurnameRecord, len(surnames)),
	}

	type rowKey struct {
		name string
		sex  model.Sex
		year int
	}
	seen := make(map[rowKey]bool, len(first))

	for _, r := range first {
		key := Key(r.Name)
		rk := rowKey{key, r.Sex, r.Year}
		if seen[rk] {
			return nil, &model.DataIntegrityError{
				Source: source,
				Table:  "first",
				Row:    fmt.Sprintf("%s/%s/%d", r.Name, r.Sex, r.Year),
				Err:    fmt.Errorf("duplicate row"),
			}
		}
		seen[rk] = true

		s.first[key] = append(s.first[key], r)
		s.totals[key] += r.Count

		if s.stats.FirstYear == 0 || r.Year < s.stats.FirstYear {
			s.stats.FirstYear = r.Year
		}
		if r.Year > s.stats.LastYear {
			s.stats.LastYear = r.Year
		}
	}

	for key, rows := range s.first {
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].Year != rows[j].Year {
				return rows[i].Year < rows[j].Year
			}
			return rows[i].Sex < rows[j].Sex
		})

		total := s.totals[key]
		if total > s.maxTotal || (total == s.maxTotal && key < Key(s.stats.MaxTotalName)) {
			s.maxTotal = total
			s.stats.MaxTotalName = rows[0].Name
		}
	}

	for _, r := range surnames {
		key := Key(r.Name)
		if _, exists := s.surnames[key]; exists {
			return nil, &model.DataIntegrityError{
				Source: source,
				Table:  "surnames",
				Row:    r.Name,
				Err:    fmt.Errorf("duplicate row"),
			}
		}
		s.surnames[key] = r
		if r.Rank > s.maxRank {
			s.maxRank = r.Rank
		}
	}

	s.stats.Source = source
	s.stats.LoadedAt = time.Now().UTC()
	s.stats.FirstNames = len(s.first)
	s.stats.FirstRows = len(first)
	s.stats.Surnames = len(s.surnames)
	s.stats.MaxTotal = s.maxTotal
	s.stats.MaxRank = s.maxRank

	return s, nil
}

// Current lets a fixed snapshot serve as a Source
func (s *Snapshot) Current() *Snapshot {
	return s
}

// Stats returns load statistics
func (s *Snapshot) Stats() Stats {
	return s.stats
}

// LookupFirstName returns every year row for name, empty if unknown
func (s *Snapshot) LookupFirstName(name string) []model.NameRecord {
	rows := s.first[Key(name)]
	if len(rows) == 0 {
		return nil
	}
	out := make([]model.NameRecord, len(rows))
	copy(out, rows)
	return out
}

// LookupSurname returns the surname row, if any
func (s *Snapshot) LookupSurname(name string) (model.SurnameRecord, bool) {
	r, ok := s.surnames[Key(name)]
	return r, ok
}

// FirstNameTotal returns the count summed over all years and both sexes
func (s *Snapshot) FirstNameTotal(name string) int64 {
	return s.totals[Key(name)]
}

// FirstNameWeight is the total count normalized against the most popular name.
// Names with no recorded births are not candidates.
func (s *Snapshot) FirstNameWeight(name string) (float64, bool) {
	total := s.totals[Key(name)]
	if total <= 0 || s.maxTotal <= 0 {
		return 0, false
	}
	return float64(total) / float64(s.maxTotal), true
}

// SurnameWeight maps rank 1 to 1.0 and the rarest surname close to 0
func (s *Snapshot) SurnameWeight(name string) (float64, bool) {
	r, ok := s.surnames[Key(name)]
	if !ok || s.maxRank <= 0 {
		return 0, false
	}
	return 1 - float64(r.Rank-1)/float64(s.maxRank), true
}

// AggregateFirstName summarizes the year rows of name with both sexes combined
func (s *Snapshot) AggregateFirstName(name string) (model.Aggregate, bool) {
	rows := s.first[Key(name)]
	if len(rows) == 0 {
		return model.Aggregate{}, false
	}

	agg := model.Aggregate{
		Name:      rows[0].Name,
		FirstYear: rows[0].Year,
		LastYear:  rows[len(rows)-1].Year,
		Decades:   make(map[int]int64),
		BySex:     make(map[model.Sex]int64),
	}

	// rows are ordered by year so a strict comparison keeps the earliest peak
	year, yearCount := rows[0].Year, int64(0)
	flush := func() {
		if yearCount > agg.PeakCount || agg.PeakYear == 0 {
			agg.PeakYear = year
			agg.PeakCount = yearCount
		}
	}

	for _, r := range rows {
		if r.Year != year {
			flush()
			year, yearCount = r.Year, 0
		}
		yearCount += r.Count
		agg.Total += r.Count
		agg.Decades[model.Decade(r.Year)] += r.Count
		agg.BySex[r.Sex] += r.Count
	}
	flush()

	return agg, true
}

// YearCounts returns births per year for name with both sexes combined
func (s *Snapshot) YearCounts(name string) map[int]int64 {
	rows := s.first[Key(name)]
	if len(rows) == 0 {
		return nil
	}
	counts := make(map[int]int64)
	for _, r := range rows {
		counts[r.Year] += r.Count
	}
	return counts
}
