package validate

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/ppiankov/namecrawler/internal/model"
)

const (
	// Census percentages are rounded to two decimals; suppressed cells load as 0
	// so rows may sum below 100 but never meaningfully above it.
	maxPercentageSum = 100.5

	minYear = 1800
	maxYear = 2200
)

// Issue describes one malformed reference row
type Issue struct {
	Table  string `json:"table"`
	Row    string `json:"row"`
	Reason string `json:"reason"`
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s row %q: %s", i.Table, i.Row, i.Reason)
}

// Validator checks reference rows before they are indexed
type Validator struct {
	// MaxIssues stops collection early; 0 collects everything
	MaxIssues int
}

// NewValidator creates a validator that stops after maxIssues problems
func NewValidator(maxIssues int) *Validator {
	return &Validator{MaxIssues: maxIssues}
}

// Validate checks all rows of both tables and returns the issues found
func (v *Validator) Validate(first []model.NameRecord, surnames []model.SurnameRecord) []Issue {
	var issues []Issue

	full := func() bool {
		return v.MaxIssues > 0 && len(issues) >= v.MaxIssues
	}

	for _, r := range first {
		if full() {
			return issues
		}
		if err := NameRecord(r); err != nil {
			issues = append(issues, Issue{Table: "first", Row: r.Name, Reason: err.Error()})
		}
	}

	for _, r := range surnames {
		if full() {
			return issues
		}
		if err := SurnameRecord(r); err != nil {
			issues = append(issues, Issue{Table: "surnames", Row: r.Name, Reason: err.Error()})
		}
	}

	return issues
}

// NameRecord checks a single first-name row
func NameRecord(r model.NameRecord) error {
	if err := name(r.Name); err != nil {
		return err
	}
	if !r.Sex.Valid() {
		return fmt.Errorf("sex %q is not M or F", r.Sex)
	}
	if r.Year < minYear || r.Year > maxYear {
		return fmt.Errorf("year %d out of range", r.Year)
	}
	if r.Count < 0 {
		return fmt.Errorf("negative count %d", r.Count)
	}
	return nil
}

// SurnameRecord checks a single surname row
func SurnameRecord(r model.SurnameRecord) error {
	if err := name(r.Name); err != nil {
		return err
	}
	if r.Rank < 1 {
		return fmt.Errorf("rank %d must be at least 1", r.Rank)
	}
	if r.Count < 0 {
		return fmt.Errorf("negative count %d", r.Count)
	}

	sum := 0.0
	for category, pct := range r.Percentages() {
		if math.IsNaN(pct) || pct < 0 || pct > 100 {
			return fmt.Errorf("%s percentage %.2f outside [0,100]", category, pct)
		}
		sum += pct
	}
	if sum > maxPercentageSum {
		return fmt.Errorf("percentages sum to %.2f", sum)
	}
	return nil
}

// name rejects empty keys and keys without any letter
func name(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("empty name")
	}
	for _, r := range s {
		if unicode.IsLetter(r) {
			return nil
		}
	}
	return fmt.Errorf("name %q has no letters", s)
}
