package model

// Sex is the sex category used by the first-name table
type Sex string

const (
	SexMale   Sex = "M"
	SexFemale Sex = "F"
)

// Valid reports whether s is one of the two recorded categories
func (s Sex) Valid() bool {
	return s == SexMale || s == SexFemale
}

// NameRecord is one row of the first-name table: births per (name, sex, year)
type NameRecord struct {
	Name  string `json:"name"`
	Sex   Sex    `json:"sex"`
	Year  int    `json:"year"`
	Count int64  `json:"count"`
}

// SurnameRecord is one row of the surname table
type SurnameRecord struct {
	Name         string  `json:"name"`
	Rank         int     `json:"rank"`
	Count        int64   `json:"count"`
	PctWhite     float64 `json:"pct_white"`
	PctBlack     float64 `json:"pct_black"`
	PctAPI       float64 `json:"pct_api"`
	PctAIAN      float64 `json:"pct_aian"`
	PctTwoOrMore float64 `json:"pct_two_or_more"`
	PctHispanic  float64 `json:"pct_hispanic"`
}

// Race categories reported by the surname table
const (
	RaceWhite     = "White"
	RaceBlack     = "Black"
	RaceAPI       = "Asian/Pacific Islander"
	RaceAIAN      = "American Indian / Alaskan Native"
	RaceTwoOrMore = "Two or More Races"
	RaceHispanic  = "Hispanic"
	RaceUnknown   = "unknown"
)

// RaceCategories lists the categories in table column order
var RaceCategories = []string{RaceWhite, RaceBlack, RaceAPI, RaceAIAN, RaceTwoOrMore, RaceHispanic}

// Percentages returns the category breakdown keyed by category name
func (r SurnameRecord) Percentages() map[string]float64 {
	return map[string]float64{
		RaceWhite:     r.PctWhite,
		RaceBlack:     r.PctBlack,
		RaceAPI:       r.PctAPI,
		RaceAIAN:      r.PctAIAN,
		RaceTwoOrMore: r.PctTwoOrMore,
		RaceHispanic:  r.PctHispanic,
	}
}

// Aggregate summarizes all year rows of one first name, both sexes combined
type Aggregate struct {
	Name      string        `json:"name" yaml:"name"`
	Total     int64         `json:"total" yaml:"total"`
	PeakYear  int           `json:"peak_year" yaml:"peak_year"`
	PeakCount int64         `json:"peak_count" yaml:"peak_count"`
	FirstYear int           `json:"first_year" yaml:"first_year"`
	LastYear  int           `json:"last_year" yaml:"last_year"`
	Decades   map[int]int64 `json:"decades" yaml:"decades"`
	BySex     map[Sex]int64 `json:"by_sex" yaml:"by_sex"`
}

// Decade returns the decade a year falls into (1987 -> 1980)
func Decade(year int) int {
	return year - year%10
}
