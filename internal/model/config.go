package model

import (
	"math"
	"sort"
	"time"
)

// Config holds every tunable of namecrawler
type Config struct {
	Store        StoreConfig        `yaml:"store" mapstructure:"store"`
	Finder       FinderSettings     `yaml:"finder" mapstructure:"finder"`
	Age          AgeConfig          `yaml:"age" mapstructure:"age"`
	Popularity   PopularityConfig   `yaml:"popularity" mapstructure:"popularity"`
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
}

// StoreConfig locates the reference database
type StoreConfig struct {
	Path  string `yaml:"path" mapstructure:"path"`   // SQLite file with the first and surnames tables
	Watch bool   `yaml:"watch" mapstructure:"watch"` // Reload the snapshot when the file changes
}

// FinderSettings tunes tokenizing, pairing and scoring
type FinderSettings struct {
	MinScore         float64  `json:"min_score" yaml:"min_score" mapstructure:"min_score"`
	MaxDistance      int      `json:"max_distance" yaml:"max_distance" mapstructure:"max_distance"`
	PopularityWeight float64  `json:"popularity_weight" yaml:"popularity_weight" mapstructure:"popularity_weight"`
	ProximityWeight  float64  `json:"proximity_weight" yaml:"proximity_weight" mapstructure:"proximity_weight"`
	UniqueNames      bool     `json:"unique_names,omitempty" yaml:"unique_names" mapstructure:"unique_names"`
	StopWords        []string `json:"-" yaml:"stop_words" mapstructure:"stop_words"`
}

// SurvivalPoint is the share of a birth cohort still alive at Age
type SurvivalPoint struct {
	Age         int     `yaml:"age" mapstructure:"age"`
	Probability float64 `yaml:"probability" mapstructure:"probability"`
}

// AgeConfig tunes the age estimator
type AgeConfig struct {
	Normalize     bool            `yaml:"normalize" mapstructure:"normalize"`
	ReferenceYear int             `yaml:"reference_year" mapstructure:"reference_year"` // 0 = current year
	Survival      []SurvivalPoint `yaml:"survival" mapstructure:"survival"`
}

// PopularityConfig holds the trend classification thresholds
type PopularityConfig struct {
	RisingRatio         float64 `yaml:"rising_ratio" mapstructure:"rising_ratio"`
	FallingRatio        float64 `yaml:"falling_ratio" mapstructure:"falling_ratio"`
	HistoricDecades     int     `yaml:"historic_decades" mapstructure:"historic_decades"`
	HistoricRecentRatio float64 `yaml:"historic_recent_ratio" mapstructure:"historic_recent_ratio"`
}

// HTTPConfig configures URL sources
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CacheConfig configures the fetched-document cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig configures batch processing
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitingConfig limits requests per host for URL sources
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Format       string `yaml:"format" mapstructure:"format"` // text, json, yaml, md
	Color        bool   `yaml:"color" mapstructure:"color"`
	Verbose      bool   `yaml:"verbose" mapstructure:"verbose"`
	Demographics bool   `yaml:"demographics" mapstructure:"demographics"` // Attach estimates to each match
}

// DefaultStopWords are common words that coincide with entries of the name tables
var DefaultStopWords = []string{
	"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for",
	"of", "with", "by", "from", "as", "is", "was", "are", "were", "been",
	"be", "have", "has", "had", "do", "does", "did", "will", "would",
	"could", "should", "may", "might", "must", "shall", "can", "need",
	"it", "its", "this", "that", "these", "those", "i", "you", "he", "she",
	"we", "they", "who", "which", "what", "where", "when", "why", "how",
	"all", "each", "every", "both", "few", "more", "most", "other", "some",
	"such", "no", "nor", "not", "only", "own", "same", "so", "than", "too",
	"very", "just", "also", "now", "here", "there", "then", "once", "any",
	"if", "into", "out", "up", "down", "about", "over", "under", "again",
	"further", "after", "before", "during", "while", "because", "through",
	"between", "real", "new", "old", "like", "words", "random", "names",
}

// DefaultSurvival is the SSA 2022 period life table, male and female averaged
func DefaultSurvival() []SurvivalPoint {
	return []SurvivalPoint{
		{0, 1.0000}, {1, 0.9944}, {2, 0.9940}, {3, 0.9937}, {4, 0.9935},
		{5, 0.9933}, {10, 0.9927}, {15, 0.9918}, {20, 0.9890}, {25, 0.9839},
		{30, 0.9770}, {35, 0.9681}, {40, 0.9573}, {45, 0.9439}, {50, 0.9266},
		{55, 0.9025}, {60, 0.8675}, {65, 0.8182}, {70, 0.7537}, {75, 0.6679},
		{80, 0.5491}, {85, 0.3951}, {90, 0.2217}, {95, 0.0801}, {100, 0.0196},
		{105, 0.0011}, {110, 0.0000}, {115, 0.0000}, {119, 0.0000},
	}
}

// DefaultFinderSettings returns the finder defaults
func DefaultFinderSettings() FinderSettings {
	return FinderSettings{
		MinScore:         0.5,
		MaxDistance:      5,
		PopularityWeight: 0.5,
		ProximityWeight:  0.5,
		StopWords:        append([]string(nil), DefaultStopWords...),
	}
}

// DefaultPopularityConfig returns the trend thresholds
func DefaultPopularityConfig() PopularityConfig {
	return PopularityConfig{
		RisingRatio:         1.5,
		FallingRatio:        0.5,
		HistoricDecades:     4,
		HistoricRecentRatio: 0.1,
	}
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Path: "names.sqlite",
		},
		Finder: DefaultFinderSettings(),
		Age: AgeConfig{
			Survival: DefaultSurvival(),
		},
		Popularity: DefaultPopularityConfig(),
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "namecrawler/0.1 (+https://github.com/ppiankov/namecrawler)",
			MaxBodyBytes:  5_000_000,
			RespectRobots: true,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".namecrawler-cache",
			MemoryTTL: 10 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         5,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// Validate checks the finder tunables
func (s FinderSettings) Validate() error {
	if s.MaxDistance < 0 {
		return &ConfigError{Field: "finder.max_distance", Value: s.MaxDistance, Reason: "must not be negative"}
	}
	if math.IsNaN(s.MinScore) || s.MinScore < 0 || s.MinScore > 1 {
		return &ConfigError{Field: "finder.min_score", Value: s.MinScore, Reason: "must be within [0,1]"}
	}
	if math.IsNaN(s.PopularityWeight) || s.PopularityWeight < 0 {
		return &ConfigError{Field: "finder.popularity_weight", Value: s.PopularityWeight, Reason: "must not be negative"}
	}
	if math.IsNaN(s.ProximityWeight) || s.ProximityWeight < 0 {
		return &ConfigError{Field: "finder.proximity_weight", Value: s.ProximityWeight, Reason: "must not be negative"}
	}
	if s.PopularityWeight+s.ProximityWeight > 1+1e-9 {
		return &ConfigError{Field: "finder.popularity_weight+proximity_weight", Value: s.PopularityWeight + s.ProximityWeight, Reason: "must not exceed 1 so scores stay within [0,1]"}
	}
	return nil
}

// ValidateSurvival checks that a survival table is usable for interpolation
func ValidateSurvival(points []SurvivalPoint) error {
	if len(points) < 2 {
		return &ConfigError{Field: "age.survival", Value: len(points), Reason: "needs at least two points"}
	}

	sorted := append([]SurvivalPoint(nil), points...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Age < sorted[j].Age })

	if sorted[0].Age != 0 {
		return &ConfigError{Field: "age.survival", Value: sorted[0].Age, Reason: "first point must be age 0"}
	}
	for i, p := range sorted {
		if math.IsNaN(p.Probability) || p.Probability < 0 || p.Probability > 1 {
			return &ConfigError{Field: "age.survival", Value: p.Probability, Reason: "probability must be within [0,1]"}
		}
		if i == 0 {
			continue
		}
		prev := sorted[i-1]
		if p.Age == prev.Age {
			return &ConfigError{Field: "age.survival", Value: p.Age, Reason: "duplicate age"}
		}
		if p.Probability > prev.Probability {
			return &ConfigError{Field: "age.survival", Value: p.Age, Reason: "probability must not increase with age"}
		}
	}
	return nil
}

// Validate checks the popularity thresholds
func (p PopularityConfig) Validate() error {
	if p.RisingRatio <= 0 {
		return &ConfigError{Field: "popularity.rising_ratio", Value: p.RisingRatio, Reason: "must be positive"}
	}
	if p.FallingRatio < 0 || p.FallingRatio >= p.RisingRatio {
		return &ConfigError{Field: "popularity.falling_ratio", Value: p.FallingRatio, Reason: "must be within [0, rising_ratio)"}
	}
	if p.HistoricDecades < 0 {
		return &ConfigError{Field: "popularity.historic_decades", Value: p.HistoricDecades, Reason: "must not be negative"}
	}
	if p.HistoricRecentRatio < 0 || p.HistoricRecentRatio > 1 {
		return &ConfigError{Field: "popularity.historic_recent_ratio", Value: p.HistoricRecentRatio, Reason: "must be within [0,1]"}
	}
	return nil
}

// Validate checks the whole configuration before any processing starts
func (c *Config) Validate() error {
	if err := c.Finder.Validate(); err != nil {
		return err
	}
	if err := ValidateSurvival(c.Age.Survival); err != nil {
		return err
	}
	if c.Age.ReferenceYear < 0 {
		return &ConfigError{Field: "age.reference_year", Value: c.Age.ReferenceYear, Reason: "must not be negative"}
	}
	if err := c.Popularity.Validate(); err != nil {
		return err
	}
	switch c.Output.Format {
	case "text", "json", "yaml", "md":
	default:
		return &ConfigError{Field: "output.format", Value: c.Output.Format, Reason: "must be one of text, json, yaml, md"}
	}
	if c.Concurrency.Workers < 0 {
		return &ConfigError{Field: "concurrency.workers", Value: c.Concurrency.Workers, Reason: "must not be negative"}
	}
	return nil
}
