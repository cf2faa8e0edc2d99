package pipeline

import (
	"errors"

	"github.com/ppiankov/namecrawler/internal/extract"
	"github.com/ppiankov/namecrawler/internal/model"
	"github.com/ppiankov/namecrawler/internal/score"
	"github.com/ppiankov/namecrawler/internal/store"
)

// errNoSnapshot is returned when the source has nothing loaded yet
var errNoSnapshot = errors.New("no reference snapshot loaded")

// Finder locates probable personal names in plain text
type Finder struct {
	source   store.Source
	settings model.FinderSettings
	matcher  *extract.Matcher
	pairer   *score.Pairer
	scorer   *score.Scorer
}

// NewFinder creates a finder over source. Settings are validated once here.
func NewFinder(source store.Source, settings model.FinderSettings) (*Finder, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return &Finder{
		source:   source,
		settings: settings,
		matcher:  extract.NewMatcher(settings.StopWords),
		pairer:   score.NewPairer(settings.MaxDistance),
		scorer:   score.NewScorer(settings),
	}, nil
}

// Settings returns the settings the finder was built with
func (f *Finder) Settings() model.FinderSettings {
	return f.settings
}

// FindResult is a finder run with its intermediate counts
type FindResult struct {
	Tokens     int
	Candidates int
	Pairs      int
	Matches    []model.Match
}

// Find returns the ranked names found in text
func (f *Finder) Find(text string) ([]model.Match, error) {
	result, err := f.FindDetailed(text)
	if err != nil {
		return nil, err
	}
	return result.Matches, nil
}

// FindDetailed runs the finder and also reports how many tokens, candidates
// and pairs were seen along the way
func (f *Finder) FindDetailed(text string) (*FindResult, error) {
	// One snapshot for the whole call, so a concurrent reload cannot mix tables
	snap := f.source.Current()
	if snap == nil {
		return nil, &model.DataIntegrityError{Err: errNoSnapshot}
	}

	tokens := extract.Tokenize(text)
	candidates := f.matcher.Match(snap, tokens)
	pairs := f.pairer.Pair(candidates)
	ranked := f.scorer.Rank(pairs)

	matches := make([]model.Match, 0, len(ranked))
	for _, p := range ranked {
		matches = append(matches, model.MatchFromPair(p))
	}

	return &FindResult{
		Tokens:     len(tokens),
		Candidates: len(candidates),
		Pairs:      len(pairs),
		Matches:    matches,
	}, nil
}
