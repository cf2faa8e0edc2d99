package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/namecrawler/internal/estimate"
	"github.com/ppiankov/namecrawler/internal/model"
)

// Renderer writes reports and estimates in one output format
type Renderer struct {
	format string
	colors map[string]*color.Color
}

// NewRenderer creates a renderer for format (text, json, yaml or md)
func NewRenderer(format string, useColor bool) *Renderer {
	r := &Renderer{
		format: format,
		colors: map[string]*color.Color{
			"green":  color.New(color.FgGreen),
			"yellow": color.New(color.FgYellow),
			"red":    color.New(color.FgRed),
			"cyan":   color.New(color.FgCyan),
			"bold":   color.New(color.FgWhite, color.Bold),
		},
	}
	if !useColor {
		for _, c := range r.colors {
			c.DisableColor()
		}
	}
	return r
}

// Extension returns the file extension for the output format
func (r *Renderer) Extension() string {
	switch r.format {
	case "json":
		return ".json"
	case "yaml":
		return ".yaml"
	case "md":
		return ".md"
	default:
		return ".txt"
	}
}

// RenderReport writes one report
func (r *Renderer) RenderReport(w io.Writer, report *model.Report) error {
	switch r.format {
	case "json":
		return writeJSON(w, report)
	case "yaml":
		return writeYAML(w, report)
	case "md":
		return r.reportMarkdown(w, report)
	default:
		return r.reportText(w, report)
	}
}

// RenderFile writes one report to path, creating or truncating it
func (r *Renderer) RenderFile(path string, report *model.Report) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()
	return r.RenderReport(f, report)
}

// RenderEstimate writes an age, sex, race or popularity estimate
func (r *Renderer) RenderEstimate(w io.Writer, est interface{}) error {
	switch r.format {
	case "json":
		return writeJSON(w, est)
	case "yaml":
		return writeYAML(w, est)
	}

	rows, title, err := estimateRows(est)
	if err != nil {
		return err
	}

	if r.format == "md" {
		fmt.Fprintf(w, "## %s\n\n| Field | Value |\n|---|---|\n", title)
		for _, row := range rows {
			fmt.Fprintf(w, "| %s | %s |\n", row[0], escapeMarkdown(row[1]))
		}
		return nil
	}

	r.colors["bold"].Fprintln(w, title)
	for _, row := range rows {
		fmt.Fprintf(w, "  %-18s %s\n", row[0]+":", row[1])
	}
	return nil
}

func (r *Renderer) reportText(w io.Writer, report *model.Report) error {
	r.colors["bold"].Fprintf(w, "%s", report.Source)
	if report.ContentType != "" {
		fmt.Fprintf(w, " (%s)", report.ContentType)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Tokens: %d  Candidates: %d  Pairs: %d\n\n", report.TokenCount, report.CandidateCount, report.PairCount)

	if len(report.Matches) == 0 {
		fmt.Fprintln(w, "No names found.")
		return nil
	}

	fmt.Fprintf(w, "Found %d name(s):\n\n", len(report.Matches))
	width := 0
	for _, m := range report.Matches {
		if n := len([]rune(m.Name)); n > width {
			width = n
		}
	}

	for i, m := range report.Matches {
		fmt.Fprintf(w, "%3d. ", i+1)
		r.colors["cyan"].Fprintf(w, "%-*s", width, m.Name)
		fmt.Fprint(w, "  ")
		r.scoreColor(m.Score).Fprintf(w, "%.3f", m.Score)
		fmt.Fprintf(w, "  distance %d  position %d\n", m.Distance, m.Position)
		if d := m.Demographics; d != nil {
			if summary := demographicsSummary(d); summary != "" {
				fmt.Fprintf(w, "     %s\n", summary)
			}
		}
	}
	return nil
}

func (r *Renderer) scoreColor(score float64) *color.Color {
	switch {
	case score >= 0.8:
		return r.colors["green"]
	case score >= 0.6:
		return r.colors["yellow"]
	default:
		return r.colors["red"]
	}
}

func (r *Renderer) reportMarkdown(w io.Writer, report *model.Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Names in %s\n\n", escapeMarkdown(report.Source))
	fmt.Fprintf(&b, "- Scanned: %s\n", report.ScannedAt.Format("2006-01-02 15:04:05 UTC"))
	if report.ContentType != "" {
		fmt.Fprintf(&b, "- Content type: %s\n", report.ContentType)
	}
	fmt.Fprintf(&b, "- Tokens: %d, candidates: %d, pairs: %d\n", report.TokenCount, report.CandidateCount, report.PairCount)
	fmt.Fprintf(&b, "- Min score: %.2f, max distance: %d\n\n", report.Settings.MinScore, report.Settings.MaxDistance)

	if len(report.Matches) == 0 {
		b.WriteString("_No names found._\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	withDemographics := false
	for _, m := range report.Matches {
		if m.Demographics != nil {
			withDemographics = true
			break
		}
	}

	b.WriteString("| # | Name | Score | Distance | Position |")
	if withDemographics {
		b.WriteString(" Demographics |")
	}
	b.WriteString("\n|---|---|---|---|---|")
	if withDemographics {
		b.WriteString("---|")
	}
	b.WriteString("\n")

	for i, m := range report.Matches {
		fmt.Fprintf(&b, "| %d | %s | %.3f | %d | %d |", i+1, escapeMarkdown(m.Name), m.Score, m.Distance, m.Position)
		if withDemographics {
			summary := ""
			if m.Demographics != nil {
				summary = demographicsSummary(m.Demographics)
			}
			fmt.Fprintf(&b, " %s |", escapeMarkdown(summary))
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// demographicsSummary is the one-line form of the estimates attached to a match
func demographicsSummary(d *model.Demographics) string {
	var parts []string
	if d.Sex != "" {
		parts = append(parts, fmt.Sprintf("sex %s (%.2f)", d.Sex, d.SexProbability))
	}
	if d.Age > 0 {
		parts = append(parts, fmt.Sprintf("age %d", d.Age))
	}
	if d.PeakYear > 0 {
		parts = append(parts, fmt.Sprintf("peak %d", d.PeakYear))
	}
	if d.Race != "" {
		parts = append(parts, fmt.Sprintf("%s %.2f%%", d.Race, d.RacePercentage))
	}
	if d.Trend != "" {
		parts = append(parts, "trend "+d.Trend)
	}
	return strings.Join(parts, ", ")
}

func estimateRows(est interface{}) ([][2]string, string, error) {
	switch e := est.(type) {
	case estimate.AgeEstimate:
		rows := [][2]string{
			{"Peak year", fmt.Sprint(e.PeakYear)},
			{"Reference year", fmt.Sprint(e.ReferenceYear)},
			{"Normalized", fmt.Sprint(e.Normalized)},
		}
		if e.Estimated {
			rows = append([][2]string{{"Age", fmt.Sprint(e.Age)}}, rows...)
		} else {
			rows = append([][2]string{{"Age", "unknown (too few living bearers)"}}, rows...)
		}
		if e.Normalized {
			rows = append(rows, [2]string{"Confidence", fmt.Sprintf("%.2f", e.Confidence)})
		}
		return rows, "Age of " + e.Name, nil

	case estimate.SexEstimate:
		return [][2]string{
			{"Sex", string(e.Sex)},
			{"Probability", fmt.Sprintf("%.2f", e.Probability)},
			{"Male", fmt.Sprintf("%d (%.2f)", e.Male, e.MaleProbability)},
			{"Female", fmt.Sprintf("%d (%.2f)", e.Female, e.FemaleProbability)},
		}, "Sex of " + e.Name, nil

	case estimate.RaceEstimate:
		if e.Category == model.RaceUnknown {
			return [][2]string{{"Category", model.RaceUnknown}}, "Race of " + e.Name, nil
		}
		rows := [][2]string{
			{"Category", e.Category},
			{"Percentage", fmt.Sprintf("%.2f%%", e.Percentage)},
		}
		for _, category := range model.RaceCategories {
			if pct, ok := e.Breakdown[category]; ok {
				rows = append(rows, [2]string{category, fmt.Sprintf("%.2f%%", pct)})
			}
		}
		return rows, "Race of " + e.Name, nil

	case estimate.PopularityEstimate:
		rows := [][2]string{
			{"Trend", string(e.Trend)},
			{"Total", fmt.Sprint(e.Total)},
			{"Peak", fmt.Sprintf("%d (%d)", e.PeakYear, e.PeakCount)},
			{"Years", fmt.Sprintf("%d-%d", e.FirstYear, e.LastYear)},
			{"Recent rate", fmt.Sprintf("%.1f/year", e.RecentRate)},
			{"Average rate", fmt.Sprintf("%.1f/year", e.AverageRate)},
		}
		decades := make([]int, 0, len(e.Decades))
		for d := range e.Decades {
			decades = append(decades, d)
		}
		sort.Ints(decades)
		for _, d := range decades {
			rows = append(rows, [2]string{fmt.Sprintf("%ds", d), fmt.Sprint(e.Decades[d])})
		}
		return rows, "Popularity of " + e.Name, nil
	}
	return nil, "", fmt.Errorf("unsupported estimate type %T", est)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode YAML: %w", err)
	}
	return enc.Close()
}

func escapeMarkdown(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
