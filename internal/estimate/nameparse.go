package estimate

import (
	"strings"
)

// NameParts is a full name split into its components
type NameParts struct {
	Full   string `json:"full" yaml:"full"`
	Title  string `json:"title,omitempty" yaml:"title,omitempty"`
	First  string `json:"first" yaml:"first"`
	Middle string `json:"middle,omitempty" yaml:"middle,omitempty"`
	Last   string `json:"last" yaml:"last"`
	Suffix string `json:"suffix,omitempty" yaml:"suffix,omitempty"`
}

var titles = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "miss": true, "mx": true, "dr": true,
	"prof": true, "professor": true, "rev": true, "fr": true, "sir": true,
	"dame": true, "lady": true, "lord": true, "hon": true, "judge": true,
	"capt": true, "col": true, "gen": true, "lt": true, "sgt": true, "maj": true,
}

var suffixes = map[string]bool{
	"jr": true, "sr": true, "ii": true, "iii": true, "iv": true, "v": true,
	"phd": true, "md": true, "esq": true, "dds": true, "cpa": true, "rn": true,
}

func normalizeAffix(token string) string {
	return strings.ToLower(strings.ReplaceAll(strings.Trim(token, ".,"), ".", ""))
}

func isTitle(token string) bool {
	return titles[normalizeAffix(token)]
}

func isSuffix(token string) bool {
	return suffixes[normalizeAffix(token)]
}

// ParseName splits a full name into title, first, middle, last and suffix.
// "Last, First Middle" order is recognized. A lone token is used as both the
// first and the last component so it can be looked up in either table.
func ParseName(s string) NameParts {
	parts := NameParts{Full: strings.TrimSpace(s)}
	text := parts.Full

	before, after, hasComma := strings.Cut(text, ",")
	if hasComma {
		afterTokens := strings.Fields(after)
		if allSuffixes(afterTokens) {
			// "John Smith, Jr."
			parts.Suffix = joinAffixes(afterTokens)
			hasComma = false
			text = before
		}
	}

	if hasComma {
		lastTokens := stripSuffixes(strings.Fields(before), &parts)
		rest := stripSuffixes(stripTitles(strings.Fields(after), &parts), &parts)
		parts.Last = strings.Join(lastTokens, " ")
		if len(rest) > 0 {
			parts.First = rest[0]
			parts.Middle = strings.Join(rest[1:], " ")
		}
	} else {
		tokens := stripSuffixes(stripTitles(strings.Fields(text), &parts), &parts)
		switch len(tokens) {
		case 0:
		case 1:
			parts.First = tokens[0]
			parts.Last = tokens[0]
		default:
			parts.First = tokens[0]
			parts.Middle = strings.Join(tokens[1:len(tokens)-1], " ")
			parts.Last = tokens[len(tokens)-1]
		}
	}

	if parts.First == "" {
		parts.First = parts.Last
	}
	if parts.Last == "" {
		parts.Last = parts.First
	}

	parts.First = strings.Trim(parts.First, ".,")
	parts.Last = strings.Trim(parts.Last, ".,")
	return parts
}

func allSuffixes(tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	for _, t := range tokens {
		if !isSuffix(t) {
			return false
		}
	}
	return true
}

func joinAffixes(tokens []string) string {
	cleaned := make([]string, len(tokens))
	for i, t := range tokens {
		cleaned[i] = strings.Trim(t, ",")
	}
	return strings.Join(cleaned, " ")
}

// stripTitles removes leading titles, keeping at least one token
func stripTitles(tokens []string, parts *NameParts) []string {
	i := 0
	for i < len(tokens)-1 && isTitle(tokens[i]) {
		i++
	}
	if i > 0 {
		parts.Title = strings.TrimSpace(parts.Title + " " + joinAffixes(tokens[:i]))
	}
	return tokens[i:]
}

// stripSuffixes removes trailing suffixes, keeping at least one token
func stripSuffixes(tokens []string, parts *NameParts) []string {
	end := len(tokens)
	for end > 1 && isSuffix(tokens[end-1]) {
		end--
	}
	if end < len(tokens) {
		suffix := joinAffixes(tokens[end:])
		if parts.Suffix != "" {
			suffix += " " + parts.Suffix
		}
		parts.Suffix = suffix
	}
	return tokens[:end]
}
