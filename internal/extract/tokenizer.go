// Package extract turns plain text into name candidates.
package extract

import (
	"unicode"
	"unicode/utf8"

	"github.com/ppiankov/namecrawler/internal/model"
)

const minTokenRunes = 2

// Tokenize splits text on Unicode whitespace and trims punctuation from both
// ends of each word. Internal hyphens and apostrophes survive ("Mary-Jane",
// "O'Brien"). Words that end up shorter than two runes or without a letter are
// dropped but still consume an index, so distances reflect the original text.
func Tokenize(text string) []model.Token {
	var tokens []model.Token

	index := 0
	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if unicode.IsSpace(r) {
			i += size
			continue
		}

		start := i
		for i < len(text) {
			r, size = utf8.DecodeRuneInString(text[i:])
			if unicode.IsSpace(r) {
				break
			}
			i += size
		}

		if tok, ok := trimWord(text[start:i], start); ok {
			tok.Index = index
			tokens = append(tokens, tok)
		}
		index++
	}

	return tokens
}

// trimWord strips leading and trailing characters that are neither letters nor digits
func trimWord(word string, offset int) (model.Token, bool) {
	lo := 0
	for lo < len(word) {
		r, size := utf8.DecodeRuneInString(word[lo:])
		if isWordRune(r) {
			break
		}
		lo += size
	}

	hi := len(word)
	for hi > lo {
		r, size := utf8.DecodeLastRuneInString(word[lo:hi])
		if isWordRune(r) {
			break
		}
		hi -= size
	}

	text := word[lo:hi]
	if utf8.RuneCountInString(text) < minTokenRunes || !hasLetter(text) {
		return model.Token{}, false
	}

	return model.Token{Text: text, Offset: offset + lo}, true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
