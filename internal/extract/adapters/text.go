package adapters

import (
	"strings"
	"unicode/utf8"
)

// TextAdapter is the fallback adapter for plain text
type TextAdapter struct{}

// NewTextAdapter creates a new plain-text adapter
func NewTextAdapter() *TextAdapter {
	return &TextAdapter{}
}

// Name returns the adapter name
func (a *TextAdapter) Name() string {
	return "text"
}

// CanHandle always returns true (fallback adapter)
func (a *TextAdapter) CanHandle(source string, contentType string) bool {
	return true
}

// ExtractText returns the content as-is, with invalid UTF-8 replaced
func (a *TextAdapter) ExtractText(content []byte, source string) (string, error) {
	text := string(content)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "�")
	}
	return text, nil
}
