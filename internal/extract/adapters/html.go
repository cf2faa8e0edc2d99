package adapters

import (
	"strings"
)

// HTMLAdapter extracts the visible text of generic web pages
type HTMLAdapter struct {
	BaseAdapter
}

// NewHTMLAdapter creates a new HTML adapter
func NewHTMLAdapter() *HTMLAdapter {
	return &HTMLAdapter{}
}

// Name returns the adapter name
func (a *HTMLAdapter) Name() string {
	return "html"
}

// CanHandle matches HTML content types and .html/.htm files
func (a *HTMLAdapter) CanHandle(source string, contentType string) bool {
	ct := strings.ToLower(contentType)
	if strings.Contains(ct, "html") {
		return true
	}
	return hasExtension(source, ".html", ".htm", ".xhtml")
}

// ExtractText returns the visible text of the page
func (a *HTMLAdapter) ExtractText(content []byte, source string) (string, error) {
	doc, err := a.ParseHTML(content)
	if err != nil {
		return "", err
	}
	return a.VisibleText(doc, nil), nil
}
