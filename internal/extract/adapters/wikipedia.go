package adapters

import (
	"strings"

	"golang.org/x/net/html"
)

// WikipediaAdapter extracts article text from Wikipedia pages, leaving out
// the navigation chrome, citation lists and edit links that surround it
type WikipediaAdapter struct {
	BaseAdapter
	skipClasses []string
	skipIDs     []string
}

// NewWikipediaAdapter creates a new Wikipedia adapter
func NewWikipediaAdapter() *WikipediaAdapter {
	return &WikipediaAdapter{
		skipClasses: []string{
			"navbox", "reflist", "references", "mw-references-wrap", "mw-editsection",
			"reference", "catlinks", "sistersitebox", "hatnote", "metadata", "toc",
		},
		skipIDs: []string{"toc", "catlinks", "mw-navigation", "footer", "siteSub", "jump-to-nav"},
	}
}

// Name returns the adapter name
func (a *WikipediaAdapter) Name() string {
	return "wikipedia"
}

// CanHandle checks if this is a Wikipedia URL serving HTML
func (a *WikipediaAdapter) CanHandle(source string, contentType string) bool {
	if !strings.Contains(source, "wikipedia.org") {
		return false
	}
	return contentType == "" || strings.Contains(strings.ToLower(contentType), "html")
}

// ExtractText returns the title and article body
func (a *WikipediaAdapter) ExtractText(content []byte, source string) (string, error) {
	doc, err := a.ParseHTML(content)
	if err != nil {
		return "", err
	}

	// Find the main content area
	body := a.FindFirst(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "div" &&
			(a.HasClass(n, "mw-parser-output") || a.GetAttribute(n, "id") == "mw-content-text")
	})
	if body == nil {
		body = doc
	}

	var buf strings.Builder
	if heading := a.FindFirst(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "h1" && a.GetAttribute(n, "id") == "firstHeading"
	}); heading != nil {
		buf.WriteString(strings.TrimSpace(a.VisibleText(heading, nil)))
		buf.WriteString("\n\n")
	}

	buf.WriteString(a.VisibleText(body, a.skip))
	return buf.String(), nil
}

func (a *WikipediaAdapter) skip(n *html.Node) bool {
	for _, class := range a.skipClasses {
		if a.HasClass(n, class) {
			return true
		}
	}
	id := a.GetAttribute(n, "id")
	for _, skipID := range a.skipIDs {
		if id == skipID {
			return true
		}
	}
	return false
}
