// Package adapters turns fetched or local documents into plain text for the name finder.
package adapters

import (
	"bytes"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// Adapter converts one kind of document into plain text
type Adapter interface {
	// Name returns the adapter name
	Name() string

	// CanHandle checks if this adapter can handle the given source/content type
	CanHandle(source string, contentType string) bool

	// ExtractText returns the readable text of the document
	ExtractText(content []byte, source string) (string, error)
}

// Registry manages document adapters
type Registry struct {
	adapters []Adapter
	generic  Adapter
}

// NewRegistry creates a new adapter registry
func NewRegistry() *Registry {
	registry := &Registry{
		adapters: make([]Adapter, 0),
	}

	// Register built-in adapters, most specific first
	registry.Register(NewWikipediaAdapter())
	registry.Register(NewHTMLAdapter())
	registry.Register(NewPDFAdapter(DefaultMaxPages))

	// Plain text is the fallback
	registry.generic = NewTextAdapter()

	return registry
}

// Register registers a new adapter
func (r *Registry) Register(adapter Adapter) {
	r.adapters = append(r.adapters, adapter)
}

// FindAdapter finds the best adapter for the given source and content type
func (r *Registry) FindAdapter(source string, contentType string) Adapter {
	for _, adapter := range r.adapters {
		if adapter.CanHandle(source, contentType) {
			return adapter
		}
	}
	return r.generic
}

// Extract picks an adapter and extracts the text in one step.
// An empty content type is sniffed from the content itself.
func (r *Registry) Extract(content []byte, source string, contentType string) (string, Adapter, error) {
	if contentType == "" {
		contentType = SniffContentType(content)
	}
	adapter := r.FindAdapter(source, contentType)
	text, err := adapter.ExtractText(content, source)
	return text, adapter, err
}

// SniffContentType guesses the content type of documents read from disk or stdin
func SniffContentType(content []byte) string {
	head := content
	if len(head) > 512 {
		head = head[:512]
	}
	trimmed := bytes.TrimSpace(bytes.ToLower(head))

	switch {
	case bytes.HasPrefix(trimmed, []byte("%pdf-")):
		return "application/pdf"
	case bytes.HasPrefix(trimmed, []byte("<!doctype html")),
		bytes.HasPrefix(trimmed, []byte("<html")),
		bytes.Contains(trimmed, []byte("<body")):
		return "text/html"
	default:
		return "text/plain"
	}
}

// hasExtension reports whether source ends in one of exts (case-insensitive)
func hasExtension(source string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(source))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// BaseAdapter provides common HTML functionality for adapters
type BaseAdapter struct{}

// ParseHTML parses HTML content into a node tree
func (b *BaseAdapter) ParseHTML(content []byte) (*html.Node, error) {
	return html.Parse(bytes.NewReader(content))
}

// HasClass checks if a node has a specific CSS class
func (b *BaseAdapter) HasClass(n *html.Node, className string) bool {
	if n.Type != html.ElementNode {
		return false
	}

	for _, attr := range n.Attr {
		if attr.Key == "class" {
			for _, class := range strings.Fields(attr.Val) {
				if class == className {
					return true
				}
			}
		}
	}
	return false
}

// GetAttribute gets an attribute value from a node
func (b *BaseAdapter) GetAttribute(n *html.Node, attrKey string) string {
	for _, attr := range n.Attr {
		if attr.Key == attrKey {
			return attr.Val
		}
	}
	return ""
}

// FindFirst finds the first node matching a predicate
func (b *BaseAdapter) FindFirst(n *html.Node, predicate func(*html.Node) bool) *html.Node {
	var result *html.Node

	var walk func(*html.Node) bool
	walk = func(node *html.Node) bool {
		if predicate(node) {
			result = node
			return true
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}

	walk(n)
	return result
}

// VisibleText collects text nodes under n, skipping non-rendered elements and
// any element for which skip returns true. Block elements end a line so
// words from separate cells or paragraphs never run together.
func (b *BaseAdapter) VisibleText(n *html.Node, skip func(*html.Node) bool) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "template", "svg":
				return
			}
			if skip != nil && skip(n) {
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && blockElements[n.Data] {
			buf.WriteString("\n")
		}
	}

	walk(n)
	return buf.String()
}

var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true, "td": true, "th": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"section": true, "article": true, "header": true, "footer": true, "title": true,
	"blockquote": true, "pre": true, "dt": true, "dd": true, "caption": true,
}
