package adapters

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DefaultMaxPages bounds how much of a large PDF is scanned
const DefaultMaxPages = 200

// PDFAdapter extracts text from PDF documents
type PDFAdapter struct {
	maxPages int
}

// NewPDFAdapter creates a PDF adapter reading at most maxPages pages (0 = all)
func NewPDFAdapter(maxPages int) *PDFAdapter {
	return &PDFAdapter{maxPages: maxPages}
}

// Name returns the adapter name
func (a *PDFAdapter) Name() string {
	return "pdf"
}

// CanHandle matches application/pdf and .pdf files
func (a *PDFAdapter) CanHandle(source string, contentType string) bool {
	if strings.Contains(strings.ToLower(contentType), "pdf") {
		return true
	}
	return hasExtension(source, ".pdf")
}

// ExtractText returns the plain text of every page, pages separated by a blank line.
// Pages that fail to decode are skipped.
func (a *PDFAdapter) ExtractText(content []byte, source string) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("error opening PDF: %w", err)
	}

	pages := r.NumPage()
	if a.maxPages > 0 && pages > a.maxPages {
		slog.Debug("truncating PDF", "source", source, "pages", pages, "max_pages", a.maxPages)
		pages = a.maxPages
	}

	var buf strings.Builder
	failed := 0
	for i := 1; i <= pages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			failed++
			continue
		}

		text, err := p.GetPlainText(nil)
		if err != nil {
			failed++
			continue
		}

		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(text)
	}

	if failed > 0 {
		slog.Debug("skipped unreadable PDF pages", "source", source, "failed", failed)
	}
	if pages > 0 && failed == pages {
		return "", fmt.Errorf("no readable pages in %s", source)
	}

	return buf.String(), nil
}
