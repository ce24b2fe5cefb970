package extract

import "strings"

// Page is the text of one PDF page, one entry per visual line, top to bottom.
type Page []string

// Document is the extracted text of a PDF report.
type Document struct {
	Pages []Page
}

// NumPages returns the number of pages.
func (d Document) NumPages() int { return len(d.Pages) }

// FromText builds a Document from plain text, one string per page with lines
// separated by "\n". Fixtures and tests use it in place of a real PDF.
func FromText(pages ...string) Document {
	doc := Document{Pages: make([]Page, 0, len(pages))}
	for _, p := range pages {
		doc.Pages = append(doc.Pages, Page(strings.Split(p, "\n")))
	}
	return doc
}

// SplitPages splits text on form feeds, the page separator used by the
// text fixtures.
func SplitPages(text string) []string {
	return strings.Split(strings.TrimSuffix(text, "\f"), "\f")
}
