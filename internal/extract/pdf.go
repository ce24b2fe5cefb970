package extract

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// Horizontal gaps between glyphs, as fractions of the font size. A gap wider
// than wordGap becomes one space and a gap wider than columnGap becomes two,
// which is how table columns are told apart from words.
const (
	wordGap   = 0.15
	columnGap = 1.0
	// lineGap is the vertical distance, as a fraction of the font size,
	// beyond which two glyphs belong to different lines.
	lineGap = 0.5
)

// ReadPDF extracts the text of every page of the PDF in r. Glyphs are
// grouped into lines by their baseline and ordered left to right; the
// spacing between them is rebuilt from their positions and widths.
//
// The PDF reader panics on some malformed inputs; those panics are returned
// as errors.
func ReadPDF(r io.ReaderAt, size int64) (doc Document, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			doc, err = Document{}, fmt.Errorf("malformed pdf: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return Document{}, fmt.Errorf("open pdf: %w", err)
	}

	n := reader.NumPage()
	doc.Pages = make([]Page, 0, n)
	for i := 1; i <= n; i++ {
		p := reader.Page(i)
		if p.V.IsNull() {
			doc.Pages = append(doc.Pages, nil)
			continue
		}
		doc.Pages = append(doc.Pages, pageLines(p.Content().Text))
	}
	return doc, nil
}

// ReadPDFBytes is ReadPDF over an in-memory file.
func ReadPDFBytes(data []byte) (Document, error) {
	return ReadPDF(bytes.NewReader(data), int64(len(data)))
}

// pageLines groups glyphs into lines, top to bottom.
func pageLines(texts []pdf.Text) Page {
	glyphs := make([]pdf.Text, 0, len(texts))
	for _, t := range texts {
		if t.S == "" || strings.IndexFunc(t.S, unicode.IsControl) >= 0 {
			continue
		}
		glyphs = append(glyphs, t)
	}
	sort.SliceStable(glyphs, func(i, j int) bool { return glyphs[i].Y > glyphs[j].Y })

	var (
		page Page
		row  pdf.TextHorizontal
		top  float64
	)
	for _, g := range glyphs {
		if len(row) > 0 && top-g.Y > lineGap*math.Max(g.FontSize, 2) {
			page = append(page, joinRow(row))
			row = nil
		}
		if len(row) == 0 {
			top = g.Y
		}
		row = append(row, g)
	}
	if len(row) > 0 {
		page = append(page, joinRow(row))
	}
	return page
}

// joinRow orders the glyphs of one line left to right and joins them.
// Spaces drawn as glyphs are kept, so padding only tops them up to the
// width the gap calls for.
func joinRow(texts pdf.TextHorizontal) string {
	sort.Stable(texts)

	var b strings.Builder
	end := math.Inf(-1)
	for _, t := range texts {
		size := math.Max(t.FontSize, 1)
		if b.Len() > 0 {
			switch gap := t.X - end; {
			case gap > columnGap*size:
				padSpaces(&b, 2)
			case gap > wordGap*size:
				padSpaces(&b, 1)
			}
		}
		b.WriteString(t.S)
		end = t.X + glyphWidth(t)
	}
	return b.String()
}

// glyphWidth is the advance of t. Fonts without a width table report zero,
// in which case half an em is assumed.
func glyphWidth(t pdf.Text) float64 {
	if t.W > 0 {
		return t.W
	}
	return t.FontSize / 2
}

// padSpaces makes b end with at least n spaces.
func padSpaces(b *strings.Builder, n int) {
	s := b.String()
	have := len(s) - len(strings.TrimRight(s, " "))
	for ; have < n; have++ {
		b.WriteByte(' ')
	}
}
