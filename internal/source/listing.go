package source

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/agbru/cpindex/internal/cpi"
)

// ListingEntry is one report row of the PBS CPI listing.
type ListingEntry struct {
	// Month is the report month, taken from the row heading.
	Month cpi.Month
	// Href is the report link as written in the page.
	Href string
}

const listingMonthLayout = "January 2006"

// errListingShape means the listing page no longer has the expected markup.
var errListingShape = errors.New("listing markup changed")

// ParseListing extracts the report rows of one listing page. The rows live
// in the first "div.view-content.row" container, one "div.views-row" each,
// with the month in an h5 ("January, 2024") and the report in the first
// link. A page whose container holds no rows yields an empty slice.
func ParseListing(html []byte) ([]ListingEntry, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	content := doc.Find("div.view-content.row").First()
	if content.Length() == 0 {
		return nil, fmt.Errorf("%w: no view-content container", errListingShape)
	}

	var (
		entries []ListingEntry
		rowErr  error
	)
	content.Find("div.views-row").EachWithBreak(func(i int, row *goquery.Selection) bool {
		label := strings.Join(strings.Fields(strings.ReplaceAll(row.Find("h5").First().Text(), ",", "")), " ")
		if label == "" {
			rowErr = fmt.Errorf("%w: row %d has no month heading", errListingShape, i)
			return false
		}
		t, err := time.Parse(listingMonthLayout, label)
		if err != nil {
			rowErr = fmt.Errorf("%w: row %d heading %q is not a month", errListingShape, i, label)
			return false
		}
		href, ok := row.Find("a").First().Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			rowErr = fmt.Errorf("%w: row %d (%s) has no report link", errListingShape, i, label)
			return false
		}
		entries = append(entries, ListingEntry{Month: cpi.MonthOf(t), Href: strings.TrimSpace(href)})
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}
	return entries, nil
}
