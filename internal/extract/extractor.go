// Package extract reads the urban CPI "General" value out of a PBS monthly
// CPI report. The report layout has changed over the years, so parsing is
// split into versioned extractors tried in order by a Chain.
package extract

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// SectionMarker identifies the UCPI section of a report. It is matched
// against the first three lines of a page with all whitespace removed.
const SectionMarker = "II.UrbanConsumerPriceIndex(UCPI)"

var (
	// ErrSectionNotFound means no page carries the UCPI section marker.
	ErrSectionNotFound = errors.New("UCPI section not found")
	// ErrValueNotFound means the UCPI page has no parsable General line.
	ErrValueNotFound = errors.New("general index line not found in UCPI section")
)

// Extractor reads the UCPI General value from one report layout.
type Extractor interface {
	// Version names the layout, e.g. "v1".
	Version() string
	// Extract returns the value or an error wrapping ErrSectionNotFound or
	// ErrValueNotFound.
	Extract(doc Document) (float64, error)
}

// SectionPage returns the first page of the UCPI section. Pages with fewer
// than three lines are skipped.
func SectionPage(doc Document) (Page, bool) {
	for _, page := range doc.Pages {
		if len(page) < 3 {
			continue
		}
		if strings.Contains(stripSpace(strings.Join(page[:3], "")), SectionMarker) {
			return page, true
		}
	}
	return nil, false
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// FixedLayoutV1 reads the layout the PBS reports used when cpindex was
// first written: a line beginning exactly with " General  100.00  " whose
// third double-space separated field starts with the index value.
type FixedLayoutV1 struct{}

const v1Prefix = " General  100.00  "

// Version implements Extractor.
func (FixedLayoutV1) Version() string { return "v1" }

// Extract implements Extractor.
func (FixedLayoutV1) Extract(doc Document) (float64, error) {
	page, ok := SectionPage(doc)
	if !ok {
		return 0, ErrSectionNotFound
	}
	for _, line := range page {
		if !strings.HasPrefix(line, v1Prefix) {
			continue
		}
		fields := strings.Split(line, "  ")
		if len(fields) < 3 {
			return 0, fmt.Errorf("%w: short line %q", ErrValueNotFound, line)
		}
		raw, _, _ := strings.Cut(fields[2], " ")
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", ErrValueNotFound, raw)
		}
		return v, nil
	}
	return 0, ErrValueNotFound
}

// TokenLayoutV2 tolerates any amount of whitespace: the first line whose
// tokens begin with "General" and the weight "100.00" yields the next
// numeric token. Thousands separators are ignored.
type TokenLayoutV2 struct{}

// Version implements Extractor.
func (TokenLayoutV2) Version() string { return "v2" }

// Extract implements Extractor.
func (TokenLayoutV2) Extract(doc Document) (float64, error) {
	page, ok := SectionPage(doc)
	if !ok {
		return 0, ErrSectionNotFound
	}
	for _, line := range page {
		tokens := strings.Fields(line)
		if len(tokens) < 3 || tokens[0] != "General" || tokens[1] != "100.00" {
			continue
		}
		for _, tok := range tokens[2:] {
			if v, err := strconv.ParseFloat(strings.ReplaceAll(tok, ",", ""), 64); err == nil {
				return v, nil
			}
		}
		return 0, fmt.Errorf("%w: no value after weight in %q", ErrValueNotFound, line)
	}
	return 0, ErrValueNotFound
}

// Versions lists the known extractor versions in default order.
func Versions() []string { return []string{"v1", "v2"} }

// ByVersion returns the extractor for version.
func ByVersion(version string) (Extractor, error) {
	switch version {
	case "v1":
		return FixedLayoutV1{}, nil
	case "v2":
		return TokenLayoutV2{}, nil
	default:
		return nil, fmt.Errorf("unknown extractor version %q (known: %s)", version, strings.Join(Versions(), ", "))
	}
}

// Chain tries extractors in order and returns the first success.
type Chain struct {
	extractors []Extractor
}

// NewChain builds a chain from version names. With no versions the default
// order is used.
func NewChain(versions ...string) (*Chain, error) {
	if len(versions) == 0 {
		versions = Versions()
	}
	c := &Chain{extractors: make([]Extractor, 0, len(versions))}
	for _, v := range versions {
		e, err := ByVersion(v)
		if err != nil {
			return nil, err
		}
		c.extractors = append(c.extractors, e)
	}
	return c, nil
}

// NewChainOf builds a chain from extractor values.
func NewChainOf(extractors ...Extractor) *Chain {
	return &Chain{extractors: extractors}
}

// Version implements Extractor.
func (c *Chain) Version() string {
	versions := make([]string, len(c.extractors))
	for i, e := range c.extractors {
		versions[i] = e.Version()
	}
	return "chain(" + strings.Join(versions, ",") + ")"
}

// Extract implements Extractor.
func (c *Chain) Extract(doc Document) (float64, error) {
	v, _, err := c.ExtractWithVersion(doc)
	return v, err
}

// ExtractWithVersion returns the value together with the version of the
// extractor that produced it. When every extractor fails, the error joins
// each version's failure.
func (c *Chain) ExtractWithVersion(doc Document) (float64, string, error) {
	if len(c.extractors) == 0 {
		return 0, "", errors.New("no extractors configured")
	}
	errs := make([]error, 0, len(c.extractors))
	for _, e := range c.extractors {
		v, err := e.Extract(doc)
		if err == nil {
			return v, e.Version(), nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", e.Version(), err))
	}
	return 0, "", errors.Join(errs...)
}

var (
	_ Extractor = FixedLayoutV1{}
	_ Extractor = TokenLayoutV2{}
	_ Extractor = (*Chain)(nil)
)
