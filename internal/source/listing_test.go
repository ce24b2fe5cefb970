package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/agbru/cpindex/internal/cpi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListing(t *testing.T) {
	t.Parallel()

	html, err := os.ReadFile(filepath.Join("testdata", "listing_page0.html"))
	require.NoError(t, err)

	entries, err := ParseListing(html)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, cpi.MustParseMonth("2024-04"), entries[0].Month)
	assert.Equal(t, "/sites/default/files/price_statistics/cpi/CPI_Review_April_2024.pdf", entries[0].Href)
	assert.Equal(t, cpi.MustParseMonth("2024-03"), entries[1].Month, "extra spaces in the heading are collapsed")
	assert.Equal(t, cpi.MustParseMonth("2024-02"), entries[2].Month)
	assert.Contains(t, entries[2].Href, "CPI_Review_February_2024.pdf", "the first link of a row is the report")
}

func TestParseListing_Shape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		html    string
		want    int
		wantErr bool
	}{
		{
			name:    "missing container",
			html:    `<html><body><div class="views-row"><h5>May, 2024</h5><a href="x.pdf">r</a></div></body></html>`,
			wantErr: true,
		},
		{
			name: "empty container",
			html: `<div class="view-content row"></div>`,
			want: 0,
		},
		{
			name:    "row without link",
			html:    `<div class="view-content row"><div class="views-row"><h5>May, 2024</h5></div></div>`,
			wantErr: true,
		},
		{
			name:    "row without heading",
			html:    `<div class="view-content row"><div class="views-row"><a href="x.pdf">r</a></div></div>`,
			wantErr: true,
		},
		{
			name:    "heading is not a month",
			html:    `<div class="view-content row"><div class="views-row"><h5>Annual Review</h5><a href="x.pdf">r</a></div></div>`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			entries, err := ParseListing([]byte(tt.html))
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errListingShape)
				return
			}
			require.NoError(t, err)
			assert.Len(t, entries, tt.want)
		})
	}
}
