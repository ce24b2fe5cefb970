package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/agbru/cpindex/internal/cpi"
	apperrors "github.com/agbru/cpindex/internal/errors"
	"github.com/agbru/cpindex/internal/httpclient"
	"github.com/agbru/cpindex/internal/logging"
	"github.com/agbru/cpindex/internal/metrics"
	"github.com/agbru/cpindex/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// Locale codes and source labels of the built-in fetchers.
const (
	LocaleUS  = "us"
	LocalePK  = "pk"
	SourceBLS = "bls"
	SourcePBS = "pbs"
)

const (
	// DefaultBLSEndpoint is the BLS public time-series API.
	DefaultBLSEndpoint = "https://api.bls.gov/publicAPI/v2/timeseries/data/"
	// DefaultBLSSeries is "All items in U.S. city average, urban wage earners
	// and clerical workers, seasonally adjusted".
	DefaultBLSSeries = "CWSR0000SA0"

	blsStatusOK = "REQUEST_SUCCEEDED"
	// The API serves at most this many years per request without a
	// registration key, and twice as many with one.
	blsMaxYears           = 10
	blsMaxYearsRegistered = 20
)

// USConfig configures a USFetcher.
type USConfig struct {
	Endpoint string
	SeriesID string
	APIKey   string
	Logger   logging.Logger
	Metrics  *metrics.Registry
}

// USFetcher reads the urban CPI from the BLS time-series API.
type USFetcher struct {
	client   *httpclient.Client
	endpoint string
	seriesID string
	apiKey   string
	logger   logging.Logger
	metrics  *metrics.Registry
}

// NewUSFetcher creates a fetcher using client for requests. Empty fields of
// cfg take their defaults.
func NewUSFetcher(client *httpclient.Client, cfg USConfig) *USFetcher {
	f := &USFetcher{
		client:   client,
		endpoint: cfg.Endpoint,
		seriesID: cfg.SeriesID,
		apiKey:   cfg.APIKey,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
	}
	if f.endpoint == "" {
		f.endpoint = DefaultBLSEndpoint
	}
	if f.seriesID == "" {
		f.seriesID = DefaultBLSSeries
	}
	if f.logger == nil {
		f.logger = logging.NewNopLogger()
	}
	return f
}

// Name implements Fetcher.
func (f *USFetcher) Name() string { return "BLS " + f.seriesID }

// Locale implements Fetcher.
func (f *USFetcher) Locale() string { return LocaleUS }

type blsRequest struct {
	SeriesID        []string `json:"seriesid"`
	StartYear       string   `json:"startyear"`
	EndYear         string   `json:"endyear"`
	RegistrationKey string   `json:"registrationkey,omitempty"`
}

type blsResponse struct {
	Status  string   `json:"status"`
	Message []string `json:"message"`
	Results struct {
		Series []struct {
			SeriesID string         `json:"seriesID"`
			Data     []blsDataPoint `json:"data"`
		} `json:"series"`
	} `json:"Results"`
}

type blsDataPoint struct {
	Year   string `json:"year"`
	Period string `json:"period"`
	Value  string `json:"value"`
}

// Fetch implements Fetcher. Ranges longer than the API's per-request year
// limit are split into consecutive windows.
func (f *USFetcher) Fetch(ctx context.Context, start, end cpi.Month, progress chan<- ProgressUpdate) (_ cpi.Series, err error) {
	ctx, span := telemetry.Tracer().Start(ctx, "bls.fetch")
	span.SetAttributes(
		attribute.String("cpindex.series", f.seriesID),
		attribute.String("cpindex.start", start.String()),
		attribute.String("cpindex.end", end.String()),
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	window := blsMaxYears
	if f.apiKey != "" {
		window = blsMaxYearsRegistered
	}
	total := monthsBetween(start, end)

	var series cpi.Series
	for from := start.Year(); from <= end.Year(); from += window {
		to := min(from+window-1, end.Year())
		points, err := f.fetchYears(ctx, from, to)
		if err != nil {
			return nil, err
		}
		for _, p := range points {
			if !p.Month.Between(start, end) {
				continue
			}
			series = append(series, p)
			f.logger.Debug("processing month", logging.Month("month", p.Month), logging.Float64("urban_cpi", p.UrbanCPI))
			sendProgress(ctx, progress, ProgressUpdate{
				Source:  f.client.Source(),
				Month:   p.Month,
				Done:    len(series),
				Total:   total,
				Message: "processing " + p.Month.String(),
			})
		}
	}

	f.metrics.AddMonths(LocaleUS, len(series))
	return series, nil
}

// fetchYears performs one API request for the inclusive year range.
func (f *USFetcher) fetchYears(ctx context.Context, from, to int) ([]cpi.Point, error) {
	req := blsRequest{
		SeriesID:        []string{f.seriesID},
		StartYear:       strconv.Itoa(from),
		EndYear:         strconv.Itoa(to),
		RegistrationKey: f.apiKey,
	}
	f.logger.Info("requesting BLS series",
		logging.String("series", f.seriesID),
		logging.Int("start_year", from),
		logging.Int("end_year", to),
	)

	body, err := f.client.PostJSON(ctx, f.endpoint, req)
	if err != nil {
		return nil, err
	}
	return f.parseResponse(body, fmt.Sprintf("%d-%d", from, to))
}

func (f *USFetcher) parseResponse(body []byte, years string) ([]cpi.Point, error) {
	parseErr := func(cause error) error {
		return &apperrors.ParseError{Source: SourceBLS, Subject: "response for " + years, Cause: cause}
	}

	var resp blsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, parseErr(fmt.Errorf("malformed JSON: %w", err))
	}
	if resp.Status != blsStatusOK {
		return nil, parseErr(fmt.Errorf("status %q: %s", resp.Status, strings.Join(resp.Message, "; ")))
	}
	for _, msg := range resp.Message {
		f.logger.Warn("BLS message", logging.String("message", msg))
	}
	if len(resp.Results.Series) == 0 {
		return nil, parseErr(errors.New("no series in response"))
	}

	data := resp.Results.Series[0].Data
	points := make([]cpi.Point, 0, len(data))
	for _, d := range data {
		month, ok, err := parsePeriod(d.Year, d.Period)
		if err != nil {
			return nil, parseErr(err)
		}
		if !ok {
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(d.Value), 64)
		if err != nil {
			return nil, parseErr(fmt.Errorf("value %q for %s: %w", d.Value, month, err))
		}
		points = append(points, cpi.Point{Month: month, UrbanCPI: value})
	}
	return points, nil
}

// parsePeriod converts a BLS (year, "Mnn") pair to a month. The annual
// average period M13 is reported as not ok.
func parsePeriod(year, period string) (cpi.Month, bool, error) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return cpi.Month{}, false, fmt.Errorf("invalid year %q", year)
	}
	if !strings.HasPrefix(period, "M") {
		return cpi.Month{}, false, fmt.Errorf("unsupported period %q", period)
	}
	m, err := strconv.Atoi(strings.TrimPrefix(period, "M"))
	if err != nil {
		return cpi.Month{}, false, fmt.Errorf("invalid period %q", period)
	}
	switch {
	case m == 13:
		return cpi.Month{}, false, nil
	case m < 1 || m > 12:
		return cpi.Month{}, false, fmt.Errorf("invalid period %q", period)
	}
	return cpi.NewMonth(y, time.Month(m)), true, nil
}

// monthsBetween returns the number of months in [start, end].
func monthsBetween(start, end cpi.Month) int {
	n := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month()) + 1
	return max(n, 0)
}

var _ Fetcher = (*USFetcher)(nil)
