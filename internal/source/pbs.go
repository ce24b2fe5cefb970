package source

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/agbru/cpindex/internal/cpi"
	apperrors "github.com/agbru/cpindex/internal/errors"
	"github.com/agbru/cpindex/internal/extract"
	"github.com/agbru/cpindex/internal/httpclient"
	"github.com/agbru/cpindex/internal/logging"
	"github.com/agbru/cpindex/internal/metrics"
	"github.com/agbru/cpindex/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// DefaultPBSBaseURL is the root of the PBS website.
const DefaultPBSBaseURL = "https://www.pbs.gov.pk/"

// DefaultMaxPages bounds listing pagination when PKConfig.MaxPages is zero.
const DefaultMaxPages = 60

// PKConfig configures a PKFetcher.
type PKConfig struct {
	BaseURL   string
	MaxPages  int
	Workers   int
	Extractor *extract.Chain
	Logger    logging.Logger
	Metrics   *metrics.Registry
}

// PKFetcher reads Pakistan's urban CPI from the monthly PBS reports. The
// listing at <base>/cpi is newest first and cannot be addressed by month,
// so pages are walked from page 0 until one contains a month before start.
type PKFetcher struct {
	client    *httpclient.Client
	base      *url.URL
	maxPages  int
	workers   int
	extractor *extract.Chain
	logger    logging.Logger
	metrics   *metrics.Registry

	// readDocument turns a downloaded report into text pages.
	readDocument func([]byte) (extract.Document, error)
}

// NewPKFetcher creates a fetcher using client for requests. Zero fields of
// cfg take their defaults.
func NewPKFetcher(client *httpclient.Client, cfg PKConfig) (*PKFetcher, error) {
	raw := cfg.BaseURL
	if raw == "" {
		raw = DefaultPBSBaseURL
	}
	base, err := url.Parse(raw)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, apperrors.NewConfigError("invalid PBS base URL %q", raw)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	f := &PKFetcher{
		client:    client,
		base:      base,
		maxPages:  cfg.MaxPages,
		workers:   cfg.Workers,
		extractor: cfg.Extractor,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,

		readDocument: extract.ReadPDFBytes,
	}
	if f.maxPages <= 0 {
		f.maxPages = DefaultMaxPages
	}
	if f.workers <= 0 {
		f.workers = 1
	}
	if f.extractor == nil {
		f.extractor, _ = extract.NewChain()
	}
	if f.logger == nil {
		f.logger = logging.NewNopLogger()
	}
	return f, nil
}

// Name implements Fetcher.
func (f *PKFetcher) Name() string { return "PBS UCPI" }

// Locale implements Fetcher.
func (f *PKFetcher) Locale() string { return LocalePK }

// listingURL returns the address of listing page n.
func (f *PKFetcher) listingURL(page int) string {
	ref := &url.URL{Path: "cpi", RawQuery: "page=" + strconv.Itoa(page)}
	return f.base.ResolveReference(ref).String()
}

// reportURL resolves a listing link against the base URL.
func (f *PKFetcher) reportURL(href string) (string, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return f.base.ResolveReference(ref).String(), nil
}

// Fetch implements Fetcher.
//
// Rows after end are skipped; a row before start marks the start as reached
// but the rest of its page is still read. Pagination fails with an
// IntegrityError when a page is empty or MaxPages pages were read without
// reaching start.
func (f *PKFetcher) Fetch(ctx context.Context, start, end cpi.Month, progress chan<- ProgressUpdate) (_ cpi.Series, err error) {
	ctx, span := telemetry.Tracer().Start(ctx, "pbs.fetch")
	span.SetAttributes(
		attribute.String("cpindex.start", start.String()),
		attribute.String("cpindex.end", end.String()),
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	total := monthsBetween(start, end)
	var series cpi.Series
	reached := false

	for page := 0; !reached; page++ {
		if page >= f.maxPages {
			return nil, apperrors.NewIntegrityError("start month %s not reached after %d listing pages", start, f.maxPages)
		}

		listing := f.listingURL(page)
		f.logger.Info("fetching listing page", logging.Int("page", page), logging.String("url", listing))
		body, err := f.client.Get(ctx, listing)
		if err != nil {
			return nil, err
		}
		entries, err := ParseListing(body)
		if err != nil {
			return nil, &apperrors.ParseError{Source: SourcePBS, Subject: fmt.Sprintf("listing page %d", page), Cause: err}
		}
		if len(entries) == 0 {
			return nil, apperrors.NewIntegrityError("listing page %d is empty before reaching start month %s", page, start)
		}

		var wanted []ListingEntry
		for _, e := range entries {
			switch {
			case e.Month.Before(start):
				reached = true
			case e.Month.After(end):
			default:
				wanted = append(wanted, e)
			}
		}

		err = f.fetchReports(ctx, wanted, func(p cpi.Point) {
			series = append(series, p)
			sendProgress(ctx, progress, ProgressUpdate{
				Source:  f.client.Source(),
				Month:   p.Month,
				Done:    len(series),
				Total:   total,
				Message: "processing " + p.Month.String(),
			})
		})
		if err != nil {
			return nil, err
		}
	}

	f.metrics.AddMonths(LocalePK, len(series))
	return series, nil
}

// fetchReports downloads and extracts the reports of one listing page with
// at most f.workers downloads in flight. onPoint is called in listing order
// once all reports of the page are done.
func (f *PKFetcher) fetchReports(ctx context.Context, entries []ListingEntry, onPoint func(cpi.Point)) error {
	if len(entries) == 0 {
		return nil
	}

	points := make([]cpi.Point, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)
	for i, e := range entries {
		g.Go(func() error {
			v, err := f.fetchReport(gctx, e)
			if err != nil {
				return err
			}
			points[i] = cpi.Point{Month: e.Month, UrbanCPI: v}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, p := range points {
		onPoint(p)
	}
	return nil
}

// fetchReport downloads one report and extracts its UCPI General value.
func (f *PKFetcher) fetchReport(ctx context.Context, e ListingEntry) (_ float64, err error) {
	ctx, span := telemetry.Tracer().Start(ctx, "pbs.report")
	span.SetAttributes(attribute.String("cpindex.month", e.Month.String()))
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	target, err := f.reportURL(e.Href)
	if err != nil {
		return 0, &apperrors.ParseError{Source: SourcePBS, Subject: "report link for " + e.Month.String(), Cause: err}
	}
	f.logger.Info("processing month", logging.Month("month", e.Month), logging.String("url", target))

	body, err := f.client.Get(ctx, target)
	if err != nil {
		return 0, err
	}

	doc, err := f.readDocument(body)
	if err != nil {
		return 0, &apperrors.ParseError{Source: SourcePBS, Subject: "report for " + e.Month.String(), Cause: err}
	}
	f.metrics.AddPDFPages(doc.NumPages())

	return f.extractValue(e.Month, doc)
}

func (f *PKFetcher) extractValue(month cpi.Month, doc extract.Document) (float64, error) {
	v, version, err := f.extractor.ExtractWithVersion(doc)
	if err != nil {
		return 0, &apperrors.ParseError{
			Source:  SourcePBS,
			Subject: fmt.Sprintf("report for %s (tried %s)", month, f.extractor.Version()),
			Cause:   err,
		}
	}
	f.logger.Debug("extracted UCPI",
		logging.Month("month", month),
		logging.String("extractor", version),
		logging.Float64("urban_cpi", v),
	)
	return v, nil
}

var _ Fetcher = (*PKFetcher)(nil)
