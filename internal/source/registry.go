package source

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	apperrors "github.com/agbru/cpindex/internal/errors"
	"github.com/agbru/cpindex/internal/extract"
	"github.com/agbru/cpindex/internal/httpclient"
	"github.com/agbru/cpindex/internal/logging"
	"github.com/agbru/cpindex/internal/metrics"
)

// Options carries the settings shared by the built-in fetchers.
type Options struct {
	BLSEndpoint string
	BLSSeries   string
	BLSKey      string

	PBSBaseURL string
	MaxPages   int
	Workers    int
	Extractors []string

	Logger      logging.Logger
	Metrics     *metrics.Registry
	HTTPOptions []httpclient.Option
}

func (o Options) logger() logging.Logger {
	if o.Logger == nil {
		return logging.NewNopLogger()
	}
	return o.Logger
}

// Constructor builds a fetcher from options.
type Constructor func(Options) (Fetcher, error)

// DefaultFactory is a Factory backed by a table of constructors. Fetchers
// are built on first use and cached.
type DefaultFactory struct {
	mu           sync.Mutex
	opts         Options
	constructors map[string]Constructor
	built        map[string]Fetcher
}

// NewDefaultFactory returns a factory with the "us" and "pk" fetchers
// registered.
func NewDefaultFactory(opts Options) *DefaultFactory {
	f := &DefaultFactory{
		opts:         opts,
		constructors: make(map[string]Constructor),
		built:        make(map[string]Fetcher),
	}
	f.constructors[LocaleUS] = func(o Options) (Fetcher, error) { return newUSFromOptions(o), nil }
	f.constructors[LocalePK] = newPKFromOptions
	return f
}

// Register adds a constructor for locale. Registering a locale twice is an
// error.
func (f *DefaultFactory) Register(locale string, c Constructor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	locale = strings.ToLower(locale)
	if _, exists := f.constructors[locale]; exists {
		return fmt.Errorf("locale %q already registered", locale)
	}
	f.constructors[locale] = c
	return nil
}

// Get implements Factory. An unknown locale is a ConfigError.
func (f *DefaultFactory) Get(locale string) (Fetcher, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	locale = strings.ToLower(locale)
	if fetcher, ok := f.built[locale]; ok {
		return fetcher, nil
	}
	c, ok := f.constructors[locale]
	if !ok {
		return nil, apperrors.NewConfigError("unknown locale %q (available: %s)", locale, strings.Join(f.listLocked(), ", "))
	}
	fetcher, err := c(f.opts)
	if err != nil {
		return nil, err
	}
	f.built[locale] = fetcher
	return fetcher, nil
}

// List implements Factory.
func (f *DefaultFactory) List() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listLocked()
}

func (f *DefaultFactory) listLocked() []string {
	keys := make([]string, 0, len(f.constructors))
	for k := range f.constructors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func newUSFromOptions(o Options) Fetcher {
	client := httpclient.New(SourceBLS, o.HTTPOptions...)
	return NewUSFetcher(client, USConfig{
		Endpoint: o.BLSEndpoint,
		SeriesID: o.BLSSeries,
		APIKey:   o.BLSKey,
		Logger:   o.logger(),
		Metrics:  o.Metrics,
	})
}

func newPKFromOptions(o Options) (Fetcher, error) {
	chain, err := extract.NewChain(o.Extractors...)
	if err != nil {
		return nil, apperrors.NewConfigError("%v", err)
	}
	client := httpclient.New(SourcePBS, o.HTTPOptions...)
	f, err := NewPKFetcher(client, PKConfig{
		BaseURL:   o.PBSBaseURL,
		MaxPages:  o.MaxPages,
		Workers:   o.Workers,
		Extractor: chain,
		Logger:    o.logger(),
		Metrics:   o.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

var _ Factory = (*DefaultFactory)(nil)
