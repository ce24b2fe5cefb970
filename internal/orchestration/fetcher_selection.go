package orchestration

import (
	"strings"

	"github.com/agbru/cpindex/internal/source"
)

// SelectFetcher returns the fetcher registered for locale.
//
// Parameters:
//   - locale: The locale code ("us", "pk"), case-insensitive.
//   - factory: The factory to resolve the fetcher from.
//
// Returns:
//   - source.Fetcher: The fetcher for the locale.
//   - error: A ConfigError when the locale is not registered.
func SelectFetcher(locale string, factory source.Factory) (source.Fetcher, error) {
	return factory.Get(strings.ToLower(strings.TrimSpace(locale)))
}
