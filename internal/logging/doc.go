// Package logging provides a unified logging interface for cpindex.
// It abstracts the underlying logging implementation, allowing consistent logging
// across fetchers, the orchestrator, and the CLI while supporting multiple backends.
package logging
