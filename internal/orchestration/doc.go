// Package orchestration runs one cpindex pipeline: select the fetcher for a
// locale, fetch the series while a ProgressReporter consumes updates, check
// the series against the requested range, and tabulate it. It decouples the
// pipeline from presentation via the ProgressReporter and ResultPresenter
// interfaces.
package orchestration
