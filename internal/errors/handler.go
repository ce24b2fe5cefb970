package apperrors

import (
	"errors"
	"fmt"
	"io"
)

// ColorProvider supplies the escape sequences used when printing errors.
// It keeps this package free of any dependency on the UI layer.
type ColorProvider interface {
	Red() string
	Yellow() string
	Reset() string
}

// HandleError prints a user-facing description of err and returns the exit
// code it maps to. Integrity and parse failures get a hint, since they usually
// mean the upstream layout changed rather than that the input was wrong.
//
// Parameters:
//   - err: The error that ended the run.
//   - out: The writer for the message (usually stderr).
//   - colors: Escape sequences for highlighting.
//
// Returns:
//   - int: The exit code for err.
func HandleError(err error, out io.Writer, colors ColorProvider) int {
	if err == nil {
		return ExitSuccess
	}

	code := ExitCodeFor(err)
	switch code {
	case ExitErrorTimeout:
		fmt.Fprintf(out, "%sRun timed out: %v%s\n", colors.Red(), err, colors.Reset())
	case ExitErrorCanceled:
		fmt.Fprintf(out, "%sRun canceled.%s\n", colors.Yellow(), colors.Reset())
	case ExitErrorParse:
		fmt.Fprintf(out, "%sError: %v%s\n", colors.Red(), err, colors.Reset())
		fmt.Fprintf(out, "The upstream document layout may have changed; try --extractors or a newer release.\n")
	case ExitErrorIntegrity:
		fmt.Fprintf(out, "%sError: %v%s\n", colors.Red(), err, colors.Reset())
		var missing MissingMonthError
		if errors.As(err, &missing) {
			fmt.Fprintf(out, "The index month must be one of the fetched months.\n")
		}
	default:
		fmt.Fprintf(out, "%sError: %v%s\n", colors.Red(), err, colors.Reset())
	}
	return code
}
