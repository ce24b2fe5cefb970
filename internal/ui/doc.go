// Package ui provides theme and color support for the console output.
// It defines color schemes, ANSI escape code helpers and the lipgloss
// palette of the result table, and decides when colors are used at all
// (--no-color, NO_COLOR, non-terminal output).
package ui
