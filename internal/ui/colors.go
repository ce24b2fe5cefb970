package ui

// ColorRed returns the escape code for errors in the active theme.
func ColorRed() string { return GetCurrentTheme().Error }

// ColorGreen returns the escape code for success in the active theme.
func ColorGreen() string { return GetCurrentTheme().Success }

// ColorYellow returns the escape code for warnings in the active theme.
func ColorYellow() string { return GetCurrentTheme().Warning }

// ColorBlue returns the primary accent escape code.
func ColorBlue() string { return GetCurrentTheme().Primary }

// ColorMagenta returns the informational escape code.
func ColorMagenta() string { return GetCurrentTheme().Info }

// ColorCyan returns the secondary escape code.
func ColorCyan() string { return GetCurrentTheme().Secondary }

// ColorBold returns the bold escape code.
func ColorBold() string { return GetCurrentTheme().Bold }

// ColorUnderline returns the underline escape code.
func ColorUnderline() string { return GetCurrentTheme().Underline }

// ColorReset returns the escape code that clears formatting.
func ColorReset() string { return GetCurrentTheme().Reset }
