// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Status line colors. fatih/color disables them when stdout is not a
// terminal or NO_COLOR is set.
var (
	okColor    = color.New(color.FgGreen)
	warnColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed, color.Bold)
)

func infof(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

func okf(w io.Writer, format string, args ...any) {
	_, _ = okColor.Fprintf(w, format, args...)
}

func warnf(w io.Writer, format string, args ...any) {
	_, _ = warnColor.Fprintf(w, format, args...)
}

func errorf(w io.Writer, format string, args ...any) {
	_, _ = errorColor.Fprintf(w, format, args...)
}
