package cmd

import (
	"fmt"
	"io"
	"strings"

	mdfxerrors "github.com/mdfx-dev/mdfx/internal/errors"
)

// printDiagnostics writes non-fatal pipeline diagnostics to stderr in a
// grep-friendly file:line:col form.
func printDiagnostics(w io.Writer, diags []*mdfxerrors.Error) {
	for _, d := range diags {
		loc := d.Document
		if d.Line > 0 {
			loc = fmt.Sprintf("%s:%d:%d", d.Document, d.Line, d.Column)
		}
		fmt.Fprintf(w, "warning: %s: %s\n", loc, d.Message)
		if len(d.Suggestions) > 0 {
			fmt.Fprintf(w, "  did you mean: %s\n", strings.Join(d.Suggestions, ", "))
		}
	}
}
