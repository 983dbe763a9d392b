package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	scanerrors "github.com/conduit-lang/schemascan/internal/errors"
	"github.com/conduit-lang/schemascan/internal/model"
)

func severityColor(severity scanerrors.ErrorSeverity, noColor bool) *color.Color {
	c := color.New(color.FgRed, color.Bold)
	if severity == scanerrors.SeverityWarning {
		c = color.New(color.FgYellow, color.Bold)
	}
	if noColor {
		c.DisableColor()
	}
	return c
}

// WriteScanError writes e with its header colored by severity
func WriteScanError(w io.Writer, e *scanerrors.ScanError, noColor bool) {
	text := scanerrors.FormatError(e)
	head, body, _ := strings.Cut(text, "\n")
	severityColor(e.Severity, noColor).Fprintln(w, head)
	fmt.Fprint(w, body)
}

// WriteErrorList writes every entry of el followed by a summary line
func WriteErrorList(w io.Writer, el scanerrors.ErrorList, noColor bool) {
	for _, e := range el {
		WriteScanError(w, e, noColor)
		fmt.Fprintln(w)
	}

	errs, warns := el.ErrorCount()
	summary := fmt.Sprintf("%d error(s), %d warning(s)", errs, warns)
	if errs > 0 {
		severityColor(scanerrors.SeverityError, noColor).Fprintln(w, summary)
	} else {
		severityColor(scanerrors.SeverityWarning, noColor).Fprintln(w, summary)
	}
}

// WriteWarnings writes model warnings one per line
func WriteWarnings(w io.Writer, warnings []model.Warning, noColor bool) {
	c := severityColor(scanerrors.SeverityWarning, noColor)
	for _, warn := range warnings {
		if warn.Node != "" {
			c.Fprintf(w, "warning [%s] %s: %s\n", warn.Code, warn.Node, warn.Message)
		} else {
			c.Fprintf(w, "warning [%s] %s\n", warn.Code, warn.Message)
		}
	}
}

// UnknownRootError describes a --root that is not in the graph
func UnknownRootError(root string, suggestions []string, noColor bool) string {
	var b strings.Builder
	severityColor(scanerrors.SeverityError, noColor).Fprintf(&b, "unknown root type %q\n", root)
	if len(suggestions) > 0 {
		yellow := color.New(color.FgYellow)
		if noColor {
			yellow.DisableColor()
		}
		yellow.Fprintf(&b, "  Did you mean: %s?\n", strings.Join(suggestions, ", "))
	}
	return b.String()
}

// FormatSuccess renders a success line
func FormatSuccess(message string, noColor bool) string {
	green := color.New(color.FgGreen, color.Bold)
	if noColor {
		green.DisableColor()
	}
	return green.Sprintf("✓ %s", message)
}

// WriteSuccess writes a success line
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}
