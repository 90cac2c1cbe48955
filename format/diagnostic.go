package format

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/dhamidi/rfmt/r/parser"
)

// DiagnosticPrinter writes diagnostics as
//
//	path:line:col: severity[code]: message
//	   3 | y <- )
//	     |      ^
//
// Carets are aligned by display width, so wide characters in front of a
// diagnostic do not shift the underline.
type DiagnosticPrinter struct {
	w       io.Writer
	limit   int
	printed int
	dropped int

	errorColor   *color.Color
	warningColor *color.Color
	infoColor    *color.Color
	locColor     *color.Color
	gutterColor  *color.Color
	caretColor   *color.Color
}

func NewDiagnosticPrinter(w io.Writer, useColor bool) *DiagnosticPrinter {
	p := &DiagnosticPrinter{
		w:            w,
		errorColor:   color.New(color.FgRed, color.Bold),
		warningColor: color.New(color.FgYellow, color.Bold),
		infoColor:    color.New(color.FgCyan, color.Bold),
		locColor:     color.New(color.Bold),
		gutterColor:  color.New(color.FgBlue),
		caretColor:   color.New(color.FgGreen, color.Bold),
	}
	for _, c := range []*color.Color{p.errorColor, p.warningColor, p.infoColor, p.locColor, p.gutterColor, p.caretColor} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// SetLimit caps the number of diagnostics printed over the printer's
// lifetime. Zero means no limit.
func (p *DiagnosticPrinter) SetLimit(n int) {
	p.limit = n
}

// Dropped returns how many diagnostics were suppressed by the limit.
func (p *DiagnosticPrinter) Dropped() int {
	return p.dropped
}

func (p *DiagnosticPrinter) Print(file string, src []byte, diags []parser.Diagnostic) error {
	for _, d := range diags {
		if p.limit > 0 && p.printed >= p.limit {
			p.dropped++
			continue
		}
		if err := p.printOne(file, src, d); err != nil {
			return err
		}
		p.printed++
	}
	return nil
}

func (p *DiagnosticPrinter) printOne(file string, src []byte, d parser.Diagnostic) error {
	start := d.Span.Start
	loc := fmt.Sprintf("%d:%d", start.Line, start.Column)
	if file != "" {
		loc = file + ":" + loc
	}
	sev := p.severityColor(d.Severity).Sprintf("%s[%s]", d.Severity, d.Code)
	if _, err := fmt.Fprintf(p.w, "%s: %s: %s\n", p.locColor.Sprint(loc), sev, d.Message); err != nil {
		return err
	}

	if start.Offset > len(src) {
		return nil
	}
	lineStart := bytes.LastIndexByte(src[:start.Offset], '\n') + 1
	lineEnd := len(src)
	if i := bytes.IndexByte(src[start.Offset:], '\n'); i >= 0 {
		lineEnd = start.Offset + i
	}
	line := strings.TrimRight(string(src[lineStart:lineEnd]), "\r")

	end := d.Span.End.Offset
	if end > lineEnd {
		end = lineEnd
	}
	width := 1
	if end > start.Offset {
		width = max(1, runewidth.StringWidth(string(src[start.Offset:end])))
	}

	num := strconv.Itoa(start.Line)
	gutter := strings.Repeat(" ", len(num))
	underline := "^" + strings.Repeat("~", width-1)
	_, err := fmt.Fprintf(p.w, "%s %s %s\n%s %s %s%s\n",
		p.gutterColor.Sprint(num), p.gutterColor.Sprint("|"), line,
		gutter, p.gutterColor.Sprint("|"), padding(string(src[lineStart:start.Offset])), p.caretColor.Sprint(underline))
	return err
}

// padding returns blanks as wide as prefix on screen. Tabs are kept so
// the terminal expands them the same way as in the source line.
func padding(prefix string) string {
	var sb strings.Builder
	for _, r := range prefix {
		if r == '\t' {
			sb.WriteRune('\t')
			continue
		}
		sb.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return sb.String()
}

func (p *DiagnosticPrinter) severityColor(s parser.Severity) *color.Color {
	switch s {
	case parser.SevError:
		return p.errorColor
	case parser.SevWarning:
		return p.warningColor
	}
	return p.infoColor
}
