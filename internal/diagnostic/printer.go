package diagnostic

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/text/width"

	"github.com/znc-lang/znc/internal/position"
)

// Reporter receives diagnostics as soon as they are produced.
type Reporter interface {
	Report(e *Error)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(e *Error)

func (f ReporterFunc) Report(e *Error) { f(e) }

// Discard drops every diagnostic.
var Discard Reporter = ReporterFunc(func(*Error) {})

const (
	ansiReset = "\x1b[0m"
	ansiBold  = "\x1b[1m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
	ansiBlue  = "\x1b[34m"
)

// Printer writes diagnostics in the compiler's human-readable form:
//
//	main.zn:3:9: syntax error: expected ';'
//	  3 |     x = y z
//	    |           ^
type Printer struct {
	w     io.Writer
	mu    sync.Mutex
	color bool
}

// NewPrinter creates a Printer writing to w, using ANSI colors when color is set.
func NewPrinter(w io.Writer, color bool) *Printer {
	return &Printer{w: w, color: color}
}

// Report implements Reporter.
func (p *Printer) Report(e *Error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	io.WriteString(p.w, render(e, p.color))
}

// Format renders a diagnostic without colors.
func Format(e *Error) string {
	return render(e, false)
}

func render(e *Error, color bool) string {
	var b strings.Builder

	paint := func(code, s string) string {
		if !color {
			return s
		}
		return code + s + ansiReset
	}

	if e.Pos.IsValid() {
		b.WriteString(paint(ansiBold, e.Pos.String()+":"))
		b.WriteByte(' ')
	} else {
		b.WriteString(paint(ansiBold, "znc:"))
		b.WriteByte(' ')
	}
	b.WriteString(paint(ansiRed, e.Class.String()+" error:"))
	fmt.Fprintf(&b, " %s\n", e.Msg)

	if e.Source == nil || !e.Pos.IsValid() || e.Pos.Offset > len(e.Source.Content) {
		return b.String()
	}

	line, start := e.Source.LineAt(e.Pos.Offset)
	num := strconv.Itoa(e.Pos.Line)
	gutter := "  " + strings.Repeat(" ", len(num)) + " | "

	b.WriteString(paint(ansiBlue, "  "+num+" | "))
	b.WriteString(ExpandTabs(line))
	b.WriteByte('\n')

	prefix := e.Source.Content[start:e.Pos.Offset]
	pad := DisplayWidth(prefix)
	span := DisplayWidth(e.Text)
	if span == 0 {
		span = 1
	}

	b.WriteString(paint(ansiBlue, gutter))
	b.WriteString(strings.Repeat(" ", pad))
	b.WriteString(paint(ansiGreen, strings.Repeat("^", span)))
	b.WriteByte('\n')

	return b.String()
}

// ExpandTabs replaces tabs with spaces up to the next 8-column stop.
func ExpandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}

	var b strings.Builder
	col := 1
	for _, r := range s {
		if r == '\t' {
			next := position.NextTabStop(col)
			b.WriteString(strings.Repeat(" ", next-col))
			col = next
			continue
		}
		b.WriteRune(r)
		col += runeWidth(r)
	}
	return b.String()
}

// DisplayWidth returns the number of terminal cells s occupies, expanding
// tabs and counting East Asian wide runes as two cells.
func DisplayWidth(s string) int {
	col := 1
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]
		if r == '\t' {
			col = position.NextTabStop(col)
			continue
		}
		col += runeWidth(r)
	}
	return col - 1
}

func runeWidth(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	}
	return 1
}
