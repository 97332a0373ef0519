package diagnostic

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Engine collects diagnostics from several translation units, possibly
// checked concurrently, and forwards each one to an optional Reporter.
type Engine struct {
	next   Reporter
	errors []*Error
	mu     sync.Mutex
}

// NewEngine creates an engine forwarding to next, which may be nil.
func NewEngine(next Reporter) *Engine {
	return &Engine{next: next}
}

// Report implements Reporter.
func (de *Engine) Report(e *Error) {
	de.mu.Lock()
	de.errors = append(de.errors, e)
	de.mu.Unlock()

	if de.next != nil {
		de.next.Report(e)
	}
}

// Errors returns the collected diagnostics ordered by file, line and column.
func (de *Engine) Errors() []*Error {
	de.mu.Lock()
	defer de.mu.Unlock()

	out := make([]*Error, len(de.errors))
	copy(out, de.errors)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Pos, out[j].Pos

		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}

		if a.Line != b.Line {
			return a.Line < b.Line
		}

		return a.Column < b.Column
	})

	return out
}

// HasErrors returns true if anything was reported.
func (de *Engine) HasErrors() bool {
	de.mu.Lock()
	defer de.mu.Unlock()

	return len(de.errors) > 0
}

// Clear removes all diagnostics.
func (de *Engine) Clear() {
	de.mu.Lock()
	de.errors = de.errors[:0]
	de.mu.Unlock()
}

// Summary returns a one-line count of the collected diagnostics per class.
func (de *Engine) Summary() string {
	errs := de.Errors()
	if len(errs) == 0 {
		return "no errors"
	}

	counts := make(map[Class]int)
	for _, e := range errs {
		counts[e.Class]++
	}

	var parts []string
	for _, c := range []Class{Lexical, Syntax, Allocation, Semantic} {
		if n := counts[c]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, c))
		}
	}

	return fmt.Sprintf("%d error(s): %s", len(errs), strings.Join(parts, ", "))
}
