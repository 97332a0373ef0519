// Package position provides source positions and source files for the znc
// front end. Diagnostics use it to recover file names and source lines.
package position

import (
	"fmt"
	"strings"
)

// TabWidth is the column stop interval for tab characters.
const TabWidth = 8

// Position represents a single point in source code
type Position struct {
	Filename string // Source file name
	Line     int    // 1-based line number
	Column   int    // 1-based column number, tabs expanded
	Offset   int    // 0-based byte offset in source
}

// IsValid returns true if the position is valid
func (p Position) IsValid() bool {
	return p.Line > 0 && p.Column > 0 && p.Offset >= 0
}

// String returns name:line:col, or line:col when the file is unnamed.
func (p Position) String() string {
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Before returns true if this position comes before other
func (p Position) Before(other Position) bool {
	if p.Filename != other.Filename {
		return p.Filename < other.Filename
	}
	return p.Offset < other.Offset
}

// NextTabStop returns the column reached after a tab at col.
func NextTabStop(col int) int {
	return ((col-1)/TabWidth+1)*TabWidth + 1
}

// SourceFile represents a source file with content and position tracking
type SourceFile struct {
	Filename string // Display name used in diagnostics
	Content  string // Source code content
	lines    []string
}

// NewSourceFile creates a new source file from content
func NewSourceFile(filename, content string) *SourceFile {
	return &SourceFile{
		Filename: filename,
		Content:  content,
	}
}

// Lines returns the source split into lines, cached after the first call.
func (sf *SourceFile) Lines() []string {
	if sf.lines == nil {
		sf.lines = strings.Split(sf.Content, "\n")
	}
	return sf.lines
}

// GetLine returns the specified line (1-based) without its line terminator,
// or an empty string if the line does not exist.
func (sf *SourceFile) GetLine(lineNum int) string {
	lines := sf.Lines()
	if lineNum < 1 || lineNum > len(lines) {
		return ""
	}
	return strings.TrimRight(lines[lineNum-1], "\r")
}

// LineAt returns the line containing byte offset and the offset of its first byte.
func (sf *SourceFile) LineAt(offset int) (string, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(sf.Content) {
		offset = len(sf.Content)
	}
	start := strings.LastIndexByte(sf.Content[:offset], '\n') + 1
	end := strings.IndexAny(sf.Content[start:], "\r\n")
	if end < 0 {
		return sf.Content[start:], start
	}
	return sf.Content[start : start+end], start
}

// PositionFromOffset converts a byte offset to a Position using the same
// column rules as the lexer.
func (sf *SourceFile) PositionFromOffset(offset int) Position {
	if offset < 0 || offset > len(sf.Content) {
		return Position{}
	}

	line := 1
	column := 1

	for i := 0; i < offset; i++ {
		switch sf.Content[i] {
		case '\n':
			line++
			column = 1
		case '\r':
			column = 1
		case '\t':
			column = NextTabStop(column)
		default:
			column++
		}
	}

	return Position{
		Filename: sf.Filename,
		Line:     line,
		Column:   column,
		Offset:   offset,
	}
}
