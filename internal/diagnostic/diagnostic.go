// Diagnostic errors for the znc front end.
// Every failure of the lexer, parser, allocator or declaration table surfaces as an *Error that
// knows which source line and token it belongs to.

package diagnostic

import (
	"fmt"

	"github.com/znc-lang/znc/internal/position"
)

// Class represents the kind of failure a diagnostic reports.
type Class int

const (
	Lexical Class = iota
	Syntax
	Allocation
	Semantic
)

func (c Class) String() string {
	switch c {
	case Lexical:
		return "lexical"
	case Syntax:
		return "syntax"
	case Allocation:
		return "allocation"
	case Semantic:
		return "semantic"
	default:
		return "unknown"
	}
}

// Error is a single front-end diagnostic. Pos and Text locate the offending
// token; Source is used to print the surrounding line.
type Error struct {
	Source *position.SourceFile
	Err    error
	Text   string
	Msg    string
	Pos    position.Position
	Class  Class
}

// New creates a diagnostic anchored at a token.
func New(class Class, src *position.SourceFile, pos position.Position, text, format string, args ...interface{}) *Error {
	return &Error{
		Class:  class,
		Source: src,
		Pos:    pos,
		Text:   text,
		Msg:    fmt.Sprintf(format, args...),
	}
}

// Wrap creates a diagnostic for a failure with an underlying cause, such as
// arena exhaustion. The cause is reachable through errors.Is and errors.As.
func Wrap(class Class, src *position.SourceFile, pos position.Position, text string, err error) *Error {
	return &Error{
		Class:  class,
		Source: src,
		Pos:    pos,
		Text:   text,
		Msg:    err.Error(),
		Err:    err,
	}
}

// Error returns the one-line form "name:line:col: class error: message".
func (e *Error) Error() string {
	if !e.Pos.IsValid() {
		return fmt.Sprintf("znc: %s error: %s", e.Class, e.Msg)
	}
	return fmt.Sprintf("%s: %s error: %s", e.Pos, e.Class, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Line returns the source line holding the diagnostic, or "" if unknown.
func (e *Error) Line() string {
	if e.Source == nil || !e.Pos.IsValid() {
		return ""
	}
	line, _ := e.Source.LineAt(e.Pos.Offset)
	return line
}
