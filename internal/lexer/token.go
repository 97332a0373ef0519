package lexer

import (
	"fmt"

	"github.com/znc-lang/znc/internal/diagnostic"
	"github.com/znc-lang/znc/internal/position"
	"github.com/znc-lang/znc/internal/token"
)

// Token represents a lexical token with position information.
// Text is a view into the lexer's source; tokens never change once emitted.
type Token struct {
	lexer *Lexer
	Text  string
	Kind  token.Kind
	Op    token.Op  // set for operator tokens
	Kwd   token.Kwd // set for keyword tokens
	Line  int       // 1-based line
	Col   int       // 1-based column, tabs expanded
	Pos   int       // byte offset
}

// String returns a one-line dump of the token: line:col kind "text".
func (t *Token) String() string {
	return fmt.Sprintf("%d:%d %s %q", t.Line, t.Col, t.Kind, t.Text)
}

// Lexer returns the lexer that produced the token.
func (t *Token) Lexer() *Lexer { return t.lexer }

// Source returns the file the token was read from.
func (t *Token) Source() *position.SourceFile {
	if t.lexer == nil {
		return nil
	}
	return t.lexer.src
}

// Position returns the token's location including the file name.
func (t *Token) Position() position.Position {
	pos := position.Position{Line: t.Line, Column: t.Col, Offset: t.Pos}
	if src := t.Source(); src != nil {
		pos.Filename = src.Filename
	}
	return pos
}

// Is reports whether the token has the given kind and, when text is not
// empty, exactly that text.
func (t *Token) Is(kind token.Kind, text string) bool {
	if t == nil || t.Kind != kind {
		return false
	}
	return text == "" || t.Text == text
}

// IsOp reports whether the token is the operator op.
func (t *Token) IsOp(op token.Op) bool {
	return t != nil && t.Kind == token.Operator && t.Op == op
}

// IsKwd reports whether the token is the keyword kwd.
func (t *Token) IsKwd(kwd token.Kwd) bool {
	return t != nil && t.Kind == token.Keyword && t.Kwd == kwd
}

// Errorf builds a diagnostic anchored at the token.
func (t *Token) Errorf(class diagnostic.Class, format string, args ...interface{}) *diagnostic.Error {
	return diagnostic.New(class, t.Source(), t.Position(), t.Text, format, args...)
}
