// Package parser implements the znc recursive descent parser.
//
// The parser pulls tokens from a lexer.Lexer and allocates nodes from an
// ast.Arena. It stops at the first error: the diagnostic is reported through
// the lexer's reporter and returned, and no partial tree is produced.
package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/znc-lang/znc/internal/ast"
	"github.com/znc-lang/znc/internal/diagnostic"
	"github.com/znc-lang/znc/internal/lexer"
	"github.com/znc-lang/znc/internal/token"
)

// DefaultMaxDepth bounds the nesting of expressions, statements and types.
const DefaultMaxDepth = 1024

const endOfInput = "unexpected end of input"

// Parser represents the recursive descent parser
type Parser struct {
	lex      *lexer.Lexer
	arena    *ast.Arena
	err      error
	depth    int
	maxDepth int
}

// Option configures a Parser.
type Option func(*Parser)

// WithMaxDepth sets the maximum nesting depth. Values below 1 keep the default.
func WithMaxDepth(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.maxDepth = n
		}
	}
}

// New creates a parser reading from lex and allocating into arena.
func New(lex *lexer.Lexer, arena *ast.Arena, opts ...Option) *Parser {
	p := &Parser{
		lex:      lex,
		arena:    arena,
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Err returns the error that stopped the parser, if any.
func (p *Parser) Err() error { return p.err }

// Parse parses declarations until end of input.
func (p *Parser) Parse() (*ast.Root, error) {
	if p.err != nil {
		return nil, p.err
	}

	root, err := alloc[ast.Root](p, p.lex.Peek(1))
	if err != nil {
		return nil, err
	}

	var decls []ast.Decl
	for {
		tok := p.lex.Peek(1)
		if tok.Kind == token.EOF {
			break
		}

		decl, err := p.parseDecl()
		if err != nil {
			return nil, err
		}
		decls = append(decls, decl)
	}

	if root.Decls, err = slice(p, p.lex.Peek(0), decls); err != nil {
		return nil, err
	}

	return root, nil
}

// ParseDecl parses one top-level declaration.
func (p *Parser) ParseDecl() (ast.Decl, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.parseDecl()
}

func (p *Parser) parseDecl() (ast.Decl, error) {
	tok := p.lex.Peek(1)

	switch {
	case tok.IsKwd(token.KwdFunction):
		return p.parseFuncDef()
	case tok.IsKwd(token.KwdEnum):
		return p.parseEnum()
	case tok.IsKwd(token.KwdType):
		return p.parseTypeAlias()
	}

	return nil, p.unexpected(tok, "declaration")
}

// enter records one level of nesting and fails once the limit is exceeded.
func (p *Parser) enter(tok *lexer.Token) error {
	p.depth++
	if p.depth > p.maxDepth {
		return p.errorf(tok, "nesting too deep (limit %d)", p.maxDepth)
	}
	return nil
}

func (p *Parser) leave() { p.depth-- }

// errorf reports a syntax error at tok. Only the first error is kept.
func (p *Parser) errorf(tok *lexer.Token, format string, args ...interface{}) error {
	if p.err != nil {
		return p.err
	}

	// the lexer already reported why the stream stopped
	if tok.Kind == token.Error {
		if err := p.lex.Err(); err != nil {
			p.err = err
			return err
		}
	}

	e := tok.Errorf(diagnostic.Syntax, format, args...)
	p.lex.Report(e)
	p.err = e

	return e
}

// unexpected reports tok where what was expected.
func (p *Parser) unexpected(tok *lexer.Token, what string) error {
	if tok.Kind == token.EOF {
		return p.errorf(tok, "%s, expected %s", endOfInput, what)
	}
	return p.errorf(tok, "expected %s, got %s '%s'", what, tok.Kind, tok.Text)
}

// IsIncomplete reports whether err is a syntax error caused by the input
// ending early, so that appending more input could fix it.
func IsIncomplete(err error) bool {
	var de *diagnostic.Error
	if !errors.As(err, &de) || de.Class != diagnostic.Syntax {
		return false
	}
	return strings.HasPrefix(de.Msg, endOfInput)
}

// expect consumes the next token if it has the given kind and text.
func (p *Parser) expect(kind token.Kind, text string) (*lexer.Token, error) {
	tok := p.lex.Peek(1)
	if !tok.Is(kind, text) {
		what := kind.String()
		if text != "" {
			what = fmt.Sprintf("'%s'", text)
		}
		return nil, p.unexpected(tok, what)
	}
	return p.lex.Consume(), nil
}

// expectOp consumes the next token if it is the operator op.
func (p *Parser) expectOp(op token.Op) (*lexer.Token, error) {
	return p.expect(token.Operator, op.String())
}

// peekIs reports whether the token at offset has the given kind and text.
func (p *Parser) peekIs(offset int, kind token.Kind, text string) bool {
	return p.lex.Peek(offset).Is(kind, text)
}

func (p *Parser) allocError(tok *lexer.Token, err error) error {
	if p.err != nil {
		return p.err
	}

	e := diagnostic.Wrap(diagnostic.Allocation, tok.Source(), tok.Position(), tok.Text, err)
	p.lex.Report(e)
	p.err = e

	return e
}

// alloc allocates a node from the parser's arena, reporting failure at tok.
func alloc[T any](p *Parser, tok *lexer.Token) (*T, error) {
	n, err := ast.New[T](p.arena)
	if err != nil {
		return nil, p.allocError(tok, err)
	}
	return n, nil
}

// slice moves a list built during parsing into arena memory.
func slice[T any](p *Parser, tok *lexer.Token, items []T) ([]T, error) {
	out, err := ast.Slice(p.arena, items)
	if err != nil {
		return nil, p.allocError(tok, err)
	}
	return out, nil
}
