// Package ast defines the Abstract Syntax Tree (AST) nodes for the znc language.
//
// All nodes are allocated from an Arena owned by one translation unit and
// live as long as it does. Every node keeps the token it was parsed from so
// later passes can report diagnostics at the right place. String renders a
// node as an S-expression.
package ast

import (
	"strings"

	"github.com/znc-lang/znc/internal/lexer"
)

// Node is the base interface for all AST nodes.
type Node interface {
	// Token returns the token the node was parsed from.
	Token() *lexer.Token
	// String returns the node as an S-expression.
	String() string
}

// Expr represents all expression nodes in the AST.
type Expr interface {
	Node
	exprNode()
}

// Stm represents all statement nodes in the AST.
type Stm interface {
	Node
	stmNode()
}

// Decl represents all top-level declarations.
type Decl interface {
	Node
	declNode()
	// DeclName returns the declared name.
	DeclName() string
}

// TypeRef represents all syntactic type references.
type TypeRef interface {
	Node
	typeNode()
}

// Root represents a complete translation unit: its declarations in source order.
type Root struct {
	Decls []Decl
}

func (r *Root) Token() *lexer.Token {
	if len(r.Decls) == 0 {
		return nil
	}
	return r.Decls[0].Token()
}

func (r *Root) String() string {
	parts := make([]string, len(r.Decls))
	for i, d := range r.Decls {
		parts[i] = d.String()
	}
	return strings.Join(parts, "\n")
}

// sexpr renders (head part part ...).
func sexpr(head string, parts ...string) string {
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(head)
	for _, p := range parts {
		b.WriteByte(' ')
		b.WriteString(p)
	}
	b.WriteByte(')')
	return b.String()
}

// str renders an optional child, "_" when absent.
func str(n Node) string {
	if n == nil {
		return "_"
	}
	return n.String()
}
