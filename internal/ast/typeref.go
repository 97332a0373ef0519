package ast

import (
	"strings"

	"github.com/znc-lang/znc/internal/lexer"
	"github.com/znc-lang/znc/internal/token"
)

// PrimitiveType is a primitive type keyword such as int or bool.
type PrimitiveType struct {
	Tok *lexer.Token
	Kwd token.Kwd
}

// ArrayType is Elem[].
type ArrayType struct {
	Tok  *lexer.Token
	Elem TypeRef
}

// FuncType is function Ret(args).
type FuncType struct {
	Tok  *lexer.Token
	Ret  TypeRef
	Args []*FuncArgDef
}

// NamedType refers to an enum or alias by name.
type NamedType struct {
	Tok  *lexer.Token
	Name string
}

func (t *PrimitiveType) Token() *lexer.Token { return t.Tok }
func (t *ArrayType) Token() *lexer.Token     { return t.Tok }
func (t *FuncType) Token() *lexer.Token      { return t.Tok }
func (t *NamedType) Token() *lexer.Token     { return t.Tok }

func (*PrimitiveType) typeNode() {}
func (*ArrayType) typeNode()     {}
func (*FuncType) typeNode()      {}
func (*NamedType) typeNode()     {}

// Type references print in source spelling rather than as S-expressions.

func (t *PrimitiveType) String() string { return t.Kwd.String() }
func (t *ArrayType) String() string     { return str(t.Elem) + "[]" }
func (t *NamedType) String() string     { return t.Name }

func (t *FuncType) String() string {
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		s := str(a.Type)
		if a.Rest {
			s += "..."
		}
		if a.Name != "" {
			s += " " + a.Name
		}
		parts[i] = s
	}
	return "function " + str(t.Ret) + "(" + strings.Join(parts, ", ") + ")"
}
