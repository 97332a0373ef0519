package ast

import (
	"github.com/znc-lang/znc/internal/lexer"
	"github.com/znc-lang/znc/internal/token"
)

// Ident is a name reference.
type Ident struct {
	Tok  *lexer.Token
	Name string
}

// StringLit is a string literal; Raw keeps the quotes and escapes as written.
type StringLit struct {
	Tok *lexer.Token
	Raw string
}

// IntegerLit is an integer literal; Text may contain '_' separators.
type IntegerLit struct {
	Tok  *lexer.Token
	Text string
}

// ArrayLit is an array literal [e, e, ...].
type ArrayLit struct {
	Tok   *lexer.Token
	Elems []Expr
}

// Unary is a prefix or postfix operation.
type Unary struct {
	Tok    *lexer.Token
	X      Expr
	Op     token.Op
	Prefix bool
}

// Binary is an infix operation. Member access uses token.OpDot and
// subscripting token.OpSubscript.
type Binary struct {
	Tok *lexer.Token
	LHS Expr
	RHS Expr
	Op  token.Op
}

// Ternary is cond ? then : else.
type Ternary struct {
	Tok  *lexer.Token
	Cond Expr
	Then Expr
	Else Expr
}

// CallArg is one call argument. Name is empty for positional arguments.
type CallArg struct {
	NameTok *lexer.Token
	Value   Expr
	Name    string
}

// Call is a function call.
type Call struct {
	Tok    *lexer.Token
	Callee Expr
	Args   []CallArg
}

// Cast is <Type> expr.
type Cast struct {
	Tok  *lexer.Token
	Type TypeRef
	X    Expr
}

func (e *Ident) Token() *lexer.Token      { return e.Tok }
func (e *StringLit) Token() *lexer.Token  { return e.Tok }
func (e *IntegerLit) Token() *lexer.Token { return e.Tok }
func (e *ArrayLit) Token() *lexer.Token   { return e.Tok }
func (e *Unary) Token() *lexer.Token      { return e.Tok }
func (e *Binary) Token() *lexer.Token     { return e.Tok }
func (e *Ternary) Token() *lexer.Token    { return e.Tok }
func (e *Call) Token() *lexer.Token       { return e.Tok }
func (e *Cast) Token() *lexer.Token       { return e.Tok }

func (*Ident) exprNode()      {}
func (*StringLit) exprNode()  {}
func (*IntegerLit) exprNode() {}
func (*ArrayLit) exprNode()   {}
func (*Unary) exprNode()      {}
func (*Binary) exprNode()     {}
func (*Ternary) exprNode()    {}
func (*Call) exprNode()       {}
func (*Cast) exprNode()       {}

func (e *Ident) String() string      { return e.Name }
func (e *StringLit) String() string  { return e.Raw }
func (e *IntegerLit) String() string { return e.Text }

func (e *ArrayLit) String() string {
	parts := make([]string, len(e.Elems))
	for i, el := range e.Elems {
		parts[i] = str(el)
	}
	return sexpr("array", parts...)
}

func (e *Unary) String() string {
	if e.Prefix {
		return sexpr(e.Op.String(), str(e.X))
	}
	return sexpr("postfix"+e.Op.String(), str(e.X))
}

func (e *Binary) String() string {
	return sexpr(e.Op.String(), str(e.LHS), str(e.RHS))
}

func (e *Ternary) String() string {
	return sexpr("?", str(e.Cond), str(e.Then), str(e.Else))
}

func (e *Call) String() string {
	parts := make([]string, 0, len(e.Args)+1)
	parts = append(parts, str(e.Callee))
	for _, a := range e.Args {
		if a.Name != "" {
			parts = append(parts, a.Name+"="+str(a.Value))
		} else {
			parts = append(parts, str(a.Value))
		}
	}
	return sexpr("call", parts...)
}

func (e *Cast) String() string {
	return sexpr("cast", str(e.Type), str(e.X))
}
