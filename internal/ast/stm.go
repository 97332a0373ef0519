package ast

import "github.com/znc-lang/znc/internal/lexer"

// ExprStm is an expression followed by ';'.
type ExprStm struct {
	Tok *lexer.Token
	X   Expr
}

// Let declares a local. Type is nil when omitted; Init is nil without '='.
type Let struct {
	Tok     *lexer.Token
	Type    TypeRef
	NameTok *lexer.Token
	Init    Expr
	Name    string
}

// If is if (cond) then [else else].
type If struct {
	Tok  *lexer.Token
	Cond Expr
	Then Stm
	Else Stm
}

// While is while (cond) body.
type While struct {
	Tok  *lexer.Token
	Cond Expr
	Body Stm
}

// Return is return [value];
type Return struct {
	Tok   *lexer.Token
	Value Expr
}

// Block is { stm... } with statements in source order.
type Block struct {
	Tok  *lexer.Token
	Stms []Stm
}

func (s *ExprStm) Token() *lexer.Token { return s.Tok }
func (s *Let) Token() *lexer.Token     { return s.Tok }
func (s *If) Token() *lexer.Token      { return s.Tok }
func (s *While) Token() *lexer.Token   { return s.Tok }
func (s *Return) Token() *lexer.Token  { return s.Tok }
func (s *Block) Token() *lexer.Token   { return s.Tok }

func (*ExprStm) stmNode() {}
func (*Let) stmNode()     {}
func (*If) stmNode()      {}
func (*While) stmNode()   {}
func (*Return) stmNode()  {}
func (*Block) stmNode()   {}

func (s *ExprStm) String() string { return sexpr("expr", str(s.X)) }

func (s *Let) String() string {
	parts := []string{s.Name, str(s.Type)}
	if s.Init != nil {
		parts = append(parts, s.Init.String())
	}
	return sexpr("let", parts...)
}

func (s *If) String() string {
	if s.Else == nil {
		return sexpr("if", str(s.Cond), str(s.Then))
	}
	return sexpr("if", str(s.Cond), str(s.Then), s.Else.String())
}

func (s *While) String() string { return sexpr("while", str(s.Cond), str(s.Body)) }

func (s *Return) String() string {
	if s.Value == nil {
		return "(return)"
	}
	return sexpr("return", s.Value.String())
}

func (s *Block) String() string {
	parts := make([]string, len(s.Stms))
	for i, st := range s.Stms {
		parts[i] = str(st)
	}
	return sexpr("block", parts...)
}
