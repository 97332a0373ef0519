package ast

import (
	"strings"

	"github.com/znc-lang/znc/internal/lexer"
)

// FuncArgDef is one declared function argument. Default is nil for required
// arguments; Rest marks the trailing variadic argument.
type FuncArgDef struct {
	Tok     *lexer.Token
	Type    TypeRef
	NameTok *lexer.Token
	Default Expr
	Name    string
	Rest    bool
}

// FuncDef is a function definition. Body is nil for a forward declaration.
type FuncDef struct {
	Tok     *lexer.Token
	Ret     TypeRef
	NameTok *lexer.Token
	Body    *Block
	Name    string
	Args    []*FuncArgDef
}

// EnumEntry is one enumerator with an optional constant value.
type EnumEntry struct {
	Tok   *lexer.Token
	Value Expr
	Name  string
}

// Enum is an enumeration. Type is the optional backing type.
type Enum struct {
	Tok     *lexer.Token
	Type    TypeRef
	NameTok *lexer.Token
	Name    string
	Entries []*EnumEntry
}

// TypeAlias is type Name = TypeRef;
type TypeAlias struct {
	Tok     *lexer.Token
	Type    TypeRef
	NameTok *lexer.Token
	Name    string
}

func (d *FuncArgDef) Token() *lexer.Token { return d.Tok }
func (d *FuncDef) Token() *lexer.Token    { return d.Tok }
func (d *EnumEntry) Token() *lexer.Token  { return d.Tok }
func (d *Enum) Token() *lexer.Token       { return d.Tok }
func (d *TypeAlias) Token() *lexer.Token  { return d.Tok }

func (*FuncDef) declNode()   {}
func (*Enum) declNode()      {}
func (*TypeAlias) declNode() {}

func (d *FuncDef) DeclName() string   { return d.Name }
func (d *Enum) DeclName() string      { return d.Name }
func (d *TypeAlias) DeclName() string { return d.Name }

// IsForward reports whether the definition has no body.
func (d *FuncDef) IsForward() bool { return d.Body == nil }

func (d *FuncArgDef) String() string {
	switch {
	case d.Rest:
		return sexpr(d.Name, str(d.Type), "...")
	case d.Default != nil:
		return sexpr(d.Name, str(d.Type), d.Default.String())
	}
	return sexpr(d.Name, str(d.Type))
}

func argList(args []*FuncArgDef) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func (d *FuncDef) String() string {
	if d.Body == nil {
		return sexpr("function", d.Name, str(d.Ret), argList(d.Args))
	}
	return sexpr("function", d.Name, str(d.Ret), argList(d.Args), d.Body.String())
}

func (d *EnumEntry) String() string {
	if d.Value == nil {
		return sexpr(d.Name)
	}
	return sexpr(d.Name, d.Value.String())
}

func (d *Enum) String() string {
	parts := make([]string, 0, len(d.Entries)+2)
	parts = append(parts, d.Name, str(d.Type))
	for _, e := range d.Entries {
		parts = append(parts, e.String())
	}
	return sexpr("enum", parts...)
}

func (d *TypeAlias) String() string {
	return sexpr("type", d.Name, str(d.Type))
}
