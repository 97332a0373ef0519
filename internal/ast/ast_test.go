package ast

import (
	"errors"
	"testing"

	"github.com/znc-lang/znc/internal/allocator"
	"github.com/znc-lang/znc/internal/token"
)

func ident(name string) *Ident { return &Ident{Name: name} }

func integer(text string) *IntegerLit { return &IntegerLit{Text: text} }

func TestExprString(t *testing.T) {
	tests := []struct {
		name     string
		expr     Expr
		expected string
	}{
		{"identifier", ident("x"), "x"},
		{"string", &StringLit{Raw: `"a\"b"`}, `"a\"b"`},
		{"binary", &Binary{Op: token.OpAdd, LHS: integer("1"), RHS: &Binary{Op: token.OpMul, LHS: integer("2"), RHS: integer("3")}}, "(+ 1 (* 2 3))"},
		{"prefix", &Unary{Op: token.OpSub, Prefix: true, X: ident("a")}, "(- a)"},
		{"postfix", &Unary{Op: token.OpInc, X: ident("a")}, "(postfix++ a)"},
		{"ternary", &Ternary{Cond: ident("a"), Then: ident("b"), Else: ident("c")}, "(? a b c)"},
		{"subscript", &Binary{Op: token.OpSubscript, LHS: ident("a"), RHS: integer("0")}, "([] a 0)"},
		{"member", &Binary{Op: token.OpDot, LHS: ident("a"), RHS: ident("b")}, "(. a b)"},
		{"array", &ArrayLit{Elems: []Expr{integer("1"), integer("2")}}, "(array 1 2)"},
		{"empty array", &ArrayLit{}, "(array)"},
		{"call", &Call{Callee: ident("f"), Args: []CallArg{{Value: integer("1")}, {Name: "x", Value: integer("2")}}}, "(call f 1 x=2)"},
		{"cast", &Cast{Type: &ArrayType{Elem: &PrimitiveType{Kwd: token.KwdInt}}, X: ident("v")}, "(cast int[] v)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.expr.String(); got != tt.expected {
				t.Errorf("String() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestStmString(t *testing.T) {
	intType := &PrimitiveType{Kwd: token.KwdInt}

	tests := []struct {
		name     string
		stm      Stm
		expected string
	}{
		{"expression", &ExprStm{X: ident("f")}, "(expr f)"},
		{"let typed", &Let{Name: "x", Type: intType, Init: integer("1")}, "(let x int 1)"},
		{"let untyped", &Let{Name: "x", Init: integer("1")}, "(let x _ 1)"},
		{"let bare", &Let{Name: "x", Type: intType}, "(let x int)"},
		{"if", &If{Cond: ident("c"), Then: &Return{}}, "(if c (return))"},
		{"if else", &If{Cond: ident("c"), Then: &Return{Value: ident("a")}, Else: &Return{Value: ident("b")}}, "(if c (return a) (return b))"},
		{"while", &While{Cond: ident("c"), Body: &Block{}}, "(while c (block))"},
		{"block", &Block{Stms: []Stm{&ExprStm{X: ident("a")}, &ExprStm{X: ident("b")}}}, "(block (expr a) (expr b))"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stm.String(); got != tt.expected {
				t.Errorf("String() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestDeclString(t *testing.T) {
	intType := &PrimitiveType{Kwd: token.KwdInt}

	fn := &FuncDef{
		Name: "f",
		Ret:  intType,
		Args: []*FuncArgDef{
			{Name: "a", Type: intType},
			{Name: "b", Type: intType, Default: integer("1")},
			{Name: "rest", Type: intType, Rest: true},
		},
		Body: &Block{Stms: []Stm{&Return{Value: ident("a")}}},
	}

	if got := fn.String(); got != "(function f int ((a int) (b int 1) (rest int ...)) (block (return a)))" {
		t.Errorf("FuncDef.String() = %q", got)
	}

	fwd := &FuncDef{Name: "g", Ret: intType}
	if !fwd.IsForward() || fwd.String() != "(function g int ())" {
		t.Errorf("forward FuncDef.String() = %q", fwd.String())
	}

	enum := &Enum{Name: "Color", Entries: []*EnumEntry{{Name: "Red"}, {Name: "Green", Value: integer("2")}}}
	if got := enum.String(); got != "(enum Color _ (Red) (Green 2))" {
		t.Errorf("Enum.String() = %q", got)
	}

	alias := &TypeAlias{Name: "Cb", Type: &FuncType{Ret: intType, Args: []*FuncArgDef{{Type: intType, Name: "x"}, {Type: &NamedType{Name: "Color"}, Rest: true}}}}
	if got := alias.String(); got != "(type Cb function int(int x, Color...))" {
		t.Errorf("TypeAlias.String() = %q", got)
	}

	root := &Root{Decls: []Decl{fwd, enum}}
	if got := root.String(); got != "(function g int ())\n(enum Color _ (Red) (Green 2))" {
		t.Errorf("Root.String() = %q", got)
	}

	if fn.DeclName() != "f" || enum.DeclName() != "Color" || alias.DeclName() != "Cb" {
		t.Error("DeclName mismatch")
	}
}

func TestWalk(t *testing.T) {
	intType := &PrimitiveType{Kwd: token.KwdInt}
	body := &Block{Stms: []Stm{
		&Let{Name: "x", Type: intType, Init: &Binary{Op: token.OpAdd, LHS: ident("a"), RHS: integer("1")}},
		&If{Cond: ident("x"), Then: &Return{Value: ident("x")}},
	}}
	fn := &FuncDef{Name: "f", Ret: intType, Args: []*FuncArgDef{{Name: "a", Type: intType}}, Body: body}
	root := &Root{Decls: []Decl{fn}}

	// root, func, ret, arg, arg type, block, let, let type, +, a, 1, if, x, return, x
	if n := Count(root); n != 15 {
		t.Errorf("Count() = %d, expected 15", n)
	}

	var idents []string
	Inspect(root, func(n Node) bool {
		if _, ok := n.(*If); ok {
			return false
		}
		if id, ok := n.(*Ident); ok {
			idents = append(idents, id.Name)
		}
		return true
	})

	if len(idents) != 1 || idents[0] != "a" {
		t.Errorf("expected only identifiers outside the if, got %v", idents)
	}
}

func TestArena(t *testing.T) {
	a := NewArena()

	id, err := New[Ident](a)
	if err != nil {
		t.Fatalf("New[Ident] failed: %v", err)
	}
	id.Name = "x"

	if _, err := New[Binary](a); err != nil {
		t.Fatalf("New[Binary] failed: %v", err)
	}

	if _, err := New[Ident](a); err != nil {
		t.Fatalf("second New[Ident] failed: %v", err)
	}

	if a.Pools() != 2 {
		t.Errorf("expected one pool per node type, got %d", a.Pools())
	}

	if s := a.Stats(); s.Allocations != 3 || s.Used != 3 {
		t.Errorf("unexpected stats %+v", s)
	}

	items := []Expr{id, id, id}
	out, err := Slice(a, items)
	if err != nil {
		t.Fatalf("Slice failed: %v", err)
	}

	if len(out) != 3 || cap(out) != 3 || out[2] != Expr(id) {
		t.Errorf("Slice returned len %d cap %d", len(out), cap(out))
	}

	if empty, err := Slice[Expr](a, nil); empty != nil || err != nil {
		t.Error("empty Slice should return nil, nil")
	}

	a.Release()
	a.Release()

	if _, err := New[Ident](a); !errors.Is(err, allocator.ErrReleased) {
		t.Errorf("expected ErrReleased after Release, got %v", err)
	}

	if id.Name != "x" {
		t.Error("nodes handed out before Release must stay intact")
	}

	var nilArena *Arena
	nilArena.Release()
}

func TestArenaPointerStability(t *testing.T) {
	a := NewArena(WithBlockSize(allocator.MinBlockSize))

	var nodes []*IntegerLit
	for i := 0; i < allocator.MinBlockSize*5; i++ {
		n, err := New[IntegerLit](a)
		if err != nil {
			t.Fatalf("allocation %d failed: %v", i, err)
		}
		n.Text = string(rune('a' + i%26))
		nodes = append(nodes, n)
	}

	if s := a.Stats(); s.Blocks < 3 {
		t.Fatalf("expected the pool to grow past its first block, got %+v", s)
	}

	for i, n := range nodes {
		if n.Text != string(rune('a'+i%26)) {
			t.Fatalf("node %d changed to %q", i, n.Text)
		}
	}
}

func TestArenaLimit(t *testing.T) {
	a := NewArena(WithLimit(allocator.MinBlockSize))

	for i := 0; i < allocator.MinBlockSize; i++ {
		if _, err := New[Ident](a); err != nil {
			t.Fatalf("allocation %d failed: %v", i, err)
		}
	}

	if _, err := New[Ident](a); !errors.Is(err, allocator.ErrOutOfMemory) {
		t.Errorf("expected ErrOutOfMemory, got %v", err)
	}

	// limits are per pool
	if _, err := New[Binary](a); err != nil {
		t.Errorf("other pools should be unaffected: %v", err)
	}
}
