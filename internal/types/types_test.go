package types

import (
	"errors"
	"strings"
	"testing"

	"github.com/znc-lang/znc/internal/ast"
	"github.com/znc-lang/znc/internal/diagnostic"
	"github.com/znc-lang/znc/internal/lexer"
	"github.com/znc-lang/znc/internal/parser"
	"github.com/znc-lang/znc/internal/token"
)

func parseRoot(t *testing.T, src string) *ast.Root {
	t.Helper()

	lex, err := lexer.New("types.zn", src)
	if err != nil {
		t.Fatalf("lexer.New failed: %v", err)
	}
	arena := ast.NewArena()
	t.Cleanup(func() {
		arena.Release()
		lex.Release()
	})

	root, err := parser.New(lex, arena).Parse()
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", src, err)
	}
	return root
}

func parseType(t *testing.T, src string) ast.TypeRef {
	t.Helper()

	lex, err := lexer.New("types.zn", src)
	if err != nil {
		t.Fatalf("lexer.New failed: %v", err)
	}
	arena := ast.NewArena()
	t.Cleanup(func() {
		arena.Release()
		lex.Release()
	})

	ref, err := parser.New(lex, arena).ParseTypeRef()
	if err != nil {
		t.Fatalf("ParseTypeRef(%q) failed: %v", src, err)
	}
	return ref
}

func TestResolve(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		kind     Kind
	}{
		{"int", "int", KindPrimitive},
		{"ubyte", "ubyte", KindPrimitive},
		{"int[]", "int[]", KindArray},
		{"char[][]", "char[][]", KindArray},
		{"Color", "Color", KindNamed},
		{"Color[]", "Color[]", KindArray},
		{"function int()", "function int()", KindFunction},
		{"function int(int, char[])", "function int(int, char[])", KindFunction},
		{"function int(int a, int b = 1, int... rest)", "function int(int a, int b = ..., int... rest)", KindFunction},
		{"function function bool(int)(Color c)[]", "function function bool(int)(Color c)[]", KindArray},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			sig, err := Resolve(parseType(t, tt.input))
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if sig.Kind != tt.kind {
				t.Errorf("kind %s, expected %s", sig.Kind, tt.kind)
			}
			if got := sig.String(); got != tt.expected {
				t.Errorf("String() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestResolveFunctionArgs(t *testing.T) {
	sig, err := Resolve(parseType(t, "function int(int a, int b = 1 + 2, char[]... rest)"))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if len(sig.Args) != 3 {
		t.Fatalf("expected 3 arguments, got %d", len(sig.Args))
	}
	if sig.Args[1].Default == nil || sig.Args[1].Default.String() != "(+ 1 2)" {
		t.Errorf("default value not carried: %v", sig.Args[1].Default)
	}
	if !sig.IsRest() || sig.Required() != 1 {
		t.Errorf("IsRest() = %v, Required() = %d", sig.IsRest(), sig.Required())
	}
	if !sig.Args[2].Type.Equal(ArrayOf(Primitive(token.KwdChar))) {
		t.Errorf("rest argument type %s", sig.Args[2].Type)
	}
}

func TestResolveMalformed(t *testing.T) {
	tests := []struct {
		name string
		ref  ast.TypeRef
	}{
		{"nil", nil},
		{"nil primitive", (*ast.PrimitiveType)(nil)},
		{"keyword that is not a type", &ast.PrimitiveType{Kwd: token.KwdWhile}},
		{"array without element", &ast.ArrayType{}},
		{"function without return type", &ast.FuncType{}},
		{"unnamed", &ast.NamedType{}},
		{"bad argument", &ast.FuncType{Ret: &ast.PrimitiveType{Kwd: token.KwdInt}, Args: []*ast.FuncArgDef{{Name: "x"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := Resolve(tt.ref)
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("expected ErrMalformed, got %v", err)
			}
			if sig != nil {
				t.Error("a failed resolve must not return a signature")
			}
		})
	}
}

func TestEqual(t *testing.T) {
	intSig := Primitive(token.KwdInt)

	tests := []struct {
		name  string
		a, b  *Sig
		equal bool
	}{
		{"same primitive", Primitive(token.KwdInt), intSig, true},
		{"different primitive", Primitive(token.KwdLong), intSig, false},
		{"array", ArrayOf(intSig), ArrayOf(Primitive(token.KwdInt)), true},
		{"array depth", ArrayOf(ArrayOf(intSig)), ArrayOf(intSig), false},
		{"named", Named("Color"), Named("Color"), true},
		{"named differs", Named("Color"), Named("Shape"), false},
		{"kind differs", Named("int"), intSig, false},
		{
			"argument names ignored",
			Func(intSig, &ArgSig{Type: intSig, Name: "a"}),
			Func(intSig, &ArgSig{Type: intSig, Name: "b"}),
			true,
		},
		{
			"rest flag compared",
			Func(intSig, &ArgSig{Type: intSig, Rest: true}),
			Func(intSig, &ArgSig{Type: intSig}),
			false,
		},
		{"arity", Func(intSig, &ArgSig{Type: intSig}), Func(intSig), false},
		{"return type", Func(intSig), Func(Primitive(token.KwdBool)), false},
		{"nil", nil, nil, true},
		{"nil and non-nil", nil, intSig, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.equal {
				t.Errorf("%s.Equal(%s) = %v, expected %v", tt.a, tt.b, got, tt.equal)
			}
			if got := tt.b.Equal(tt.a); got != tt.equal {
				t.Errorf("Equal is not symmetric for %s and %s", tt.a, tt.b)
			}
		})
	}
}

func TestRelease(t *testing.T) {
	sig, err := Resolve(parseType(t, "function int[](Color c = 1, int[]... rest)"))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	ret, args := sig.Ret, sig.Args
	sig.Release()

	if sig.Ret != nil || sig.Args != nil {
		t.Error("Release must clear the function's references")
	}
	if ret.Elem != nil {
		t.Error("Release must walk into the return type")
	}
	for i, a := range args {
		if a.Type != nil || a.Default != nil {
			t.Errorf("argument %d still holds references", i)
		}
	}

	sig.Release()
	var nilSig *Sig
	nilSig.Release()
}

func TestTable(t *testing.T) {
	root := parseRoot(t, `
enum Color ubyte { Red, Green, Blue }
enum Plain { A }
type Palette = Color[];
type Handler = function int(Color c, int... rest);
function int paint(Palette p, Handler h = nil) { return 0; }
`)

	table, err := Build(root)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(table.Release)

	if table.Len() != 5 {
		t.Fatalf("expected 5 entries, got %d", table.Len())
	}

	expected := strings.Join([]string{
		"enum Color: ubyte",
		"enum Plain",
		"type Palette: Color[]",
		"type Handler: function int(Color c, int... rest)",
		"function paint: function int(Palette p, Handler h = ...)",
	}, "\n")
	if got := table.String(); got != expected {
		t.Errorf("String() =\n%s\nexpected\n%s", got, expected)
	}

	color, ok := table.Lookup("Color")
	if !ok || color.Kind != DeclEnum || color.Sig.Kind != KindNamed {
		t.Fatalf("unexpected Color entry %+v", color)
	}
	if !color.Sig.Backing.Equal(Primitive(token.KwdUbyte)) {
		t.Errorf("enum backing type %s", color.Sig.Backing)
	}

	if _, ok := table.Lookup("missing"); ok {
		t.Error("Lookup of an undeclared name must fail")
	}

	entries := table.Entries()
	if entries[0].Name != "Color" || entries[4].Name != "paint" {
		t.Error("entries must keep declaration order")
	}

	if err := table.Verify(); err != nil {
		t.Errorf("Verify failed: %v", err)
	}

	palette, _ := table.Lookup("Palette")
	under, err := table.Underlying(Named("Palette"))
	if err != nil || under != palette.Sig {
		t.Errorf("Underlying(Palette) = %v, %v", under, err)
	}
	if under, err := table.Underlying(Named("Color")); err != nil || under != color.Sig {
		t.Errorf("enums must stay named, got %v, %v", under, err)
	}
}

func TestTableForwardDeclarations(t *testing.T) {
	root := parseRoot(t, `
function int f(int a);
function int f(int b) { return b; }
function int f(int c);
`)

	table, err := Build(root)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	f, _ := table.Lookup("f")
	if table.Len() != 1 || f.Decl.(*ast.FuncDef).IsForward() {
		t.Error("the definition must replace the forward declaration")
	}
}

func TestTableErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
		line    int
	}{
		{"duplicate enum", "enum E { A }\nenum E { B }", "'E' redeclared, previous declaration at 1:6", 2},
		{"enum and alias", "enum E { A }\ntype E = int;", "'E' redeclared, previous declaration at 1:6", 2},
		{"two definitions", "function int f() {}\nfunction int f() {}", "'f' redeclared, previous declaration at 1:14", 2},
		{"conflicting forward", "function int f(int a);\nfunction int f(long a) {}", "conflicting declaration of 'f': function int(long a), previously function int(int a)", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(parseRoot(t, tt.input))
			if err == nil {
				t.Fatal("expected Build to fail")
			}

			var de *diagnostic.Error
			if !errors.As(err, &de) {
				t.Fatalf("expected *diagnostic.Error, got %T", err)
			}
			if de.Class != diagnostic.Semantic || de.Msg != tt.message || de.Pos.Line != tt.line {
				t.Errorf("got %s error %q at line %d", de.Class, de.Msg, de.Pos.Line)
			}
		})
	}
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"undefined in signature", "function Shape f();", "undefined type 'Shape'"},
		{"undefined in body", "function int f() { let Shape s; }", "undefined type 'Shape'"},
		{"undefined in cast", "function int f() { return <Shape> 1; }", "undefined type 'Shape'"},
		{"function used as type", "function int g();\ntype T = g;", "'g' is a function, not a type"},
		{"alias cycle", "type A = B;\ntype B = A;", "type alias 'A' refers to itself"},
		{"self alias", "type A = A;", "type alias 'A' refers to itself"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Build(parseRoot(t, tt.input))
			if err != nil {
				t.Fatalf("Build failed: %v", err)
			}

			err = table.Verify()
			var de *diagnostic.Error
			if !errors.As(err, &de) {
				t.Fatalf("expected a diagnostic, got %v", err)
			}
			if de.Class != diagnostic.Semantic || de.Msg != tt.message {
				t.Errorf("got %s error %q, expected %q", de.Class, de.Msg, tt.message)
			}
		})
	}
}

func TestUnderlyingErrors(t *testing.T) {
	table, err := Build(parseRoot(t, "function int f();\ntype A = B;\ntype B = A;"))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if _, err := table.Underlying(Named("nope")); !errors.Is(err, ErrUndefined) {
		t.Errorf("expected ErrUndefined, got %v", err)
	}
	if _, err := table.Underlying(Named("f")); !errors.Is(err, ErrNotType) {
		t.Errorf("expected ErrNotType, got %v", err)
	}
	if _, err := table.Underlying(Named("A")); !errors.Is(err, ErrCycle) {
		t.Errorf("expected ErrCycle, got %v", err)
	}
	if sig, err := table.Underlying(Primitive(token.KwdInt)); err != nil || sig.Prim != token.KwdInt {
		t.Errorf("non-named signatures are their own underlying type")
	}
}
