// Type signatures for the znc front end.
// A Sig is the resolved form of an ast.TypeRef. It owns no arena memory
// except the default-value expressions of function arguments, and Release
// drops those so a signature can outlive the parse that produced it.

package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/znc-lang/znc/internal/ast"
	"github.com/znc-lang/znc/internal/token"
)

// ErrMalformed is returned when a type reference is incomplete.
var ErrMalformed = errors.New("malformed type reference")

// Kind represents the shape of a signature
type Kind int

const (
	KindPrimitive Kind = iota
	KindArray
	KindFunction
	KindNamed
)

// String returns the string representation of a Kind
func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindArray:
		return "array"
	case KindFunction:
		return "function"
	case KindNamed:
		return "named"
	default:
		return "invalid"
	}
}

// Sig is a resolved type signature. Which fields are set depends on Kind.
type Sig struct {
	Elem    *Sig      // KindArray
	Ret     *Sig      // KindFunction
	Backing *Sig      // KindNamed, enums with a backing type
	Args    []*ArgSig // KindFunction
	Name    string    // KindNamed
	Kind    Kind
	Prim    token.Kwd // KindPrimitive
}

// ArgSig is one argument of a function signature.
type ArgSig struct {
	Type    *Sig
	Default ast.Expr
	Name    string
	Rest    bool
}

// Primitive returns the signature of a primitive type keyword.
func Primitive(kwd token.Kwd) *Sig {
	return &Sig{Kind: KindPrimitive, Prim: kwd}
}

// ArrayOf returns the signature of elem[].
func ArrayOf(elem *Sig) *Sig {
	return &Sig{Kind: KindArray, Elem: elem}
}

// Func returns a function signature.
func Func(ret *Sig, args ...*ArgSig) *Sig {
	return &Sig{Kind: KindFunction, Ret: ret, Args: args}
}

// Named returns the signature of a reference to a declared type.
func Named(name string) *Sig {
	return &Sig{Kind: KindNamed, Name: name}
}

// Resolve walks a type reference into a signature.
func Resolve(ref ast.TypeRef) (*Sig, error) {
	switch t := ref.(type) {
	case *ast.PrimitiveType:
		if t == nil {
			return nil, fmt.Errorf("%w: nil primitive", ErrMalformed)
		}
		if !t.Kwd.IsPrimitive() {
			return nil, fmt.Errorf("%w: '%s' is not a primitive type", ErrMalformed, t.Kwd)
		}
		return Primitive(t.Kwd), nil

	case *ast.ArrayType:
		if t == nil {
			return nil, fmt.Errorf("%w: nil array", ErrMalformed)
		}
		elem, err := Resolve(t.Elem)
		if err != nil {
			return nil, err
		}
		return ArrayOf(elem), nil

	case *ast.FuncType:
		if t == nil {
			return nil, fmt.Errorf("%w: nil function", ErrMalformed)
		}
		return ResolveFunc(t.Ret, t.Args)

	case *ast.NamedType:
		if t == nil || t.Name == "" {
			return nil, fmt.Errorf("%w: unnamed type", ErrMalformed)
		}
		return Named(t.Name), nil
	}

	return nil, fmt.Errorf("%w: %T", ErrMalformed, ref)
}

// ResolveFunc builds a function signature from a return type and argument
// definitions, as found in both function types and function definitions.
func ResolveFunc(ret ast.TypeRef, args []*ast.FuncArgDef) (*Sig, error) {
	retSig, err := Resolve(ret)
	if err != nil {
		return nil, err
	}

	var argSigs []*ArgSig
	if len(args) > 0 {
		argSigs = make([]*ArgSig, 0, len(args))
	}

	for _, a := range args {
		if a == nil {
			return nil, fmt.Errorf("%w: nil argument", ErrMalformed)
		}
		typ, err := Resolve(a.Type)
		if err != nil {
			return nil, err
		}
		argSigs = append(argSigs, &ArgSig{
			Type:    typ,
			Default: a.Default,
			Name:    a.Name,
			Rest:    a.Rest,
		})
	}

	return Func(retSig, argSigs...), nil
}

// Release clears every reference held by s and the signatures below it.
// Default-value expressions are dropped, so the arena that owns them can be
// released independently. Release is nil-safe.
func (s *Sig) Release() {
	if s == nil {
		return
	}

	s.Elem.Release()
	s.Ret.Release()
	s.Backing.Release()
	for _, a := range s.Args {
		a.Type.Release()
		a.Type = nil
		a.Default = nil
	}

	s.Elem, s.Ret, s.Backing, s.Args = nil, nil, nil, nil
	s.Name = ""
}

// IsRest reports whether the last argument of a function signature is a
// rest argument.
func (s *Sig) IsRest() bool {
	if s == nil || s.Kind != KindFunction || len(s.Args) == 0 {
		return false
	}
	return s.Args[len(s.Args)-1].Rest
}

// Required returns the number of arguments without a default value.
func (s *Sig) Required() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, a := range s.Args {
		if a.Default == nil && !a.Rest {
			n++
		}
	}
	return n
}

// Equal reports whether two signatures describe the same type. Argument
// names and default values do not take part; rest flags do.
func (s *Sig) Equal(other *Sig) bool {
	if s == nil || other == nil {
		return s == other
	}

	if s.Kind != other.Kind {
		return false
	}

	switch s.Kind {
	case KindPrimitive:
		return s.Prim == other.Prim

	case KindArray:
		return s.Elem.Equal(other.Elem)

	case KindNamed:
		return s.Name == other.Name

	case KindFunction:
		if len(s.Args) != len(other.Args) || !s.Ret.Equal(other.Ret) {
			return false
		}
		for i, a := range s.Args {
			b := other.Args[i]
			if a.Rest != b.Rest || !a.Type.Equal(b.Type) {
				return false
			}
		}
		return true
	}

	return false
}

// String returns the canonical spelling, e.g. int[] or
// function int(int a, int b = ..., int... rest).
func (s *Sig) String() string {
	if s == nil {
		return "<nil>"
	}

	switch s.Kind {
	case KindPrimitive:
		return s.Prim.String()

	case KindArray:
		return s.Elem.String() + "[]"

	case KindNamed:
		return s.Name

	case KindFunction:
		var sb strings.Builder
		sb.WriteString("function ")
		sb.WriteString(s.Ret.String())
		sb.WriteByte('(')
		for i, a := range s.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(a.String())
		}
		sb.WriteByte(')')
		return sb.String()
	}

	return fmt.Sprintf("<%s>", s.Kind)
}

func (a *ArgSig) String() string {
	s := a.Type.String()
	if a.Rest {
		s += "..."
	}
	if a.Name != "" {
		s += " " + a.Name
	}
	if a.Default != nil {
		s += " = ..."
	}
	return s
}
