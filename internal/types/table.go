package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/znc-lang/znc/internal/ast"
	"github.com/znc-lang/znc/internal/diagnostic"
	"github.com/znc-lang/znc/internal/lexer"
	"github.com/znc-lang/znc/internal/position"
)

var (
	ErrUndefined = errors.New("undefined type")
	ErrNotType   = errors.New("not a type")
	ErrCycle     = errors.New("type alias cycle")
)

// DeclKind classifies a table entry.
type DeclKind int

const (
	DeclFunc DeclKind = iota
	DeclEnum
	DeclAlias
)

func (k DeclKind) String() string {
	switch k {
	case DeclFunc:
		return "function"
	case DeclEnum:
		return "enum"
	case DeclAlias:
		return "type"
	default:
		return "unknown"
	}
}

// Entry is one top-level declaration and its signature. Functions map to a
// function signature, enums to a named signature carrying the backing type,
// and aliases to the aliased signature.
type Entry struct {
	Decl ast.Decl
	Sig  *Sig
	Name string
	Kind DeclKind
}

func (e *Entry) String() string {
	switch e.Kind {
	case DeclEnum:
		if e.Sig.Backing == nil {
			return fmt.Sprintf("enum %s", e.Name)
		}
		return fmt.Sprintf("enum %s: %s", e.Name, e.Sig.Backing)
	default:
		return fmt.Sprintf("%s %s: %s", e.Kind, e.Name, e.Sig)
	}
}

// Table maps declaration names to signatures, in declaration order.
type Table struct {
	entries map[string]*Entry
	order   []*Entry
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{entries: make(map[string]*Entry)}
}

// Build creates a table holding every declaration of root. It stops at the
// first error.
func Build(root *ast.Root) (*Table, error) {
	t := NewTable()
	if root == nil {
		return t, nil
	}
	for _, decl := range root.Decls {
		if _, err := t.Add(decl); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Add resolves decl and records it under its name. A function may be
// declared forward any number of times and defined once, as long as every
// declaration has the same signature. Any other reuse of a name is an error.
func (t *Table) Add(decl ast.Decl) (*Entry, error) {
	entry, err := newEntry(decl)
	if err != nil {
		return nil, err
	}

	prev, ok := t.entries[entry.Name]
	if !ok {
		t.entries[entry.Name] = entry
		t.order = append(t.order, entry)
		return entry, nil
	}

	newFn, _ := decl.(*ast.FuncDef)
	prevFn, _ := prev.Decl.(*ast.FuncDef)
	if newFn == nil || prevFn == nil || (!newFn.IsForward() && !prevFn.IsForward()) {
		entry.Sig.Release()
		return nil, semanticError(nameToken(decl), "'%s' redeclared, previous declaration at %s",
			entry.Name, declPosition(prev.Decl))
	}

	if !entry.Sig.Equal(prev.Sig) {
		entry.Sig.Release()
		return nil, semanticError(nameToken(decl), "conflicting declaration of '%s': %s, previously %s",
			entry.Name, entry.Sig, prev.Sig)
	}

	// the definition replaces a forward declaration
	if prevFn.IsForward() && !newFn.IsForward() {
		prev.Sig.Release()
		prev.Decl, prev.Sig = entry.Decl, entry.Sig
	} else {
		entry.Sig.Release()
	}

	return prev, nil
}

func newEntry(decl ast.Decl) (*Entry, error) {
	var (
		entry = &Entry{Decl: decl}
		err   error
	)

	switch d := decl.(type) {
	case *ast.FuncDef:
		entry.Kind, entry.Name = DeclFunc, d.Name
		entry.Sig, err = ResolveFunc(d.Ret, d.Args)

	case *ast.Enum:
		entry.Kind, entry.Name = DeclEnum, d.Name
		entry.Sig = Named(d.Name)
		if d.Type != nil {
			entry.Sig.Backing, err = Resolve(d.Type)
		}

	case *ast.TypeAlias:
		entry.Kind, entry.Name = DeclAlias, d.Name
		entry.Sig, err = Resolve(d.Type)

	default:
		return nil, fmt.Errorf("unsupported declaration %T", decl)
	}

	if err != nil {
		return nil, fmt.Errorf("%s '%s': %w", entry.Kind, entry.Name, err)
	}

	return entry, nil
}

// Lookup returns the entry declared as name.
func (t *Table) Lookup(name string) (*Entry, bool) {
	e, ok := t.entries[name]
	return e, ok
}

// Entries returns the entries in declaration order.
func (t *Table) Entries() []*Entry {
	out := make([]*Entry, len(t.order))
	copy(out, t.order)
	return out
}

// Len returns the number of declared names.
func (t *Table) Len() int { return len(t.order) }

// Underlying follows aliases from s until it reaches a signature that is not
// an alias. Enums stay named.
func (t *Table) Underlying(s *Sig) (*Sig, error) {
	seen := make(map[string]bool)

	for s != nil && s.Kind == KindNamed {
		e, ok := t.entries[s.Name]
		switch {
		case !ok:
			return nil, fmt.Errorf("%w '%s'", ErrUndefined, s.Name)
		case e.Kind == DeclFunc:
			return nil, fmt.Errorf("'%s' is a function, %w", s.Name, ErrNotType)
		case e.Kind == DeclEnum:
			return e.Sig, nil
		}

		if seen[s.Name] {
			return nil, fmt.Errorf("%w through '%s'", ErrCycle, s.Name)
		}
		seen[s.Name] = true
		s = e.Sig
	}

	return s, nil
}

// Verify checks that every named type used by a declaration, including the
// types inside function bodies, refers to an enum or alias, and that no alias
// refers back to itself. The first problem is returned as a semantic
// diagnostic.
func (t *Table) Verify() error {
	for _, e := range t.order {
		var bad *diagnostic.Error

		ast.Inspect(e.Decl, func(n ast.Node) bool {
			if bad != nil {
				return false
			}
			named, ok := n.(*ast.NamedType)
			if !ok {
				return true
			}

			target, ok := t.entries[named.Name]
			switch {
			case !ok:
				bad = semanticError(named.Tok, "undefined type '%s'", named.Name)
			case target.Kind == DeclFunc:
				bad = semanticError(named.Tok, "'%s' is a function, not a type", named.Name)
			}
			return bad == nil
		})

		if bad != nil {
			return bad
		}

		if e.Kind != DeclAlias {
			continue
		}
		if _, err := t.Underlying(e.Sig); errors.Is(err, ErrCycle) {
			return semanticError(nameToken(e.Decl), "type alias '%s' refers to itself", e.Name)
		}
	}

	return nil
}

// String lists the entries one per line.
func (t *Table) String() string {
	lines := make([]string, len(t.order))
	for i, e := range t.order {
		lines[i] = e.String()
	}
	return strings.Join(lines, "\n")
}

// Release releases every signature and empties the table.
func (t *Table) Release() {
	if t == nil {
		return
	}
	for _, e := range t.order {
		e.Sig.Release()
		e.Sig, e.Decl = nil, nil
	}
	t.order = nil
	t.entries = make(map[string]*Entry)
}

func nameToken(decl ast.Decl) *lexer.Token {
	switch d := decl.(type) {
	case *ast.FuncDef:
		return d.NameTok
	case *ast.Enum:
		return d.NameTok
	case *ast.TypeAlias:
		return d.NameTok
	}
	return nil
}

func declPosition(decl ast.Decl) string {
	tok := nameToken(decl)
	if tok == nil {
		return "unknown position"
	}
	return fmt.Sprintf("%d:%d", tok.Line, tok.Col)
}

func semanticError(tok *lexer.Token, format string, args ...interface{}) *diagnostic.Error {
	if tok == nil {
		return diagnostic.New(diagnostic.Semantic, nil, position.Position{}, "", format, args...)
	}
	return tok.Errorf(diagnostic.Semantic, format, args...)
}
