package ast

// Visitor is called by Walk for each node. If Visit returns nil the
// children of node are skipped.
type Visitor interface {
	Visit(node Node) (w Visitor)
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Inspect traverses the tree rooted at node in depth-first source order,
// calling f for each node. Children are skipped when f returns false.
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}

// Walk traverses the tree rooted at node, calling v.Visit for every
// non-nil node.
func Walk(v Visitor, node Node) {
	if node == nil {
		return
	}
	if v = v.Visit(node); v == nil {
		return
	}

	switch n := node.(type) {
	case *Root:
		for _, d := range n.Decls {
			Walk(v, d)
		}

	// expressions
	case *Ident, *StringLit, *IntegerLit:
	case *ArrayLit:
		for _, e := range n.Elems {
			Walk(v, e)
		}
	case *Unary:
		Walk(v, n.X)
	case *Binary:
		Walk(v, n.LHS)
		Walk(v, n.RHS)
	case *Ternary:
		Walk(v, n.Cond)
		Walk(v, n.Then)
		Walk(v, n.Else)
	case *Call:
		Walk(v, n.Callee)
		for _, a := range n.Args {
			Walk(v, a.Value)
		}
	case *Cast:
		Walk(v, n.Type)
		Walk(v, n.X)

	// statements
	case *ExprStm:
		Walk(v, n.X)
	case *Let:
		Walk(v, n.Type)
		Walk(v, n.Init)
	case *If:
		Walk(v, n.Cond)
		Walk(v, n.Then)
		Walk(v, n.Else)
	case *While:
		Walk(v, n.Cond)
		Walk(v, n.Body)
	case *Return:
		Walk(v, n.Value)
	case *Block:
		for _, s := range n.Stms {
			Walk(v, s)
		}

	// declarations
	case *FuncDef:
		Walk(v, n.Ret)
		for _, a := range n.Args {
			Walk(v, a)
		}
		if n.Body != nil {
			Walk(v, n.Body)
		}
	case *FuncArgDef:
		Walk(v, n.Type)
		Walk(v, n.Default)
	case *Enum:
		Walk(v, n.Type)
		for _, e := range n.Entries {
			Walk(v, e)
		}
	case *EnumEntry:
		Walk(v, n.Value)
	case *TypeAlias:
		Walk(v, n.Type)

	// type references
	case *PrimitiveType, *NamedType:
	case *ArrayType:
		Walk(v, n.Elem)
	case *FuncType:
		Walk(v, n.Ret)
		for _, a := range n.Args {
			Walk(v, a)
		}
	}
}

// Count returns the number of nodes in the tree rooted at node.
func Count(node Node) int {
	n := 0
	Inspect(node, func(Node) bool {
		n++
		return true
	})
	return n
}
