package token

import "strings"

// Op identifies an operator.
type Op int

const (
	OpUnknown Op = iota

	OpEllipsis      // ...
	OpPowAssign     // **=
	OpAndAndAssign  // &&=
	OpOrOrAssign    // ||=
	OpShlAssign     // <<=
	OpShrAssign     // >>=
	OpAndAnd        // &&
	OpOrOr          // ||
	OpShl           // <<
	OpShr           // >>
	OpInc           // ++
	OpDec           // --
	OpPow           // **
	OpEq            // ==
	OpNotEq         // !=
	OpGreaterEq     // >=
	OpLessEq        // <=
	OpAddAssign     // +=
	OpSubAssign     // -=
	OpMulAssign     // *=
	OpDivAssign     // /=
	OpModAssign     // %=
	OpAndAssign     // &=
	OpOrAssign      // |=
	OpXorAssign     // ^=
	OpNot           // !
	OpAdd           // +
	OpSub           // -
	OpMul           // *
	OpDiv           // /
	OpMod           // %
	OpAnd           // &
	OpOr            // |
	OpXor           // ^
	OpTilde         // ~
	OpQuestion      // ?
	OpColon         // :
	OpComma         // ,
	OpAssign        // =
	OpLess          // <
	OpGreater       // >
	OpDot           // .

	// OpSubscript is not lexed; the parser uses it to tag a[i].
	OpSubscript
)

// HighestPrecedence is the largest value Precedence returns.
const HighestPrecedence = 11

// operatorTable is ordered longest spelling first. MatchOperator depends on
// that order: "<<=" has to be tried before "<<", and "<<" before "<".
var operatorTable = [...]struct {
	op   Op
	text string
}{
	{OpEllipsis, "..."},
	{OpPowAssign, "**="},
	{OpAndAndAssign, "&&="},
	{OpOrOrAssign, "||="},
	{OpShlAssign, "<<="},
	{OpShrAssign, ">>="},

	{OpAndAnd, "&&"},
	{OpOrOr, "||"},
	{OpShl, "<<"},
	{OpShr, ">>"},
	{OpInc, "++"},
	{OpDec, "--"},
	{OpPow, "**"},
	{OpEq, "=="},
	{OpNotEq, "!="},
	{OpGreaterEq, ">="},
	{OpLessEq, "<="},
	{OpAddAssign, "+="},
	{OpSubAssign, "-="},
	{OpMulAssign, "*="},
	{OpDivAssign, "/="},
	{OpModAssign, "%="},
	{OpAndAssign, "&="},
	{OpOrAssign, "|="},
	{OpXorAssign, "^="},

	{OpNot, "!"},
	{OpAdd, "+"},
	{OpSub, "-"},
	{OpMul, "*"},
	{OpDiv, "/"},
	{OpMod, "%"},
	{OpAnd, "&"},
	{OpOr, "|"},
	{OpXor, "^"},
	{OpTilde, "~"},
	{OpQuestion, "?"},
	{OpColon, ":"},
	{OpComma, ","},
	{OpAssign, "="},
	{OpLess, "<"},
	{OpGreater, ">"},
	{OpDot, "."},
}

// String returns the operator spelling.
func (o Op) String() string {
	if o == OpSubscript {
		return "[]"
	}
	for _, e := range operatorTable {
		if e.op == o {
			return e.text
		}
	}
	return "<unknown>"
}

// MatchOperator returns the length of the longest operator that is a prefix
// of text, or zero.
func MatchOperator(text string) int {
	_, n := LookupOperator(text)
	return n
}

// LookupOperator returns the longest operator that is a prefix of text and
// its length. It returns OpUnknown, 0 when nothing matches.
func LookupOperator(text string) (Op, int) {
	for _, e := range operatorTable {
		if strings.HasPrefix(text, e.text) {
			return e.op, len(e.text)
		}
	}
	return OpUnknown, 0
}

// ParseOperator returns the operator spelled exactly as text.
func ParseOperator(text string) Op {
	op, n := LookupOperator(text)
	if n != len(text) {
		return OpUnknown
	}
	return op
}

// Precedence returns the binding power of a binary operator, from 1
// (comma) to 11 (member access). Non-binary operators return 0.
func Precedence(o Op) int {
	switch o {
	case OpComma:
		return 1
	case OpAssign, OpPowAssign, OpAndAndAssign, OpOrOrAssign, OpShlAssign, OpShrAssign,
		OpAddAssign, OpSubAssign, OpMulAssign, OpDivAssign, OpModAssign,
		OpAndAssign, OpOrAssign, OpXorAssign:
		return 2
	case OpOrOr:
		return 3
	case OpAndAnd:
		return 4
	case OpEq, OpNotEq, OpGreater, OpGreaterEq, OpLess, OpLessEq:
		return 5
	case OpAnd, OpOr, OpXor:
		return 6
	case OpShl, OpShr:
		return 7
	case OpAdd, OpSub:
		return 8
	case OpMul, OpDiv, OpMod:
		return 9
	case OpPow:
		return 10
	case OpDot:
		return 11
	}
	return 0
}

// IsInfix reports whether o is a binary operator.
func IsInfix(o Op) bool {
	return Precedence(o) > 0
}

// IsRightAssoc reports whether chains of o group to the right.
// Exponentiation and every assignment form do.
func IsRightAssoc(o Op) bool {
	return o == OpPow || Precedence(o) == 2
}

// IsPrefix reports whether o may appear as a unary prefix operator.
func IsPrefix(o Op) bool {
	switch o {
	case OpInc, OpDec, OpNot, OpAdd, OpSub, OpTilde:
		return true
	}
	return false
}

// IsPostfix reports whether o may appear as a unary postfix operator.
func IsPostfix(o Op) bool {
	return o == OpInc || o == OpDec
}
