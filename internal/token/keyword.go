package token

import "strings"

// Kwd identifies a keyword.
type Kwd int

const (
	KwdUnknown Kwd = iota

	KwdLet
	KwdIf
	KwdElse
	KwdWhile
	KwdReturn

	KwdFunction
	KwdEnum
	KwdType

	// primitive types; keep contiguous, IsPrimitive depends on it
	KwdByte
	KwdShort
	KwdInt
	KwdLong
	KwdUbyte
	KwdUshort
	KwdUint
	KwdUlong
	KwdFloat
	KwdDouble
	KwdChar
	KwdBool
)

// keywordTable is ordered longest spelling first, like operatorTable.
var keywordTable = [...]struct {
	kwd  Kwd
	text string
}{
	{KwdFunction, "function"},
	{KwdReturn, "return"},
	{KwdUshort, "ushort"},
	{KwdDouble, "double"},
	{KwdWhile, "while"},
	{KwdShort, "short"},
	{KwdUbyte, "ubyte"},
	{KwdUlong, "ulong"},
	{KwdFloat, "float"},
	{KwdElse, "else"},
	{KwdEnum, "enum"},
	{KwdType, "type"},
	{KwdByte, "byte"},
	{KwdLong, "long"},
	{KwdUint, "uint"},
	{KwdChar, "char"},
	{KwdBool, "bool"},
	{KwdLet, "let"},
	{KwdInt, "int"},
	{KwdIf, "if"},
}

// String returns the keyword spelling.
func (k Kwd) String() string {
	for _, e := range keywordTable {
		if e.kwd == k {
			return e.text
		}
	}
	return "<unknown>"
}

// MatchKeyword returns the length of the longest keyword that is a prefix of
// text, or zero. The lexer only reclassifies an identifier when the match
// covers the whole identifier.
func MatchKeyword(text string) int {
	_, n := lookupKeywordPrefix(text)
	return n
}

func lookupKeywordPrefix(text string) (Kwd, int) {
	for _, e := range keywordTable {
		if strings.HasPrefix(text, e.text) {
			return e.kwd, len(e.text)
		}
	}
	return KwdUnknown, 0
}

// LookupKeyword returns the keyword spelled exactly as text, or KwdUnknown.
func LookupKeyword(text string) Kwd {
	k, n := lookupKeywordPrefix(text)
	if n != len(text) {
		return KwdUnknown
	}
	return k
}

// IsPrimitive reports whether k names a primitive type.
func (k Kwd) IsPrimitive() bool {
	return k >= KwdByte && k <= KwdBool
}

// Primitives lists the primitive-type keywords in declaration order.
func Primitives() []Kwd {
	out := make([]Kwd, 0, KwdBool-KwdByte+1)
	for k := KwdByte; k <= KwdBool; k++ {
		out = append(out, k)
	}
	return out
}
