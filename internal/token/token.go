// Package token defines the lexical vocabulary of znc: token kinds and the
// static operator and keyword tables.
package token

import "fmt"

// Kind classifies a token.
type Kind int

const (
	EOF Kind = iota
	Error
	Identifier
	Keyword
	Operator
	Bracket
	Delimiter
	String
	Integer
)

var kindNames = [...]string{
	EOF:        "eof",
	Error:      "error",
	Identifier: "identifier",
	Keyword:    "keyword",
	Operator:   "operator",
	Bracket:    "bracket",
	Delimiter:  "delimiter",
	String:     "string literal",
	Integer:    "integer literal",
}

// String returns the diagnostic name of the kind.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsTerminal reports whether no token can follow one of this kind.
func (k Kind) IsTerminal() bool {
	return k == EOF || k == Error
}
