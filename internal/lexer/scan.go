package lexer

import (
	"github.com/znc-lang/znc/internal/position"
	"github.com/znc-lang/znc/internal/token"
)

// tokenize scans exactly one token, skipping whitespace and comments first.
// At end of input it emits EOF and ends the stream.
func (l *Lexer) tokenize() {
	for !l.ended {
		l.skipWhitespace()

		if l.cur >= len(l.input) {
			l.emit(token.EOF, l.cur, l.line, l.col)
			l.ended = true
			return
		}

		ch := l.input[l.cur]

		// comments
		if ch == '/' && l.peekChar() == '/' {
			for l.cur < len(l.input) && l.input[l.cur] != '\n' {
				l.readChar()
			}
			continue
		}
		if ch == '/' && l.peekChar() == '*' {
			l.skipBlockComment()
			continue
		}

		start, line, col := l.cur, l.line, l.col

		switch {
		case isLetter(ch) || ch == '_':
			l.readIdentifier(start, line, col)

		case token.MatchOperator(l.input[l.cur:]) > 0:
			op, n := token.LookupOperator(l.input[l.cur:])
			for i := 0; i < n; i++ {
				l.readChar()
			}
			if t := l.emit(token.Operator, start, line, col); t != nil {
				t.Op = op
			}

		case isBracket(ch):
			l.readChar()
			l.emit(token.Bracket, start, line, col)

		case ch == ';':
			l.readChar()
			l.emit(token.Delimiter, start, line, col)

		case ch == '"':
			l.readString(start, line, col)

		case isDigit(ch):
			for l.cur < len(l.input) && (isDigit(l.input[l.cur]) || l.input[l.cur] == '_') {
				l.readChar()
			}
			l.emit(token.Integer, start, line, col)

		default:
			for l.cur < len(l.input) && !isSpace(l.input[l.cur]) {
				l.readChar()
			}
			l.fail(start, line, col, "unknown token")
		}
		return
	}
}

// readChar advances the scan cursor by one byte, keeping line and column.
func (l *Lexer) readChar() {
	if l.cur >= len(l.input) {
		return
	}

	switch l.input[l.cur] {
	case '\r':
		l.col = 1
	case '\n':
		l.col = 1
		l.line++
	case '\t':
		l.col = position.NextTabStop(l.col)
	default:
		l.col++
	}
	l.cur++
}

// peekChar returns the byte after the cursor without advancing.
func (l *Lexer) peekChar() byte {
	if l.cur+1 >= len(l.input) {
		return 0
	}
	return l.input[l.cur+1]
}

func (l *Lexer) skipWhitespace() {
	for l.cur < len(l.input) && isSpace(l.input[l.cur]) {
		l.readChar()
	}
}

// skipBlockComment skips a /* */ comment. An unterminated comment simply
// runs to the end of input.
func (l *Lexer) skipBlockComment() {
	l.readChar()
	l.readChar()
	for l.cur < len(l.input) {
		if l.input[l.cur] == '*' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			return
		}
		l.readChar()
	}
}

func (l *Lexer) readIdentifier(start, line, col int) {
	for l.cur < len(l.input) && (isAlphaNumeric(l.input[l.cur]) || l.input[l.cur] == '_') {
		l.readChar()
	}

	kwd := token.LookupKeyword(l.input[start:l.cur])
	if kwd == token.KwdUnknown {
		l.emit(token.Identifier, start, line, col)
		return
	}

	if t := l.emit(token.Keyword, start, line, col); t != nil {
		t.Kwd = kwd
	}
}

// readString scans a string literal including both quotes. A backslash
// protects the next byte from closing the literal; a line break or the end
// of input before the closing quote is a lexical error.
func (l *Lexer) readString(start, line, col int) {
	l.readChar()

	escape := false
	for l.cur < len(l.input) {
		ch := l.input[l.cur]
		if ch == '\n' || ch == '\r' || (ch == '"' && !escape) {
			break
		}

		if escape {
			escape = false
		} else if ch == '\\' {
			escape = true
		}
		l.readChar()
	}

	if l.cur >= len(l.input) || l.input[l.cur] != '"' {
		l.fail(start, line, col, "unterminated string literal")
		return
	}

	l.readChar()
	l.emit(token.String, start, line, col)
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isAlphaNumeric(ch byte) bool {
	return isLetter(ch) || isDigit(ch)
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isBracket(ch byte) bool {
	switch ch {
	case '(', ')', '{', '}', '[', ']':
		return true
	}
	return false
}
