package parser

import (
	"github.com/znc-lang/znc/internal/ast"
	"github.com/znc-lang/znc/internal/lexer"
	"github.com/znc-lang/znc/internal/token"
)

// callArgPrecedence excludes the comma operator from array elements, call
// arguments and default values.
const callArgPrecedence = 2

// ParseExpr parses a full expression, including the comma operator.
func (p *Parser) ParseExpr() (ast.Expr, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.parseExpr(1)
}

// parseExpr parses an expression whose binary operators all bind at least
// as tightly as minPrec.
func (p *Parser) parseExpr(minPrec int) (ast.Expr, error) {
	if err := p.enter(p.lex.Peek(1)); err != nil {
		return nil, err
	}
	defer p.leave()

	lhs, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	return p.parseInfix(lhs, minPrec)
}

// binaryOp returns the token's operator if it can join two operands.
func binaryOp(tok *lexer.Token) (token.Op, bool) {
	if tok.Kind != token.Operator || !token.IsInfix(tok.Op) {
		return token.OpUnknown, false
	}
	return tok.Op, true
}

// parseInfix folds binary operators onto lhs by precedence climbing.
// Operators binding tighter than the current one, or equally tight and
// right-associative, are folded into the right operand first.
func (p *Parser) parseInfix(lhs ast.Expr, minPrec int) (ast.Expr, error) {
	for {
		op, ok := binaryOp(p.lex.Peek(1))
		if !ok || token.Precedence(op) < minPrec {
			return lhs, nil
		}
		opTok := p.lex.Consume()
		prec := token.Precedence(op)

		rhs, err := p.parseFactor()
		if err != nil {
			return nil, err
		}

	absorb:
		for {
			next, ok := binaryOp(p.lex.Peek(1))
			if !ok {
				break
			}

			nextPrec := token.Precedence(next)
			switch {
			case nextPrec > prec:
				rhs, err = p.parseInfix(rhs, prec+1)
			case nextPrec == prec && token.IsRightAssoc(next):
				rhs, err = p.parseInfix(rhs, prec)
			default:
				break absorb
			}
			if err != nil {
				return nil, err
			}
		}

		bin, err := alloc[ast.Binary](p, opTok)
		if err != nil {
			return nil, err
		}
		bin.Tok, bin.Op, bin.LHS, bin.RHS = opTok, op, lhs, rhs
		lhs = bin
	}
}

// parseFactor parses a prefix operation, or a primary expression with its
// postfix operators, followed by an optional ternary.
func (p *Parser) parseFactor() (ast.Expr, error) {
	tok := p.lex.Peek(1)
	if err := p.enter(tok); err != nil {
		return nil, err
	}
	defer p.leave()

	if tok.Kind == token.Operator && token.IsPrefix(tok.Op) {
		p.lex.Consume()

		x, err := p.parseFactor()
		if err != nil {
			return nil, err
		}

		un, err := alloc[ast.Unary](p, tok)
		if err != nil {
			return nil, err
		}
		un.Tok, un.Op, un.Prefix, un.X = tok, tok.Op, true, x

		return un, nil
	}

	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		post := p.lex.Peek(1)
		if post.Kind != token.Operator || !token.IsPostfix(post.Op) {
			break
		}
		p.lex.Consume()

		un, err := alloc[ast.Unary](p, post)
		if err != nil {
			return nil, err
		}
		un.Tok, un.Op, un.X = post, post.Op, x
		x = un
	}

	if !p.lex.Peek(1).IsOp(token.OpQuestion) {
		return x, nil
	}
	q := p.lex.Consume()

	then, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	if _, err := p.expectOp(token.OpColon); err != nil {
		return nil, err
	}

	els, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	tern, err := alloc[ast.Ternary](p, q)
	if err != nil {
		return nil, err
	}
	tern.Tok, tern.Cond, tern.Then, tern.Else = q, x, then, els

	return tern, nil
}

// parsePrimary parses literals, identifiers, casts and parenthesized
// expressions, then any member, subscript and call chain after them.
func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.lex.Peek(1)

	var (
		x   ast.Expr
		err error
	)

	switch {
	case tok.Kind == token.Identifier:
		p.lex.Consume()
		x, err = p.newIdent(tok)

	case tok.Kind == token.String:
		p.lex.Consume()
		var s *ast.StringLit
		if s, err = alloc[ast.StringLit](p, tok); err == nil {
			s.Tok, s.Raw = tok, tok.Text
			x = s
		}

	case tok.Kind == token.Integer:
		p.lex.Consume()
		var n *ast.IntegerLit
		if n, err = alloc[ast.IntegerLit](p, tok); err == nil {
			n.Tok, n.Text = tok, tok.Text
			x = n
		}

	case tok.Is(token.Bracket, "["):
		x, err = p.parseArray()

	case tok.IsOp(token.OpLess):
		x, err = p.parseCast()

	case tok.Is(token.Bracket, "("):
		p.lex.Consume()
		if x, err = p.parseExpr(1); err == nil {
			_, err = p.expect(token.Bracket, ")")
		}

	default:
		return nil, p.unexpected(tok, "expression")
	}

	if err != nil {
		return nil, err
	}

	return p.parseSecondary(x)
}

func (p *Parser) newIdent(tok *lexer.Token) (ast.Expr, error) {
	id, err := alloc[ast.Ident](p, tok)
	if err != nil {
		return nil, err
	}
	id.Tok, id.Name = tok, tok.Text
	return id, nil
}

// parseArray parses [e, e, ...]. A comma right before ']' is an error.
func (p *Parser) parseArray() (ast.Expr, error) {
	open := p.lex.Consume()

	var elems []ast.Expr
	if p.peekIs(1, token.Bracket, "]") {
		p.lex.Consume()
	} else {
		for {
			el, err := p.parseExpr(callArgPrecedence)
			if err != nil {
				return nil, err
			}
			elems = append(elems, el)

			tok := p.lex.Peek(1)
			if tok.Is(token.Bracket, "]") {
				p.lex.Consume()
				break
			}
			if !tok.IsOp(token.OpComma) {
				return nil, p.unexpected(tok, "',' or ']'")
			}
			p.lex.Consume()

			if next := p.lex.Peek(1); next.Is(token.Bracket, "]") {
				return nil, p.errorf(next, "trailing comma in array literal")
			}
		}
	}

	arr, err := alloc[ast.ArrayLit](p, open)
	if err != nil {
		return nil, err
	}
	arr.Tok = open
	if arr.Elems, err = slice(p, open, elems); err != nil {
		return nil, err
	}

	return arr, nil
}

// parseCast parses <Type> operand. The operand binds like a prefix operand.
func (p *Parser) parseCast() (ast.Expr, error) {
	open := p.lex.Consume()

	typ, err := p.parseTypeRef()
	if err != nil {
		return nil, err
	}

	if _, err := p.expectOp(token.OpGreater); err != nil {
		return nil, err
	}

	x, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	cast, err := alloc[ast.Cast](p, open)
	if err != nil {
		return nil, err
	}
	cast.Tok, cast.Type, cast.X = open, typ, x

	return cast, nil
}

// parseSecondary applies member access, subscripts and calls to lhs, left
// to right, for as long as they follow.
func (p *Parser) parseSecondary(lhs ast.Expr) (ast.Expr, error) {
	for {
		tok := p.lex.Peek(1)

		switch {
		case tok.IsOp(token.OpDot):
			p.lex.Consume()

			nameTok, err := p.expect(token.Identifier, "")
			if err != nil {
				return nil, err
			}
			name, err := p.newIdent(nameTok)
			if err != nil {
				return nil, err
			}

			if lhs, err = p.newBinary(tok, token.OpDot, lhs, name); err != nil {
				return nil, err
			}

		case tok.Is(token.Bracket, "["):
			p.lex.Consume()

			index, err := p.parseExpr(1)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.Bracket, "]"); err != nil {
				return nil, err
			}

			if lhs, err = p.newBinary(tok, token.OpSubscript, lhs, index); err != nil {
				return nil, err
			}

		case tok.Is(token.Bracket, "("):
			call, err := p.parseCall(lhs)
			if err != nil {
				return nil, err
			}
			lhs = call

		default:
			return lhs, nil
		}
	}
}

func (p *Parser) newBinary(tok *lexer.Token, op token.Op, lhs, rhs ast.Expr) (ast.Expr, error) {
	bin, err := alloc[ast.Binary](p, tok)
	if err != nil {
		return nil, err
	}
	bin.Tok, bin.Op, bin.LHS, bin.RHS = tok, op, lhs, rhs
	return bin, nil
}

// parseCall parses (args) after callee. An argument written name=value,
// with no space between the name and '=', is passed by name.
func (p *Parser) parseCall(callee ast.Expr) (ast.Expr, error) {
	open := p.lex.Consume()

	var args []ast.CallArg
	if p.peekIs(1, token.Bracket, ")") {
		p.lex.Consume()
	} else {
		for {
			var arg ast.CallArg

			if p.isNamedArg() {
				arg.NameTok = p.lex.Consume()
				arg.Name = arg.NameTok.Text
				p.lex.Consume()
			}

			val, err := p.parseExpr(callArgPrecedence)
			if err != nil {
				return nil, err
			}
			arg.Value = val
			args = append(args, arg)

			tok := p.lex.Peek(1)
			if tok.Is(token.Bracket, ")") {
				p.lex.Consume()
				break
			}
			if !tok.IsOp(token.OpComma) {
				return nil, p.unexpected(tok, "',' or ')'")
			}
			p.lex.Consume()

			if next := p.lex.Peek(1); next.Is(token.Bracket, ")") {
				return nil, p.errorf(next, "trailing comma in call arguments")
			}
		}
	}

	call, err := alloc[ast.Call](p, open)
	if err != nil {
		return nil, err
	}
	call.Tok, call.Callee = open, callee
	if call.Args, err = slice(p, open, args); err != nil {
		return nil, err
	}

	return call, nil
}

// isNamedArg reports whether the next tokens are an identifier immediately
// followed by '='.
func (p *Parser) isNamedArg() bool {
	name, eq := p.lex.Peek(1), p.lex.Peek(2)
	return name.Kind == token.Identifier &&
		eq.IsOp(token.OpAssign) &&
		eq.Pos == name.Pos+len(name.Text)
}
