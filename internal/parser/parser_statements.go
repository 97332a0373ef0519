package parser

import (
	"github.com/znc-lang/znc/internal/ast"
	"github.com/znc-lang/znc/internal/lexer"
	"github.com/znc-lang/znc/internal/token"
)

// ParseStatement parses one statement.
func (p *Parser) ParseStatement() (ast.Stm, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.parseStatement()
}

// ParseBlock parses { stm... }.
func (p *Parser) ParseBlock() (*ast.Block, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.parseBlock()
}

func (p *Parser) parseStatement() (ast.Stm, error) {
	tok := p.lex.Peek(1)
	if err := p.enter(tok); err != nil {
		return nil, err
	}
	defer p.leave()

	if tok.Kind == token.Keyword {
		switch tok.Kwd {
		case token.KwdLet:
			return p.parseLet()
		case token.KwdIf:
			return p.parseIf()
		case token.KwdWhile:
			return p.parseWhile()
		case token.KwdReturn:
			return p.parseReturn()
		case token.KwdElse:
			return nil, p.errorf(tok, "'else' without 'if'")
		}

		if tok.Kwd.IsPrimitive() {
			return nil, p.errorf(tok, "type '%s' is not a statement, declare variables with 'let'", tok.Text)
		}
		return nil, p.errorf(tok, "unexpected keyword '%s' in statement", tok.Text)
	}

	if tok.Is(token.Bracket, "{") {
		block, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return block, nil
	}

	x, err := p.parseExpr(1)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.Delimiter, ";"); err != nil {
		return nil, err
	}

	stm, err := alloc[ast.ExprStm](p, tok)
	if err != nil {
		return nil, err
	}
	stm.Tok, stm.X = tok, x

	return stm, nil
}

// letHasType decides whether the tokens after 'let' start with a type:
// a primitive, a function type, or an identifier (with any number of []
// suffixes) that is followed by the variable name.
func (p *Parser) letHasType() bool {
	tok := p.lex.Peek(1)
	if tok.Kind == token.Keyword {
		return tok.Kwd.IsPrimitive() || tok.Kwd == token.KwdFunction
	}
	if tok.Kind != token.Identifier {
		return false
	}

	i := 2
	for p.peekIs(i, token.Bracket, "[") && p.peekIs(i+1, token.Bracket, "]") {
		i += 2
	}
	return p.peekIs(i, token.Identifier, "")
}

// parseLet parses let [Type] name [= expr] ;
func (p *Parser) parseLet() (ast.Stm, error) {
	letTok := p.lex.Consume()

	let, err := alloc[ast.Let](p, letTok)
	if err != nil {
		return nil, err
	}
	let.Tok = letTok

	if p.letHasType() {
		if let.Type, err = p.parseTypeRef(); err != nil {
			return nil, err
		}
	}

	if let.NameTok, err = p.expect(token.Identifier, ""); err != nil {
		return nil, err
	}
	let.Name = let.NameTok.Text

	if p.lex.Peek(1).IsOp(token.OpAssign) {
		p.lex.Consume()
		if let.Init, err = p.parseExpr(1); err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(token.Delimiter, ";"); err != nil {
		return nil, err
	}

	return let, nil
}

// parseCondition parses ( expr ) after if and while.
func (p *Parser) parseCondition() (ast.Expr, error) {
	if _, err := p.expect(token.Bracket, "("); err != nil {
		return nil, err
	}

	cond, err := p.parseExpr(1)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.Bracket, ")"); err != nil {
		return nil, err
	}

	return cond, nil
}

func (p *Parser) parseIf() (ast.Stm, error) {
	ifTok := p.lex.Consume()

	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}

	then, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	var els ast.Stm
	if p.lex.Peek(1).IsKwd(token.KwdElse) {
		p.lex.Consume()
		if els, err = p.parseStatement(); err != nil {
			return nil, err
		}
	}

	stm, err := alloc[ast.If](p, ifTok)
	if err != nil {
		return nil, err
	}
	stm.Tok, stm.Cond, stm.Then, stm.Else = ifTok, cond, then, els

	return stm, nil
}

func (p *Parser) parseWhile() (ast.Stm, error) {
	whileTok := p.lex.Consume()

	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}

	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	stm, err := alloc[ast.While](p, whileTok)
	if err != nil {
		return nil, err
	}
	stm.Tok, stm.Cond, stm.Body = whileTok, cond, body

	return stm, nil
}

func (p *Parser) parseReturn() (ast.Stm, error) {
	retTok := p.lex.Consume()

	stm, err := alloc[ast.Return](p, retTok)
	if err != nil {
		return nil, err
	}
	stm.Tok = retTok

	if !p.peekIs(1, token.Delimiter, ";") {
		if stm.Value, err = p.parseExpr(1); err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(token.Delimiter, ";"); err != nil {
		return nil, err
	}

	return stm, nil
}

// parseBlock parses statements up to the closing brace.
func (p *Parser) parseBlock() (*ast.Block, error) {
	open, err := p.expect(token.Bracket, "{")
	if err != nil {
		return nil, err
	}

	var stms []ast.Stm
	for !p.atBlockEnd() {
		stm, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stms = append(stms, stm)
	}

	if _, err := p.expect(token.Bracket, "}"); err != nil {
		return nil, err
	}

	return p.newBlock(open, stms)
}

func (p *Parser) atBlockEnd() bool {
	tok := p.lex.Peek(1)
	return tok.Kind.IsTerminal() || tok.Is(token.Bracket, "}")
}

func (p *Parser) newBlock(open *lexer.Token, stms []ast.Stm) (*ast.Block, error) {
	block, err := alloc[ast.Block](p, open)
	if err != nil {
		return nil, err
	}
	block.Tok = open
	if block.Stms, err = slice(p, open, stms); err != nil {
		return nil, err
	}
	return block, nil
}
