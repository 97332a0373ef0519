package parser

import (
	"github.com/znc-lang/znc/internal/ast"
	"github.com/znc-lang/znc/internal/token"
)

// ParseFuncDef parses function RetType name ( args ) followed by a block or ';'.
func (p *Parser) ParseFuncDef() (*ast.FuncDef, error) {
	if p.err != nil {
		return nil, p.err
	}
	fn, err := p.parseFuncDef()
	if err != nil {
		return nil, err
	}
	return fn.(*ast.FuncDef), nil
}

// ParseEnum parses enum name [BackingType] { entry [= expr], ... }.
func (p *Parser) ParseEnum() (*ast.Enum, error) {
	if p.err != nil {
		return nil, p.err
	}
	enum, err := p.parseEnum()
	if err != nil {
		return nil, err
	}
	return enum.(*ast.Enum), nil
}

// ParseTypeAlias parses type Name = TypeRef ;
func (p *Parser) ParseTypeAlias() (*ast.TypeAlias, error) {
	if p.err != nil {
		return nil, p.err
	}
	alias, err := p.parseTypeAlias()
	if err != nil {
		return nil, err
	}
	return alias.(*ast.TypeAlias), nil
}

func (p *Parser) parseFuncDef() (ast.Decl, error) {
	fnTok, err := p.expect(token.Keyword, "function")
	if err != nil {
		return nil, err
	}

	fn, err := alloc[ast.FuncDef](p, fnTok)
	if err != nil {
		return nil, err
	}
	fn.Tok = fnTok

	if fn.Ret, err = p.parseTypeRef(); err != nil {
		return nil, err
	}

	if fn.NameTok, err = p.expect(token.Identifier, ""); err != nil {
		return nil, err
	}
	fn.Name = fn.NameTok.Text

	if _, err := p.expect(token.Bracket, "("); err != nil {
		return nil, err
	}

	if fn.Args, err = p.parseFuncArgs(false); err != nil {
		return nil, err
	}

	if p.peekIs(1, token.Delimiter, ";") {
		p.lex.Consume()
		return fn, nil
	}

	if fn.Body, err = p.parseBlock(); err != nil {
		return nil, err
	}

	return fn, nil
}

// parseFuncArgs parses argument definitions after '(' through ')'.
// Default values must form a suffix of the list, and a rest argument
// (Type... name) must be the last one. Names may be omitted in function
// types.
func (p *Parser) parseFuncArgs(optionalNames bool) ([]*ast.FuncArgDef, error) {
	open := p.lex.Peek(0)

	if p.peekIs(1, token.Bracket, ")") {
		p.lex.Consume()
		return nil, nil
	}

	var (
		args      []*ast.FuncArgDef
		defaulted bool
	)

	for {
		argTok := p.lex.Peek(1)

		arg, err := alloc[ast.FuncArgDef](p, argTok)
		if err != nil {
			return nil, err
		}
		arg.Tok = argTok

		if arg.Type, err = p.parseTypeRef(); err != nil {
			return nil, err
		}

		if p.lex.Peek(1).IsOp(token.OpEllipsis) {
			p.lex.Consume()
			arg.Rest = true
		}

		if !optionalNames || p.peekIs(1, token.Identifier, "") {
			if arg.NameTok, err = p.expect(token.Identifier, ""); err != nil {
				return nil, err
			}
			arg.Name = arg.NameTok.Text
		}

		switch {
		case arg.Rest:
		case p.lex.Peek(1).IsOp(token.OpAssign):
			p.lex.Consume()
			if arg.Default, err = p.parseExpr(callArgPrecedence); err != nil {
				return nil, err
			}
			defaulted = true
		case defaulted:
			return nil, p.errorf(argTok, "required argument after argument with default value")
		}

		args = append(args, arg)

		if arg.Rest {
			if _, err := p.expect(token.Bracket, ")"); err != nil {
				return nil, err
			}
			break
		}

		tok := p.lex.Peek(1)
		if tok.Is(token.Bracket, ")") {
			p.lex.Consume()
			break
		}
		if !tok.IsOp(token.OpComma) {
			return nil, p.unexpected(tok, "',' or ')'")
		}
		p.lex.Consume()
	}

	return slice(p, open, args)
}

func (p *Parser) parseEnum() (ast.Decl, error) {
	enumTok, err := p.expect(token.Keyword, "enum")
	if err != nil {
		return nil, err
	}

	enum, err := alloc[ast.Enum](p, enumTok)
	if err != nil {
		return nil, err
	}
	enum.Tok = enumTok

	if enum.NameTok, err = p.expect(token.Identifier, ""); err != nil {
		return nil, err
	}
	enum.Name = enum.NameTok.Text

	if !p.peekIs(1, token.Bracket, "{") {
		if enum.Type, err = p.parseTypeRef(); err != nil {
			return nil, err
		}
	}

	open, err := p.expect(token.Bracket, "{")
	if err != nil {
		return nil, err
	}

	if end := p.lex.Peek(1); end.Is(token.Bracket, "}") {
		return nil, p.errorf(end, "enum '%s' has no entries", enum.Name)
	}

	var entries []*ast.EnumEntry
	for {
		nameTok, err := p.expect(token.Identifier, "")
		if err != nil {
			return nil, err
		}

		entry, err := alloc[ast.EnumEntry](p, nameTok)
		if err != nil {
			return nil, err
		}
		entry.Tok, entry.Name = nameTok, nameTok.Text

		if p.lex.Peek(1).IsOp(token.OpAssign) {
			p.lex.Consume()
			if entry.Value, err = p.parseExpr(callArgPrecedence); err != nil {
				return nil, err
			}
		}
		entries = append(entries, entry)

		tok := p.lex.Peek(1)
		if tok.Is(token.Bracket, "}") {
			p.lex.Consume()
			break
		}
		if !tok.IsOp(token.OpComma) {
			return nil, p.unexpected(tok, "',' or '}'")
		}
		p.lex.Consume()

		// a trailing comma is allowed
		if p.peekIs(1, token.Bracket, "}") {
			p.lex.Consume()
			break
		}
	}

	if enum.Entries, err = slice(p, open, entries); err != nil {
		return nil, err
	}

	return enum, nil
}

func (p *Parser) parseTypeAlias() (ast.Decl, error) {
	typeTok, err := p.expect(token.Keyword, "type")
	if err != nil {
		return nil, err
	}

	alias, err := alloc[ast.TypeAlias](p, typeTok)
	if err != nil {
		return nil, err
	}
	alias.Tok = typeTok

	if alias.NameTok, err = p.expect(token.Identifier, ""); err != nil {
		return nil, err
	}
	alias.Name = alias.NameTok.Text

	if _, err := p.expectOp(token.OpAssign); err != nil {
		return nil, err
	}

	if alias.Type, err = p.parseTypeRef(); err != nil {
		return nil, err
	}

	if _, err := p.expect(token.Delimiter, ";"); err != nil {
		return nil, err
	}

	return alias, nil
}

// ParseTypeRef parses a type reference.
func (p *Parser) ParseTypeRef() (ast.TypeRef, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.parseTypeRef()
}

// parseTypeRef parses a primitive, named or function type followed by any
// number of [] suffixes, each wrapping the type before it.
func (p *Parser) parseTypeRef() (ast.TypeRef, error) {
	tok := p.lex.Peek(1)
	if err := p.enter(tok); err != nil {
		return nil, err
	}
	defer p.leave()

	var typ ast.TypeRef

	switch {
	case tok.Kind == token.Keyword && tok.Kwd.IsPrimitive():
		p.lex.Consume()
		prim, err := alloc[ast.PrimitiveType](p, tok)
		if err != nil {
			return nil, err
		}
		prim.Tok, prim.Kwd = tok, tok.Kwd
		typ = prim

	case tok.IsKwd(token.KwdFunction):
		p.lex.Consume()
		fn, err := alloc[ast.FuncType](p, tok)
		if err != nil {
			return nil, err
		}
		fn.Tok = tok

		if fn.Ret, err = p.parseTypeRef(); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Bracket, "("); err != nil {
			return nil, err
		}
		if fn.Args, err = p.parseFuncArgs(true); err != nil {
			return nil, err
		}
		typ = fn

	case tok.Kind == token.Identifier:
		p.lex.Consume()
		named, err := alloc[ast.NamedType](p, tok)
		if err != nil {
			return nil, err
		}
		named.Tok, named.Name = tok, tok.Text
		typ = named

	default:
		return nil, p.unexpected(tok, "type")
	}

	for p.peekIs(1, token.Bracket, "[") && p.peekIs(2, token.Bracket, "]") {
		open := p.lex.Consume()
		p.lex.Consume()

		arr, err := alloc[ast.ArrayType](p, open)
		if err != nil {
			return nil, err
		}
		arr.Tok, arr.Elem = open, typ
		typ = arr
	}

	return typ, nil
}
