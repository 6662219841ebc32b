package parser

import (
	"strconv"

	"github.com/minnieml-lang/mml/internal/ast"
	"github.com/minnieml-lang/mml/internal/lexer"
	"github.com/minnieml-lang/mml/internal/span"
)

// parseMember dispatches on the leading keyword, recovering with a
// ParsingMemberError for anything else (spec §4.2).
func (p *Parser) parseMember() ast.Member {
	doc := p.takeDoc()
	switch p.curToken.Type {
	case lexer.LET:
		return p.parseLet(doc)
	case lexer.FN:
		return p.parseFn(doc)
	case lexer.OP:
		return p.parseOp(doc)
	case lexer.TYPE:
		return p.parseTypeMember(doc)
	case lexer.STRUCT:
		return p.parseStruct(doc)
	default:
		return p.recoverMember("PAR_UNEXPECTED_MEMBER", "expected let, fn, op, type, or struct, got "+p.curToken.Type.String())
	}
}

func (p *Parser) parseLet(doc string) ast.Member {
	sp := p.curSpan()
	p.advance() // let
	name := p.curToken.Literal
	if !p.curIs(lexer.IDENT) {
		return p.invalidMemberName(sp, doc, name)
	}
	p.advance()

	var typeAsc ast.Type
	if p.curIs(lexer.COLON) {
		p.advance()
		typeAsc = p.parseTypeExpr()
	}
	p.expect(lexer.ASSIGN)
	value := p.parseExprUntil(stops(lexer.SEMI))
	end := p.curSpan()
	if !p.curIs(lexer.SEMI) {
		return p.recoverMember("PAR003", "expected ';' after let "+name)
	}
	p.advance()

	return &ast.Bnd{
		Name:       name,
		Value:      value,
		TypeAsc:    typeAsc,
		DocComment: doc,
		Visibility: ast.Public,
		NodeSpan:   spanFrom(sp, end),
	}
}

func (p *Parser) parseFn(doc string) ast.Member {
	sp := p.curSpan()
	p.advance() // fn
	name := p.curToken.Literal
	if !p.curIs(lexer.IDENT) {
		return p.invalidMemberName(sp, doc, name)
	}
	p.advance()

	params := p.parseParams()
	var retType ast.Type
	if p.curIs(lexer.COLON) {
		p.advance()
		retType = p.parseTypeExpr()
	}
	p.expect(lexer.ASSIGN)
	body := p.parseExprUntil(stops(lexer.SEMI))
	end := p.curSpan()
	if !p.curIs(lexer.SEMI) {
		return p.recoverMember("PAR003", "expected ';' after fn "+name)
	}
	p.advance()

	arity := ast.Nullary
	switch len(params) {
	case 0:
		arity = ast.Nullary
	case 1:
		arity = ast.Unary
	case 2:
		arity = ast.Binary
	default:
		arity = ast.Nary
	}

	lambda := &ast.Lambda{Params: params, Body: body, TypeAsc: retType, NodeSpan: spanFrom(sp, end)}
	return &ast.Bnd{
		Name:       name,
		Value:      &ast.Expr{Terms: []ast.Term{lambda}, NodeSpan: lambda.NodeSpan},
		DocComment: doc,
		Visibility: ast.Public,
		Meta: &ast.BindingMeta{
			Origin:       ast.Function,
			Arity:        arity,
			ArityN:       len(params),
			OriginalName: name,
			MangledName:  name,
		},
		NodeSpan: spanFrom(sp, end),
	}
}

func (p *Parser) parseOp(doc string) ast.Member {
	sp := p.curSpan()
	p.advance() // op
	originalName := p.curToken.Literal
	if !(p.curIs(lexer.OPIDENT) || p.curIs(lexer.IDENT)) {
		return p.invalidMemberName(sp, doc, originalName)
	}
	p.advance()

	params := p.parseParams()
	var retType ast.Type
	if p.curIs(lexer.COLON) {
		p.advance()
		retType = p.parseTypeExpr()
	}

	precedence := 0
	if p.curIs(lexer.INT) {
		if n, err := strconv.Atoi(p.curToken.Literal); err == nil {
			precedence = n
		}
		p.advance()
	}
	assoc := ast.AssocNone
	if p.curIs(lexer.IDENT) && (p.curToken.Literal == "left" || p.curToken.Literal == "right") {
		if p.curToken.Literal == "left" {
			assoc = ast.AssocLeft
		} else {
			assoc = ast.AssocRight
		}
		p.advance()
	}

	p.expect(lexer.ASSIGN)
	body := p.parseExprUntil(stops(lexer.SEMI))
	end := p.curSpan()
	if !p.curIs(lexer.SEMI) {
		return p.recoverMember("PAR003", "expected ';' after op "+originalName)
	}
	p.advance()

	arity := ast.Nullary
	switch len(params) {
	case 1:
		arity = ast.Unary
	case 2:
		arity = ast.Binary
	default:
		arity = ast.Nary
	}
	arityN := len(params)
	mangled := MangleOperatorName(originalName, arityN)

	lambda := &ast.Lambda{Params: params, Body: body, TypeAsc: retType, NodeSpan: spanFrom(sp, end)}
	return &ast.Bnd{
		Name:       mangled,
		Value:      &ast.Expr{Terms: []ast.Term{lambda}, NodeSpan: lambda.NodeSpan},
		DocComment: doc,
		Visibility: ast.Public,
		Meta: &ast.BindingMeta{
			Origin:        ast.Operator,
			Arity:         arity,
			ArityN:        arityN,
			Precedence:    precedence,
			Associativity: assoc,
			OriginalName:  originalName,
			MangledName:   mangled,
		},
		NodeSpan: spanFrom(sp, end),
	}
}

// parseParams parses `(PARAM, ...)` where PARAM is `[~]NAME [: TYPE]`.
func (p *Parser) parseParams() []*ast.FnParam {
	if !p.expect(lexer.LPAREN) {
		return nil
	}
	var params []*ast.FnParam
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		sp := p.curSpan()
		consuming := false
		if p.curIs(lexer.TILDE) {
			consuming = true
			p.advance()
		}
		name := p.curToken.Literal
		p.expect(lexer.IDENT)
		var typeAsc ast.Type
		if p.curIs(lexer.COLON) {
			p.advance()
			typeAsc = p.parseTypeExpr()
		}
		params = append(params, &ast.FnParam{Name: name, TypeAsc: typeAsc, Consuming: consuming, NodeSpan: sp})
		if p.curIs(lexer.COMMA) {
			p.advance()
		}
	}
	p.expect(lexer.RPAREN)
	return params
}

func (p *Parser) parseTypeMember(doc string) ast.Member {
	sp := p.curSpan()
	p.advance() // type
	name := p.curToken.Literal
	if !p.curIs(lexer.TYIDENT) {
		return p.invalidMemberName(sp, doc, name)
	}
	p.advance()
	p.expect(lexer.ASSIGN)

	if p.curIs(lexer.NATIVE) {
		underlying := p.parseNativeType()
		end := p.curSpan()
		if !p.curIs(lexer.SEMI) {
			return p.recoverMember("PAR003", "expected ';' after type "+name)
		}
		p.advance()
		return &ast.TypeDef{Name: name, Underlying: underlying, DocComment: doc, Visibility: ast.Public, NodeSpan: spanFrom(sp, end)}
	}

	target := p.parseTypeExpr()
	end := p.curSpan()
	if !p.curIs(lexer.SEMI) {
		return p.recoverMember("PAR003", "expected ';' after type "+name)
	}
	p.advance()
	return &ast.TypeAlias{Name: name, Target: target, DocComment: doc, Visibility: ast.Public, NodeSpan: spanFrom(sp, end)}
}

func (p *Parser) parseStruct(doc string) ast.Member {
	sp := p.curSpan()
	p.advance() // struct
	name := p.curToken.Literal
	if !p.curIs(lexer.TYIDENT) {
		return p.invalidMemberName(sp, doc, name)
	}
	p.advance()
	p.expect(lexer.LBRACE)

	var fields []*ast.Field
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		fsp := p.curSpan()
		fname := p.curToken.Literal
		p.expect(lexer.IDENT)
		var typeAsc ast.Type
		if p.curIs(lexer.COLON) {
			p.advance()
			typeAsc = p.parseTypeExpr()
		}
		fields = append(fields, &ast.Field{Name: fname, TypeAsc: typeAsc, NodeSpan: fsp})
		if p.curIs(lexer.COMMA) {
			p.advance()
		}
	}
	end := p.curSpan()
	p.expect(lexer.RBRACE)

	if len(fields) == 0 {
		return p.recoverMember("PAR_EMPTY_STRUCT", "struct "+name+" has no fields")
	}

	if !p.curIs(lexer.SEMI) {
		return p.recoverMember("PAR003", "expected ';' after struct "+name)
	}
	p.advance()

	ts := &ast.TypeStruct{Name: name, Fields: fields, DocComment: doc, Visibility: ast.Public, NodeSpan: spanFrom(sp, end)}
	p.ctorTargets = append(p.ctorTargets, ts)
	return ts
}

func (p *Parser) invalidMemberName(sp span.Span, doc, lexeme string) ast.Member {
	_, _ = sp, doc
	return p.invalidIdentifier(lexeme, "expected an identifier here")
}
