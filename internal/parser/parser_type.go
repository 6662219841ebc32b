package parser

import (
	"github.com/minnieml-lang/mml/internal/ast"
	"github.com/minnieml-lang/mml/internal/lexer"
	"github.com/minnieml-lang/mml/internal/span"
)

// parseTypeExpr parses a TYPE_EXPR: a type reference, parenthesized
// group/tuple/unit, or a right-associative arrow chain for function
// types (spec §3.4, §4.2 "TYPE_EXPR").
func (p *Parser) parseTypeExpr() ast.Type {
	left := p.parseTypeAtom()
	if p.curIs(lexer.OPIDENT) && p.curToken.Literal == "->" {
		start := left.Span()
		p.advance()
		right := p.parseTypeExpr()
		return &ast.TypeFn{Param: left, Result: right, NodeSpan: spanFrom(start, right.Span())}
	}
	return left
}

func (p *Parser) parseTypeAtom() ast.Type {
	sp := p.curSpan()
	switch p.curToken.Type {
	case lexer.TYIDENT:
		name := p.curToken.Literal
		p.advance()
		return &ast.TypeRef{Name: name, NodeSpan: sp}
	case lexer.UNIT:
		p.advance()
		return &ast.TypeUnit{NodeSpan: sp}
	case lexer.NATIVE:
		return p.parseNativeType()
	case lexer.LPAREN:
		p.advance()
		first := p.parseTypeExpr()
		if p.curIs(lexer.COMMA) {
			elems := []ast.Type{first}
			for p.curIs(lexer.COMMA) {
				p.advance()
				elems = append(elems, p.parseTypeExpr())
			}
			end := p.curSpan()
			p.expect(lexer.RPAREN)
			return &ast.TypeTuple{Elements: elems, NodeSpan: spanFrom(sp, end)}
		}
		end := p.curSpan()
		p.expect(lexer.RPAREN)
		return &ast.TypeGroup{Inner: first, NodeSpan: spanFrom(sp, end)}
	default:
		p.report(errCodeUnexpectedType, "expected a type expression, got "+p.curToken.Type.String())
		return &ast.InvalidType{Reason: "expected a type expression", NodeSpan: sp}
	}
}

const errCodeUnexpectedType = "PAR001"

// parseNativeType parses the body of an `@native` type definition:
// `@native[t=LLVM]`, `@native[t=*LLVM]`, or `@native { FIELDS }`
// (spec §4.2, §4.11).
func (p *Parser) parseNativeType() ast.Type {
	sp := p.curSpan()
	p.advance() // @native

	if p.curIs(lexer.LBRACE) {
		return p.parseNativeStructType(sp)
	}

	if !p.expect(lexer.LBRACKET) {
		return &ast.InvalidType{Reason: "expected [ or { after @native", NodeSpan: sp}
	}
	// `t`
	if p.curIs(lexer.IDENT) {
		p.advance()
	}
	p.expect(lexer.ASSIGN)

	isPointer := false
	if p.curIs(lexer.OPIDENT) && p.curToken.Literal == "*" {
		isPointer = true
		p.advance()
	}

	llvmType := p.curToken.Literal
	if p.curIs(lexer.IDENT) || p.curIs(lexer.TYIDENT) {
		p.advance()
	}
	end := p.curSpan()
	p.expect(lexer.RBRACKET)

	if isPointer {
		return &ast.NativePointer{PointeeLLVMType: llvmType, NodeSpan: spanFrom(sp, end)}
	}
	return &ast.NativePrimitive{LLVMType: llvmType, NodeSpan: spanFrom(sp, end)}
}

// parseNativeStructType parses `@native { name: TYPE, ... }`.
func (p *Parser) parseNativeStructType(sp span.Span) ast.Type {
	p.expect(lexer.LBRACE)
	fieldOrder := []string{}
	fieldMap := map[string]ast.Type{}
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		name := p.curToken.Literal
		p.expect(lexer.IDENT)
		p.expect(lexer.COLON)
		fieldMap[name] = p.parseTypeExpr()
		fieldOrder = append(fieldOrder, name)
		if p.curIs(lexer.COMMA) {
			p.advance()
		}
	}
	end := p.curSpan()
	p.expect(lexer.RBRACE)
	return &ast.NativeStruct{FieldOrder: fieldOrder, FieldMap: fieldMap, NodeSpan: spanFrom(sp, end)}
}
