package parser

import (
	"github.com/minnieml-lang/mml/internal/ast"
	"github.com/minnieml-lang/mml/internal/lexer"
	"github.com/minnieml-lang/mml/internal/span"
)

// stopSet is a small set of token types that terminate a flat
// expression term sequence in the current context (e.g. SEMI at
// top level, RPAREN/COMMA inside a group, THEN/ELSE/END inside a
// conditional branch).
type stopSet map[lexer.TokenType]bool

func stops(ts ...lexer.TokenType) stopSet {
	s := make(stopSet, len(ts))
	for _, t := range ts {
		s[t] = true
	}
	return s
}

func (s stopSet) has(t lexer.TokenType) bool { return s[t] }

// parseExprUntil parses a flat sequence of terms — no precedence is
// applied here; that is ExpressionRewriter's job (spec §4.2, §4.8).
func (p *Parser) parseExprUntil(stop stopSet) *ast.Expr {
	start := p.curSpan()
	e := &ast.Expr{NodeSpan: start}
	// Member-leading keywords can never start a term, so they always
	// end a flat expression even if the caller's explicit stop set
	// doesn't mention them — this is what lets recovery from a missing
	// ';' (spec E7) resync at the next member instead of swallowing it.
	for !stop.has(p.curToken.Type) && !memberLeaders[p.curToken.Type] && !p.curIs(lexer.EOF) {
		t := p.parseTerm()
		if t == nil {
			break
		}
		e.Terms = append(e.Terms, t)
	}
	end := start
	if n := len(e.Terms); n > 0 {
		end = e.Terms[n-1].Span()
	}
	e.NodeSpan = spanFrom(start, end)
	return e
}

func (p *Parser) parseTerm() ast.Term {
	sp := p.curSpan()
	switch p.curToken.Type {
	case lexer.INT:
		v := p.curToken.Literal
		p.advance()
		return &ast.LiteralInt{Value: v, NodeSpan: sp}
	case lexer.FLOAT:
		v := p.curToken.Literal
		p.advance()
		return &ast.LiteralFloat{Value: v, NodeSpan: sp}
	case lexer.STRING:
		v := p.curToken.Literal
		p.advance()
		return &ast.LiteralString{Value: v, NodeSpan: sp}
	case lexer.TRUE:
		p.advance()
		return &ast.LiteralBool{Value: true, NodeSpan: sp}
	case lexer.FALSE:
		p.advance()
		return &ast.LiteralBool{Value: false, NodeSpan: sp}
	case lexer.UNIT:
		p.advance()
		return &ast.LiteralUnit{NodeSpan: sp}
	case lexer.HOLE:
		p.advance()
		return &ast.Hole{NodeSpan: sp}
	case lexer.PLACEHOLDER:
		p.advance()
		return &ast.Placeholder{NodeSpan: sp}
	case lexer.NATIVE:
		return p.parseNativeTerm(sp)
	case lexer.IDENT, lexer.OPIDENT:
		return p.parseRef(sp)
	case lexer.TYIDENT:
		// A bare type name in term position references the
		// constructor MemoryFunctionGenerator/parser-time synthesis
		// registers for that struct (spec §4.11: "Constructors
		// (__mk_<Struct>) were synthesized at parse time").
		name := p.curToken.Literal
		p.advance()
		return &ast.Ref{Name: "__mk_" + name, NodeSpan: sp}
	case lexer.LPAREN:
		return p.parseParenTerm(sp)
	case lexer.IF:
		return p.parseCond(sp)
	default:
		msg := "unexpected token " + p.curToken.Type.String() + " in expression"
		p.report(errCodeUnexpectedType, msg)
		p.advance()
		return &ast.TermError{Message: msg, NodeSpan: sp}
	}
}

// parseRef parses a name reference, including the single-level
// qualified form `a.b` (spec §3.3, §4.7 step 4).
func (p *Parser) parseRef(sp span.Span) ast.Term {
	name := p.curToken.Literal
	p.advance()
	if p.curIs(lexer.DOT) {
		p.advance()
		field := p.curToken.Literal
		end := p.curSpan()
		p.expect(lexer.IDENT)
		return &ast.Ref{Name: name, Qualifier: field, NodeSpan: spanFrom(sp, end)}
	}
	return &ast.Ref{Name: name, NodeSpan: sp}
}

// parseNativeTerm parses an @native body marker, optionally annotated
// with a bracketed memory-effect tag, e.g. `@native[alloc]`.
func (p *Parser) parseNativeTerm(sp span.Span) ast.Term {
	p.advance() // @native
	effect := ast.NoAlloc
	end := sp
	if p.curIs(lexer.LBRACKET) {
		p.advance()
		switch p.curToken.Literal {
		case "alloc":
			effect = ast.Alloc
		case "static":
			effect = ast.Static
		}
		if p.curIs(lexer.IDENT) {
			p.advance()
		}
		end = p.curSpan()
		p.expect(lexer.RBRACKET)
	}
	return &ast.NativeImpl{MemEffectKind: effect, NodeSpan: spanFrom(sp, end)}
}

// parseParenTerm parses a TermGroup (single element) or Tuple (two or
// more), per spec §4.2: "a one-element parenthesization is a
// TermGroup, not a tuple."
func (p *Parser) parseParenTerm(sp span.Span) ast.Term {
	p.advance() // (
	inner := []*ast.Expr{p.parseExprUntil(stops(lexer.COMMA, lexer.RPAREN))}
	for p.curIs(lexer.COMMA) {
		p.advance()
		inner = append(inner, p.parseExprUntil(stops(lexer.COMMA, lexer.RPAREN)))
	}
	end := p.curSpan()
	p.expect(lexer.RPAREN)
	if len(inner) == 1 {
		return &ast.TermGroup{Inner: inner[0], NodeSpan: spanFrom(sp, end)}
	}
	return &ast.Tuple{Elements: inner, NodeSpan: spanFrom(sp, end)}
}

// parseCond parses `if GUARD then EXPR else EXPR`.
func (p *Parser) parseCond(sp span.Span) ast.Term {
	p.advance() // if
	guard := p.parseExprUntil(stops(lexer.THEN))
	p.expect(lexer.THEN)
	thenBranch := p.parseExprUntil(stops(lexer.ELSE))
	p.expect(lexer.ELSE)
	elseBranch := p.parseExprUntil(stops(lexer.SEMI, lexer.RPAREN, lexer.COMMA, lexer.END, lexer.EOF))
	end := elseBranch.Span()
	return &ast.Cond{Guard: guard, Then: thenBranch, Else: elseBranch, NodeSpan: spanFrom(sp, end)}
}
