// Package parser turns MML source text into a best-effort ast.Module.
// Input: source text + module name. Output: a Module whose Members are
// in source order; parsing never fails outright — malformed input
// produces error nodes and recovery continues (spec §4.2).
package parser

import (
	"github.com/minnieml-lang/mml/internal/ast"
	"github.com/minnieml-lang/mml/internal/errors"
	"github.com/minnieml-lang/mml/internal/lexer"
	"github.com/minnieml-lang/mml/internal/span"
)

// Parser is a hand-written recursive-descent parser with one token of
// lookahead, matching the lexer's own character-at-a-time style:
// no separate token stream is materialized ahead of cur/peek.
type Parser struct {
	l *lexer.Lexer

	sourcePath string

	curToken  lexer.Token
	peekToken lexer.Token

	pendingDoc string

	// ctorTargets collects every struct declared so far; ParseModule
	// synthesizes a __mk_<Struct> constructor Bnd for each once the
	// member loop finishes (spec §4.11: "Constructors were synthesized
	// at parse time").
	ctorTargets []*ast.TypeStruct

	errs []*errors.Report

	// unclosedComment is latched the first time the lexer reports one;
	// per spec §4.2 this fails the whole module.
	unclosedComment bool
}

// New creates a Parser reading from l. sourcePath is carried into
// diagnostics and the resulting Module.
func New(l *lexer.Lexer, sourcePath string) *Parser {
	p := &Parser{l: l, sourcePath: sourcePath}
	p.advance()
	p.advance()
	return p
}

// Parse is the package-level convenience entry point: parse(source,
// module_name) -> (Module, diagnostics) from spec §6.1.
func Parse(source, moduleName string) (*ast.Module, []*errors.Report) {
	normalized := lexer.Normalize([]byte(source))
	l := lexer.New(string(normalized))
	p := New(l, moduleName)
	return p.ParseModule(moduleName)
}

func (p *Parser) advance() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
	if doc, ok := p.l.TakePendingDoc(); ok {
		p.pendingDoc = doc
	}
	if p.l.UnclosedComment() {
		p.unclosedComment = true
	}
}

// takeDoc consumes and clears any doc comment accumulated immediately
// before the member currently being parsed.
func (p *Parser) takeDoc() string {
	doc := p.pendingDoc
	p.pendingDoc = ""
	return doc
}

func (p *Parser) curIs(t lexer.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekIs(t lexer.TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) curSpan() span.Span {
	return span.Of(p.curToken.Line, p.curToken.Column, p.curToken.Line, p.curToken.Column+len(p.curToken.Literal))
}

func spanFrom(start span.Span, end span.Span) span.Span {
	return span.Span{Start: start.Start, End: end.End}
}

// expect advances past t if it matches curToken, else records a
// structured parser error and does not advance.
func (p *Parser) expect(t lexer.TokenType) bool {
	if p.curIs(t) {
		p.advance()
		return true
	}
	p.report(errors.PAR001, "expected "+t.String()+", got "+p.curToken.Type.String())
	return false
}

func (p *Parser) report(code, message string) {
	p.errs = append(p.errs, errors.New(code, "parser", message, p.curSpan()))
}

// ParseModule parses every member up to EOF.
func (p *Parser) ParseModule(name string) (*ast.Module, []*errors.Report) {
	start := p.curSpan()
	m := &ast.Module{
		Name:       name,
		SourcePath: p.sourcePath,
		Visibility: ast.Public,
	}

	for !p.curIs(lexer.EOF) {
		if p.unclosedComment {
			p.errs = append(p.errs, errors.UnclosedComment(p.curSpan()))
			break
		}
		mem := p.parseMember()
		if mem != nil {
			m.Members = append(m.Members, mem)
		}
	}

	for _, ts := range p.ctorTargets {
		m.Members = append(m.Members, synthesizeConstructor(ts))
	}

	end := p.curSpan()
	m.NodeSpan = spanFrom(start, end)
	m.Resolvables = ast.NewResolvablesIndex()
	return m, p.errs
}
