package parser

import (
	"github.com/minnieml-lang/mml/internal/ast"
	"github.com/minnieml-lang/mml/internal/errors"
	"github.com/minnieml-lang/mml/internal/lexer"
)

// memberLeaders are the tokens that can start a new member; recovery
// scans forward to the next one (or a top-level ';') per spec §4.2.
var memberLeaders = map[lexer.TokenType]bool{
	lexer.LET:    true,
	lexer.FN:     true,
	lexer.OP:     true,
	lexer.TYPE:   true,
	lexer.STRUCT: true,
}

// recoverMember emits a ParsingMemberError at the current position and
// resumes scanning at the next plausible member boundary.
func (p *Parser) recoverMember(code, message string) ast.Member {
	sp := p.curSpan()
	node := &ast.ParsingMemberError{FailedCode: code, Message: message, NodeSpan: sp}
	p.errs = append(p.errs, errors.ParsingMemberError(code, message, sp))

	for !p.curIs(lexer.EOF) {
		if p.curIs(lexer.SEMI) {
			p.advance()
			break
		}
		if memberLeaders[p.curToken.Type] {
			break
		}
		p.advance()
	}
	return node
}

// invalidIdentifier wraps an unparsable identifier lexeme.
func (p *Parser) invalidIdentifier(lexeme, message string) *ast.ParsingIdError {
	sp := p.curSpan()
	p.errs = append(p.errs, errors.ParsingIdError(lexeme, message, sp))
	return &ast.ParsingIdError{InvalidID: lexeme, Message: message, NodeSpan: sp}
}
