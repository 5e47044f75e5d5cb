package parser

import (
	"github.com/dhamidi/sksl/sksl/diag"
	"github.com/dhamidi/sksl/sksl/lexer"
)

// nextRaw returns the next token including whitespace and comments.
func (p *Parser) nextRaw() lexer.Token {
	if p.hasPushback {
		p.hasPushback = false
		return p.pushed
	}
	return p.lexer.Next()
}

// next returns the next token that is not whitespace or a comment.
func (p *Parser) next() lexer.Token {
	for {
		tok := p.nextRaw()
		if !tok.Kind.IsTrivia() {
			return tok
		}
	}
}

// pushback makes tok the next token read. Only one token can be pushed back
// between reads.
func (p *Parser) pushback(tok lexer.Token) {
	if p.hasPushback {
		panic("parser: pushback while the pushback slot is occupied by " + p.pushed.Kind.String())
	}
	p.pushed = tok
	p.hasPushback = true
}

func (p *Parser) peek() lexer.Token {
	tok := p.next()
	p.pushback(tok)
	return tok
}

// checkNext consumes the next token only if it has the given kind.
func (p *Parser) checkNext(kind lexer.Kind) (lexer.Token, bool) {
	tok := p.next()
	if tok.Kind == kind {
		return tok, true
	}
	p.pushback(tok)
	return tok, false
}

// expect consumes the next token and reports
// "expected <expected>, but found '<text>'" when it is not of the given
// kind. The token is returned either way.
func (p *Parser) expect(kind lexer.Kind, expected string) (lexer.Token, bool) {
	tok := p.next()
	if tok.Kind == kind {
		return tok, true
	}
	p.error(tok, "expected "+expected+", but found "+p.describe(tok))
	return tok, false
}

// expectIdentifier behaves like expect(Identifier) but also rejects type
// names. A type name is reported with its own diagnostic code and is still
// accepted, so the caller can carry on with the declaration.
func (p *Parser) expectIdentifier() (lexer.Token, bool) {
	tok, ok := p.expect(lexer.Identifier, "an identifier")
	if !ok {
		return tok, false
	}
	if p.isType(p.Text(tok)) {
		p.errorf(tok, diag.TypeAsIdentifier, "expected an identifier, but found type '%s'", p.Text(tok))
	}
	return tok, true
}

// expectSemicolon is expect(Semicolon) for statement and declaration
// terminators. A '}' or end of file found instead is left unread so that
// recovery stops at the enclosing block.
func (p *Parser) expectSemicolon() (lexer.Token, bool) {
	tok, ok := p.expect(lexer.Semicolon, "';'")
	if !ok && (tok.Kind == lexer.RBrace || tok.Kind == lexer.EOF) {
		p.pushback(tok)
	}
	return tok, ok
}
