package parser

import (
	"github.com/dhamidi/sksl/sksl/ast"
	"github.com/dhamidi/sksl/sksl/lexer"
)

// statement dispatches on the first token of a statement.
func (p *Parser) statement() ast.ID {
	start := p.peek()
	depth := p.newDepth()
	defer depth.release()
	if !depth.increase() {
		return ast.InvalidID
	}
	switch start.Kind {
	case lexer.If, lexer.StaticIf:
		return p.ifStatement()
	case lexer.For:
		return p.forStatement()
	case lexer.Do:
		return p.doStatement()
	case lexer.While:
		return p.whileStatement()
	case lexer.Switch, lexer.StaticSwitch:
		return p.switchStatement()
	case lexer.Return:
		return p.returnStatement()
	case lexer.Break:
		return p.breakStatement()
	case lexer.Continue:
		return p.continueStatement()
	case lexer.Discard:
		return p.discardStatement()
	case lexer.LBrace:
		return p.block()
	case lexer.Semicolon:
		p.next()
		return p.createNode(ast.KindBlock, offset(start), nil)
	case lexer.Struct:
		return p.structVarDeclaration(ast.Modifiers{})
	case lexer.Identifier, lexer.Highp, lexer.Mediump, lexer.Lowp:
		return p.varDeclarationsOrExpressionStatement()
	}
	if _, ok := modifierFlags[start.Kind]; ok || start.Kind == lexer.Layout {
		return p.varDeclarations()
	}
	return p.expressionStatement()
}

// varDeclarationsOrExpressionStatement tries a variable declaration first
// and falls back to an expression statement when no declaration prefix
// ("type name") can be read. Only the prefix is speculative.
func (p *Parser) varDeclarationsOrExpressionStatement() ast.ID {
	t := p.peek()
	switch {
	case t.Kind == lexer.Highp, t.Kind == lexer.Mediump, t.Kind == lexer.Lowp:
	case t.Kind == lexer.Identifier && p.isType(p.Text(t)):
	default:
		return p.expressionStatement()
	}
	cp := p.checkpoint()
	prefix, ok := p.varDeclarationsPrefix()
	if ok {
		cp.release()
		return p.varDeclarationEnd(prefix.modifiers, prefix.typ, prefix.name)
	}
	cp.rewind()
	return p.expressionStatement()
}

// block parses "{ statement* }". A failed statement is dropped from the
// tree and parsing resumes after it, so one block can report several
// errors.
func (p *Parser) block() ast.ID {
	depth := p.newDepth()
	defer depth.release()
	if !depth.increase() {
		return ast.InvalidID
	}
	start, ok := p.expect(lexer.LBrace, "'{'")
	if !ok {
		return ast.InvalidID
	}
	if s, ok := p.symbols.(scoper); ok {
		s.PushScope()
		defer s.PopScope()
	}
	result := p.createNode(ast.KindBlock, offset(start), nil)
	for {
		t := p.peek()
		switch t.Kind {
		case lexer.RBrace:
			p.next()
			return result
		case lexer.EOF:
			if !p.eofReported {
				p.error(t, "expected '}', but found end of file")
				p.eofReported = true
			}
			return ast.InvalidID
		}
		mark := p.arena.Mark()
		stmt := p.statement()
		if stmt.Valid() {
			p.addChild(result, stmt)
			continue
		}
		p.arena.Rewind(mark)
		p.synchronize(false)
	}
}

// ifStatement parses "@? if ( expression ) statement (else statement)?".
func (p *Parser) ifStatement() ast.ID {
	start, isStatic, ok := p.maybeStatic(lexer.If, lexer.StaticIf, "'if'")
	if !ok {
		return ast.InvalidID
	}
	result := p.createNode(ast.KindIf, offset(start), isStatic)
	if _, ok := p.expect(lexer.LParen, "'('"); !ok {
		return ast.InvalidID
	}
	test := p.expression()
	if !test.Valid() {
		return ast.InvalidID
	}
	p.addChild(result, test)
	if _, ok := p.expect(lexer.RParen, "')'"); !ok {
		return ast.InvalidID
	}
	ifTrue := p.statement()
	if !ifTrue.Valid() {
		return ast.InvalidID
	}
	p.addChild(result, ifTrue)
	if _, ok := p.checkNext(lexer.Else); ok {
		ifFalse := p.statement()
		if !ifFalse.Valid() {
			return ast.InvalidID
		}
		p.addChild(result, ifFalse)
	}
	return result
}

// maybeStatic reads either the plain keyword or its "@" form.
func (p *Parser) maybeStatic(plain, static lexer.Kind, expected string) (lexer.Token, bool, bool) {
	t := p.next()
	switch t.Kind {
	case plain:
		return t, false, true
	case static:
		return t, true, true
	}
	p.error(t, "expected "+expected+", but found "+p.describe(t))
	return t, false, false
}

// forStatement parses
//
//	for ( (varDeclarations | expressionStatement | ';') expression? ';' expression? ) statement
//
// Omitted clauses become Empty children so the node always has four.
func (p *Parser) forStatement() ast.ID {
	start, ok := p.expect(lexer.For, "'for'")
	if !ok {
		return ast.InvalidID
	}
	if _, ok := p.expect(lexer.LParen, "'('"); !ok {
		return ast.InvalidID
	}
	result := p.createNode(ast.KindFor, offset(start), nil)
	switch t := p.peek(); t.Kind {
	case lexer.Semicolon:
		p.next()
		p.createEmptyChild(result)
	case lexer.Const:
		init := p.varDeclarations()
		if !init.Valid() {
			return ast.InvalidID
		}
		p.addChild(result, init)
	default:
		init := p.varDeclarationsOrExpressionStatement()
		if !init.Valid() {
			return ast.InvalidID
		}
		p.addChild(result, init)
	}
	if p.peek().Kind != lexer.Semicolon {
		test := p.expression()
		if !test.Valid() {
			return ast.InvalidID
		}
		p.addChild(result, test)
	} else {
		p.createEmptyChild(result)
	}
	if _, ok := p.expectSemicolon(); !ok {
		return ast.InvalidID
	}
	if p.peek().Kind != lexer.RParen {
		next := p.expression()
		if !next.Valid() {
			return ast.InvalidID
		}
		p.addChild(result, next)
	} else {
		p.createEmptyChild(result)
	}
	if _, ok := p.expect(lexer.RParen, "')'"); !ok {
		return ast.InvalidID
	}
	body := p.statement()
	if !body.Valid() {
		return ast.InvalidID
	}
	p.addChild(result, body)
	return result
}

func (p *Parser) whileStatement() ast.ID {
	start, ok := p.expect(lexer.While, "'while'")
	if !ok {
		return ast.InvalidID
	}
	if _, ok := p.expect(lexer.LParen, "'('"); !ok {
		return ast.InvalidID
	}
	result := p.createNode(ast.KindWhile, offset(start), nil)
	test := p.expression()
	if !test.Valid() {
		return ast.InvalidID
	}
	p.addChild(result, test)
	if _, ok := p.expect(lexer.RParen, "')'"); !ok {
		return ast.InvalidID
	}
	body := p.statement()
	if !body.Valid() {
		return ast.InvalidID
	}
	p.addChild(result, body)
	return result
}

// doStatement parses "do statement while ( expression ) ;". The node keeps
// the body first and the test second.
func (p *Parser) doStatement() ast.ID {
	start, ok := p.expect(lexer.Do, "'do'")
	if !ok {
		return ast.InvalidID
	}
	result := p.createNode(ast.KindDo, offset(start), nil)
	body := p.statement()
	if !body.Valid() {
		return ast.InvalidID
	}
	p.addChild(result, body)
	if _, ok := p.expect(lexer.While, "'while'"); !ok {
		return ast.InvalidID
	}
	if _, ok := p.expect(lexer.LParen, "'('"); !ok {
		return ast.InvalidID
	}
	test := p.expression()
	if !test.Valid() {
		return ast.InvalidID
	}
	p.addChild(result, test)
	if _, ok := p.expect(lexer.RParen, "')'"); !ok {
		return ast.InvalidID
	}
	if _, ok := p.expectSemicolon(); !ok {
		return ast.InvalidID
	}
	return result
}

// switchStatement parses "@? switch ( expression ) { switchCase* default? }".
func (p *Parser) switchStatement() ast.ID {
	start, isStatic, ok := p.maybeStatic(lexer.Switch, lexer.StaticSwitch, "'switch'")
	if !ok {
		return ast.InvalidID
	}
	if _, ok := p.expect(lexer.LParen, "'('"); !ok {
		return ast.InvalidID
	}
	value := p.expression()
	if !value.Valid() {
		return ast.InvalidID
	}
	if _, ok := p.expect(lexer.RParen, "')'"); !ok {
		return ast.InvalidID
	}
	if _, ok := p.expect(lexer.LBrace, "'{'"); !ok {
		return ast.InvalidID
	}
	result := p.createNode(ast.KindSwitch, offset(start), isStatic)
	p.addChild(result, value)
	for p.peek().Kind == lexer.Case {
		c := p.switchCase()
		if !c.Valid() {
			return ast.InvalidID
		}
		p.addChild(result, c)
	}
	// The default case must be last.
	if t := p.peek(); t.Kind == lexer.Default {
		p.next()
		if _, ok := p.expect(lexer.Colon, "':'"); !ok {
			return ast.InvalidID
		}
		defaultCase := p.addChild(result, p.createNode(ast.KindSwitchCase, offset(t), nil))
		p.createEmptyChild(defaultCase)
		if !p.switchCaseBody(defaultCase) {
			return ast.InvalidID
		}
	}
	if _, ok := p.expect(lexer.RBrace, "'}'"); !ok {
		return ast.InvalidID
	}
	return result
}

// switchCase parses "case expression : statement*".
func (p *Parser) switchCase() ast.ID {
	start, ok := p.expect(lexer.Case, "'case'")
	if !ok {
		return ast.InvalidID
	}
	result := p.createNode(ast.KindSwitchCase, offset(start), nil)
	value := p.expression()
	if !value.Valid() {
		return ast.InvalidID
	}
	p.addChild(result, value)
	if _, ok := p.expect(lexer.Colon, "':'"); !ok {
		return ast.InvalidID
	}
	if !p.switchCaseBody(result) {
		return ast.InvalidID
	}
	return result
}

func (p *Parser) switchCaseBody(parent ast.ID) bool {
	for {
		switch p.peek().Kind {
		case lexer.RBrace, lexer.Case, lexer.Default:
			return true
		}
		stmt := p.statement()
		if !stmt.Valid() {
			return false
		}
		p.addChild(parent, stmt)
	}
}

func (p *Parser) returnStatement() ast.ID {
	start, ok := p.expect(lexer.Return, "'return'")
	if !ok {
		return ast.InvalidID
	}
	result := p.createNode(ast.KindReturn, offset(start), nil)
	if p.peek().Kind != lexer.Semicolon {
		value := p.expression()
		if !value.Valid() {
			return ast.InvalidID
		}
		p.addChild(result, value)
	}
	if _, ok := p.expectSemicolon(); !ok {
		return ast.InvalidID
	}
	return result
}

func (p *Parser) breakStatement() ast.ID {
	return p.keywordStatement(lexer.Break, "'break'", ast.KindBreak)
}

func (p *Parser) continueStatement() ast.ID {
	return p.keywordStatement(lexer.Continue, "'continue'", ast.KindContinue)
}

func (p *Parser) discardStatement() ast.ID {
	return p.keywordStatement(lexer.Discard, "'discard'", ast.KindDiscard)
}

// keywordStatement parses a lone keyword followed by ';'.
func (p *Parser) keywordStatement(kind lexer.Kind, expected string, node ast.Kind) ast.ID {
	start, ok := p.expect(kind, expected)
	if !ok {
		return ast.InvalidID
	}
	if _, ok := p.expectSemicolon(); !ok {
		return ast.InvalidID
	}
	return p.createNode(node, offset(start), nil)
}

func (p *Parser) expressionStatement() ast.ID {
	expr := p.expression()
	if !expr.Valid() {
		return ast.InvalidID
	}
	if _, ok := p.expectSemicolon(); !ok {
		return ast.InvalidID
	}
	return expr
}
