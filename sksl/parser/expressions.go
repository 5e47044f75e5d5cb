package parser

import (
	"slices"
	"strconv"

	"github.com/dhamidi/sksl/sksl/ast"
	"github.com/dhamidi/sksl/sksl/diag"
	"github.com/dhamidi/sksl/sksl/lexer"
)

// expression: assignmentExpression (',' assignmentExpression)*
func (p *Parser) expression() ast.ID {
	return p.binary(p.assignmentExpression, lexer.Comma)
}

var assignmentOperators = []lexer.Kind{
	lexer.Eq, lexer.StarEq, lexer.SlashEq, lexer.PercentEq, lexer.PlusEq,
	lexer.MinusEq, lexer.ShlEq, lexer.ShrEq, lexer.BitwiseAndEq,
	lexer.BitwiseXorEq, lexer.BitwiseOrEq, lexer.LogicalAndEq,
	lexer.LogicalXorEq, lexer.LogicalOrEq,
}

// assignmentExpression is right-associative:
//
//	ternaryExpression (assignmentOperator assignmentExpression)?
func (p *Parser) assignmentExpression() ast.ID {
	depth := p.newDepth()
	defer depth.release()
	result := p.ternaryExpression()
	if !result.Valid() {
		return ast.InvalidID
	}
	t := p.peek()
	if !slices.Contains(assignmentOperators, t.Kind) {
		return result
	}
	p.next()
	if !depth.increase() {
		return ast.InvalidID
	}
	right := p.assignmentExpression()
	if !right.Valid() {
		return ast.InvalidID
	}
	return p.binaryNode(result, t.Kind, right)
}

// ternaryExpression: logicalOrExpression ('?' expression ':' assignmentExpression)?
func (p *Parser) ternaryExpression() ast.ID {
	depth := p.newDepth()
	defer depth.release()
	base := p.logicalOrExpression()
	if !base.Valid() {
		return ast.InvalidID
	}
	if _, ok := p.checkNext(lexer.Question); !ok {
		return base
	}
	if !depth.increase() {
		return ast.InvalidID
	}
	ifTrue := p.expression()
	if !ifTrue.Valid() {
		return ast.InvalidID
	}
	if _, ok := p.expect(lexer.Colon, "':'"); !ok {
		return ast.InvalidID
	}
	ifFalse := p.assignmentExpression()
	if !ifFalse.Valid() {
		return ast.InvalidID
	}
	result := p.createNode(ast.KindTernary, p.node(base).Offset, nil)
	p.addChild(result, base)
	p.addChild(result, ifTrue)
	p.addChild(result, ifFalse)
	return result
}

func (p *Parser) logicalOrExpression() ast.ID {
	return p.binary(p.logicalXorExpression, lexer.LogicalOr)
}

func (p *Parser) logicalXorExpression() ast.ID {
	return p.binary(p.logicalAndExpression, lexer.LogicalXor)
}

func (p *Parser) logicalAndExpression() ast.ID {
	return p.binary(p.bitwiseOrExpression, lexer.LogicalAnd)
}

func (p *Parser) bitwiseOrExpression() ast.ID {
	return p.binary(p.bitwiseXorExpression, lexer.BitwiseOr)
}

func (p *Parser) bitwiseXorExpression() ast.ID {
	return p.binary(p.bitwiseAndExpression, lexer.BitwiseXor)
}

func (p *Parser) bitwiseAndExpression() ast.ID {
	return p.binary(p.equalityExpression, lexer.BitwiseAnd)
}

func (p *Parser) equalityExpression() ast.ID {
	return p.binary(p.relationalExpression, lexer.EqEq, lexer.Neq)
}

func (p *Parser) relationalExpression() ast.ID {
	return p.binary(p.shiftExpression, lexer.Lt, lexer.Gt, lexer.LtEq, lexer.GtEq)
}

func (p *Parser) shiftExpression() ast.ID {
	return p.binary(p.additiveExpression, lexer.Shl, lexer.Shr)
}

func (p *Parser) additiveExpression() ast.ID {
	return p.binary(p.multiplicativeExpression, lexer.Plus, lexer.Minus)
}

func (p *Parser) multiplicativeExpression() ast.ID {
	return p.binary(p.unaryExpression, lexer.Star, lexer.Slash, lexer.Percent)
}

// binary parses a left-associative chain of operand separated by any of ops.
// Every operator consumed counts toward the parse depth, which keeps long
// chains from producing trees deeper than the limit.
func (p *Parser) binary(operand func() ast.ID, ops ...lexer.Kind) ast.ID {
	depth := p.newDepth()
	defer depth.release()
	result := operand()
	if !result.Valid() {
		return ast.InvalidID
	}
	for {
		t := p.peek()
		if !slices.Contains(ops, t.Kind) {
			return result
		}
		p.next()
		if !depth.increase() {
			return ast.InvalidID
		}
		right := operand()
		if !right.Valid() {
			return ast.InvalidID
		}
		result = p.binaryNode(result, t.Kind, right)
	}
}

func (p *Parser) binaryNode(left ast.ID, op lexer.Kind, right ast.ID) ast.ID {
	result := p.createNode(ast.KindBinary, p.node(left).Offset, op)
	p.addChild(result, left)
	p.addChild(result, right)
	return result
}

// unaryExpression: ('+' | '-' | '!' | '~' | '++' | '--') unaryExpression | postfixExpression
func (p *Parser) unaryExpression() ast.ID {
	depth := p.newDepth()
	defer depth.release()
	t := p.peek()
	switch t.Kind {
	case lexer.Plus, lexer.Minus, lexer.LogicalNot, lexer.BitwiseNot, lexer.PlusPlus, lexer.MinusMinus:
		p.next()
		if !depth.increase() {
			return ast.InvalidID
		}
		operand := p.unaryExpression()
		if !operand.Valid() {
			return ast.InvalidID
		}
		result := p.createNode(ast.KindPrefix, offset(t), t.Kind)
		p.addChild(result, operand)
		return result
	}
	return p.postfixExpression()
}

// postfixExpression: term suffix*
func (p *Parser) postfixExpression() ast.ID {
	depth := p.newDepth()
	defer depth.release()
	result := p.term()
	if !result.Valid() {
		return ast.InvalidID
	}
	for {
		t := p.peek()
		switch t.Kind {
		case lexer.FloatLiteral:
			if p.Text(t)[0] != '.' {
				return result
			}
		case lexer.LBracket, lexer.Dot, lexer.LParen, lexer.PlusPlus, lexer.MinusMinus, lexer.ColonColon:
		default:
			return result
		}
		if !depth.increase() {
			return ast.InvalidID
		}
		result = p.suffix(result)
		if !result.Valid() {
			return ast.InvalidID
		}
	}
}

// suffix parses one of
//
//	'[' expression? ']'  |  '.' IDENTIFIER  |  '.' NUMBER-SWIZZLE
//	'(' arguments ')'    |  '++'  |  '--'   |  '::' IDENTIFIER
func (p *Parser) suffix(base ast.ID) ast.ID {
	next := p.next()
	switch next.Kind {
	case lexer.LBracket:
		result := p.createNode(ast.KindIndex, offset(next), nil)
		p.addChild(result, base)
		if _, ok := p.checkNext(lexer.RBracket); ok {
			return result
		}
		index := p.expression()
		if !index.Valid() {
			return ast.InvalidID
		}
		p.addChild(result, index)
		if _, ok := p.expect(lexer.RBracket, "']' to complete array access expression"); !ok {
			return ast.InvalidID
		}
		return result
	case lexer.Dot, lexer.ColonColon:
		name, ok := p.expect(lexer.Identifier, "an identifier")
		if !ok {
			return ast.InvalidID
		}
		return p.fieldNode(base, next, p.Text(name))
	case lexer.FloatLiteral:
		// Swizzles that start with a digit ("v.000r") lex as a float literal
		// and, when letters follow, an identifier directly after it.
		field := p.Text(next)[1:]
		if id := p.nextRaw(); id.Kind == lexer.Identifier {
			field += p.Text(id)
		} else {
			p.pushback(id)
		}
		for _, c := range field {
			switch c {
			case '0', '1', 'x', 'y', 'z', 'w', 'r', 'g', 'b', 'a', 's', 't', 'p', 'q', 'L', 'T', 'R', 'B':
			default:
				p.errorf(next, diag.SyntaxError, "invalid swizzle '%s'", field)
				return ast.InvalidID
			}
		}
		return p.fieldNode(base, next, field)
	case lexer.LParen:
		result := p.createNode(ast.KindCall, p.node(base).Offset, nil)
		p.addChild(result, base)
		if _, ok := p.checkNext(lexer.RParen); ok {
			return result
		}
		for {
			arg := p.assignmentExpression()
			if !arg.Valid() {
				return ast.InvalidID
			}
			p.addChild(result, arg)
			if _, ok := p.checkNext(lexer.Comma); !ok {
				break
			}
		}
		if _, ok := p.expect(lexer.RParen, "')' to complete function arguments"); !ok {
			return ast.InvalidID
		}
		return result
	case lexer.PlusPlus, lexer.MinusMinus:
		result := p.createNode(ast.KindPostfix, offset(next), next.Kind)
		p.addChild(result, base)
		return result
	}
	p.error(next, "expected expression suffix, but found "+p.describe(next))
	return ast.InvalidID
}

func (p *Parser) fieldNode(base ast.ID, at lexer.Token, name string) ast.ID {
	result := p.createNode(ast.KindField, offset(at), name)
	p.addChild(result, base)
	return result
}

// term parses identifiers, literals and parenthesized expressions.
func (p *Parser) term() ast.ID {
	t := p.peek()
	switch t.Kind {
	case lexer.Identifier:
		p.next()
		return p.createNode(ast.KindIdentifier, offset(t), p.Text(t))
	case lexer.IntLiteral:
		_, v, _ := p.intLiteral()
		return p.createNode(ast.KindInt, offset(t), v)
	case lexer.FloatLiteral:
		_, v, _ := p.floatLiteral()
		return p.createNode(ast.KindFloat, offset(t), v)
	case lexer.TrueLiteral, lexer.FalseLiteral:
		_, v, _ := p.boolLiteral()
		return p.createNode(ast.KindBool, offset(t), v)
	case lexer.NullLiteral:
		p.next()
		return p.createNode(ast.KindNull, offset(t), nil)
	case lexer.LParen:
		depth := p.newDepth()
		defer depth.release()
		if !depth.increase() {
			return ast.InvalidID
		}
		p.next()
		result := p.expression()
		if !result.Valid() {
			return ast.InvalidID
		}
		if _, ok := p.expect(lexer.RParen, "')' to complete expression"); !ok {
			return ast.InvalidID
		}
		return result
	}
	// The offending token is left for resynchronization to skip.
	p.error(t, "expected expression, but found "+p.describe(t))
	return ast.InvalidID
}

// intLiteral reads an integer literal. A literal that does not fit is
// reported and yields 0 so that parsing continues with a placeholder.
func (p *Parser) intLiteral() (lexer.Token, int64, bool) {
	t, ok := p.expect(lexer.IntLiteral, "integer literal")
	if !ok {
		return t, 0, false
	}
	text := p.Text(t)
	v, err := parseInt(text)
	if err != nil {
		p.errorf(t, diag.MalformedLiteral, "integer is too large: %s", text)
		return t, 0, true
	}
	return t, v, true
}

func (p *Parser) floatLiteral() (lexer.Token, float64, bool) {
	t, ok := p.expect(lexer.FloatLiteral, "float literal")
	if !ok {
		return t, 0, false
	}
	text := p.Text(t)
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		p.errorf(t, diag.MalformedLiteral, "floating-point value is too large: %s", text)
		return t, 0, true
	}
	return t, v, true
}

func (p *Parser) boolLiteral() (lexer.Token, bool, bool) {
	t := p.next()
	switch t.Kind {
	case lexer.TrueLiteral:
		return t, true, true
	case lexer.FalseLiteral:
		return t, false, true
	}
	p.error(t, "expected 'true' or 'false', but found "+p.describe(t))
	return t, false, false
}
