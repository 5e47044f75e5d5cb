package parser

import (
	"strconv"

	"github.com/dhamidi/sksl/sksl/ast"
	"github.com/dhamidi/sksl/sksl/diag"
	"github.com/dhamidi/sksl/sksl/lexer"
)

// directive parses "#extension name : behavior". Unsupported or malformed
// directives are reported and the rest of their line is skipped.
func (p *Parser) directive() ast.ID {
	start, _ := p.expect(lexer.Directive, "a directive")
	text := p.Text(start)
	if text != "#extension" {
		p.errorf(start, diag.SyntaxError, "unsupported directive '%s'", text)
		p.skipLine()
		return ast.InvalidID
	}
	name, ok := p.expect(lexer.Identifier, "an identifier")
	if !ok {
		p.skipLine()
		return ast.InvalidID
	}
	if _, ok := p.expect(lexer.Colon, "':'"); !ok {
		p.skipLine()
		return ast.InvalidID
	}
	behavior, ok := p.expect(lexer.Identifier, "an identifier")
	if !ok {
		p.skipLine()
		return ast.InvalidID
	}
	return p.createNode(ast.KindExtension, offset(start), ast.ExtensionData{
		Name:     p.Text(name),
		Behavior: p.Text(behavior),
	})
}

// skipLine discards raw tokens up to and including the next line break.
func (p *Parser) skipLine() {
	for {
		t := p.nextRaw()
		switch t.Kind {
		case lexer.EOF:
			p.pushback(t)
			return
		case lexer.Whitespace, lexer.LineComment:
			for _, c := range p.Text(t) {
				if c == '\n' {
					return
				}
			}
		}
	}
}

// section parses "@name (argument)? { raw text }". The body is kept as
// source text; braces nest but are otherwise not interpreted.
func (p *Parser) section() ast.ID {
	start, _ := p.expect(lexer.Section, "a section")
	data := ast.SectionData{Name: p.Text(start)[1:]}
	if _, ok := p.checkNext(lexer.LParen); ok {
		arg, ok := p.expect(lexer.Identifier, "an identifier")
		if !ok {
			return ast.InvalidID
		}
		data.Argument = p.Text(arg)
		if _, ok := p.expect(lexer.RParen, "')'"); !ok {
			return ast.InvalidID
		}
	}
	open, ok := p.expect(lexer.LBrace, "'{'")
	if !ok {
		return ast.InvalidID
	}
	level := 1
	for {
		t := p.nextRaw()
		switch t.Kind {
		case lexer.LBrace:
			level++
		case lexer.RBrace:
			level--
		case lexer.EOF:
			p.error(start, "reached end of file while parsing section")
			p.pushback(t)
			return ast.InvalidID
		}
		if level == 0 {
			data.Text = string(p.src[open.End():t.Offset])
			return p.createNode(ast.KindSection, offset(start), data)
		}
	}
}

// precision parses and discards "precision (lowp|mediump|highp) type ;".
func (p *Parser) precision() bool {
	if _, ok := p.expect(lexer.Precision, "'precision'"); !ok {
		return false
	}
	t := p.next()
	switch t.Kind {
	case lexer.Lowp, lexer.Mediump, lexer.Highp:
	default:
		p.error(t, "expected 'lowp', 'mediump', or 'highp', but found "+p.describe(t))
		return false
	}
	if !p.parseType().Valid() {
		return false
	}
	_, ok := p.expectSemicolon()
	return ok
}

// enumDeclaration parses "enum class Name { A, B = expr, ... } ;?" and
// registers Name as a type.
func (p *Parser) enumDeclaration() ast.ID {
	start, ok := p.expect(lexer.Enum, "'enum'")
	if !ok {
		return ast.InvalidID
	}
	if _, ok := p.expect(lexer.Class, "'class'"); !ok {
		return ast.InvalidID
	}
	name, ok := p.expectIdentifier()
	if !ok {
		return ast.InvalidID
	}
	if _, ok := p.expect(lexer.LBrace, "'{'"); !ok {
		return ast.InvalidID
	}
	enumName := p.Text(name)
	p.symbols.AddType(enumName)
	result := p.createNode(ast.KindEnum, offset(start), enumName)
	if _, ok := p.checkNext(lexer.RBrace); !ok {
		for {
			id, ok := p.expectIdentifier()
			if !ok {
				return ast.InvalidID
			}
			c := p.addChild(result, p.createNode(ast.KindEnumCase, offset(id), p.Text(id)))
			if _, ok := p.checkNext(lexer.Eq); ok {
				value := p.assignmentExpression()
				if !value.Valid() {
					return ast.InvalidID
				}
				p.addChild(c, value)
			}
			if _, ok := p.checkNext(lexer.RBrace); ok {
				break
			}
			if _, ok := p.expect(lexer.Comma, "','"); !ok {
				return ast.InvalidID
			}
		}
	}
	p.checkNext(lexer.Semicolon)
	return result
}

// declaration parses a top-level declaration.
//
//	declaration: modifiers (interfaceBlock | structVarDeclaration | ';'
//	           | type IDENTIFIER (functionDeclarationEnd | varDeclarationEnd))
func (p *Parser) declaration() ast.ID {
	lookahead := p.peek()
	switch lookahead.Kind {
	case lexer.Enum:
		return p.enumDeclaration()
	case lexer.Semicolon:
		p.error(lookahead, "expected a declaration, but found ';'")
		return ast.InvalidID
	}
	mods := p.modifiers()
	lookahead = p.peek()
	switch {
	case lookahead.Kind == lexer.Identifier && !p.isType(p.Text(lookahead)):
		return p.interfaceBlock(mods)
	case lookahead.Kind == lexer.Struct:
		return p.structVarDeclaration(mods)
	case lookahead.Kind == lexer.Semicolon:
		p.next()
		return p.createNode(ast.KindModifiers, offset(lookahead), mods)
	case lookahead.Kind != lexer.Identifier:
		p.error(lookahead, "expected a declaration, but found "+p.describe(lookahead))
		return ast.InvalidID
	}
	typ := p.parseType()
	if !typ.Valid() {
		return ast.InvalidID
	}
	name, ok := p.expectIdentifier()
	if !ok {
		return ast.InvalidID
	}
	if _, ok := p.checkNext(lexer.LParen); ok {
		return p.functionDeclarationEnd(mods, typ, name)
	}
	return p.varDeclarationEnd(mods, typ, name)
}

// functionDeclarationEnd parses the parameter list and the optional body of
// a function whose return type and name have been read.
func (p *Parser) functionDeclarationEnd(mods ast.Modifiers, typ ast.ID, name lexer.Token) ast.ID {
	result := p.createNode(ast.KindFunction, offset(name), nil)
	data := ast.FunctionData{Modifiers: mods, Name: p.Text(name)}
	p.addChild(result, typ)
	if p.peek().Kind != lexer.RParen {
		for {
			param := p.parameter()
			if !param.Valid() {
				return ast.InvalidID
			}
			p.addChild(result, param)
			data.ParameterCount++
			if _, ok := p.checkNext(lexer.Comma); !ok {
				break
			}
		}
	}
	p.node(result).Data = data
	if _, ok := p.expect(lexer.RParen, "')'"); !ok {
		return ast.InvalidID
	}
	if _, ok := p.checkNext(lexer.Semicolon); ok {
		return result
	}
	body := p.block()
	if !body.Valid() {
		return ast.InvalidID
	}
	p.addChild(result, body)
	return result
}

// parameter parses "modifiers type IDENTIFIER ([INT])*".
func (p *Parser) parameter() ast.ID {
	mods := p.modifiers()
	typ := p.parseType()
	if !typ.Valid() {
		return ast.InvalidID
	}
	name, ok := p.expectIdentifier()
	if !ok {
		return ast.InvalidID
	}
	result := p.createNode(ast.KindParameter, offset(name), nil)
	data := ast.ParameterData{Modifiers: mods, Name: p.Text(name)}
	p.addChild(result, typ)
	for {
		if _, ok := p.checkNext(lexer.LBracket); !ok {
			break
		}
		size, ok := p.expect(lexer.IntLiteral, "a positive integer")
		if !ok {
			return ast.InvalidID
		}
		v, err := strconv.ParseInt(p.Text(size), 10, 32)
		if err != nil {
			p.errorf(size, diag.MalformedLiteral, "array size is too large: %s", p.Text(size))
			v = 0
		}
		p.addChild(result, p.createNode(ast.KindInt, offset(size), v))
		data.SizeCount++
		if _, ok := p.expect(lexer.RBracket, "']'"); !ok {
			return ast.InvalidID
		}
	}
	p.node(result).Data = data
	return result
}

// interfaceBlock parses
//
//	IDENTIFIER '{' varDeclarations* '}' (IDENTIFIER ('[' expression? ']')*)? ';'
func (p *Parser) interfaceBlock(mods ast.Modifiers) ast.ID {
	name, ok := p.expect(lexer.Identifier, "an identifier")
	if !ok {
		return ast.InvalidID
	}
	if _, ok := p.checkNext(lexer.LBrace); !ok {
		// Without a '{' this was meant as a declaration of an unknown type.
		p.errorf(name, diag.SyntaxError, "no type named '%s'", p.Text(name))
		return ast.InvalidID
	}
	result := p.createNode(ast.KindInterfaceBlock, offset(name), nil)
	data := ast.InterfaceBlockData{Modifiers: mods, TypeName: p.Text(name)}
	for {
		t := p.peek()
		if t.Kind == lexer.RBrace {
			break
		}
		if t.Kind == lexer.EOF {
			p.error(t, "expected '}', but found end of file")
			return ast.InvalidID
		}
		decl := p.varDeclarations()
		if !decl.Valid() {
			return ast.InvalidID
		}
		p.addChild(result, decl)
		data.DeclarationCount++
	}
	p.next()
	if instance, ok := p.checkNext(lexer.Identifier); ok {
		data.InstanceName = p.Text(instance)
		for {
			if _, ok := p.checkNext(lexer.LBracket); !ok {
				break
			}
			if _, ok := p.checkNext(lexer.RBracket); ok {
				p.createEmptyChild(result)
			} else {
				size := p.expression()
				if !size.Valid() {
					return ast.InvalidID
				}
				p.addChild(result, size)
				if _, ok := p.expect(lexer.RBracket, "']'"); !ok {
					return ast.InvalidID
				}
			}
			data.SizeCount++
		}
	}
	p.node(result).Data = data
	if _, ok := p.expectSemicolon(); !ok {
		return ast.InvalidID
	}
	return result
}

// structDeclaration parses "struct Name { fields }" and registers Name as a
// type. The returned Type node carries the field declarations as children.
func (p *Parser) structDeclaration() ast.ID {
	start, ok := p.expect(lexer.Struct, "'struct'")
	if !ok {
		return ast.InvalidID
	}
	name, ok := p.expectIdentifier()
	if !ok {
		return ast.InvalidID
	}
	if _, ok := p.expect(lexer.LBrace, "'{'"); !ok {
		return ast.InvalidID
	}
	result := p.createNode(ast.KindType, offset(start), ast.TypeData{
		Name:                p.Text(name),
		IsStructDeclaration: true,
	})
	for {
		t := p.peek()
		if t.Kind == lexer.RBrace {
			break
		}
		if t.Kind == lexer.EOF {
			p.error(t, "expected '}', but found end of file")
			return ast.InvalidID
		}
		decl := p.varDeclarations()
		if !decl.Valid() {
			return ast.InvalidID
		}
		if !p.checkStructField(decl) {
			return ast.InvalidID
		}
		p.addChild(result, decl)
	}
	p.next()
	p.symbols.AddType(p.Text(name))
	return result
}

// checkStructField rejects modifiers, non-constant array sizes and
// initializers on struct fields.
func (p *Parser) checkStructField(decl ast.ID) bool {
	n := p.node(decl)
	mods := p.node(n.Children[0]).ModifiersData()
	if mods.Flags != 0 {
		p.errorAt(n.Offset, diag.SyntaxError, "modifier '"+mods.FlagsString()+"' is not permitted on a struct field")
		return false
	}
	for _, v := range n.Children[2:] {
		vn := p.node(v)
		data := vn.VarData()
		for _, size := range vn.Children[:data.SizeCount] {
			if k := p.node(size).Kind; k != ast.KindInt {
				p.errorAt(p.node(size).Offset, diag.MalformedLiteral, "array size in struct field must be a constant")
				return false
			}
		}
		if len(vn.Children) > data.SizeCount {
			p.errorAt(vn.Offset, diag.SyntaxError, "initializers are not permitted on struct fields")
			return false
		}
	}
	return true
}

// structVarDeclaration parses a struct declaration optionally followed by
// variables of that type.
func (p *Parser) structVarDeclaration(mods ast.Modifiers) ast.ID {
	typ := p.structDeclaration()
	if !typ.Valid() {
		return ast.InvalidID
	}
	if name, ok := p.checkNext(lexer.Identifier); ok {
		return p.varDeclarationEnd(mods, typ, name)
	}
	if _, ok := p.expectSemicolon(); !ok {
		return ast.InvalidID
	}
	return typ
}

type varDeclarationsPrefix struct {
	modifiers ast.Modifiers
	typ       ast.ID
	name      lexer.Token
}

// varDeclarationsPrefix parses "modifiers type IDENTIFIER", the part shared
// by every variable declaration.
func (p *Parser) varDeclarationsPrefix() (varDeclarationsPrefix, bool) {
	var prefix varDeclarationsPrefix
	prefix.modifiers = p.modifiers()
	prefix.typ = p.parseType()
	if !prefix.typ.Valid() {
		return prefix, false
	}
	name, ok := p.expectIdentifier()
	prefix.name = name
	return prefix, ok
}

func (p *Parser) varDeclarations() ast.ID {
	prefix, ok := p.varDeclarationsPrefix()
	if !ok {
		return ast.InvalidID
	}
	return p.varDeclarationEnd(prefix.modifiers, prefix.typ, prefix.name)
}

// varDeclarationEnd parses the declarators after the first name:
//
//	('[' expression? ']')* ('=' assignmentExpression)?
//	(',' IDENTIFIER ...)* ';'
//
// The result has children Modifiers, Type, then one VarDeclaration per name.
func (p *Parser) varDeclarationEnd(mods ast.Modifiers, typ ast.ID, name lexer.Token) ast.ID {
	result := p.createNode(ast.KindVarDeclarations, offset(name), nil)
	p.addChild(result, p.createNode(ast.KindModifiers, offset(name), mods))
	p.addChild(result, typ)
	if !p.varDeclarator(result, name) {
		return ast.InvalidID
	}
	for {
		if _, ok := p.checkNext(lexer.Comma); !ok {
			break
		}
		name, ok := p.expectIdentifier()
		if !ok {
			return ast.InvalidID
		}
		if !p.varDeclarator(result, name) {
			return ast.InvalidID
		}
	}
	if _, ok := p.expectSemicolon(); !ok {
		return ast.InvalidID
	}
	return result
}

func (p *Parser) varDeclarator(parent ast.ID, name lexer.Token) bool {
	v := p.addChild(parent, p.createNode(ast.KindVarDeclaration, offset(name), nil))
	data := ast.VarData{Name: p.Text(name)}
	for {
		if _, ok := p.checkNext(lexer.LBracket); !ok {
			break
		}
		if _, ok := p.checkNext(lexer.RBracket); ok {
			p.createEmptyChild(v)
		} else {
			size := p.expression()
			if !size.Valid() {
				return false
			}
			p.addChild(v, size)
			if _, ok := p.expect(lexer.RBracket, "']'"); !ok {
				return false
			}
		}
		data.SizeCount++
	}
	p.node(v).Data = data
	if _, ok := p.checkNext(lexer.Eq); ok {
		value := p.assignmentExpression()
		if !value.Valid() {
			return false
		}
		p.addChild(v, value)
	}
	return true
}

// parseType parses "IDENTIFIER ('[' INT? ']')* '?'?" where IDENTIFIER must
// name a known type.
func (p *Parser) parseType() ast.ID {
	t, ok := p.expect(lexer.Identifier, "a type")
	if !ok {
		return ast.InvalidID
	}
	name := p.Text(t)
	if !p.isType(name) {
		p.errorf(t, diag.SyntaxError, "no type named '%s'", name)
		return ast.InvalidID
	}
	result := p.createNode(ast.KindType, offset(t), nil)
	data := ast.TypeData{Name: name}
	for {
		if _, ok := p.checkNext(lexer.LBracket); !ok {
			break
		}
		if p.peek().Kind != lexer.RBracket {
			size, v, ok := p.intLiteral()
			if !ok {
				return ast.InvalidID
			}
			p.addChild(result, p.createNode(ast.KindInt, offset(size), v))
		} else {
			p.createEmptyChild(result)
		}
		if _, ok := p.expect(lexer.RBracket, "']'"); !ok {
			return ast.InvalidID
		}
	}
	_, data.IsNullable = p.checkNext(lexer.Question)
	p.node(result).Data = data
	return result
}
