package parser

import (
	"math"
	"strconv"
	"strings"

	"gopkg.in/guregu/null.v3"

	"github.com/dhamidi/sksl/sksl/ast"
	"github.com/dhamidi/sksl/sksl/diag"
	"github.com/dhamidi/sksl/sksl/lexer"
)

type layoutToken int

const (
	layoutLocation layoutToken = iota
	layoutOffset
	layoutBinding
	layoutIndex
	layoutSet
	layoutBuiltin
	layoutInputAttachmentIndex
	layoutOriginUpperLeft
	layoutOverrideCoverage
	layoutEarlyFragmentTests
	layoutBlendSupportAllEquations
	layoutPushConstant
	layoutPoints
	layoutLines
	layoutLineStrip
	layoutLinesAdjacency
	layoutTriangles
	layoutTriangleStrip
	layoutTrianglesAdjacency
	layoutMaxVertices
	layoutInvocations
	layoutMarker
	layoutWhen
	layoutKey
	layoutTracked
	layoutSRGBUnpremul
	layoutCType
)

// layoutKeys is built once and only read afterwards, so parsers on
// different goroutines share it safely.
var layoutKeys = map[string]layoutToken{
	"location":                    layoutLocation,
	"offset":                      layoutOffset,
	"binding":                     layoutBinding,
	"index":                       layoutIndex,
	"set":                         layoutSet,
	"builtin":                     layoutBuiltin,
	"input_attachment_index":      layoutInputAttachmentIndex,
	"origin_upper_left":           layoutOriginUpperLeft,
	"override_coverage":           layoutOverrideCoverage,
	"early_fragment_tests":        layoutEarlyFragmentTests,
	"blend_support_all_equations": layoutBlendSupportAllEquations,
	"push_constant":               layoutPushConstant,
	"points":                      layoutPoints,
	"lines":                       layoutLines,
	"line_strip":                  layoutLineStrip,
	"lines_adjacency":             layoutLinesAdjacency,
	"triangles":                   layoutTriangles,
	"triangle_strip":              layoutTriangleStrip,
	"triangles_adjacency":         layoutTrianglesAdjacency,
	"max_vertices":                layoutMaxVertices,
	"invocations":                 layoutInvocations,
	"marker":                      layoutMarker,
	"when":                        layoutWhen,
	"key":                         layoutKey,
	"tracked":                     layoutTracked,
	"srgb_unpremul":               layoutSRGBUnpremul,
	"ctype":                       layoutCType,
}

var ctypes = map[string]ast.CType{
	"skpmcolor4f": ast.CTypeSkPMColor4f,
	"skv4":        ast.CTypeSkV4,
	"skrect":      ast.CTypeSkRect,
	"skirect":     ast.CTypeSkIRect,
	"skpmcolor":   ast.CTypeSkPMColor,
	"skm44":       ast.CTypeSkM44,
	"bool":        ast.CTypeBool,
	"int":         ast.CTypeInt32,
	"float":       ast.CTypeFloat,
}

var primitives = map[layoutToken]ast.Primitive{
	layoutPoints:             ast.PrimitivePoints,
	layoutLines:              ast.PrimitiveLines,
	layoutLineStrip:          ast.PrimitiveLineStrip,
	layoutLinesAdjacency:     ast.PrimitiveLinesAdjacency,
	layoutTriangles:          ast.PrimitiveTriangles,
	layoutTriangleStrip:      ast.PrimitiveTriangleStrip,
	layoutTrianglesAdjacency: ast.PrimitiveTrianglesAdjacency,
}

var layoutFlags = map[layoutToken]ast.LayoutFlag{
	layoutOriginUpperLeft:          ast.LayoutOriginUpperLeft,
	layoutOverrideCoverage:         ast.LayoutOverrideCoverage,
	layoutEarlyFragmentTests:       ast.LayoutEarlyFragmentTests,
	layoutBlendSupportAllEquations: ast.LayoutBlendSupportAllEquations,
	layoutPushConstant:             ast.LayoutPushConstant,
	layoutTracked:                  ast.LayoutTracked,
	layoutSRGBUnpremul:             ast.LayoutSRGBUnpremul,
}

// layout parses an optional qualifier list.
//
//	layout: LAYOUT LPAREN layoutEntry (COMMA layoutEntry)* RPAREN
func (p *Parser) layout() ast.Layout {
	var l ast.Layout
	if _, ok := p.checkNext(lexer.Layout); !ok {
		return l
	}
	if _, ok := p.expect(lexer.LParen, "'('"); !ok {
		return l
	}
	for {
		t := p.next()
		text := p.Text(t)
		key, found := layoutKeys[text]
		if !found {
			p.errorf(t, diag.UnknownLayoutKey, "'%s' is not a valid layout qualifier", text)
			switch t.Kind {
			case lexer.RParen:
				return l
			case lexer.EOF, lexer.Semicolon, lexer.LBrace:
				p.pushback(t)
				return l
			}
			p.skipLayoutValue()
		} else {
			switch key {
			case layoutLocation:
				l.Location = p.layoutInt()
			case layoutOffset:
				l.Offset = p.layoutInt()
			case layoutBinding:
				l.Binding = p.layoutInt()
			case layoutIndex:
				l.Index = p.layoutInt()
			case layoutSet:
				l.Set = p.layoutInt()
			case layoutBuiltin:
				l.Builtin = p.layoutInt()
			case layoutInputAttachmentIndex:
				l.InputAttachmentIndex = p.layoutInt()
			case layoutMaxVertices:
				l.MaxVertices = p.layoutInt()
			case layoutInvocations:
				l.Invocations = p.layoutInt()
			case layoutMarker:
				l.Marker = p.layoutCode()
			case layoutWhen:
				l.When = p.layoutCode()
			case layoutKey:
				l.Key = p.layoutKey()
			case layoutCType:
				l.CType = p.layoutCType()
			default:
				if prim, ok := primitives[key]; ok {
					l.Primitive = prim
				} else {
					l.Flags |= layoutFlags[key]
				}
			}
		}
		if _, ok := p.checkNext(lexer.RParen); ok {
			break
		}
		if _, ok := p.expect(lexer.Comma, "','"); !ok {
			break
		}
	}
	return l
}

// skipLayoutValue skips the value of an unknown qualifier up to the next
// ',' or ')' at parenthesis level zero, leaving that token unread.
func (p *Parser) skipLayoutValue() {
	level := 0
	for {
		t := p.next()
		switch t.Kind {
		case lexer.LParen:
			level++
		case lexer.RParen:
			if level == 0 {
				p.pushback(t)
				return
			}
			level--
		case lexer.Comma:
			if level == 0 {
				p.pushback(t)
				return
			}
		case lexer.Semicolon, lexer.LBrace, lexer.EOF:
			p.pushback(t)
			return
		}
	}
}

// expectLayoutValue is expect for the parts of a qualifier value. A
// separator found instead is left unread so the list resumes at the next
// qualifier.
func (p *Parser) expectLayoutValue(kind lexer.Kind, expected string) (lexer.Token, bool) {
	tok, ok := p.expect(kind, expected)
	if !ok {
		switch tok.Kind {
		case lexer.Comma, lexer.RParen, lexer.Semicolon, lexer.LBrace, lexer.EOF:
			p.pushback(tok)
		}
	}
	return tok, ok
}

// layoutInt parses "= <non-negative int>".
func (p *Parser) layoutInt() null.Int {
	if _, ok := p.expectLayoutValue(lexer.Eq, "'='"); !ok {
		return null.Int{}
	}
	t, ok := p.expectLayoutValue(lexer.IntLiteral, "a non-negative integer")
	if !ok {
		return null.Int{}
	}
	text := p.Text(t)
	v, err := parseInt(text)
	if err != nil || v > math.MaxInt32 {
		p.errorf(t, diag.MalformedLiteral, "value in layout is too large: %s", text)
		return null.Int{}
	}
	return null.IntFrom(v)
}

// layoutCode captures the raw source text of "= <code>" up to the next
// top-level ',' or the closing ')'.
func (p *Parser) layoutCode() null.String {
	if _, ok := p.expectLayoutValue(lexer.Eq, "'='"); !ok {
		return null.String{}
	}
	start := p.nextRaw()
	p.pushback(start)
	level := 1
	for {
		t := p.nextRaw()
		switch t.Kind {
		case lexer.LParen:
			level++
		case lexer.RParen:
			level--
		case lexer.EOF:
			p.error(start, "reached end of file while parsing layout")
			p.pushback(t)
			return null.String{}
		}
		if level == 0 || (level == 1 && t.Kind == lexer.Comma) {
			p.pushback(t)
			code := strings.TrimSpace(string(p.src[start.Offset:t.Offset]))
			return null.StringFrom(code)
		}
	}
}

// layoutKey parses "key" or "key = identity".
func (p *Parser) layoutKey() ast.LayoutKey {
	if _, ok := p.checkNext(lexer.Eq); !ok {
		return ast.KeyKey
	}
	t, ok := p.expectLayoutValue(lexer.Identifier, "an identifier")
	if !ok {
		return ast.KeyKey
	}
	if text := p.Text(t); text != "identity" {
		p.errorf(t, diag.SyntaxError, "unsupported layout key '%s'", text)
	}
	return ast.KeyIdentity
}

func (p *Parser) layoutCType() ast.CType {
	if _, ok := p.expectLayoutValue(lexer.Eq, "'='"); !ok {
		return ast.CTypeDefault
	}
	t, ok := p.expectLayoutValue(lexer.Identifier, "a ctype")
	if !ok {
		return ast.CTypeDefault
	}
	if ctype, ok := ctypes[strings.ToLower(p.Text(t))]; ok {
		return ctype
	}
	p.errorf(t, diag.SyntaxError, "unsupported ctype '%s'", p.Text(t))
	return ast.CTypeDefault
}

// parseInt accepts decimal and 0x-prefixed hex with an optional u suffix.
func parseInt(text string) (int64, error) {
	text = strings.TrimRight(text, "uU")
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		v, err := strconv.ParseUint(text[2:], 16, 32)
		return int64(v), err
	}
	return strconv.ParseInt(text, 10, 64)
}

// modifiers parses an optional layout followed by any number of qualifier
// keywords. Repeated qualifiers are accepted and merged.
func (p *Parser) modifiers() ast.Modifiers {
	mods := ast.Modifiers{Layout: p.layout()}
	for {
		flag, ok := modifierFlags[p.peek().Kind]
		if !ok {
			return mods
		}
		p.next()
		mods.Flags |= flag
	}
}

var modifierFlags = map[lexer.Kind]ast.ModifierFlag{
	lexer.Uniform:        ast.FlagUniform,
	lexer.Const:          ast.FlagConst,
	lexer.In:             ast.FlagIn,
	lexer.Out:            ast.FlagOut,
	lexer.Inout:          ast.FlagIn | ast.FlagOut,
	lexer.Lowp:           ast.FlagLowp,
	lexer.Mediump:        ast.FlagMediump,
	lexer.Highp:          ast.FlagHighp,
	lexer.Flat:           ast.FlagFlat,
	lexer.NoPerspective:  ast.FlagNoPerspective,
	lexer.ReadOnly:       ast.FlagReadOnly,
	lexer.WriteOnly:      ast.FlagWriteOnly,
	lexer.Coherent:       ast.FlagCoherent,
	lexer.Volatile:       ast.FlagVolatile,
	lexer.Restrict:       ast.FlagRestrict,
	lexer.Buffer:         ast.FlagBuffer,
	lexer.HasSideEffects: ast.FlagHasSideEffects,
	lexer.PLS:            ast.FlagPLS,
	lexer.PLSIn:          ast.FlagPLSIn,
	lexer.PLSOut:         ast.FlagPLSOut,
	lexer.Varying:        ast.FlagVarying,
	lexer.Inline:         ast.FlagInline,
}
