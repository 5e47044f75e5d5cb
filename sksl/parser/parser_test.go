package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/sksl/sksl/ast"
	"github.com/dhamidi/sksl/sksl/diag"
	"github.com/dhamidi/sksl/sksl/lexer"
	"github.com/dhamidi/sksl/sksl/symbols"
)

func newTestParser(src string) (*Parser, *diag.List) {
	list := diag.NewList("test.sksl", []byte(src))
	return New([]byte(src), symbols.New(), list, WithFile("test.sksl")), list
}

func requireNoErrors(t *testing.T, list *diag.List) {
	t.Helper()
	for _, d := range list.Diagnostics() {
		t.Errorf("unexpected diagnostic: %s", list.Format(d))
	}
	if list.ErrorCount() > 0 {
		t.FailNow()
	}
}

func countCode(list *diag.List, code diag.Code) int {
	n := 0
	for _, d := range list.Diagnostics() {
		if d.Code == code {
			n++
		}
	}
	return n
}

// sexpr renders an expression subtree compactly for precedence tests.
func sexpr(f *ast.File, id ast.ID) string {
	n := f.Node(id)
	child := func(i int) string { return sexpr(f, n.Children[i]) }
	switch n.Kind {
	case ast.KindIdentifier:
		return n.Name()
	case ast.KindInt, ast.KindFloat, ast.KindBool:
		return n.Label()
	case ast.KindBinary:
		return fmt.Sprintf("(%s %s %s)", n.Operator(), child(0), child(1))
	case ast.KindPrefix:
		return fmt.Sprintf("(%s %s)", n.Operator(), child(0))
	case ast.KindPostfix:
		return fmt.Sprintf("(%s %s)", child(0), n.Operator())
	case ast.KindTernary:
		return fmt.Sprintf("(? %s %s %s)", child(0), child(1), child(2))
	case ast.KindField:
		return child(0) + "." + n.Name()
	case ast.KindIndex:
		if len(n.Children) == 1 {
			return child(0) + "[]"
		}
		return child(0) + "[" + child(1) + "]"
	case ast.KindCall:
		var args []string
		for i := 1; i < len(n.Children); i++ {
			args = append(args, child(i))
		}
		return child(0) + "(" + strings.Join(args, ", ") + ")"
	}
	return n.Kind.String()
}

// functionBody returns the statements of the body of the first function.
func functionBody(t *testing.T, f *ast.File) []ast.ID {
	t.Helper()
	for _, decl := range f.Declarations() {
		n := f.Node(decl)
		if n.Kind != ast.KindFunction {
			continue
		}
		body := f.Node(n.Children[len(n.Children)-1])
		require.Equal(t, ast.KindBlock, body.Kind)
		return body.Children
	}
	t.Fatal("no function found")
	return nil
}

func TestPushbackTwicePanics(t *testing.T) {
	p, _ := newTestParser("a b")
	tok := p.next()
	p.pushback(tok)
	assert.Panics(t, func() { p.pushback(tok) })
}

func TestPeekDoesNotConsume(t *testing.T) {
	p, _ := newTestParser("  foo /* c */ bar")
	assert.Equal(t, "foo", p.Text(p.peek()))
	assert.Equal(t, "foo", p.Text(p.peek()))
	assert.Equal(t, "foo", p.Text(p.next()))
	assert.Equal(t, "bar", p.Text(p.next()))
	assert.Equal(t, lexer.EOF, p.next().Kind)
}

func TestCheckNextAndExpect(t *testing.T) {
	p, list := newTestParser("x ;")
	_, ok := p.checkNext(lexer.Semicolon)
	assert.False(t, ok)
	tok, ok := p.expect(lexer.Identifier, "an identifier")
	assert.True(t, ok)
	assert.Equal(t, "x", p.Text(tok))
	_, ok = p.expect(lexer.Comma, "','")
	assert.False(t, ok)
	require.Len(t, list.Diagnostics(), 1)
	assert.Equal(t, "expected ',', but found ';'", list.Diagnostics()[0].Message)
}

func TestExpectIdentifierRejectsTypes(t *testing.T) {
	p, list := newTestParser("float4")
	tok, ok := p.expectIdentifier()
	assert.True(t, ok)
	assert.Equal(t, "float4", p.Text(tok))
	assert.True(t, list.HasCode(diag.TypeAsIdentifier))
}

func TestCheckpointRewindRestoresState(t *testing.T) {
	p, list := newTestParser("int x = 1; float y;")
	p.next()
	p.peek()
	p.error(lexer.Token{}, "before")

	nodes := p.arena.Len()
	cp := p.checkpoint()
	p.next()
	p.next()
	p.createNode(ast.KindIdentifier, 4, "x")
	p.error(lexer.Token{}, "during")
	p.pushback(p.next())
	cp.rewind()

	assert.Equal(t, nodes, p.arena.Len())
	assert.Equal(t, 1, list.ErrorCount())
	assert.Equal(t, "x", p.Text(p.next()))
	assert.Equal(t, "=", p.Text(p.next()))
}

func TestCheckpointReleaseKeepsState(t *testing.T) {
	p, list := newTestParser("a b")
	cp := p.checkpoint()
	p.next()
	p.error(lexer.Token{}, "kept")
	cp.release()
	assert.Equal(t, 1, list.ErrorCount())
	assert.Equal(t, "b", p.Text(p.next()))
}

func TestCheckpointMisusePanics(t *testing.T) {
	p, _ := newTestParser("a b c")
	outer := p.checkpoint()
	inner := p.checkpoint()
	assert.Panics(t, func() { outer.rewind() })
	assert.Panics(t, func() { outer.release() })
	inner.release()
	assert.Panics(t, func() { inner.release() })
	outer.rewind()
	assert.Panics(t, func() { outer.rewind() })
}

func TestVarDeclaration(t *testing.T) {
	f, list := ParseFile("test.sksl", []byte("int x;"))
	requireNoErrors(t, list)

	decls := f.Declarations()
	require.Len(t, decls, 1)
	vars := f.Node(decls[0])
	require.Equal(t, ast.KindVarDeclarations, vars.Kind)
	require.Len(t, vars.Children, 3)

	mods := f.Node(vars.Children[0])
	assert.Equal(t, ast.KindModifiers, mods.Kind)
	assert.Equal(t, ast.Modifiers{}, mods.ModifiersData())

	typ := f.Node(vars.Children[1])
	assert.Equal(t, ast.KindType, typ.Kind)
	assert.Equal(t, "int", typ.Name())

	v := f.Node(vars.Children[2])
	assert.Equal(t, ast.KindVarDeclaration, v.Kind)
	assert.Equal(t, ast.VarData{Name: "x"}, v.VarData())
	assert.Empty(t, v.Children)
}

func TestLayoutQualifiedDeclaration(t *testing.T) {
	f, list := ParseFile("test.sksl", []byte("layout(location=0) in float4 color;"))
	requireNoErrors(t, list)

	vars := f.Node(f.Declarations()[0])
	mods := f.Node(vars.Children[0]).ModifiersData()
	assert.True(t, mods.Has(ast.FlagIn))
	assert.False(t, mods.Has(ast.FlagOut))
	require.True(t, mods.Layout.Location.Valid)
	assert.Equal(t, int64(0), mods.Layout.Location.Int64)
	assert.False(t, mods.Layout.Binding.Valid)
	assert.Equal(t, "float4", f.Node(vars.Children[1]).Name())
	assert.Equal(t, "color", f.Node(vars.Children[2]).Name())
}

func TestLayoutQualifiers(t *testing.T) {
	src := `layout(binding = 0x10, set = 2, origin_upper_left, triangles, key = identity,
		ctype = SkPMColor4f, marker = a(b, c), when = x > 1, push_constant) uniform half4 c;`
	f, list := ParseFile("test.sksl", []byte(src))
	requireNoErrors(t, list)

	l := f.Node(f.Node(f.Declarations()[0]).Children[0]).ModifiersData().Layout
	assert.Equal(t, int64(16), l.Binding.Int64)
	assert.Equal(t, int64(2), l.Set.Int64)
	assert.True(t, l.Has(ast.LayoutOriginUpperLeft))
	assert.True(t, l.Has(ast.LayoutPushConstant))
	assert.False(t, l.Has(ast.LayoutTracked))
	assert.Equal(t, ast.PrimitiveTriangles, l.Primitive)
	assert.Equal(t, ast.KeyIdentity, l.Key)
	assert.Equal(t, ast.CTypeSkPMColor4f, l.CType)
	assert.Equal(t, "a(b, c)", l.Marker.String)
	assert.Equal(t, "x > 1", l.When.String)
}

func TestUnknownLayoutKey(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"with value", "layout(location=1, bogus=7, binding=2) uniform float4 c;"},
		{"flag", "layout(location=1, bogus, binding=2) uniform float4 c;"},
		{"nested parens", "layout(location=1, bogus=f(1, 2), binding=2) uniform float4 c;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, list := ParseFile("test.sksl", []byte(tt.src))
			require.Len(t, list.Diagnostics(), 1, "diagnostics: %v", list.Diagnostics())
			assert.Equal(t, diag.UnknownLayoutKey, list.Diagnostics()[0].Code)
			assert.Equal(t, "'bogus' is not a valid layout qualifier", list.Diagnostics()[0].Message)

			decls := f.Declarations()
			require.Len(t, decls, 1)
			mods := f.Node(f.Node(decls[0]).Children[0]).ModifiersData()
			assert.Equal(t, int64(1), mods.Layout.Location.Int64)
			assert.Equal(t, int64(2), mods.Layout.Binding.Int64)
			assert.True(t, mods.Has(ast.FlagUniform))
		})
	}
}

func TestLayoutMissingValue(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		message string
		binding bool
	}{
		{"last", "layout(location) in float4 c;", "expected '=', but found ')'", false},
		{"before comma", "layout(location, binding=2) in float4 c;", "expected '=', but found ','", true},
		{"missing integer", "layout(location=, binding=2) in float4 c;", "expected a non-negative integer, but found ','", true},
		{"missing code", "layout(marker) in float4 c;", "expected '=', but found ')'", false},
		{"missing ctype", "layout(ctype=, binding=2) in float4 c;", "expected a ctype, but found ','", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, list := ParseFile("test.sksl", []byte(tt.src))
			require.Len(t, list.Diagnostics(), 1, "diagnostics: %v", list.Diagnostics())
			assert.Equal(t, tt.message, list.Diagnostics()[0].Message)

			decls := f.Declarations()
			require.Len(t, decls, 1)
			mods := f.Node(f.Node(decls[0]).Children[0]).ModifiersData()
			assert.True(t, mods.Has(ast.FlagIn))
			assert.False(t, mods.Layout.Location.Valid)
			assert.Equal(t, tt.binding, mods.Layout.Binding.Valid)
			assert.Equal(t, "c", f.Node(f.Node(decls[0]).Children[2]).Name())
		})
	}
}

func TestCallInitializer(t *testing.T) {
	f, list := ParseFile("test.sksl", []byte("float2 v = float2(1, 2);"))
	requireNoErrors(t, list)

	v := f.Node(f.Node(f.Declarations()[0]).Children[2])
	require.Len(t, v.Children, 1)
	call := f.Node(v.Children[0])
	assert.Equal(t, ast.KindCall, call.Kind)
	assert.Equal(t, "float2(1, 2)", sexpr(f, v.Children[0]))
}

func TestExpressionPrecedence(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"a + b * c", "(+ a (* b c))"},
		{"a * b + c", "(+ (* a b) c)"},
		{"(a + b) * c", "(* (+ a b) c)"},
		{"a - b - c", "(- (- a b) c)"},
		{"a = b = c", "(= a (= b c))"},
		{"a += b * 2", "(+= a (* b 2))"},
		{"a || b && c", "(|| a (&& b c))"},
		{"a ^^ b || c", "(|| (^^ a b) c)"},
		{"a | b ^ c & d", "(| a (^ b (& c d)))"},
		{"a == b < c", "(== a (< b c))"},
		{"a << 1 + 2", "(<< a (+ 1 2))"},
		{"-a * b", "(* (- a) b)"},
		{"!a++", "(! (a ++))"},
		{"a ? b : c = d", "(? a b (= c d))"},
		{"a ? b, c : d", "(? a (, b c) d)"},
		{"a, b = c", "(, a (= b c))"},
		{"f(x, y).z[0]", "f(x, y).z[0]"},
		{"s::field", "s.field"},
		{"v.000r", "v.000r"},
		{"v.xy1", "v.xy1"},
		{"x[]", "x[]"},
		{"1.5 + true", "(+ 1.5 true)"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			f, list := ParseFile("test.sksl", []byte("void main() { "+tt.expr+"; }"))
			requireNoErrors(t, list)
			body := functionBody(t, f)
			require.Len(t, body, 1)
			assert.Equal(t, tt.want, sexpr(f, body[0]))
		})
	}
}

func TestInvalidSwizzle(t *testing.T) {
	_, list := ParseFile("test.sksl", []byte("void main() { v.0k; }"))
	require.Len(t, list.Diagnostics(), 1)
	assert.Equal(t, "invalid swizzle '0k'", list.Diagnostics()[0].Message)
}

func TestTooDeeplyNested(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"parentheses", "float x = " + strings.Repeat("(", 1000) + "1" + strings.Repeat(")", 1000) + ";"},
		{"blocks", "void main() " + strings.Repeat("{", 500) + strings.Repeat("}", 500)},
		{"unary", "float x = " + strings.Repeat("-", 1000) + "1;"},
		{"unbalanced", "void main() " + strings.Repeat("{ if (a) ", 300)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, list := ParseFile("test.sksl", []byte(tt.src))
			assert.Equal(t, 1, countCode(list, diag.TooDeeplyNested))
			assert.Contains(t, list.Diagnostics()[0].Message, "exceeded max parse depth of 50")
		})
	}
}

func TestBalancedDeepBlocksRecover(t *testing.T) {
	src := "void main() " + strings.Repeat("{", 500) + strings.Repeat("}", 500) + " int after;"
	f, list := ParseFile("test.sksl", []byte(src))
	require.Len(t, list.Diagnostics(), 1)
	decls := f.Declarations()
	require.Len(t, decls, 2)
	assert.Equal(t, ast.KindFunction, f.Node(decls[0]).Kind)
	assert.Equal(t, ast.KindVarDeclarations, f.Node(decls[1]).Kind)
}

func TestWithMaxDepth(t *testing.T) {
	src := []byte("float x = ((1));")
	_, list := ParseFile("test.sksl", src, WithMaxDepth(1))
	assert.True(t, list.HasCode(diag.TooDeeplyNested))
	assert.Contains(t, list.Diagnostics()[0].Message, "max parse depth of 1")

	_, list = ParseFile("test.sksl", src, WithMaxDepth(10))
	requireNoErrors(t, list)
}

func TestRecovery(t *testing.T) {
	src := `
int x = ;
float y;
void f() {
	a = ;
	b = 1;
	if (c) { d = ; }
	e = 3;
}
} float z;`
	f, list := ParseFile("test.sksl", []byte(src))
	assert.Equal(t, 4, list.ErrorCount())

	decls := f.Declarations()
	require.Len(t, decls, 3)
	assert.Equal(t, "y", f.Node(f.Node(decls[0]).Children[2]).Name())
	assert.Equal(t, "f", f.Node(decls[1]).Name())
	assert.Equal(t, "z", f.Node(f.Node(decls[2]).Children[2]).Name())

	body := functionBody(t, f)
	require.Len(t, body, 3)
	assert.Equal(t, "(= b 1)", sexpr(f, body[0]))
	assert.Equal(t, ast.KindIf, f.Node(body[1]).Kind)
	assert.Equal(t, "(= e 3)", sexpr(f, body[2]))
}

func TestRecoveryMissingSemicolonBeforeBrace(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"expression", "x = 1"},
		{"return", "return 1"},
		{"break", "for (;;) { break }"},
		{"local variable", "int a = 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "void f() { " + tt.body + " }\nint y;\nvoid g() { }"
			f, list := ParseFile("test.sksl", []byte(src))
			require.Equal(t, 1, list.ErrorCount(), "diagnostics: %v", list.Diagnostics())
			assert.Contains(t, list.Diagnostics()[0].Message, "expected ';', but found '}'")

			decls := f.Declarations()
			require.Len(t, decls, 3)
			assert.Equal(t, "f", f.Node(decls[0]).Name())
			assert.Equal(t, "y", f.Node(f.Node(decls[1]).Children[2]).Name())
			assert.Equal(t, "g", f.Node(decls[2]).Name())
		})
	}
}

func TestMissingSemicolonAtEndOfFile(t *testing.T) {
	f, list := ParseFile("test.sksl", []byte("int x = 1"))
	require.Equal(t, 1, list.ErrorCount())
	assert.Equal(t, "expected ';', but found end of file", list.Diagnostics()[0].Message)
	assert.Empty(t, f.Declarations())
}

func TestFloatLiteralHasNoSuffix(t *testing.T) {
	f, list := ParseFile("test.sksl", []byte("float x = 1.5f; float y = 2.5;"))
	require.Equal(t, 1, list.ErrorCount())
	assert.Equal(t, "expected ';', but found 'f'", list.Diagnostics()[0].Message)

	decls := f.Declarations()
	require.Len(t, decls, 1)
	y := f.Node(f.Node(decls[0]).Children[2])
	assert.Equal(t, "y", y.Name())
	assert.Equal(t, 2.5, f.Node(y.Children[0]).FloatValue())
}

func TestMalformedLiteralPlaceholder(t *testing.T) {
	f, list := ParseFile("test.sksl", []byte("int x = 99999999999999999999; float y = 1e999;"))
	assert.Equal(t, 2, countCode(list, diag.MalformedLiteral))

	decls := f.Declarations()
	require.Len(t, decls, 2)
	x := f.Node(f.Node(decls[0]).Children[2])
	assert.Equal(t, int64(0), f.Node(x.Children[0]).IntValue())
	y := f.Node(f.Node(decls[1]).Children[2])
	assert.Equal(t, float64(0), f.Node(y.Children[0]).FloatValue())
}

func TestTypeAsIdentifierKeepsDeclaration(t *testing.T) {
	f, list := ParseFile("test.sksl", []byte("int float3 = 1;"))
	require.Len(t, list.Diagnostics(), 1)
	assert.Equal(t, diag.TypeAsIdentifier, list.Diagnostics()[0].Code)
	require.Len(t, f.Declarations(), 1)
}

func TestSpeculationLeavesNoTrace(t *testing.T) {
	f, list := ParseFile("test.sksl", []byte("void main() { float2(1).x; half4 c = half4(0); }"))
	requireNoErrors(t, list)
	body := functionBody(t, f)
	require.Len(t, body, 2)
	assert.Equal(t, "float2(1).x", sexpr(f, body[0]))
	assert.Equal(t, ast.KindVarDeclarations, f.Node(body[1]).Kind)
}

func TestStructDeclaresType(t *testing.T) {
	src := `struct S { float x; float y[2]; } s;
S other;
void main() { S local; local.x = 1; }`
	f, list := ParseFile("test.sksl", []byte(src))
	requireNoErrors(t, list)

	decls := f.Declarations()
	require.Len(t, decls, 3)
	vars := f.Node(decls[0])
	typ := f.Node(vars.Children[1])
	assert.True(t, typ.TypeData().IsStructDeclaration)
	assert.Len(t, typ.Children, 2)
	assert.Equal(t, "s", f.Node(vars.Children[2]).Name())
}

func TestStructFieldRules(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"struct S { const float x; };", "modifier 'const' is not permitted on a struct field"},
		{"struct S { float x = 1; };", "initializers are not permitted on struct fields"},
		{"struct S { float x[n]; };", "array size in struct field must be a constant"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			_, list := ParseFile("test.sksl", []byte(tt.src))
			require.NotEmpty(t, list.Diagnostics())
			assert.Equal(t, tt.want, list.Diagnostics()[0].Message)
		})
	}
}

func TestBlockScopedStruct(t *testing.T) {
	src := "void main() { struct Local { int a; }; Local l; }\nLocal outside;"
	_, list := ParseFile("test.sksl", []byte(src))
	require.Len(t, list.Diagnostics(), 1)
	assert.Equal(t, "no type named 'Local'", list.Diagnostics()[0].Message)
}

func TestEnum(t *testing.T) {
	f, list := ParseFile("test.sksl", []byte("enum class Mode { kA, kB = 2 }; Mode m = Mode::kA;"))
	requireNoErrors(t, list)
	decls := f.Declarations()
	require.Len(t, decls, 2)
	enum := f.Node(decls[0])
	assert.Equal(t, ast.KindEnum, enum.Kind)
	assert.Equal(t, "Mode", enum.Name())
	require.Len(t, enum.Children, 2)
	assert.Equal(t, "kB", f.Node(enum.Children[1]).Name())
	assert.Equal(t, "2", sexpr(f, f.Node(enum.Children[1]).Children[0]))
}

func TestInterfaceBlock(t *testing.T) {
	f, list := ParseFile("test.sksl", []byte("uniform Globals { float4 color; int n; } globals[2];"))
	requireNoErrors(t, list)
	block := f.Node(f.Declarations()[0])
	require.Equal(t, ast.KindInterfaceBlock, block.Kind)
	data := block.InterfaceBlockData()
	assert.Equal(t, "Globals", data.TypeName)
	assert.Equal(t, "globals", data.InstanceName)
	assert.Equal(t, 2, data.DeclarationCount)
	assert.Equal(t, 1, data.SizeCount)
	assert.True(t, data.Modifiers.Has(ast.FlagUniform))
}

func TestUnknownTypeAtTopLevel(t *testing.T) {
	_, list := ParseFile("test.sksl", []byte("Foo x;"))
	require.Len(t, list.Diagnostics(), 1)
	assert.Equal(t, "no type named 'Foo'", list.Diagnostics()[0].Message)
}

func TestFunctionDeclaration(t *testing.T) {
	f, list := ParseFile("test.sksl", []byte("inline half4 f(in float a[2], out int b); void g() {}"))
	requireNoErrors(t, list)
	decls := f.Declarations()
	require.Len(t, decls, 2)

	fn := f.Node(decls[0])
	data := fn.FunctionData()
	assert.Equal(t, "f", data.Name)
	assert.Equal(t, 2, data.ParameterCount)
	assert.True(t, data.Modifiers.Has(ast.FlagInline))
	require.Len(t, fn.Children, 3)

	a := f.Node(fn.Children[1]).ParameterData()
	assert.Equal(t, "a", a.Name)
	assert.Equal(t, 1, a.SizeCount)
	assert.True(t, a.Modifiers.Has(ast.FlagIn))

	g := f.Node(decls[1])
	require.Len(t, g.Children, 2)
	assert.Equal(t, ast.KindBlock, f.Node(g.Children[1]).Kind)
}

func TestStatements(t *testing.T) {
	src := `void main() {
	for (int i = 0; i < 4; i++) {}
	for (;;) break;
	while (x) continue;
	do { discard; } while (y);
	@if (z) return; else return 1;
	switch (w) { case 1: case 2: x = 1; break; default: x = 2; }
	;
}`
	f, list := ParseFile("test.sksl", []byte(src))
	requireNoErrors(t, list)
	body := functionBody(t, f)

	var kinds []ast.Kind
	for _, id := range body {
		kinds = append(kinds, f.Node(id).Kind)
	}
	assert.Equal(t, []ast.Kind{
		ast.KindFor, ast.KindFor, ast.KindWhile, ast.KindDo,
		ast.KindIf, ast.KindSwitch, ast.KindBlock,
	}, kinds)

	emptyFor := f.Node(body[1])
	require.Len(t, emptyFor.Children, 4)
	for _, id := range emptyFor.Children[:3] {
		assert.Equal(t, ast.KindEmpty, f.Node(id).Kind)
	}

	staticIf := f.Node(body[4])
	assert.True(t, staticIf.BoolValue())
	assert.Len(t, staticIf.Children, 3)

	sw := f.Node(body[5])
	assert.False(t, sw.BoolValue())
	require.Len(t, sw.Children, 4)
	def := f.Node(sw.Children[3])
	assert.Equal(t, ast.KindEmpty, f.Node(def.Children[0]).Kind)
}

func TestDirectivesAndSections(t *testing.T) {
	src := "#extension GL_foo : enable\n@header { #include \"x.h\"\n { nested } }\n@setData(pdman) { pdman.set(); }\nint x;"
	f, list := ParseFile("test.sksl", []byte(src))
	requireNoErrors(t, list)

	decls := f.Declarations()
	require.Len(t, decls, 4)
	assert.Equal(t, ast.KindExtension, f.Node(decls[0]).Kind)
	assert.Equal(t, "GL_foo", f.Node(decls[0]).Name())

	header := f.Node(decls[1]).SectionData()
	assert.Equal(t, "header", header.Name)
	assert.Equal(t, " #include \"x.h\"\n { nested } ", header.Text)

	setData := f.Node(decls[2]).SectionData()
	assert.Equal(t, "setData", setData.Name)
	assert.Equal(t, "pdman", setData.Argument)
}

func TestUnsupportedDirectiveSkipsLine(t *testing.T) {
	f, list := ParseFile("test.sksl", []byte("#version 300 es\nint x;"))
	require.Len(t, list.Diagnostics(), 1)
	assert.Equal(t, "unsupported directive '#version'", list.Diagnostics()[0].Message)
	assert.Len(t, f.Declarations(), 1)
}

func TestPrecisionAndModifiersOnly(t *testing.T) {
	f, list := ParseFile("test.sksl", []byte("precision highp float;\nlayout(early_fragment_tests) in;"))
	requireNoErrors(t, list)
	decls := f.Declarations()
	require.Len(t, decls, 1)
	mods := f.Node(decls[0])
	assert.Equal(t, ast.KindModifiers, mods.Kind)
	assert.True(t, mods.ModifiersData().Layout.Has(ast.LayoutEarlyFragmentTests))
}

func TestNullableType(t *testing.T) {
	f, list := ParseFile("test.sksl", []byte("half4? c = null;"))
	requireNoErrors(t, list)
	vars := f.Node(f.Declarations()[0])
	assert.True(t, f.Node(vars.Children[1]).TypeData().IsNullable)
	v := f.Node(vars.Children[2])
	assert.Equal(t, ast.KindNull, f.Node(v.Children[0]).Kind)
}

func TestExtraTypes(t *testing.T) {
	src := []byte("SkColor c;")
	_, list := ParseFile("test.sksl", src)
	assert.True(t, list.HasCode(diag.SyntaxError))

	_, list = ParseFile("test.sksl", src, WithSymbols(symbols.New("SkColor")))
	requireNoErrors(t, list)
}

func TestPosition(t *testing.T) {
	p, _ := newTestParser("int x;\n  float y;")
	for p.next().Kind != lexer.Semicolon {
	}
	tok := p.next()
	pos := p.Position(tok)
	assert.Equal(t, 2, pos.Line)
	assert.Equal(t, 3, pos.Column)
	assert.Equal(t, "test.sksl:2:3", pos.String())
}

func TestParseTestdata(t *testing.T) {
	files, err := filepath.Glob("testdata/*.sksl")
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, path := range files {
		t.Run(filepath.Base(path), func(t *testing.T) {
			src, err := os.ReadFile(path)
			require.NoError(t, err)
			f, list := ParseFile(path, src)
			requireNoErrors(t, list)
			assert.NotEmpty(t, f.Declarations())
		})
	}
}

func TestConcurrentParsers(t *testing.T) {
	src, err := os.ReadFile("testdata/control.sksl")
	require.NoError(t, err)

	counts := make([]int, 16)
	var g errgroup.Group
	for i := range counts {
		i := i
		g.Go(func() error {
			f, list := ParseFile("control.sksl", src)
			if list.ErrorCount() > 0 {
				return fmt.Errorf("parser %d: %s", i, list.Format(list.Diagnostics()[0]))
			}
			counts[i] = f.Arena.Len()
			return nil
		})
	}
	require.NoError(t, g.Wait())
	for _, n := range counts[1:] {
		assert.Equal(t, counts[0], n)
	}
}
