package format

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/dhamidi/sksl/sksl/ast"
	"github.com/dhamidi/sksl/sksl/parser"
)

func parse(t *testing.T, src string) *ast.File {
	t.Helper()
	file, errs := parser.ParseFile("test.sksl", []byte(src))
	require.Zero(t, errs.ErrorCount(), "unexpected diagnostics: %v", errs.Diagnostics())
	return file
}

func encode(t *testing.T, name string, file *ast.File) string {
	t.Helper()
	var buf bytes.Buffer
	enc, err := NewEncoder(name, &buf)
	require.NoError(t, err)
	require.NoError(t, enc.Encode(file))
	return buf.String()
}

func TestNewEncoderUnknownFormat(t *testing.T) {
	_, err := NewEncoder("xml", &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.Equal(t, []string{"ast", "json", "line", "sksl", "tree"}, Names())
}

func TestASTJSON(t *testing.T) {
	file := parse(t, "int x = 1 + 2;\nvoid main() { @if (true) { x++; } }\n")
	out := encode(t, "ast", file)
	require.True(t, gjson.Valid(out))

	assert.Equal(t, "File", gjson.Get(out, "kind").String())
	decl := gjson.Get(out, "children.0")
	assert.Equal(t, "VarDeclarations", decl.Get("kind").String())
	assert.Equal(t, "int", decl.Get("children.1.name").String())
	assert.Equal(t, "x", decl.Get("children.2.name").String())
	assert.Equal(t, "+", decl.Get("children.2.children.0.operator").String())
	assert.Equal(t, int64(2), decl.Get("children.2.children.0.children.1.value").Int())

	fn := gjson.Get(out, "children.1")
	assert.Equal(t, "Function", fn.Get("kind").String())
	assert.Equal(t, "main", fn.Get("name").String())
	assert.Equal(t, int64(2), fn.Get("position.line").Int())
	assert.True(t, fn.Get("children.1.children.0.static").Bool())
	assert.Equal(t, "++", fn.Get("children.1.children.0.children.1.children.0.operator").String())
}

func TestASTJSONDirectives(t *testing.T) {
	file := parse(t, "#extension GL_foo : enable\n@header(cpp) { #include <x> }\n")
	out := encode(t, "ast", file)

	ext := gjson.Get(out, "children.0")
	assert.Equal(t, "Extension", ext.Get("kind").String())
	assert.Equal(t, "GL_foo", ext.Get("name").String())
	assert.Equal(t, "enable", ext.Get("behavior").String())

	sec := gjson.Get(out, "children.1")
	assert.Equal(t, "header", sec.Get("name").String())
	assert.Equal(t, "cpp", sec.Get("argument").String())
	assert.Equal(t, " #include <x> ", sec.Get("text").String())
}

func TestTree(t *testing.T) {
	file := parse(t, "int x;\n")
	want := "File 1:1\n" +
		"  VarDeclarations 1:5\n" +
		"    Modifiers 1:5\n" +
		"    Type int 1:1\n" +
		"    VarDeclaration x 1:5\n"
	assert.Equal(t, want, encode(t, "tree", file))
}

const outlineSource = `struct Light { float3 position; half4 color; };
uniform Params { float4 tint; } params[2];
enum class Mode { kAdd, kMul = 2 };
layout(location = 0) out half4 color, other[3];
half4 shade(in Light l, inout float d[2]) { return l.color; }
`

func TestOutline(t *testing.T) {
	file := parse(t, outlineSource)
	symbols := Outline(file)
	require.Len(t, symbols, 6)

	assert.Equal(t, "struct", symbols[0].Kind)
	assert.Equal(t, "Light", symbols[0].Name)
	require.Len(t, symbols[0].Children, 2)
	assert.Equal(t, "float3", symbols[0].Children[0].Type)

	assert.Equal(t, "interface", symbols[1].Kind)
	assert.Equal(t, "Params", symbols[1].Name)
	assert.Equal(t, "params", symbols[1].Type)
	assert.Equal(t, "uniform", symbols[1].Modifiers)

	assert.Equal(t, "enum", symbols[2].Kind)
	require.Len(t, symbols[2].Children, 2)
	assert.Equal(t, "kMul", symbols[2].Children[1].Name)

	assert.Equal(t, "variable", symbols[3].Kind)
	assert.Equal(t, "color", symbols[3].Name)
	assert.Equal(t, "layout (location = 0) out", symbols[3].Modifiers)
	assert.Equal(t, "other", symbols[4].Name)
	assert.Equal(t, "half4[3]", symbols[4].Type)

	fn := symbols[5]
	assert.Equal(t, "function", fn.Kind)
	assert.Equal(t, "half4", fn.Type)
	require.Len(t, fn.Parameters, 2)
	assert.Equal(t, Parameter{Name: "l", Type: "Light", Modifiers: "in"}, fn.Parameters[0])
	assert.Equal(t, Parameter{Name: "d", Type: "float[2]", Modifiers: "inout"}, fn.Parameters[1])
}

func TestOutlineJSON(t *testing.T) {
	file := parse(t, outlineSource)
	out := encode(t, "json", file)
	require.True(t, gjson.Valid(out))

	assert.Equal(t, "test.sksl", gjson.Get(out, "name").String())
	assert.Equal(t, int64(6), gjson.Get(out, "declarations.#").Int())
	assert.Equal(t, []string{"position", "color"}, toStrings(gjson.Get(out, "declarations.0.members.#.name")))
	assert.Equal(t, "shade", gjson.Get(out, `declarations.#(kind=="function").name`).String())
	assert.Equal(t, int64(5), gjson.Get(out, `declarations.#(kind=="function").line`).Int())
	assert.Equal(t, "inout", gjson.Get(out, "declarations.5.parameters.1.modifiers").String())
}

func toStrings(r gjson.Result) []string {
	var out []string
	for _, v := range r.Array() {
		out = append(out, v.String())
	}
	return out
}

func TestLine(t *testing.T) {
	file := parse(t, outlineSource)
	lines := strings.Split(strings.TrimSuffix(encode(t, "line", file), "\n"), "\n")
	assert.Equal(t, "struct\tLight", lines[0])
	assert.Equal(t, "\tfield\tposition\tfloat3", lines[1])
	assert.Contains(t, lines, "variable\tcolor\thalf4\tlayout (location = 0) out")
	assert.Equal(t, "function\tshade\thalf4\t(in Light l, inout float[2] d)\t", lines[len(lines)-1])
}

func TestPrintSource(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"redundant parens", "int x = (1 + (2 * 3));", "int x = 1 + 2 * 3;\n"},
		{"needed parens", "int x = (1 + 2) * 3;", "int x = (1 + 2) * 3;\n"},
		{"left associative", "int x = 1 - (2 - 3);", "int x = 1 - (2 - 3);\n"},
		{"right associative", "void f() { a = (b = c); (a = b) = c; }", "void f() {\n    a = b = c;\n    (a = b) = c;\n}\n"},
		{"nested negation", "int x = -(-y);", "int x = - -y;\n"},
		{"negated decrement", "int x = -(--y);", "int x = - --y;\n"},
		{"ternary", "int x = (a ? b : c) ? d : (e, f);", "int x = (a ? b : c) ? d : (e, f);\n"},
		{"float", "float x = 1.0 + 2.5e3;", "float x = 1.0 + 2500.0;\n"},
		{"swizzle", "float4 x = v.0xy1;", "float4 x = v.0xy1;\n"},
		{
			"dangling else",
			"void f() { if (a) if (b) x(); else y(); if (c) { if (d) x(); } else y(); }",
			"void f() {\n    if (a) if (b) x(); else y();\n    if (c) {\n        if (d) x();\n    } else y();\n}\n",
		},
		{"extension", "#extension GL_foo : require", "#extension GL_foo : require\n"},
		{"modifiers only", "layout(blend_support_all_equations) out;", "layout (blend_support_all_equations) out;\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PrintSource(parse(t, tt.src)))
		})
	}
}

func TestPrintStruct(t *testing.T) {
	file := parse(t, "struct S { float a; int b[2]; } s;")
	want := "struct S {\n    float a;\n    int b[2];\n} s;\n"
	assert.Equal(t, want, PrintSource(file))
}
