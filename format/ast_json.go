package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/sksl/sksl/ast"
	"github.com/dhamidi/sksl/sksl/diag"
)

type ASTJSONEncoder struct {
	w io.Writer
}

func NewASTJSONEncoder(w io.Writer) *ASTJSONEncoder {
	return &ASTJSONEncoder{w: w}
}

func (e *ASTJSONEncoder) Encode(file *ast.File) error {
	text, err := e.MarshalText(file)
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *ASTJSONEncoder) MarshalText(file *ast.File) ([]byte, error) {
	conv := &astJSONConverter{file: file, lines: diag.NewLineIndex(file.Name, file.Source)}
	return json.MarshalIndent(conv.node(file.Root), "", "  ")
}

type astJSONNode struct {
	Kind              string         `json:"kind"`
	Position          astJSONPos     `json:"position"`
	Name              string         `json:"name,omitempty"`
	Operator          string         `json:"operator,omitempty"`
	Value             any            `json:"value,omitempty"`
	Static            bool           `json:"static,omitempty"`
	Modifiers         string         `json:"modifiers,omitempty"`
	StructDeclaration bool           `json:"structDeclaration,omitempty"`
	Nullable          bool           `json:"nullable,omitempty"`
	SizeCount         int            `json:"sizeCount,omitempty"`
	ParameterCount    int            `json:"parameterCount,omitempty"`
	InstanceName      string         `json:"instanceName,omitempty"`
	Argument          string         `json:"argument,omitempty"`
	Text              string         `json:"text,omitempty"`
	Behavior          string         `json:"behavior,omitempty"`
	Children          []*astJSONNode `json:"children,omitempty"`
}

type astJSONPos struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

type astJSONConverter struct {
	file  *ast.File
	lines *diag.LineIndex
}

func (c *astJSONConverter) node(id ast.ID) *astJSONNode {
	n := c.file.Node(id)
	pos := c.lines.Position(n.Offset)
	jn := &astJSONNode{
		Kind:     n.Kind.String(),
		Position: astJSONPos{Offset: n.Offset, Line: pos.Line, Column: pos.Column},
		Name:     n.Name(),
	}

	switch d := n.Data.(type) {
	case ast.Modifiers:
		jn.Modifiers = d.String()
	case ast.TypeData:
		jn.StructDeclaration = d.IsStructDeclaration
		jn.Nullable = d.IsNullable
	case ast.VarData:
		jn.SizeCount = d.SizeCount
	case ast.FunctionData:
		jn.Modifiers = d.Modifiers.String()
		jn.ParameterCount = d.ParameterCount
	case ast.ParameterData:
		jn.Modifiers = d.Modifiers.String()
		jn.SizeCount = d.SizeCount
	case ast.InterfaceBlockData:
		jn.Modifiers = d.Modifiers.String()
		jn.SizeCount = d.SizeCount
		jn.InstanceName = d.InstanceName
	case ast.SectionData:
		jn.Argument = d.Argument
		jn.Text = d.Text
	case ast.ExtensionData:
		jn.Behavior = d.Behavior
	}

	switch n.Kind {
	case ast.KindBinary, ast.KindPrefix, ast.KindPostfix:
		jn.Operator = n.Operator().String()
	case ast.KindInt:
		jn.Value = n.IntValue()
	case ast.KindFloat:
		jn.Value = n.FloatValue()
	case ast.KindBool:
		jn.Value = n.BoolValue()
	case ast.KindIf, ast.KindSwitch:
		jn.Static = n.BoolValue()
	}

	if len(n.Children) > 0 {
		jn.Children = make([]*astJSONNode, len(n.Children))
		for i, child := range n.Children {
			jn.Children[i] = c.node(child)
		}
	}
	return jn
}
