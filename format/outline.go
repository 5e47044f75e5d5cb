package format

import (
	"strings"

	"github.com/dhamidi/sksl/sksl/ast"
)

// Symbol summarizes a top-level declaration, or a member of one.
type Symbol struct {
	Kind       string
	Name       string
	Type       string
	Modifiers  string
	Parameters []Parameter
	Offset     int
	Children   []Symbol
}

type Parameter struct {
	Name      string
	Type      string
	Modifiers string
}

// Outline lists the declarations of file in source order. A declaration of
// several variables yields one symbol per variable; a struct declared
// together with variables yields the struct first.
func Outline(file *ast.File) []Symbol {
	var symbols []Symbol
	for _, id := range file.Declarations() {
		symbols = append(symbols, declarationSymbols(file, id)...)
	}
	return symbols
}

func declarationSymbols(file *ast.File, id ast.ID) []Symbol {
	n := file.Node(id)
	switch n.Kind {
	case ast.KindExtension:
		return []Symbol{{Kind: "extension", Name: n.Name(), Type: n.ExtensionData().Behavior, Offset: n.Offset}}
	case ast.KindSection:
		return []Symbol{{Kind: "section", Name: n.Name(), Type: n.SectionData().Argument, Offset: n.Offset}}
	case ast.KindModifiers:
		return []Symbol{{Kind: "modifiers", Modifiers: n.ModifiersData().String(), Offset: n.Offset}}
	case ast.KindEnum:
		s := Symbol{Kind: "enum", Name: n.Name(), Offset: n.Offset}
		for _, c := range n.Children {
			cn := file.Node(c)
			s.Children = append(s.Children, Symbol{Kind: "case", Name: cn.Name(), Type: n.Name(), Offset: cn.Offset})
		}
		return []Symbol{s}
	case ast.KindType:
		return []Symbol{structSymbol(file, id)}
	case ast.KindFunction:
		data := n.FunctionData()
		s := Symbol{
			Kind:      "function",
			Name:      data.Name,
			Type:      TypeString(file, n.Children[0]),
			Modifiers: data.Modifiers.String(),
			Offset:    n.Offset,
		}
		for _, p := range n.Children[1 : 1+data.ParameterCount] {
			pn := file.Node(p)
			pd := pn.ParameterData()
			typ := TypeString(file, pn.Children[0])
			for _, size := range pn.Children[1:] {
				typ += "[" + file.Node(size).Label() + "]"
			}
			s.Parameters = append(s.Parameters, Parameter{Name: pd.Name, Type: typ, Modifiers: pd.Modifiers.String()})
		}
		return []Symbol{s}
	case ast.KindInterfaceBlock:
		data := n.InterfaceBlockData()
		s := Symbol{
			Kind:      "interface",
			Name:      data.TypeName,
			Type:      data.InstanceName,
			Modifiers: data.Modifiers.String(),
			Offset:    n.Offset,
		}
		for _, decl := range n.Children[:data.DeclarationCount] {
			s.Children = append(s.Children, variableSymbols(file, decl, "field")...)
		}
		return []Symbol{s}
	case ast.KindVarDeclarations:
		var symbols []Symbol
		if typ := file.Node(n.Children[1]); typ.TypeData().IsStructDeclaration {
			symbols = append(symbols, structSymbol(file, n.Children[1]))
		}
		return append(symbols, variableSymbols(file, id, "variable")...)
	}
	return nil
}

func structSymbol(file *ast.File, id ast.ID) Symbol {
	n := file.Node(id)
	s := Symbol{Kind: "struct", Name: n.Name(), Offset: n.Offset}
	for _, decl := range n.Children {
		s.Children = append(s.Children, variableSymbols(file, decl, "field")...)
	}
	return s
}

func variableSymbols(file *ast.File, id ast.ID, kind string) []Symbol {
	n := file.Node(id)
	mods := file.Node(n.Children[0]).ModifiersData().String()
	typ := TypeString(file, n.Children[1])
	var symbols []Symbol
	for _, v := range n.Children[2:] {
		vn := file.Node(v)
		data := vn.VarData()
		t := typ
		for _, size := range vn.Children[:data.SizeCount] {
			t += "[" + file.Node(size).Label() + "]"
		}
		symbols = append(symbols, Symbol{Kind: kind, Name: data.Name, Type: t, Modifiers: mods, Offset: vn.Offset})
	}
	return symbols
}

// TypeString renders a Type node as it would be written in a declaration,
// e.g. "float4[2]?". Struct declarations render as their name.
func TypeString(file *ast.File, id ast.ID) string {
	n := file.Node(id)
	data := n.TypeData()
	var sb strings.Builder
	sb.WriteString(data.Name)
	if !data.IsStructDeclaration {
		for _, size := range n.Children {
			sb.WriteString("[")
			if sn := file.Node(size); sn.Kind != ast.KindEmpty {
				sb.WriteString(sn.Label())
			}
			sb.WriteString("]")
		}
	}
	if data.IsNullable {
		sb.WriteString("?")
	}
	return sb.String()
}
