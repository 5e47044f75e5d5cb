package ast

import (
	"fmt"

	"github.com/dhamidi/sksl/sksl/lexer"
)

type Kind int

const (
	KindEmpty Kind = iota

	// File level
	KindFile
	KindExtension
	KindSection
	KindModifiers

	// Declarations
	KindEnum
	KindEnumCase
	KindFunction
	KindParameter
	KindInterfaceBlock
	KindType
	KindVarDeclarations
	KindVarDeclaration

	// Statements
	KindBlock
	KindIf
	KindFor
	KindWhile
	KindDo
	KindSwitch
	KindSwitchCase
	KindReturn
	KindBreak
	KindContinue
	KindDiscard

	// Expressions
	KindBinary
	KindTernary
	KindPrefix
	KindPostfix
	KindCall
	KindIndex
	KindField
	KindIdentifier
	KindInt
	KindFloat
	KindBool
	KindNull
)

var kindNames = map[Kind]string{
	KindEmpty:           "Empty",
	KindFile:            "File",
	KindExtension:       "Extension",
	KindSection:         "Section",
	KindModifiers:       "Modifiers",
	KindEnum:            "Enum",
	KindEnumCase:        "EnumCase",
	KindFunction:        "Function",
	KindParameter:       "Parameter",
	KindInterfaceBlock:  "InterfaceBlock",
	KindType:            "Type",
	KindVarDeclarations: "VarDeclarations",
	KindVarDeclaration:  "VarDeclaration",
	KindBlock:           "Block",
	KindIf:              "If",
	KindFor:             "For",
	KindWhile:           "While",
	KindDo:              "Do",
	KindSwitch:          "Switch",
	KindSwitchCase:      "SwitchCase",
	KindReturn:          "Return",
	KindBreak:           "Break",
	KindContinue:        "Continue",
	KindDiscard:         "Discard",
	KindBinary:          "Binary",
	KindTernary:         "Ternary",
	KindPrefix:          "Prefix",
	KindPostfix:         "Postfix",
	KindCall:            "Call",
	KindIndex:           "Index",
	KindField:           "Field",
	KindIdentifier:      "Identifier",
	KindInt:             "Int",
	KindFloat:           "Float",
	KindBool:            "Bool",
	KindNull:            "Null",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// ID addresses a node inside its Arena. IDs are plain indices and stay
// valid until a rewind truncates the arena below them.
type ID int32

const InvalidID ID = -1

func (id ID) Valid() bool {
	return id >= 0
}

type TypeData struct {
	Name                string
	IsStructDeclaration bool
	IsNullable          bool
}

// VarData describes one declarator. The first SizeCount children of the
// VarDeclaration node are its array sizes (Empty for unsized), followed by
// the optional initializer.
type VarData struct {
	Name      string
	SizeCount int
}

// FunctionData: children are the return type, ParameterCount parameters,
// then an optional body block.
type FunctionData struct {
	Modifiers      Modifiers
	Name           string
	ParameterCount int
}

// ParameterData: children are the type followed by SizeCount Int sizes.
type ParameterData struct {
	Modifiers Modifiers
	Name      string
	SizeCount int
}

// InterfaceBlockData: children are DeclarationCount VarDeclarations followed
// by SizeCount instance array sizes.
type InterfaceBlockData struct {
	Modifiers        Modifiers
	TypeName         string
	DeclarationCount int
	InstanceName     string
	SizeCount        int
}

// ExtensionData is the payload of "#extension Name : Behavior".
type ExtensionData struct {
	Name     string
	Behavior string
}

type SectionData struct {
	Name     string
	Argument string
	Text     string
}

// Node is one AST record. Data holds the kind-specific payload: a string
// for names, lexer.Kind for operators, int64/float64/bool for literals,
// bool "is static" for If and Switch, Modifiers, or one of the *Data structs.
type Node struct {
	Kind     Kind
	Offset   int
	Children []ID
	Data     any
}

func (n *Node) Name() string {
	switch d := n.Data.(type) {
	case string:
		return d
	case TypeData:
		return d.Name
	case VarData:
		return d.Name
	case FunctionData:
		return d.Name
	case ParameterData:
		return d.Name
	case InterfaceBlockData:
		return d.TypeName
	case SectionData:
		return d.Name
	case ExtensionData:
		return d.Name
	}
	return ""
}

func (n *Node) Operator() lexer.Kind {
	if op, ok := n.Data.(lexer.Kind); ok {
		return op
	}
	return lexer.Invalid
}

func (n *Node) IntValue() int64 {
	v, _ := n.Data.(int64)
	return v
}

func (n *Node) FloatValue() float64 {
	v, _ := n.Data.(float64)
	return v
}

// BoolValue returns a Bool literal's value, or whether an If or Switch is
// static.
func (n *Node) BoolValue() bool {
	v, _ := n.Data.(bool)
	return v
}

func (n *Node) TypeData() TypeData {
	v, _ := n.Data.(TypeData)
	return v
}

func (n *Node) VarData() VarData {
	v, _ := n.Data.(VarData)
	return v
}

func (n *Node) FunctionData() FunctionData {
	v, _ := n.Data.(FunctionData)
	return v
}

func (n *Node) ParameterData() ParameterData {
	v, _ := n.Data.(ParameterData)
	return v
}

func (n *Node) InterfaceBlockData() InterfaceBlockData {
	v, _ := n.Data.(InterfaceBlockData)
	return v
}

func (n *Node) ExtensionData() ExtensionData {
	v, _ := n.Data.(ExtensionData)
	return v
}

func (n *Node) SectionData() SectionData {
	v, _ := n.Data.(SectionData)
	return v
}

// ModifiersData returns the modifiers of a Modifiers, Function, Parameter or
// InterfaceBlock node.
func (n *Node) ModifiersData() Modifiers {
	switch d := n.Data.(type) {
	case Modifiers:
		return d
	case FunctionData:
		return d.Modifiers
	case ParameterData:
		return d.Modifiers
	case InterfaceBlockData:
		return d.Modifiers
	}
	return Modifiers{}
}

// Label is a short description used by tree dumps.
func (n *Node) Label() string {
	switch n.Kind {
	case KindBinary, KindPrefix, KindPostfix:
		return n.Operator().String()
	case KindInt:
		return fmt.Sprint(n.IntValue())
	case KindFloat:
		return fmt.Sprint(n.FloatValue())
	case KindBool:
		return fmt.Sprint(n.BoolValue())
	case KindIf, KindSwitch:
		if n.BoolValue() {
			return "static"
		}
		return ""
	case KindModifiers:
		return n.ModifiersData().String()
	}
	return n.Name()
}
