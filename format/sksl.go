package format

import (
	"io"
	"strconv"
	"strings"

	"github.com/dhamidi/sksl/sksl/ast"
	"github.com/dhamidi/sksl/sksl/lexer"
)

// SkSLPrinter writes a parsed file back out as SkSL source. The output
// parses to the same tree it was printed from: parentheses are emitted
// only where precedence requires them, and comments, precision statements
// and unsupported directives are not reproduced.
type SkSLPrinter struct {
	w      io.Writer
	file   *ast.File
	sb     strings.Builder
	indent int
}

func NewSkSLPrinter(w io.Writer) *SkSLPrinter {
	return &SkSLPrinter{w: w}
}

func (p *SkSLPrinter) Encode(file *ast.File) error {
	_, err := io.WriteString(p.w, PrintSource(file))
	return err
}

// PrintSource renders file as SkSL source text.
func PrintSource(file *ast.File) string {
	p := &SkSLPrinter{file: file}
	for i, id := range file.Declarations() {
		if i > 0 && p.needsBlankLine(id) {
			p.sb.WriteString("\n")
		}
		p.declaration(id)
		p.sb.WriteString("\n")
	}
	return p.sb.String()
}

const indentStr = "    "

func (p *SkSLPrinter) node(id ast.ID) *ast.Node {
	return p.file.Node(id)
}

func (p *SkSLPrinter) write(s ...string) {
	for _, str := range s {
		p.sb.WriteString(str)
	}
}

func (p *SkSLPrinter) newline() {
	p.sb.WriteString("\n")
	p.sb.WriteString(strings.Repeat(indentStr, p.indent))
}

func (p *SkSLPrinter) needsBlankLine(id ast.ID) bool {
	switch n := p.node(id); n.Kind {
	case ast.KindFunction, ast.KindEnum, ast.KindInterfaceBlock, ast.KindSection, ast.KindType:
		return true
	case ast.KindVarDeclarations:
		return p.node(n.Children[1]).TypeData().IsStructDeclaration
	}
	return false
}

func (p *SkSLPrinter) declaration(id ast.ID) {
	n := p.node(id)
	switch n.Kind {
	case ast.KindExtension:
		data := n.ExtensionData()
		p.write("#extension ", data.Name, " : ", data.Behavior)
	case ast.KindSection:
		data := n.SectionData()
		p.write("@", data.Name)
		if data.Argument != "" {
			p.write("(", data.Argument, ")")
		}
		p.write(" {", data.Text, "}")
	case ast.KindModifiers:
		p.write(n.ModifiersData().String(), ";")
	case ast.KindEnum:
		p.enum(n)
	case ast.KindFunction:
		p.function(n)
	case ast.KindInterfaceBlock:
		p.interfaceBlock(n)
	default:
		p.statement(id)
	}
}

func (p *SkSLPrinter) enum(n *ast.Node) {
	p.write("enum class ", n.Name(), " {")
	p.indent++
	for i, c := range n.Children {
		cn := p.node(c)
		p.newline()
		p.write(cn.Name())
		if len(cn.Children) > 0 {
			p.write(" = ", p.expression(cn.Children[0], precAssignment))
		}
		if i < len(n.Children)-1 {
			p.write(",")
		}
	}
	p.indent--
	p.newline()
	p.write("};")
}

func (p *SkSLPrinter) function(n *ast.Node) {
	data := n.FunctionData()
	if mods := data.Modifiers.String(); mods != "" {
		p.write(mods, " ")
	}
	p.writeType(n.Children[0])
	p.write(" ", data.Name, "(")
	for i, param := range n.Children[1 : 1+data.ParameterCount] {
		if i > 0 {
			p.write(", ")
		}
		pn := p.node(param)
		pd := pn.ParameterData()
		if mods := pd.Modifiers.String(); mods != "" {
			p.write(mods, " ")
		}
		p.writeType(pn.Children[0])
		p.write(" ", pd.Name)
		for _, size := range pn.Children[1:] {
			p.write("[", p.expression(size, precComma), "]")
		}
	}
	p.write(")")
	if len(n.Children) > 1+data.ParameterCount {
		p.write(" ")
		p.statement(n.Children[len(n.Children)-1])
		return
	}
	p.write(";")
}

func (p *SkSLPrinter) interfaceBlock(n *ast.Node) {
	data := n.InterfaceBlockData()
	if mods := data.Modifiers.String(); mods != "" {
		p.write(mods, " ")
	}
	p.write(data.TypeName, " {")
	p.indent++
	for _, decl := range n.Children[:data.DeclarationCount] {
		p.newline()
		p.statement(decl)
	}
	p.indent--
	p.newline()
	p.write("}")
	if data.InstanceName != "" {
		p.write(" ", data.InstanceName)
		p.sizes(n.Children[data.DeclarationCount:])
	}
	p.write(";")
}

func (p *SkSLPrinter) sizes(ids []ast.ID) {
	for _, size := range ids {
		p.write("[")
		if p.node(size).Kind != ast.KindEmpty {
			p.write(p.expression(size, precComma))
		}
		p.write("]")
	}
}

// writeType renders a type reference. Struct declarations print their body.
func (p *SkSLPrinter) writeType(id ast.ID) {
	n := p.node(id)
	data := n.TypeData()
	if !data.IsStructDeclaration {
		p.write(TypeString(p.file, id))
		return
	}
	p.write("struct ", data.Name, " {")
	p.indent++
	for _, field := range n.Children {
		p.newline()
		p.statement(field)
	}
	p.indent--
	p.newline()
	p.write("}")
}

// statement writes id starting at the current column. Nested lines are
// indented relative to p.indent; no trailing newline is written.
func (p *SkSLPrinter) statement(id ast.ID) {
	n := p.node(id)
	switch n.Kind {
	case ast.KindBlock:
		p.block(n)
	case ast.KindType:
		p.writeType(id)
		p.write(";")
	case ast.KindVarDeclarations:
		p.varDeclarations(n)
	case ast.KindIf:
		p.ifStatement(n)
	case ast.KindFor:
		p.forStatement(n)
	case ast.KindWhile:
		p.write("while (", p.expression(n.Children[0], precComma), ") ")
		p.statement(n.Children[1])
	case ast.KindDo:
		p.write("do ")
		p.statement(n.Children[0])
		p.write(" while (", p.expression(n.Children[1], precComma), ");")
	case ast.KindSwitch:
		p.switchStatement(n)
	case ast.KindReturn:
		p.write("return")
		if len(n.Children) > 0 {
			p.write(" ", p.expression(n.Children[0], precComma))
		}
		p.write(";")
	case ast.KindBreak:
		p.write("break;")
	case ast.KindContinue:
		p.write("continue;")
	case ast.KindDiscard:
		p.write("discard;")
	default:
		p.write(p.expression(id, precComma), ";")
	}
}

func (p *SkSLPrinter) block(n *ast.Node) {
	if len(n.Children) == 0 {
		p.write("{}")
		return
	}
	p.write("{")
	p.indent++
	for _, stmt := range n.Children {
		p.newline()
		p.statement(stmt)
	}
	p.indent--
	p.newline()
	p.write("}")
}

func (p *SkSLPrinter) varDeclarations(n *ast.Node) {
	if mods := p.node(n.Children[0]).ModifiersData().String(); mods != "" {
		p.write(mods, " ")
	}
	p.writeType(n.Children[1])
	p.write(" ")
	for i, v := range n.Children[2:] {
		if i > 0 {
			p.write(", ")
		}
		vn := p.node(v)
		data := vn.VarData()
		p.write(data.Name)
		p.sizes(vn.Children[:data.SizeCount])
		if len(vn.Children) > data.SizeCount {
			p.write(" = ", p.expression(vn.Children[data.SizeCount], precAssignment))
		}
	}
	p.write(";")
}

func (p *SkSLPrinter) ifStatement(n *ast.Node) {
	if n.BoolValue() {
		p.write("@")
	}
	p.write("if (", p.expression(n.Children[0], precComma), ") ")
	if len(n.Children) < 3 {
		p.statement(n.Children[1])
		return
	}
	// An else would bind to an inner if that has none; brace the branch.
	if p.endsWithOpenIf(n.Children[1]) {
		p.write("{")
		p.indent++
		p.newline()
		p.statement(n.Children[1])
		p.indent--
		p.newline()
		p.write("}")
	} else {
		p.statement(n.Children[1])
	}
	p.write(" else ")
	p.statement(n.Children[2])
}

func (p *SkSLPrinter) endsWithOpenIf(id ast.ID) bool {
	n := p.node(id)
	switch n.Kind {
	case ast.KindIf:
		if len(n.Children) < 3 {
			return true
		}
		return p.endsWithOpenIf(n.Children[2])
	case ast.KindFor:
		return p.endsWithOpenIf(n.Children[3])
	case ast.KindWhile:
		return p.endsWithOpenIf(n.Children[1])
	}
	return false
}

func (p *SkSLPrinter) forStatement(n *ast.Node) {
	p.write("for (")
	if init := n.Children[0]; p.node(init).Kind == ast.KindEmpty {
		p.write(";")
	} else {
		p.statement(init)
	}
	if test := n.Children[1]; p.node(test).Kind != ast.KindEmpty {
		p.write(" ", p.expression(test, precComma))
	}
	p.write(";")
	if next := n.Children[2]; p.node(next).Kind != ast.KindEmpty {
		p.write(" ", p.expression(next, precComma))
	}
	p.write(") ")
	p.statement(n.Children[3])
}

func (p *SkSLPrinter) switchStatement(n *ast.Node) {
	if n.BoolValue() {
		p.write("@")
	}
	p.write("switch (", p.expression(n.Children[0], precComma), ") {")
	p.indent++
	for _, c := range n.Children[1:] {
		cn := p.node(c)
		p.newline()
		if value := cn.Children[0]; p.node(value).Kind == ast.KindEmpty {
			p.write("default:")
		} else {
			p.write("case ", p.expression(value, precComma), ":")
		}
		p.indent++
		for _, stmt := range cn.Children[1:] {
			p.newline()
			p.statement(stmt)
		}
		p.indent--
	}
	p.indent--
	p.newline()
	p.write("}")
}

// Binding strength of each expression form, loosest first.
const (
	precComma = iota + 1
	precAssignment
	precTernary
	precLogicalOr
	precLogicalXor
	precLogicalAnd
	precBitwiseOr
	precBitwiseXor
	precBitwiseAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
	precPrefix
	precPostfix
	precPrimary
)

var binaryPrecedence = map[lexer.Kind]int{
	lexer.Comma:      precComma,
	lexer.LogicalOr:  precLogicalOr,
	lexer.LogicalXor: precLogicalXor,
	lexer.LogicalAnd: precLogicalAnd,
	lexer.BitwiseOr:  precBitwiseOr,
	lexer.BitwiseXor: precBitwiseXor,
	lexer.BitwiseAnd: precBitwiseAnd,
	lexer.EqEq:       precEquality,
	lexer.Neq:        precEquality,
	lexer.Lt:         precRelational,
	lexer.Gt:         precRelational,
	lexer.LtEq:       precRelational,
	lexer.GtEq:       precRelational,
	lexer.Shl:        precShift,
	lexer.Shr:        precShift,
	lexer.Plus:       precAdditive,
	lexer.Minus:      precAdditive,
	lexer.Star:       precMultiplicative,
	lexer.Slash:      precMultiplicative,
	lexer.Percent:    precMultiplicative,
}

// expression renders id, parenthesized when it binds looser than minPrec.
func (p *SkSLPrinter) expression(id ast.ID, minPrec int) string {
	text, prec := p.expressionPrec(id)
	if prec < minPrec {
		return "(" + text + ")"
	}
	return text
}

func (p *SkSLPrinter) expressionPrec(id ast.ID) (string, int) {
	n := p.node(id)
	switch n.Kind {
	case ast.KindBinary:
		op := n.Operator()
		prec, ok := binaryPrecedence[op]
		if !ok {
			// Assignment is right-associative, and a ternary on its left
			// would swallow the operator.
			return p.expression(n.Children[0], precLogicalOr) + " " + op.String() + " " +
				p.expression(n.Children[1], precAssignment), precAssignment
		}
		left := p.expression(n.Children[0], prec)
		right := p.expression(n.Children[1], prec+1)
		if op == lexer.Comma {
			return left + ", " + right, prec
		}
		return left + " " + op.String() + " " + right, prec
	case ast.KindTernary:
		return p.expression(n.Children[0], precLogicalOr) + " ? " +
			p.expression(n.Children[1], precAssignment) + " : " +
			p.expression(n.Children[2], precAssignment), precTernary
	case ast.KindPrefix:
		op := n.Operator().String()
		operand := p.expression(n.Children[0], precPrefix)
		if (op == "-" || op == "+") && strings.HasPrefix(operand, op) {
			op += " "
		}
		return op + operand, precPrefix
	case ast.KindPostfix:
		return p.expression(n.Children[0], precPostfix) + n.Operator().String(), precPostfix
	case ast.KindCall:
		args := make([]string, 0, len(n.Children)-1)
		for _, arg := range n.Children[1:] {
			args = append(args, p.expression(arg, precAssignment))
		}
		return p.expression(n.Children[0], precPostfix) + "(" + strings.Join(args, ", ") + ")", precPostfix
	case ast.KindIndex:
		text := p.expression(n.Children[0], precPostfix) + "["
		if len(n.Children) > 1 {
			text += p.expression(n.Children[1], precComma)
		}
		return text + "]", precPostfix
	case ast.KindField:
		return p.expression(n.Children[0], precPostfix) + "." + n.Name(), precPostfix
	case ast.KindInt:
		return strconv.FormatInt(n.IntValue(), 10), precPrimary
	case ast.KindFloat:
		return formatFloat(n.FloatValue()), precPrimary
	case ast.KindBool:
		return strconv.FormatBool(n.BoolValue()), precPrimary
	case ast.KindNull:
		return "null", precPrimary
	}
	return n.Name(), precPrimary
}

// formatFloat keeps a '.' or exponent in the text so it lexes as a float.
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if strings.ContainsAny(s, ".eEIN") {
		return s
	}
	return s + ".0"
}
