package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/sksl/sksl/ast"
)

// LineEncoder writes the outline of a file as tab-separated lines, one per
// symbol. Members follow their declaration and are indented with a tab.
type LineEncoder struct {
	w    io.Writer
	file *ast.File
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(file *ast.File) error {
	e.file = file
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	for _, s := range Outline(e.file) {
		e.writeSymbol(&sb, s, "")
	}
	return []byte(sb.String()), nil
}

func (e *LineEncoder) writeSymbol(sb *strings.Builder, s Symbol, indent string) {
	switch s.Kind {
	case "function":
		fmt.Fprintf(sb, "%s%s\t%s\t%s\t%s\t%s\n", indent, s.Kind, s.Name, s.Type, e.parametersStr(s.Parameters), s.Modifiers)
	case "modifiers":
		fmt.Fprintf(sb, "%s%s\t%s\n", indent, s.Kind, s.Modifiers)
	default:
		fields := []string{s.Kind, s.Name}
		if s.Type != "" || s.Modifiers != "" {
			fields = append(fields, s.Type)
		}
		if s.Modifiers != "" {
			fields = append(fields, s.Modifiers)
		}
		fmt.Fprintf(sb, "%s%s\n", indent, strings.Join(fields, "\t"))
	}
	for _, child := range s.Children {
		e.writeSymbol(sb, child, indent+"\t")
	}
}

func (e *LineEncoder) parametersStr(params []Parameter) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = strings.TrimSpace(p.Modifiers + " " + p.Type + " " + p.Name)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
