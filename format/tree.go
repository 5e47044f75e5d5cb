package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/sksl/sksl/ast"
	"github.com/dhamidi/sksl/sksl/diag"
)

// TreeEncoder writes one line per node, indented by depth:
//
//	File 1:1
//	  VarDeclarations 1:5
//	    Modifiers 1:5
//	    Type int 1:1
//	    VarDeclaration x 1:5
type TreeEncoder struct {
	w io.Writer
}

func NewTreeEncoder(w io.Writer) *TreeEncoder {
	return &TreeEncoder{w: w}
}

func (e *TreeEncoder) Encode(file *ast.File) error {
	text, err := e.MarshalText(file)
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *TreeEncoder) MarshalText(file *ast.File) ([]byte, error) {
	var sb strings.Builder
	lines := diag.NewLineIndex(file.Name, file.Source)
	file.Arena.Walk(file.Root, func(id ast.ID, n *ast.Node, depth int) bool {
		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString(n.Kind.String())
		if label := n.Label(); label != "" {
			fmt.Fprintf(&sb, " %s", label)
		}
		pos := lines.Position(n.Offset)
		fmt.Fprintf(&sb, " %d:%d\n", pos.Line, pos.Column)
		return true
	})
	return []byte(sb.String()), nil
}
