package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dhamidi/sksl/sksl/diag"
	"github.com/dhamidi/sksl/sksl/lexer"
)

func newTokensCmd(st *state) *cobra.Command {
	var includeTrivia bool

	cmd := &cobra.Command{
		Use:   "tokens <file>",
		Short: "Print the tokens of an SkSL file, one per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := st.readSource(args[0])
			if err != nil {
				return err
			}
			lines := diag.NewLineIndex("", src)
			lx := lexer.New(src)
			for {
				tok := lx.Next()
				if tok.Kind.IsTrivia() && !includeTrivia {
					continue
				}
				pos := lines.Position(int(tok.Offset))
				fmt.Fprintf(st.stdout, "%d:%d\t%s\t%s\n", pos.Line, pos.Column, tok.Kind, strconv.Quote(tok.Text(src)))
				if tok.Kind == lexer.EOF {
					return nil
				}
			}
		},
	}

	cmd.Flags().BoolVar(&includeTrivia, "trivia", false, "include whitespace and comments")

	return cmd
}
