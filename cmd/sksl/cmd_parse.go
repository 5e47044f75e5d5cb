package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/dhamidi/sksl/format"
	"github.com/dhamidi/sksl/sksl/ast"
	"github.com/dhamidi/sksl/sksl/diag"
	"github.com/dhamidi/sksl/sksl/parser"
)

func newParseCmd(st *state) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse an SkSL file and dump the result",
		Long: `Parse an SkSL file and write the result to stdout.

Formats: ` + strings.Join(format.Names(), ", ") + `.
Use - to read from stdin. Diagnostics are written to stderr; the tree is
written even when the source has errors.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			encoder, err := format.NewEncoder(outputFormat, st.stdout)
			if err != nil {
				return err
			}
			file, errs, err := st.parse(args[0])
			if err != nil {
				return err
			}
			if err := encoder.Encode(file); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			if outputFormat == "ast" || outputFormat == "json" {
				fmt.Fprintln(st.stdout)
			}
			return st.reportDiagnostics(errs)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "ast", "output format ("+strings.Join(format.Names(), ", ")+")")

	return cmd
}

// readSource reads name, or stdin when name is "-".
func (st *state) readSource(name string) ([]byte, error) {
	if name == "-" {
		data, err := io.ReadAll(st.stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := afero.ReadFile(st.fs, name)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

func (st *state) parse(name string) (*ast.File, *diag.List, error) {
	src, err := st.readSource(name)
	if err != nil {
		return nil, nil, err
	}
	if name == "-" {
		name = "<stdin>"
	}
	file, errs := parser.ParseFile(name, src, st.conf.ParserOptions()...)
	return file, errs, nil
}

// reportDiagnostics prints errs to stderr and returns errDiagnostics when
// there were any.
func (st *state) reportDiagnostics(errs *diag.List) error {
	if errs.ErrorCount() == 0 {
		return nil
	}
	pos := st.colorize(color.New(color.Bold))
	label := st.colorize(color.New(color.FgRed, color.Bold))
	code := st.colorize(color.New(color.Faint))
	for _, d := range errs.Diagnostics() {
		fmt.Fprintf(st.stderr, "%s: %s %s %s\n",
			pos.Sprint(errs.Position(d)),
			label.Sprint("error:"),
			d.Message,
			code.Sprintf("[%s]", d.Code))
	}
	return errDiagnostics
}
