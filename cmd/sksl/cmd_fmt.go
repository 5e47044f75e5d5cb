package main

import (
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/dhamidi/sksl/format"
)

func newFmtCmd(st *state) *cobra.Command {
	var fmtOverwrite bool

	cmd := &cobra.Command{
		Use:   "fmt [file]",
		Short: "Print an SkSL file in canonical form",
		Long: `Print an SkSL file to stdout in canonical form.

If no file is provided, reads SkSL source from stdin. Files with syntax
errors are not formatted; their diagnostics are printed instead.
Comments and precision statements are not preserved.

Use -w to overwrite the file in place (requires a file argument).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "-"
			if len(args) == 1 {
				name = args[0]
			}
			if fmtOverwrite && name == "-" {
				return fmt.Errorf("-w requires a file argument")
			}

			file, errs, err := st.parse(name)
			if err != nil {
				return err
			}
			if err := st.reportDiagnostics(errs); err != nil {
				return err
			}

			output := format.PrintSource(file)
			if fmtOverwrite {
				return afero.WriteFile(st.fs, name, []byte(output), 0o644)
			}
			_, err = io.WriteString(st.stdout, output)
			return err
		},
	}

	cmd.Flags().BoolVarP(&fmtOverwrite, "write", "w", false, "overwrite the file in place")

	return cmd
}
