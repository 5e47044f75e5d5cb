package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/dhamidi/sksl/sksl/workspace"
)

func newCheckCmd(st *state) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "check [path...]",
		Short: "Report syntax errors in SkSL files",
		Long: `Parse every given file, and every SkSL file below the given
directories, and report their diagnostics. Files are parsed concurrently.
Without arguments the current directory is checked.

The exit status is non-zero when any file has errors.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			paths, err := st.expandPaths(args)
			if err != nil {
				return err
			}

			ws := workspace.New(st.fs, ".", st.conf)
			if err := ws.ScanPaths(checkContext(cmd), paths); err != nil {
				return err
			}

			failed := 0
			for _, path := range ws.Paths() {
				f := ws.GetFile(path)
				if f.ErrorCount() == 0 {
					continue
				}
				failed++
				st.reportDiagnostics(f.Diagnostics)
			}

			if !quiet {
				summary := st.colorize(color.New(color.FgGreen))
				if failed > 0 {
					summary = st.colorize(color.New(color.FgRed))
				}
				summary.Fprintf(st.stdout, "%d files checked, %d errors in %d files\n", len(paths), ws.ErrorCount(), failed)
			}
			if failed > 0 {
				return errDiagnostics
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print diagnostics only, without the summary line")

	return cmd
}

// expandPaths replaces directories with the SkSL files below them.
func (st *state) expandPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := st.fs.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("check %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		err = afero.Walk(st.fs, arg, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && st.conf.HasExtension(path) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return paths, nil
}

// checkContext falls back to the background context when RunE is called
// without Execute.
func checkContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
