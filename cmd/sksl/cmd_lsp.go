package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/sksl/sksl/workspace"
)

func newLSPCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		RunE: func(cmd *cobra.Command, args []string) error {
			server := workspace.NewLSPServer(st.fs, st.conf, version)
			return server.RunStdio()
		},
	}
}
