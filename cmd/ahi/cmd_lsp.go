package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/cmparse/lsp"
	"github.com/dhamidi/cmparse/workspace"
)

func newLSPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		RunE: func(cmd *cobra.Command, args []string) error {
			server := lsp.NewServer(workspace.New(cfg), version)
			return server.RunStdio()
		},
	}
}
