package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/oxhq/typecore/mcp"
)

func serveMCPCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve-mcp",
		Short: "Serve the query surface (resolve/hover/completions/analyze_project/search_types) as an MCP stdio server",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := buildEnv(flags.platformArchive, flags.configArchive)
			if err != nil {
				return err
			}
			srv := mcp.NewServer(e.svc, e.log)
			return srv.Serve(os.Stdin, os.Stdout)
		},
	}
	return cmd
}
