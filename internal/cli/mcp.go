package cli

import (
	"os"

	"github.com/duynguyendang/profile-registry/pkg/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve a finished build to MCP clients on stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		// stdout carries the protocol; logs go to stderr.
		logger, _ := newLogger(cfg, os.Stderr)

		b, err := loadBuild(cfg, logger)
		if err != nil {
			return err
		}
		defer b.close()

		return mcp.Run(cmd.Context(), b.graph, b.report, Version)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
