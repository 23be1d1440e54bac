package cli

import (
	"github.com/duynguyendang/profile-registry/pkg/server"
	"github.com/spf13/cobra"
)

var addr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a finished build over a read-only REST API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.Server.Addr = addr
		}
		logger, _ := newLogger(cfg, cmd.ErrOrStderr())

		b, err := loadBuild(cfg, logger)
		if err != nil {
			return err
		}
		defer b.close()

		logger.Info("starting REST API server", "addr", cfg.Server.Addr, "build", cfg.BuildDir)
		return server.NewServer(b.graph, b.report, b.index).Run(cfg.Server.Addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8080, or :$PORT)")
	rootCmd.AddCommand(serveCmd)
}
