// Package cli wires the registry commands: build, validate, serve, mcp and
// version.
package cli

import (
	"context"

	"github.com/duynguyendang/profile-registry/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at link time with -ldflags "-X .../internal/cli.Version=...".
var Version = "0.1.0"

var (
	cfgFile   string
	dataRoot  string
	buildDir  string
	graphRoot string
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "registry",
	Short: "Validate a registry of RO-Crate profiles and build its knowledge graph",
	Long: `registry reads CSV files of submitted profile and crate URIs, validates
every row over HTTP, resolves conformsTo links, and writes the registry
graph, a classification report and an HTML listing to the build folder.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "YAML config file")
	flags.StringVar(&dataRoot, "data", "", "folder of registry CSV files (default: data)")
	flags.StringVar(&buildDir, "build", "", "build output folder (default: build)")
	flags.StringVar(&graphRoot, "root", "", "IRI of the registry root node (default: ./)")
	flags.StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	flags.StringVar(&logFormat, "log-format", "", "text or json")
}

// loadConfig reads .env, the config file and the environment, then applies
// the flags the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	_ = godotenv.Load()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	override := func(name string, dst *string, v string) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	override("data", &cfg.DataRoot, dataRoot)
	override("build", &cfg.BuildDir, buildDir)
	override("root", &cfg.Graph.Root, graphRoot)
	override("log-level", &cfg.Log.Level, logLevel)
	override("log-format", &cfg.Log.Format, logFormat)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
