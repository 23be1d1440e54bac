package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/duynguyendang/profile-registry/internal/config"
	"github.com/duynguyendang/profile-registry/pkg/contact"
	"github.com/duynguyendang/profile-registry/pkg/registry"
	"github.com/spf13/cobra"
)

var jsonOut bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Dry run: validate the registry without building the graph",
	Long: `Run ingestion, validation, classification and conformsTo resolution and
print the classification report. No graph is assembled and no file is written.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		report, err := runValidate(cmd.Context(), cfg, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		if jsonOut {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		fmt.Fprint(cmd.OutOrStdout(), renderSummary("Registry validation (dry run)", report))
		return nil
	},
}

func init() {
	validateCmd.Flags().BoolVar(&jsonOut, "json", false, "print the report as JSON")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(ctx context.Context, cfg *config.Config, logOut io.Writer) (*registry.Report, error) {
	logger, _ := newLogger(cfg, logOut)
	res := newResolver(cfg, logger)

	result, err := registry.NewPipeline(res, contact.New(), nil, pipelineOptions(cfg), logger).Run(ctx, cfg.DataRoot)
	if err != nil {
		return nil, err
	}
	return result.Report, nil
}
