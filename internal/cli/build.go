package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/duynguyendang/profile-registry/internal/config"
	"github.com/duynguyendang/profile-registry/pkg/contact"
	"github.com/duynguyendang/profile-registry/pkg/export"
	"github.com/duynguyendang/profile-registry/pkg/registry"
	"github.com/duynguyendang/profile-registry/pkg/render"
	"github.com/spf13/cobra"
)

var (
	reportYAML bool
	storeDir   string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Validate the registry and write the build folder",
	Long: `Validate every registry row, resolve conformsTo links, merge approved
profiles into the registry graph and write registry.ttl, registry.jsonld,
registry.rdf, report.json, warnings.txt, graph.json and index.html.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("yaml") {
			cfg.Report.YAML = reportYAML
		}
		if cmd.Flags().Changed("store") {
			cfg.Graph.StoreDir = storeDir
		}
		report, err := runBuild(cmd.Context(), cfg, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), renderSummary("Registry build", report))
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", mutedStyle.Render("written to "+cfg.BuildDir))
		return nil
	},
}

func init() {
	buildCmd.Flags().BoolVar(&reportYAML, "yaml", false, "also write report.yaml")
	buildCmd.Flags().StringVar(&storeDir, "store", "", "keep the triple store on disk in this folder")
	rootCmd.AddCommand(buildCmd)
}

// runBuild runs the full pipeline and writes every artifact. Only an
// unreadable data root or an unwritable build folder fails the build.
func runBuild(ctx context.Context, cfg *config.Config, logOut io.Writer) (*registry.Report, error) {
	logger, recorder := newLogger(cfg, logOut)
	res := newResolver(cfg, logger)

	graph, closeStore, err := openGraph(cfg, cfg.Graph.StoreDir, res, logger)
	if err != nil {
		return nil, err
	}
	defer closeStore()

	pipeline := registry.NewPipeline(res, contact.New(), graph, pipelineOptions(cfg), logger)
	result, err := pipeline.Run(ctx, cfg.DataRoot)
	if err != nil {
		return nil, err
	}
	logger.Info("pipeline finished",
		"approved", result.Report.Counts.Approved,
		"warnings", result.Report.Counts.Warnings,
		"errors", result.Report.Counts.Errors,
		"requests", res.Requests())

	renderer, err := render.New()
	if err != nil {
		return nil, err
	}
	w := export.NewWriter(cfg.BuildDir, renderer,
		export.WithSite(export.Site{Title: cfg.Site.Title, Description: cfg.Site.Description, Theme: cfg.Site.Theme}),
		export.WithReportYAML(cfg.Report.YAML),
		export.WithWriterLogger(logger),
	)
	if err := w.Write(graph, result.Report, recorder.Lines()); err != nil {
		return result.Report, fmt.Errorf("write build folder: %w", err)
	}
	return result.Report, nil
}
