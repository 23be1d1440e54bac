package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/duynguyendang/profile-registry/internal/config"
	"github.com/duynguyendang/profile-registry/internal/logging"
	"github.com/duynguyendang/profile-registry/pkg/export"
	"github.com/duynguyendang/profile-registry/pkg/knowledge"
	"github.com/duynguyendang/profile-registry/pkg/registry"
	"github.com/duynguyendang/profile-registry/pkg/resolver"
	"github.com/duynguyendang/profile-registry/pkg/triplestore"
)

// newLogger returns a logger writing to w whose WARN and ERROR records are
// also kept by the returned Recorder for warnings.txt.
func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, *logging.Recorder) {
	base := logging.New(w, cfg.Log.Level, cfg.Log.Format)
	recorder := logging.NewRecorder(base.Handler(), slog.LevelWarn)
	return slog.New(recorder), recorder
}

func newResolver(cfg *config.Config, logger *slog.Logger) *resolver.Resolver {
	return resolver.New(
		resolver.WithDelay(cfg.Resolver.Delay),
		resolver.WithTimeout(cfg.Resolver.Timeout),
		resolver.WithCacheSize(cfg.Resolver.CacheSize),
		resolver.WithUserAgent(cfg.Resolver.UserAgent),
		resolver.WithMaxBodyBytes(cfg.Resolver.MaxBodyBytes),
		resolver.WithLogger(logger),
	)
}

// openGraph opens the triple store (on disk when graph.store_dir is set) and
// bootstraps the registry graph in it. res may be nil for a read-only graph.
func openGraph(cfg *config.Config, storeDir string, res *resolver.Resolver, logger *slog.Logger) (*knowledge.Assembler, func() error, error) {
	storeCfg := triplestore.DefaultConfig()
	if storeDir != "" {
		storeCfg = triplestore.DiskConfig(storeDir)
	}
	store, err := triplestore.Open(storeCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open triple store: %w", err)
	}
	graph, err := knowledge.New(store, res, knowledge.WithRoot(cfg.Graph.Root), knowledge.WithLogger(logger))
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return graph, store.Close, nil
}

func pipelineOptions(cfg *config.Config) registry.Options {
	return registry.Options{Extension: cfg.Extension, Delimiter: cfg.DelimiterRune()}
}

// build is the outcome of a loaded build folder.
type build struct {
	graph  *knowledge.Assembler
	report *registry.Report
	index  []byte
	close  func() error
}

// loadBuild reads registry.ttl, report.json and index.html from the build
// folder into an in-memory graph. A missing report or index is tolerated;
// a missing graph is not.
func loadBuild(cfg *config.Config, logger *slog.Logger) (*build, error) {
	ttl, err := os.Open(filepath.Join(cfg.BuildDir, export.FileTurtle))
	if err != nil {
		return nil, fmt.Errorf("open build graph (run build first): %w", err)
	}
	defer ttl.Close()

	graph, closeStore, err := openGraph(cfg, "", nil, logger)
	if err != nil {
		return nil, err
	}
	n, err := graph.LoadTurtle(ttl)
	if err != nil {
		closeStore()
		return nil, err
	}
	logger.Info("loaded registry graph", "triples", n, "dir", cfg.BuildDir)

	b := &build{graph: graph, close: closeStore}

	data, err := os.ReadFile(filepath.Join(cfg.BuildDir, export.FileReport))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Warn("build has no report", "dir", cfg.BuildDir)
	case err != nil:
		closeStore()
		return nil, err
	default:
		var report registry.Report
		if err := json.Unmarshal(data, &report); err != nil {
			closeStore()
			return nil, fmt.Errorf("parse %s: %w", export.FileReport, err)
		}
		b.report = &report
	}

	index, err := os.ReadFile(filepath.Join(cfg.BuildDir, export.FileIndex))
	if err == nil {
		b.index = index
	}
	return b, nil
}
