package registry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	errs "github.com/duynguyendang/profile-registry/pkg/common/errors"
	"github.com/duynguyendang/profile-registry/pkg/jsonld"
	"github.com/google/uuid"
)

// GraphBuilder receives approved URIs. *knowledge.Assembler satisfies it.
type GraphBuilder interface {
	AddProfile(ctx context.Context, uri string) error
}

// Options tune ingestion.
type Options struct {
	// Extension of registry files, ".csv" by default.
	Extension string
	// Delimiter of registry files, ',' by default.
	Delimiter rune
}

// Result is everything a run produced.
type Result struct {
	Entries []*Entry
	Files   []string
	Report  *Report
}

// Pipeline runs ingestion, validation, classification, conformsTo
// resolution and graph assembly, in that order, on a single goroutine.
type Pipeline struct {
	fetcher  Fetcher
	contacts ContactValidator
	graph    GraphBuilder
	opts     Options
	logger   *slog.Logger
}

// NewPipeline creates a Pipeline. graph may be nil for a dry run.
func NewPipeline(f Fetcher, c ContactValidator, graph GraphBuilder, opts Options, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Extension == "" {
		opts.Extension = ".csv"
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	return &Pipeline{fetcher: f, contacts: c, graph: graph, opts: opts, logger: logger}
}

// Run processes every registry file under root. Only an unreadable root is
// fatal; unreadable files and rows are logged and skipped.
func (p *Pipeline) Run(ctx context.Context, root string) (*Result, error) {
	files, err := DiscoverCSV(root, p.opts.Extension)
	if err != nil {
		return nil, err
	}
	p.logger.Info("found registry files", "count", len(files), "root", root)

	var entries []*Entry
	var skipped []string
	for _, file := range files {
		fileEntries, bad, err := ReadEntries(file, p.opts.Delimiter)
		for _, b := range bad {
			p.logger.Warn("skipping malformed row", "error", b)
			skipped = append(skipped, b.Error())
		}
		if err != nil {
			p.logger.Warn("skipping registry file", "file", file, "error", err)
			skipped = append(skipped, err.Error())
		}
		entries = append(entries, fileEntries...)
	}

	res := p.Process(ctx, entries)
	res.Files = files
	res.Report.DataRoot = root
	res.Report.Files = files
	res.Report.Skipped = skipped
	return res, nil
}

// Process drives entries to terminal dispositions in input order.
func (p *Pipeline) Process(ctx context.Context, entries []*Entry) *Result {
	validator := NewValidator(p.fetcher, p.contacts, p.logger)
	conforms := NewConformsToResolver(p.fetcher, p.logger)

	var queued []*Entry
	for _, e := range entries {
		var ok bool
		p.guard(e, "check", func() { ok = validator.Check(ctx, e) })
		if ok {
			queued = append(queued, e)
		}
	}
	p.logger.Info("entries queued for classification", "queued", len(queued), "total", len(entries))

	for _, e := range queued {
		p.guard(e, "classify", func() { validator.Classify(ctx, e) })
	}
	conforms.ResolveAll(ctx, queued)

	for _, e := range entries {
		if !e.Terminal() {
			e.Fail(ReasonType, fmt.Errorf("%s: %w", e.URI, errs.ErrClassification))
		}
		if e.Disposition == Approved {
			p.guard(e, "assemble", func() { p.assemble(ctx, e) })
		}
	}

	return &Result{
		Entries: entries,
		Report:  BuildReport(uuid.NewString(), time.Now().UTC(), entries),
	}
}

func (p *Pipeline) assemble(ctx context.Context, e *Entry) {
	if doc, err := p.fetcher.FetchDocument(ctx, e.URI); err == nil {
		e.Metadata = jsonld.Metadata(doc)
	} else {
		p.logger.Warn("could not read profile metadata", "uri", e.URI, "error", err)
	}
	if p.graph == nil {
		return
	}
	if err := p.graph.AddProfile(ctx, e.URI); err != nil {
		p.logger.Error("could not merge profile into graph", "uri", e.URI, "error", err)
		e.GraphError = err.Error()
	}
}

// guard keeps a panic in one entry's step from aborting the batch.
func (p *Pipeline) guard(e *Entry, step string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%s %s: %w: panic: %v", step, e.URI, errs.ErrInternal, r)
			p.logger.Error("entry step failed", "step", step, "uri", e.URI, "error", err)
			if step == "assemble" {
				e.GraphError = err.Error()
				return
			}
			e.Fail(ReasonInvalidURI, err)
		}
	}()
	fn()
}
