// Package generator renders chart images from export files: one file at a
// time, as a parallel batch, or continuously from file-system events.
package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/gantt/internal/apperr"
	"github.com/starford/gantt/internal/catalog"
	"github.com/starford/gantt/internal/chart"
	"github.com/starford/gantt/internal/checksum"
	"github.com/starford/gantt/internal/models"
	"github.com/starford/gantt/internal/pipeline"
	"github.com/starford/gantt/internal/render"
	"github.com/starford/gantt/internal/source"
	"github.com/starford/gantt/internal/storage"
)

// ResultCallback is called after every file outcome, rendered or failed.
type ResultCallback func(rec models.ChartRecord)

// Generator wires the pipeline to storage, the renderer and the catalog.
type Generator struct {
	store      storage.Provider
	catalog    catalog.Catalog
	dispatcher *Dispatcher
	renderer   render.Renderer
	opts       chart.RenderOptions
	workers    int
	logger     *slog.Logger
	onResult   ResultCallback
	now        func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithWorkers bounds the number of files rendered concurrently by Batch.
func WithWorkers(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.workers = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// WithResultCallback registers cb for every file outcome.
func WithResultCallback(cb ResultCallback) Option {
	return func(g *Generator) { g.onResult = cb }
}

// New creates a Generator for the given profiles.
func New(store storage.Provider, cat catalog.Catalog, profiles []*Profile, opts chart.RenderOptions, options ...Option) (*Generator, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	r, err := render.New(opts.Format)
	if err != nil {
		return nil, err
	}
	g := &Generator{
		store:      store,
		catalog:    cat,
		dispatcher: NewDispatcher(profiles),
		renderer:   r,
		opts:       opts,
		workers:    4,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, o := range options {
		o(g)
	}
	return g, nil
}

// Dispatcher returns the profile dispatcher.
func (g *Generator) Dispatcher() *Dispatcher {
	return g.dispatcher
}

// Options returns the render options in effect.
func (g *Generator) Options() chart.RenderOptions {
	return g.opts
}

// Generate renders one export file and records the outcome in the catalog.
// Failures are returned as *apperr.RenderError and also recorded.
func (g *Generator) Generate(ctx context.Context, file string) (models.ChartRecord, error) {
	if err := ctx.Err(); err != nil {
		return models.ChartRecord{}, err
	}
	profile, err := g.dispatcher.Match(file)
	if err != nil {
		return models.ChartRecord{Source: file}, err
	}
	data, err := g.store.Read(file)
	if err != nil {
		return g.fail(models.ChartRecord{Source: file, Profile: profile.Name}, err)
	}
	return g.generate(profile, file, data)
}

func (g *Generator) generate(profile *Profile, file string, data []byte) (models.ChartRecord, error) {
	rec := models.ChartRecord{
		Source:   file,
		Profile:  profile.Name,
		Output:   OutputPath(profile, file, g.renderer.Extension()),
		Checksum: g.fingerprint(profile, data),
	}
	log := g.logger.With(slog.String("source", file), slog.String("profile", profile.Name))

	table, err := source.Decode(file, data)
	if err != nil {
		return g.fail(rec, err)
	}

	report, err := pipeline.Run(table, profile.Config)
	rec.Rows = table.Len()
	rec.Dropped = report.Dropped(table)
	for _, f := range report.DateFailures {
		log.Debug("row dropped: unparseable date",
			slog.Int("row", f.Row), slog.String("field", f.Field), slog.String("value", f.Value))
	}
	if n := len(report.DateFailures); n > 0 {
		log.Info("rows dropped", slog.Int("count", n))
		rec.Warnings = append(rec.Warnings, fmt.Sprintf("%d rows dropped: unparseable date", n))
	}
	for _, fe := range report.FilterErrors {
		log.Warn("filter skipped", slog.String("error", fe.Error()))
		rec.Warnings = append(rec.Warnings, fe.Error())
	}
	if err != nil {
		return g.fail(rec, err)
	}

	c, err := chart.Assemble(table, profile.Config, g.opts)
	if err != nil {
		return g.fail(rec, err)
	}

	var buf bytes.Buffer
	if err := g.renderer.Render(&buf, c); err != nil {
		return g.fail(rec, err)
	}
	if err := g.store.Write(rec.Output, buf.Bytes()); err != nil {
		return g.fail(rec, err)
	}

	rec.Status = models.StatusRendered
	rec.RenderedAt = g.now().UTC()
	g.record(rec)
	log.Info("chart rendered", slog.String("output", rec.Output), slog.Int("rows", rec.Rows))
	return rec, nil
}

func (g *Generator) fail(rec models.ChartRecord, err error) (models.ChartRecord, error) {
	renderErr := &apperr.RenderError{Source: rec.Source, Err: err}
	rec.Status = models.StatusFailed
	rec.Error = err.Error()
	rec.RenderedAt = g.now().UTC()
	g.record(rec)
	g.logger.Error("chart failed", slog.String("source", rec.Source), slog.String("error", err.Error()))
	return rec, renderErr
}

func (g *Generator) record(rec models.ChartRecord) {
	if g.catalog != nil {
		if err := g.catalog.UpsertChart(rec); err != nil {
			g.logger.Warn("catalog: record failed", slog.String("source", rec.Source), slog.String("error", err.Error()))
		}
	}
	if g.onResult != nil {
		g.onResult(rec)
	}
}

// fingerprint identifies an input together with everything that shapes its chart.
func (g *Generator) fingerprint(p *Profile, data []byte) string {
	return checksum.Fingerprint(data, []byte(p.Checksum), []byte(fmt.Sprintf("%+v", g.opts)))
}

// BatchOptions controls a Batch run.
type BatchOptions struct {
	// Force re-renders files whose fingerprint is unchanged.
	Force bool
	// Only restricts the run to these workspace-relative files.
	Only []string
}

// Summary reports a Batch run.
type Summary struct {
	Rendered  int
	Skipped   int
	Failed    int
	Unmatched int
	Removed   int
	Results   []models.ChartRecord
}

// Total returns the number of files that were attempted.
func (s Summary) Total() int {
	return s.Rendered + s.Failed
}

// Batch renders every export under the profiles' CSV directories in
// parallel. A failing file never stops its siblings; the returned error is
// non-nil only when the file listing itself fails or ctx is cancelled.
func (g *Generator) Batch(ctx context.Context, opts BatchOptions) (Summary, error) {
	var files []models.FileMetadata
	for _, dir := range g.dispatcher.Dirs() {
		metas, err := g.store.List(dir, source.Extensions...)
		if err != nil {
			return Summary{}, err
		}
		files = append(files, metas...)
	}
	files = dedupe(files)

	only := make(map[string]struct{}, len(opts.Only))
	for _, f := range opts.Only {
		only[cleanDir(f)] = struct{}{}
	}

	known := map[string]string{}
	if g.catalog != nil {
		var err error
		if known, err = g.catalog.AllChecksums(); err != nil {
			return Summary{}, err
		}
	}

	var (
		summary Summary
		results = make([]*models.ChartRecord, len(files))
		skipped = make([]bool, len(files))
	)
	onDisk := make(map[string]struct{}, len(files))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for i, meta := range files {
		onDisk[meta.Path] = struct{}{}
		if len(only) > 0 {
			if _, ok := only[meta.Path]; !ok {
				skipped[i] = true
				continue
			}
		}
		profile, err := g.dispatcher.Match(meta.Path)
		if err != nil {
			g.logger.Info("no profile for file", slog.String("source", meta.Path))
			summary.Unmatched++
			continue
		}

		eg.Go(func() error {
			if egCtx.Err() != nil {
				return egCtx.Err()
			}
			data, err := g.store.Read(meta.Path)
			if err != nil {
				rec, _ := g.fail(models.ChartRecord{Source: meta.Path, Profile: profile.Name}, err)
				results[i] = &rec
				return nil
			}
			if !opts.Force && known[meta.Path] == g.fingerprint(profile, data) {
				g.logger.Debug("unchanged, skipping", slog.String("source", meta.Path))
				skipped[i] = true
				return nil
			}
			rec, _ := g.generate(profile, meta.Path, data)
			results[i] = &rec
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return summary, err
	}

	for i, rec := range results {
		switch {
		case skipped[i]:
			summary.Skipped++
		case rec == nil:
		case rec.Status == models.StatusRendered:
			summary.Rendered++
			summary.Results = append(summary.Results, *rec)
		default:
			summary.Failed++
			summary.Results = append(summary.Results, *rec)
		}
	}

	if len(only) == 0 {
		summary.Removed = g.removeStale(onDisk)
	}

	g.logger.Info("batch finished",
		slog.Int("rendered", summary.Rendered),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", summary.Failed),
		slog.Int("unmatched", summary.Unmatched),
		slog.Int("removed", summary.Removed))
	return summary, nil
}

// Remove deletes the chart of a source file that no longer exists.
func (g *Generator) Remove(file string) error {
	file = cleanDir(file)
	var output string
	if g.catalog != nil {
		rec, err := g.catalog.GetChart(file)
		if err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		if rec != nil {
			output = rec.Output
		}
		if err := g.catalog.DeleteChart(file); err != nil {
			return err
		}
	}
	if output == "" {
		if p, err := g.dispatcher.Match(file); err == nil {
			output = OutputPath(p, file, g.renderer.Extension())
		}
	}
	if output != "" {
		if err := g.store.Delete(output); err != nil {
			g.logger.Debug("remove output", slog.String("output", output), slog.String("error", err.Error()))
		}
	}
	g.logger.Info("chart removed", slog.String("source", file))
	return nil
}

// removeStale drops catalog entries and images of sources no longer on disk.
func (g *Generator) removeStale(onDisk map[string]struct{}) int {
	if g.catalog == nil {
		return 0
	}
	records, _, err := g.catalog.ListCharts("", "", 0, 0)
	if err != nil {
		g.logger.Warn("list charts failed", slog.String("error", err.Error()))
		return 0
	}
	removed := 0
	for _, rec := range records {
		if _, ok := onDisk[rec.Source]; ok {
			continue
		}
		if err := g.Remove(rec.Source); err != nil {
			g.logger.Warn("remove stale failed", slog.String("source", rec.Source), slog.String("error", err.Error()))
			continue
		}
		removed++
	}
	return removed
}

func dedupe(files []models.FileMetadata) []models.FileMetadata {
	seen := make(map[string]struct{}, len(files))
	out := files[:0]
	for _, f := range files {
		if _, ok := seen[f.Path]; ok {
			continue
		}
		seen[f.Path] = struct{}{}
		out = append(out, f)
	}
	return out
}
