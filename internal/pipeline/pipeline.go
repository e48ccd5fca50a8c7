// Package pipeline orchestrates a complete analysis run: load, clean,
// derive, analyze, and export.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/lightning-analysis/internal/analyze"
	"github.com/couchcryptid/lightning-analysis/internal/clean"
	"github.com/couchcryptid/lightning-analysis/internal/config"
	"github.com/couchcryptid/lightning-analysis/internal/dataset"
	"github.com/couchcryptid/lightning-analysis/internal/figures"
	"github.com/couchcryptid/lightning-analysis/internal/observability"
	"github.com/couchcryptid/lightning-analysis/internal/report"
)

// File names written into the output directory.
const (
	CleanCSV        = "lightning_strikes_clean.csv"
	CorrelationCSV  = "correlation_matrix.csv"
	CoefficientsCSV = "regression_coefficients.csv"
	FiguresDir      = "figures"
)

// Options control a single run.
type Options struct {
	InputPath   string
	OutDir      string
	RenderPlots bool

	// Report receives the human-readable run report. Defaults to
	// io.Discard when nil.
	Report io.Writer
}

// Pipeline wires the analysis stages together with logging and metrics.
type Pipeline struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Pipeline with the given configuration and observability.
func New(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
	}
}

// Run executes one end-to-end analysis over the input CSV. A failed
// regression fit is reported and logged but does not fail the run.
func (p *Pipeline) Run(ctx context.Context, opts Options) error {
	if opts.InputPath == "" {
		return errors.New("input path is required")
	}
	if opts.OutDir == "" {
		return errors.New("output directory is required")
	}
	out := opts.Report
	if out == nil {
		out = io.Discard
	}

	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID)
	started := time.Now()

	logger.Info("analysis started", "input", opts.InputPath, "out_dir", opts.OutDir)
	report.Header(out, runID, started)

	raw, err := p.loadStage(logger, opts.InputPath)
	if err != nil {
		return err
	}
	report.Overview(out, "Raw data", raw)
	report.Uniques(out, raw, dataset.FieldRegion, dataset.FieldStatus)
	report.TimeRange(out, raw)

	if err := ctx.Err(); err != nil {
		return err
	}

	cleaned, rep := p.cleanStage(logger, raw)
	report.CleaningSummary(out, rep)

	if err := ctx.Err(); err != nil {
		return err
	}

	derived := p.deriveStage(logger, cleaned)
	report.Overview(out, "Cleaned data", derived)
	report.Uniques(out, derived, dataset.FieldYear, dataset.FieldMonth)

	if err := dataset.WriteCSV(filepath.Join(opts.OutDir, CleanCSV), derived); err != nil {
		return fmt.Errorf("export cleaned data: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	m, top := p.correlateStage(logger, derived)
	report.CorrelationSection(out, m, p.cfg.TargetColumn, top)
	if err := report.WriteCorrelationCSV(filepath.Join(opts.OutDir, CorrelationCSV), m); err != nil {
		return fmt.Errorf("export correlation matrix: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	res := p.regressStage(logger, derived)
	report.RegressionReport(out, res)
	if res.OK {
		if err := report.WriteCoefficientsCSV(filepath.Join(opts.OutDir, CoefficientsCSV), res); err != nil {
			return fmt.Errorf("export coefficients: %w", err)
		}
	}

	if opts.RenderPlots {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.renderStage(logger, derived, m, filepath.Join(opts.OutDir, FiguresDir)); err != nil {
			return err
		}
	}

	if p.cfg.MetricsTextfile != "" {
		if err := observability.WriteTextfile(p.cfg.MetricsTextfile, p.metrics.Gatherer); err != nil {
			return err
		}
		logger.Info("metrics textfile written", "path", p.cfg.MetricsTextfile)
	}

	logger.Info("analysis finished",
		"duration", time.Since(started).Round(time.Millisecond).String(),
		"rows_out", derived.NumRows(),
	)
	return nil
}

func (p *Pipeline) loadStage(logger *slog.Logger, path string) (dataset.Table, error) {
	defer p.timeStage("load")()

	t, stats, err := dataset.Load(path)
	if err != nil {
		return dataset.Table{}, fmt.Errorf("load input: %w", err)
	}

	p.metrics.RowsLoaded.Add(float64(stats.RowsRead))
	malformed := 0
	for f, n := range stats.Malformed {
		p.metrics.MalformedCells.WithLabelValues(string(f)).Add(float64(n))
		malformed += n
	}

	logger.Info("dataset loaded",
		"rows", stats.RowsRead,
		"columns", len(t.Schema),
		"malformed_cells", malformed,
		"short_rows", stats.ShortRows,
	)
	return t, nil
}

func (p *Pipeline) cleanStage(logger *slog.Logger, t dataset.Table) (dataset.Table, clean.Report) {
	defer p.timeStage("clean")()

	cleaned, rep := clean.Clean(t)

	p.metrics.RowsCleaned.Add(float64(rep.RowsOut))
	p.metrics.RowsDropped.WithLabelValues("missing_key").Add(float64(rep.DroppedMissingKey))
	p.metrics.RowsDropped.WithLabelValues("out_of_range").Add(float64(rep.DroppedOutOfRange))
	p.metrics.RowsDropped.WithLabelValues("negative_magnitude").Add(float64(rep.DroppedNegative))
	p.metrics.RowsDropped.WithLabelValues("duplicate").Add(float64(rep.DuplicatesRemoved))
	for f, n := range rep.Imputed {
		p.metrics.ValuesImputed.WithLabelValues(string(f)).Add(float64(n))
	}

	logger.Info("dataset cleaned",
		"rows_in", rep.RowsIn,
		"rows_out", rep.RowsOut,
		"duplicates_removed", rep.DuplicatesRemoved,
	)
	return cleaned, rep
}

func (p *Pipeline) deriveStage(logger *slog.Logger, t dataset.Table) dataset.Table {
	defer p.timeStage("derive")()

	derived := clean.AddTimeFeatures(t)
	logger.Info("time features derived", "columns", len(derived.Schema))
	return derived
}

func (p *Pipeline) correlateStage(logger *slog.Logger, t dataset.Table) (analyze.Matrix, []analyze.Correlation) {
	defer p.timeStage("correlate")()

	m := analyze.CorrelationMatrix(t)
	top := analyze.TopCorrelations(m, p.cfg.TargetColumn, p.cfg.TopCorrelations)
	logger.Info("correlation computed", "fields", len(m.Fields))
	return m, top
}

func (p *Pipeline) regressStage(logger *slog.Logger, t dataset.Table) analyze.Result {
	defer p.timeStage("regress")()

	cfg := analyze.DefaultConfig()
	cfg.Target = p.cfg.TargetColumn
	cfg.TestSize = p.cfg.TestSize
	cfg.Seed = p.cfg.RandomSeed
	cfg.OneHotRegion = p.cfg.OneHotRegion

	res := analyze.FitLinearModel(t, cfg)
	if !res.OK {
		p.metrics.ModelFitted.Set(0)
		logger.Warn("regression skipped", "reason", res.Reason)
		return res
	}

	p.metrics.ModelFitted.Set(1)
	p.metrics.ModelMAE.Set(res.MAE)
	p.metrics.ModelRMSE.Set(res.RMSE)
	p.metrics.ModelR2.Set(res.R2)
	logger.Info("regression fitted",
		"target", res.Target,
		"rows", res.NRows,
		"mae", res.MAE,
		"rmse", res.RMSE,
		"r2", res.R2,
	)
	return res
}

func (p *Pipeline) renderStage(logger *slog.Logger, t dataset.Table, m analyze.Matrix, dir string) error {
	defer p.timeStage("render")()

	written, err := figures.RenderAll(t, m, dir)
	if err != nil {
		return fmt.Errorf("render figures: %w", err)
	}
	logger.Info("figures rendered", "count", len(written))
	return nil
}

func (p *Pipeline) timeStage(stage string) func() {
	start := time.Now()
	return func() {
		p.metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	}
}
