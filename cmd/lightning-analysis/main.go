// Command lightning-analysis runs the exploratory analysis pipeline
// over a lightning strike CSV export: cleaning, time feature
// derivation, correlation, a linear model fit, and figure rendering.
//
// Usage:
//
//	lightning-analysis -input data/lightning_strikes.csv -out out
//
// The run report is written to stdout; cleaned data, analysis CSVs, and
// figures land in the output directory. Analysis behavior is configured
// through environment variables (TARGET_COLUMN, TEST_SIZE, RANDOM_SEED,
// TOP_CORRELATIONS, ONE_HOT_REGION, METRICS_TEXTFILE).
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/lightning-analysis/internal/config"
	"github.com/couchcryptid/lightning-analysis/internal/observability"
	"github.com/couchcryptid/lightning-analysis/internal/pipeline"
)

func main() {
	input := flag.String("input", "", "path to the lightning strike CSV export")
	out := flag.String("out", "out", "directory for cleaned data, analysis exports, and figures")
	skipPlots := flag.Bool("skip-plots", false, "skip rendering PNG figures")
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(cfg, logger, metrics)
	if err := p.Run(ctx, pipeline.Options{
		InputPath:   *input,
		OutDir:      *out,
		RenderPlots: !*skipPlots,
		Report:      os.Stdout,
	}); err != nil {
		logger.Error("analysis failed", "error", err)
		os.Exit(1)
	}
}
