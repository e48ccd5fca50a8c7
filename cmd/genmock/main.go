// Command genmock generates a synthetic lightning strike CSV carrying
// every defect the cleaner handles: out-of-range coordinates, negative
// magnitudes, missing and malformed cells, non-finite literals, and
// duplicate rows. It then runs the actual analysis stages over the
// fixture and prints the resulting counts.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/lightning_strikes.csv -rows 500
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/lightning-analysis/internal/analyze"
	"github.com/couchcryptid/lightning-analysis/internal/clean"
	"github.com/couchcryptid/lightning-analysis/internal/dataset"
	"github.com/couchcryptid/lightning-analysis/internal/report"
)

var baseDate = time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data/mock/lightning_strikes.csv", "output CSV path")
	rows := flag.Int("rows", 500, "number of data rows to generate")
	seed := flag.Int64("seed", 42, "generator seed")
	flag.Parse()

	if err := writeFixture(*out, generate(*rows, *seed)); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote fixture: %s (%d rows)", *out, *rows)

	// Fixed clock for a reproducible CleanedAt in the summary.
	clean.SetClock(clockwork.NewFakeClockAt(
		time.Date(2025, time.June, 2, 6, 0, 0, 0, time.UTC),
	))
	defer clean.SetClock(nil)

	table, stats, err := dataset.Load(*out)
	if err != nil {
		return fmt.Errorf("reloading fixture: %w", err)
	}

	cleaned, rep := clean.Clean(table)
	derived := clean.AddTimeFeatures(cleaned)
	m := analyze.CorrelationMatrix(derived)
	res := analyze.FitLinearModel(derived, analyze.DefaultConfig())

	printStats(stats, rep, derived, m, res)
	return nil
}

// generate builds CSV text with roughly 2% duplicated rows, 2%
// out-of-range coordinates, 2% negative magnitudes, 3% blanked cells,
// and 2% unparseable cells.
func generate(n int, seed int64) string {
	rng := rand.New(rand.NewSource(seed))

	var b strings.Builder
	b.WriteString("time,lat,lon,region,mds,mcg,status\n")

	var prev string
	for i := 0; i < n; i++ {
		if prev != "" && rng.Float64() < 0.02 {
			b.WriteString(prev + "\n")
			continue
		}

		ts := baseDate.Add(time.Duration(rng.Int63n(30*24*3600)) * time.Second)
		lat := 35 + rng.Float64()*20
		lon := -120 + rng.Float64()*40
		region := 1 + rng.Intn(5)
		mds := 5 + rng.Float64()*35
		mcg := 30 + 3*mds + 5*float64(region) + 0.8*float64(ts.Hour()) + rng.NormFloat64()*4
		status := rng.Intn(3)

		cells := []string{
			strconv.FormatInt(ts.UnixNano(), 10),
			num(lat), num(lon), strconv.Itoa(region),
			num(mds), num(mcg), strconv.Itoa(status),
		}

		switch roll := rng.Float64(); {
		case roll < 0.02:
			if rng.Intn(2) == 0 {
				cells[1] = num(91 + rng.Float64()*30)
			} else {
				cells[2] = num(181 + rng.Float64()*60)
			}
		case roll < 0.04:
			cells[4+rng.Intn(2)] = num(-(1 + rng.Float64()*20))
		case roll < 0.07:
			cells[rng.Intn(len(cells))] = ""
		case roll < 0.08:
			cells[4+rng.Intn(2)] = "n/a"
		case roll < 0.09:
			cells[5] = "NaN"
		}

		line := strings.Join(cells, ",")
		b.WriteString(line + "\n")
		prev = line
	}
	return b.String()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func writeFixture(path, data string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(data), 0o600)
}

func printStats(stats dataset.Stats, rep clean.Report, derived dataset.Table, m analyze.Matrix, res analyze.Result) {
	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Rows read: %d (short: %d)\n", stats.RowsRead, stats.ShortRows)
	if len(stats.Malformed) > 0 {
		cols := make([]string, 0, len(stats.Malformed))
		for f := range stats.Malformed {
			cols = append(cols, string(f))
		}
		sort.Strings(cols)
		fmt.Print("Malformed cells:")
		for _, c := range cols {
			fmt.Printf(" %s=%d", c, stats.Malformed[dataset.Field(c)])
		}
		fmt.Println()
	}

	report.CleaningSummary(os.Stdout, rep)
	fmt.Printf("Cleaned at: %s\n", rep.CleanedAt.UTC().Format(time.RFC3339))

	report.Overview(os.Stdout, "Derived data", derived)
	report.TimeRange(os.Stdout, derived)
	report.CorrelationSection(os.Stdout, m, dataset.FieldMCG, analyze.TopCorrelations(m, dataset.FieldMCG, 5))
	report.RegressionReport(os.Stdout, res)
}
