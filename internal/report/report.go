// Package report renders the human-readable surfaces of an analysis
// run: dataset overviews, the cleaning summary, correlation listings,
// and the regression report. Everything writes to a caller-supplied
// io.Writer so runs can target stdout, a buffer, or a file alike.
package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/lightning-analysis/internal/analyze"
	"github.com/couchcryptid/lightning-analysis/internal/clean"
	"github.com/couchcryptid/lightning-analysis/internal/dataset"
)

// Header opens a run report with its identity and timestamp.
func Header(w io.Writer, runID string, at time.Time) {
	fmt.Fprintf(w, "Lightning strike analysis, run %s at %s\n", runID, at.UTC().Format(time.RFC3339))
}

// Overview prints row and column counts, missing values per column, and
// the first five rows of a table.
func Overview(w io.Writer, name string, t dataset.Table) {
	fmt.Fprintf(w, "\n=== %s ===\n", name)
	fmt.Fprintf(w, "Rows: %d, Columns: %d\n", t.NumRows(), len(t.Schema))
	if len(t.Schema) == 0 {
		return
	}

	missing := t.MissingCounts()
	fmt.Fprintln(w, "Missing values:")
	for _, f := range t.Schema {
		fmt.Fprintf(w, "  %-8s %d\n", f, missing[f])
	}

	head := t.Head(5)
	if len(head) == 0 {
		return
	}
	fmt.Fprintln(w, "First rows:")
	for i := range head {
		fmt.Fprintf(w, "  %s\n", formatRecord(&head[i], t.Schema))
	}
}

// Uniques prints the sorted distinct values of the given columns,
// skipping columns absent from the table.
func Uniques(w io.Writer, t dataset.Table, fields ...dataset.Field) {
	for _, f := range fields {
		if !t.Schema.Has(f) {
			continue
		}
		vals := t.Uniques(f)
		fmt.Fprintf(w, "%s values (%d): %s\n", f, len(vals), joinFloats(vals))
	}
}

// TimeRange prints the earliest and latest timestamps of the table.
func TimeRange(w io.Writer, t dataset.Table) {
	min, max, ok := t.TimeRange()
	if !ok {
		fmt.Fprintln(w, "Time range: no timestamps")
		return
	}
	fmt.Fprintf(w, "Time range: %s to %s\n",
		min.UTC().Format(time.RFC3339), max.UTC().Format(time.RFC3339))
}

// CleaningSummary prints the per-rule outcome counts of a cleaning pass.
func CleaningSummary(w io.Writer, rep clean.Report) {
	fmt.Fprintf(w, "\n=== Cleaning ===\n")
	fmt.Fprintf(w, "Rows: %d in, %d out\n", rep.RowsIn, rep.RowsOut)
	fmt.Fprintf(w, "Dropped: %d missing key, %d out of range, %d negative magnitude\n",
		rep.DroppedMissingKey, rep.DroppedOutOfRange, rep.DroppedNegative)
	fmt.Fprintf(w, "Duplicates removed: %d\n", rep.DuplicatesRemoved)
	for _, f := range sortedFieldKeys(rep.NonFinite) {
		fmt.Fprintf(w, "Non-finite %s cells reset: %d\n", f, rep.NonFinite[f])
	}
	for _, f := range sortedFieldKeys(rep.Imputed) {
		fmt.Fprintf(w, "Imputed %s: %d\n", f, rep.Imputed[f])
	}
}

// CorrelationSection prints the matrix grid and the strongest
// correlations against the target.
func CorrelationSection(w io.Writer, m analyze.Matrix, target dataset.Field, top []analyze.Correlation) {
	fmt.Fprintf(w, "\n=== Correlation ===\n")
	if len(m.Fields) == 0 {
		fmt.Fprintln(w, "No numeric columns to correlate.")
		return
	}

	fmt.Fprintf(w, "%8s", "")
	for _, f := range m.Fields {
		fmt.Fprintf(w, " %8s", f)
	}
	fmt.Fprintln(w)
	for i, f := range m.Fields {
		fmt.Fprintf(w, "%8s", f)
		for j := range m.Fields {
			if math.IsNaN(m.Values[i][j]) {
				fmt.Fprintf(w, " %8s", "-")
				continue
			}
			fmt.Fprintf(w, " %8.4f", m.Values[i][j])
		}
		fmt.Fprintln(w)
	}

	switch {
	case !m.Has(target):
		fmt.Fprintf(w, "Target %s not in the correlation matrix.\n", target)
	case len(top) == 0:
		fmt.Fprintf(w, "No defined correlations with %s.\n", target)
	default:
		fmt.Fprintf(w, "Top correlations with %s:\n", target)
		for _, c := range top {
			fmt.Fprintf(w, "  %-8s %+.4f\n", c.Field, c.R)
		}
	}
}

// RegressionReport prints a fitted model's metrics and ranked
// coefficients, or the reason the fit was skipped.
func RegressionReport(w io.Writer, res analyze.Result) {
	fmt.Fprintf(w, "\n=== Regression: %s ===\n", res.Target)
	if !res.OK {
		fmt.Fprintf(w, "Not executed: %s\n", res.Reason)
		return
	}

	encoding := ""
	if res.OneHot {
		encoding = " (one-hot region)"
	}
	fmt.Fprintf(w, "Features: %s%s\n", strings.Join(res.Features, ", "), encoding)
	fmt.Fprintf(w, "Rows: %d (test fraction %.2f)\n", res.NRows, res.TestSize)
	fmt.Fprintf(w, "MAE:  %.4f\n", res.MAE)
	fmt.Fprintf(w, "RMSE: %.4f\n", res.RMSE)
	fmt.Fprintf(w, "R²:   %.4f\n", res.R2)
	fmt.Fprintf(w, "Intercept: %.4f\n", res.Intercept)
	fmt.Fprintln(w, "Coefficients:")
	for _, c := range res.Coefficients {
		fmt.Fprintf(w, "  %-12s %+.4f\n", c.Name, c.Value)
	}
}

func formatRecord(rec *dataset.Record, schema dataset.Schema) string {
	parts := make([]string, 0, len(schema))
	for _, f := range schema {
		if f == dataset.FieldTime {
			if rec.Time.IsZero() {
				parts = append(parts, "time=-")
				continue
			}
			parts = append(parts, "time="+rec.Time.UTC().Format(time.RFC3339))
			continue
		}
		v := rec.Cell(f)
		if !v.Valid {
			parts = append(parts, string(f)+"=-")
			continue
		}
		parts = append(parts, string(f)+"="+strconv.FormatFloat(v.Float64, 'g', -1, 64))
	}
	return strings.Join(parts, " ")
}

func joinFloats(vs []float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ", ")
}

func sortedFieldKeys(m map[dataset.Field]int) []dataset.Field {
	keys := make([]dataset.Field, 0, len(m))
	for f := range m {
		keys = append(keys, f)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
