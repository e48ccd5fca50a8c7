package report

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/couchcryptid/lightning-analysis/internal/analyze"
)

// WriteCorrelationCSV exports the matrix with column names on both
// axes. Undefined entries serialize as empty cells.
func WriteCorrelationCSV(path string, m analyze.Matrix) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := make([]string, 0, len(m.Fields)+1)
	header = append(header, "")
	for _, field := range m.Fields {
		header = append(header, string(field))
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	for i, field := range m.Fields {
		row := make([]string, 0, len(m.Fields)+1)
		row = append(row, string(field))
		for j := range m.Fields {
			row = append(row, formatCorrelation(m.Values[i][j]))
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// WriteCoefficientsCSV exports the ranked coefficients of a fitted
// model. Calling it on a failed fit is an error.
func WriteCoefficientsCSV(path string, res analyze.Result) error {
	if !res.OK {
		return fmt.Errorf("no fitted model to export: %s", res.Reason)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"feature", "coefficient"}); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	for _, c := range res.Coefficients {
		row := []string{c.Name, strconv.FormatFloat(c.Value, 'g', -1, 64)}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func formatCorrelation(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
