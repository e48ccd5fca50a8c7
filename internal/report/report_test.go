package report

import (
	"bytes"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/lightning-analysis/internal/analyze"
	"github.com/couchcryptid/lightning-analysis/internal/clean"
	"github.com/couchcryptid/lightning-analysis/internal/dataset"
)

func sampleTable() dataset.Table {
	return dataset.Table{
		Schema: dataset.Schema{dataset.FieldTime, dataset.FieldLat, dataset.FieldMCG},
		Records: []dataset.Record{
			{
				Time: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
				Lat:  dataset.Num(48.1),
				MCG:  dataset.Num(120),
			},
			{
				Time: time.Date(2025, 6, 2, 8, 30, 0, 0, time.UTC),
				Lat:  dataset.Num(47.9),
			},
		},
	}
}

func TestHeader(t *testing.T) {
	var buf bytes.Buffer
	Header(&buf, "run-123", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	assert.Equal(t, "Lightning strike analysis, run run-123 at 2025-06-01T12:00:00Z\n", buf.String())
}

func TestOverview(t *testing.T) {
	t.Run("prints counts, missing values, and first rows", func(t *testing.T) {
		var buf bytes.Buffer
		Overview(&buf, "Raw data", sampleTable())

		out := buf.String()
		assert.Contains(t, out, "=== Raw data ===")
		assert.Contains(t, out, "Rows: 2, Columns: 3")
		assert.Contains(t, out, "mcg      1")
		assert.Contains(t, out, "lat      0")
		assert.Contains(t, out, "time=2025-06-01T12:00:00Z lat=48.1 mcg=120")
		assert.Contains(t, out, "mcg=-")
	})

	t.Run("empty table prints counts only", func(t *testing.T) {
		var buf bytes.Buffer
		Overview(&buf, "Raw data", dataset.Table{})

		out := buf.String()
		assert.Contains(t, out, "Rows: 0, Columns: 0")
		assert.NotContains(t, out, "Missing values")
	})
}

func TestUniques(t *testing.T) {
	table := dataset.Table{
		Schema: dataset.Schema{dataset.FieldRegion},
		Records: []dataset.Record{
			{Region: dataset.Num(3)},
			{Region: dataset.Num(1)},
			{Region: dataset.Num(3)},
		},
	}

	var buf bytes.Buffer
	Uniques(&buf, table, dataset.FieldRegion, dataset.FieldStatus)

	out := buf.String()
	assert.Contains(t, out, "region values (2): 1, 3")
	assert.NotContains(t, out, "status")
}

func TestTimeRange(t *testing.T) {
	t.Run("prints earliest and latest timestamps", func(t *testing.T) {
		var buf bytes.Buffer
		TimeRange(&buf, sampleTable())

		assert.Contains(t, buf.String(), "Time range: 2025-06-01T12:00:00Z to 2025-06-02T08:30:00Z")
	})

	t.Run("no timestamps", func(t *testing.T) {
		var buf bytes.Buffer
		TimeRange(&buf, dataset.Table{Schema: dataset.Schema{dataset.FieldLat}})

		assert.Contains(t, buf.String(), "Time range: no timestamps")
	})
}

func TestCleaningSummary(t *testing.T) {
	rep := clean.Report{
		RowsIn:            100,
		RowsOut:           90,
		NonFinite:         map[dataset.Field]int{dataset.FieldMDS: 2},
		DroppedMissingKey: 4,
		DroppedOutOfRange: 3,
		DroppedNegative:   1,
		Imputed: map[dataset.Field]int{
			dataset.FieldStatus: 5,
			dataset.FieldMCG:    2,
		},
		DuplicatesRemoved: 2,
	}

	var buf bytes.Buffer
	CleaningSummary(&buf, rep)

	out := buf.String()
	assert.Contains(t, out, "Rows: 100 in, 90 out")
	assert.Contains(t, out, "Dropped: 4 missing key, 3 out of range, 1 negative magnitude")
	assert.Contains(t, out, "Duplicates removed: 2")
	assert.Contains(t, out, "Non-finite mds cells reset: 2")
	assert.Contains(t, out, "Imputed mcg: 2")
	assert.Contains(t, out, "Imputed status: 5")
}

func sampleMatrix() analyze.Matrix {
	return analyze.Matrix{
		Fields: []dataset.Field{dataset.FieldLat, dataset.FieldMCG},
		Values: [][]float64{
			{1, -0.75},
			{-0.75, 1},
		},
	}
}

func TestCorrelationSection(t *testing.T) {
	t.Run("prints grid and top correlations", func(t *testing.T) {
		top := []analyze.Correlation{{Field: dataset.FieldLat, R: -0.75}}

		var buf bytes.Buffer
		CorrelationSection(&buf, sampleMatrix(), dataset.FieldMCG, top)

		out := buf.String()
		assert.Contains(t, out, "=== Correlation ===")
		assert.Contains(t, out, "1.0000")
		assert.Contains(t, out, "-0.7500")
		assert.Contains(t, out, "Top correlations with mcg:")
		assert.Contains(t, out, "lat      -0.7500")
	})

	t.Run("undefined entries print as dashes", func(t *testing.T) {
		m := sampleMatrix()
		m.Values[0][1] = math.NaN()

		var buf bytes.Buffer
		CorrelationSection(&buf, m, dataset.FieldMCG, nil)

		assert.Contains(t, buf.String(), "       -\n")
		assert.Contains(t, buf.String(), "No defined correlations with mcg.")
	})

	t.Run("absent target", func(t *testing.T) {
		var buf bytes.Buffer
		CorrelationSection(&buf, sampleMatrix(), dataset.FieldStatus, nil)

		assert.Contains(t, buf.String(), "Target status not in the correlation matrix.")
	})

	t.Run("empty matrix", func(t *testing.T) {
		var buf bytes.Buffer
		CorrelationSection(&buf, analyze.Matrix{}, dataset.FieldMCG, nil)

		assert.Contains(t, buf.String(), "No numeric columns to correlate.")
	})
}

func TestRegressionReport(t *testing.T) {
	t.Run("fitted model", func(t *testing.T) {
		res := analyze.Result{
			OK:        true,
			Target:    dataset.FieldMCG,
			Features:  []string{"mds", "region_2"},
			NRows:     40,
			TestSize:  0.2,
			OneHot:    true,
			MAE:       1.5,
			RMSE:      2.25,
			R2:        0.91,
			Intercept: 3.5,
			Coefficients: []analyze.Coefficient{
				{Name: "region_2", Value: 5},
				{Name: "mds", Value: -3},
			},
		}

		var buf bytes.Buffer
		RegressionReport(&buf, res)

		out := buf.String()
		assert.Contains(t, out, "=== Regression: mcg ===")
		assert.Contains(t, out, "Features: mds, region_2 (one-hot region)")
		assert.Contains(t, out, "Rows: 40 (test fraction 0.20)")
		assert.Contains(t, out, "MAE:  1.5000")
		assert.Contains(t, out, "RMSE: 2.2500")
		assert.Contains(t, out, "R²:   0.9100")
		assert.Contains(t, out, "Intercept: 3.5000")
		assert.Contains(t, out, "region_2     +5.0000")
		assert.Contains(t, out, "mds          -3.0000")
	})

	t.Run("skipped fit prints the reason", func(t *testing.T) {
		res := analyze.Result{
			Target: dataset.FieldMCG,
			Reason: "4 complete rows, need at least 10",
		}

		var buf bytes.Buffer
		RegressionReport(&buf, res)

		out := buf.String()
		assert.Contains(t, out, "Not executed: 4 complete rows, need at least 10")
		assert.NotContains(t, out, "MAE")
	})
}

func TestWriteCorrelationCSV(t *testing.T) {
	m := sampleMatrix()
	m.Values[1][0] = math.NaN()

	path := filepath.Join(t.TempDir(), "out", "correlation_matrix.csv")
	require.NoError(t, WriteCorrelationCSV(path, m))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"", "lat", "mcg"}, rows[0])
	assert.Equal(t, []string{"lat", "1", "-0.75"}, rows[1])
	assert.Equal(t, []string{"mcg", "", "1"}, rows[2])
}

func TestWriteCoefficientsCSV(t *testing.T) {
	t.Run("exports ranked coefficients", func(t *testing.T) {
		res := analyze.Result{
			OK: true,
			Coefficients: []analyze.Coefficient{
				{Name: "hour", Value: 4},
				{Name: "mds", Value: -1.5},
			},
		}

		path := filepath.Join(t.TempDir(), "regression_coefficients.csv")
		require.NoError(t, WriteCoefficientsCSV(path, res))

		f, err := os.Open(path)
		require.NoError(t, err)
		defer f.Close()

		rows, err := csv.NewReader(f).ReadAll()
		require.NoError(t, err)

		require.Len(t, rows, 3)
		assert.Equal(t, []string{"feature", "coefficient"}, rows[0])
		assert.Equal(t, []string{"hour", "4"}, rows[1])
		assert.Equal(t, []string{"mds", "-1.5"}, rows[2])
	})

	t.Run("failed fit is an error", func(t *testing.T) {
		res := analyze.Result{Reason: "4 complete rows, need at least 10"}

		err := WriteCoefficientsCSV(filepath.Join(t.TempDir(), "c.csv"), res)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no fitted model")
	})
}
