// Package analyze computes descriptive statistics over cleaned strike
// tables: a pairwise Pearson correlation matrix across the numeric
// columns, and an evaluated ordinary least squares model for a target
// magnitude.
package analyze

import (
	"math"
	"slices"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/couchcryptid/lightning-analysis/internal/dataset"
)

// correlationFields is the fixed allow-list of semantically numeric
// columns considered for the matrix. The raw timestamp enters through
// its calendar components, never directly.
var correlationFields = []dataset.Field{
	dataset.FieldLat,
	dataset.FieldLon,
	dataset.FieldRegion,
	dataset.FieldMDS,
	dataset.FieldMCG,
	dataset.FieldStatus,
	dataset.FieldYear,
	dataset.FieldMonth,
	dataset.FieldDay,
	dataset.FieldHour,
	dataset.FieldMinute,
	dataset.FieldSecond,
}

// Matrix is a symmetric Pearson correlation matrix over named columns.
// Entries are in [-1, 1]; NaN marks an undefined correlation (fewer than
// two complete pairs, or zero variance in either column).
type Matrix struct {
	Fields []dataset.Field
	Values [][]float64 // Values[i][j] correlates Fields[i] with Fields[j]
}

// Has reports whether f is one of the matrix axes.
func (m Matrix) Has(f dataset.Field) bool {
	return slices.Contains(m.Fields, f)
}

// At returns the coefficient for the (a, b) pair. ok is false when
// either column is not a matrix axis.
func (m Matrix) At(a, b dataset.Field) (float64, bool) {
	i := slices.Index(m.Fields, a)
	j := slices.Index(m.Fields, b)
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.Values[i][j], true
}

// CorrelationMatrix computes pairwise Pearson correlation over the
// allow-listed columns present in the table. Missing values are dropped
// pairwise: each pair uses exactly the rows where both cells are
// present, so one sparse column does not shrink the sample for the
// others.
func CorrelationMatrix(t dataset.Table) Matrix {
	fields := t.Schema.Filter(correlationFields...)
	cols := make([][]dataset.Value, len(fields))
	for i, f := range fields {
		cols[i] = t.Column(f)
	}

	m := Matrix{Fields: fields, Values: make([][]float64, len(fields))}
	for i := range fields {
		m.Values[i] = make([]float64, len(fields))
	}
	for i := range fields {
		for j := 0; j <= i; j++ {
			r := pearson(cols[i], cols[j], i == j)
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m
}

// pearson correlates two cell columns over their complete pairs. The
// diagonal is pinned to exactly 1 for nonzero variance rather than
// trusting float arithmetic to land there.
func pearson(a, b []dataset.Value, diagonal bool) float64 {
	var xs, ys []float64
	for k := range a {
		if a[k].Valid && b[k].Valid {
			xs = append(xs, a[k].Float64)
			ys = append(ys, b[k].Float64)
		}
	}
	if len(xs) < 2 {
		return math.NaN()
	}

	if diagonal {
		if stat.Variance(xs, nil) == 0 {
			return math.NaN()
		}
		return 1
	}

	r := stat.Correlation(xs, ys, nil)
	// A correlation cannot leave [-1, 1]; clamp float error.
	switch {
	case r > 1:
		return 1
	case r < -1:
		return -1
	}
	return r
}

// Correlation pairs a column with its coefficient against a target.
type Correlation struct {
	Field dataset.Field
	R     float64
}

// TopCorrelations ranks the target's matrix row by absolute coefficient
// descending, sign preserved, dropping the self-correlation and
// undefined entries. At most n entries are returned, fewer when fewer
// are defined. An absent target yields an empty result rather than an
// error.
func TopCorrelations(m Matrix, target dataset.Field, n int) []Correlation {
	ti := slices.Index(m.Fields, target)
	if ti < 0 || n <= 0 {
		return nil
	}

	out := make([]Correlation, 0, len(m.Fields))
	for j, f := range m.Fields {
		if j == ti || math.IsNaN(m.Values[ti][j]) {
			continue
		}
		out = append(out, Correlation{Field: f, R: m.Values[ti][j]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].R) > math.Abs(out[j].R)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
