package analyze

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/couchcryptid/lightning-analysis/internal/dataset"
)

// minFitRows is the smallest complete-case sample a fit will accept.
// Below it a train/test split leaves too little of either to mean
// anything.
const minFitRows = 10

// DefaultFeatures returns the candidate regressors for the standard mcg
// model. status is not among them: a detection-quality code carries no
// physical information about strike intensity.
func DefaultFeatures() []dataset.Field {
	return []dataset.Field{
		dataset.FieldMDS,
		dataset.FieldHour,
		dataset.FieldRegion,
		dataset.FieldLat,
		dataset.FieldLon,
		dataset.FieldMonth,
	}
}

// Config controls a linear model fit. A nil Features list, empty Target,
// and zero TestSize fall back to the documented defaults; start from
// DefaultConfig for the standard setup.
type Config struct {
	Features     []dataset.Field // nil means DefaultFeatures intersected with the schema
	Target       dataset.Field   // empty means FieldMCG
	TestSize     float64         // held-out fraction in (0, 1); 0 means 0.2
	Seed         int64           // seeds the split permutation
	OneHotRegion bool            // expand region into indicator columns
}

// DefaultConfig returns the standard fit: mcg regressed on
// DefaultFeatures with a 20% held-out split, seed 42, and one-hot
// region encoding.
func DefaultConfig() Config {
	return Config{
		Target:       dataset.FieldMCG,
		TestSize:     0.2,
		Seed:         42,
		OneHotRegion: true,
	}
}

// Coefficient is a fitted weight for one design column.
type Coefficient struct {
	Name  string
	Value float64
}

// Result is the outcome of FitLinearModel. OK distinguishes a fitted
// model from a skipped fit: Reason is set only when OK is false, and the
// model fields are meaningful only when OK is true.
type Result struct {
	OK     bool
	Reason string

	Target   dataset.Field
	Features []string // post-encoding design column names
	NRows    int      // complete-case rows available to the fit
	TestSize float64
	OneHot   bool

	MAE       float64
	RMSE      float64
	R2        float64
	Intercept float64

	// Coefficients are ranked by descending absolute value with sign
	// preserved; magnitude surfaces influence regardless of direction.
	Coefficients []Coefficient
}

// FitLinearModel fits an ordinary least squares model of the target on
// the configured features and evaluates it on a deterministic seeded
// held-out split. Insufficient or degenerate data produces a tagged
// failure Result, never an error: the pipeline reports a skipped fit
// and moves on.
func FitLinearModel(t dataset.Table, cfg Config) Result {
	if cfg.Target == "" {
		cfg.Target = dataset.FieldMCG
	}
	if cfg.TestSize == 0 {
		cfg.TestSize = 0.2
	}

	res := Result{Target: cfg.Target, TestSize: cfg.TestSize, OneHot: cfg.OneHotRegion}

	if cfg.TestSize < 0 || cfg.TestSize >= 1 {
		res.Reason = fmt.Sprintf("test size %g outside (0, 1)", cfg.TestSize)
		return res
	}
	if !t.Schema.Has(cfg.Target) {
		res.Reason = fmt.Sprintf("target column %q not in table", cfg.Target)
		return res
	}

	features := selectFeatures(t.Schema, cfg)
	if len(features) == 0 {
		res.Reason = "no usable feature columns"
		return res
	}

	rows := completeRows(t, features, cfg.Target)
	res.NRows = len(rows)
	if len(rows) < minFitRows {
		res.Reason = fmt.Sprintf("%d complete rows, need at least %d", len(rows), minFitRows)
		return res
	}

	design := buildDesign(t, rows, features, cfg)
	if len(design.cols) == 0 {
		res.Reason = "no usable feature columns after encoding"
		return res
	}
	res.Features = design.names

	y := make([]float64, len(rows))
	for i, ri := range rows {
		y[i] = t.Records[ri].Cell(cfg.Target).Float64
	}

	testIdx, trainIdx := split(len(rows), cfg.TestSize, cfg.Seed)

	intercept, coefs, err := fitOLS(design, y, trainIdx)
	if err != nil {
		res.Reason = fmt.Sprintf("singular design matrix: %v", err)
		return res
	}

	res.MAE, res.RMSE, res.R2 = evaluate(design, y, testIdx, intercept, coefs)
	res.Intercept = intercept
	res.Coefficients = rankCoefficients(design.names, coefs)
	res.OK = true
	return res
}

// selectFeatures resolves the configured feature list against the
// schema, dropping the target, the raw timestamp, and duplicates.
func selectFeatures(s dataset.Schema, cfg Config) []dataset.Field {
	candidates := cfg.Features
	if candidates == nil {
		candidates = DefaultFeatures()
	}
	out := make([]dataset.Field, 0, len(candidates))
	for _, f := range s.Filter(candidates...) {
		if f == cfg.Target || f == dataset.FieldTime || slices.Contains(out, f) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// completeRows returns the indices of rows with no missing value among
// the features and target.
func completeRows(t dataset.Table, features []dataset.Field, target dataset.Field) []int {
	var rows []int
	for i := range t.Records {
		rec := &t.Records[i]
		if !rec.Cell(target).Valid {
			continue
		}
		complete := true
		for _, f := range features {
			if !rec.Cell(f).Valid {
				complete = false
				break
			}
		}
		if complete {
			rows = append(rows, i)
		}
	}
	return rows
}

// designMatrix holds the encoded feature columns, aligned with names.
// Each column carries one value per complete-case row.
type designMatrix struct {
	names []string
	cols  [][]float64
}

// buildDesign assembles the design columns. Plain columns constant
// across the rows are dropped; against an intercept they make the
// system singular. With one-hot encoding the region column is replaced
// by one indicator per distinct value except the smallest, which serves
// as the reference level; a region column with a single value therefore
// contributes nothing. Indicator columns come after the plain features,
// named region_<value>.
func buildDesign(t dataset.Table, rows []int, features []dataset.Field, cfg Config) designMatrix {
	encodeRegion := cfg.OneHotRegion && slices.Contains(features, dataset.FieldRegion)

	var d designMatrix
	for _, f := range features {
		if f == dataset.FieldRegion && encodeRegion {
			continue
		}
		col := make([]float64, len(rows))
		for i, ri := range rows {
			col[i] = t.Records[ri].Cell(f).Float64
		}
		if constant(col) {
			continue
		}
		d.names = append(d.names, string(f))
		d.cols = append(d.cols, col)
	}

	if encodeRegion {
		seen := map[float64]struct{}{}
		var levels []float64
		for _, ri := range rows {
			v := t.Records[ri].Region.Float64
			if _, ok := seen[v]; !ok {
				seen[v] = struct{}{}
				levels = append(levels, v)
			}
		}
		sort.Float64s(levels)

		for _, lv := range levels[1:] {
			col := make([]float64, len(rows))
			for i, ri := range rows {
				if t.Records[ri].Region.Float64 == lv {
					col[i] = 1
				}
			}
			d.names = append(d.names, fmt.Sprintf("region_%g", lv))
			d.cols = append(d.cols, col)
		}
	}
	return d
}

func constant(col []float64) bool {
	for _, v := range col[1:] {
		if v != col[0] {
			return false
		}
	}
	return true
}

// split partitions row positions into held-out and training sets using
// a seeded permutation. The held-out block is the first
// ceil(n * testSize) permuted positions, capped so at least one row
// remains on each side.
func split(n int, testSize float64, seed int64) (test, train []int) {
	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(n)

	nTest := int(math.Ceil(float64(n) * testSize))
	if nTest < 1 {
		nTest = 1
	}
	if nTest >= n {
		nTest = n - 1
	}
	return perm[:nTest], perm[nTest:]
}

// fitOLS solves the least squares system over the training rows. The
// design gains an explicit leading column of ones for the intercept.
func fitOLS(d designMatrix, y []float64, trainIdx []int) (intercept float64, coefs []float64, err error) {
	n, k := len(trainIdx), len(d.cols)
	X := mat.NewDense(n, k+1, nil)
	yv := mat.NewVecDense(n, nil)
	for i, ri := range trainIdx {
		X.Set(i, 0, 1)
		for j, col := range d.cols {
			X.Set(i, j+1, col[ri])
		}
		yv.SetVec(i, y[ri])
	}

	var beta mat.Dense
	if err := beta.Solve(X, yv); err != nil {
		return 0, nil, err
	}

	coefs = make([]float64, k)
	for j := range coefs {
		coefs[j] = beta.At(j+1, 0)
	}
	return beta.At(0, 0), coefs, nil
}

// evaluate scores predictions on the held-out rows. R² of a constant
// test target is 1 for exact predictions and 0 otherwise.
func evaluate(d designMatrix, y []float64, testIdx []int, intercept float64, coefs []float64) (mae, rmse, r2 float64) {
	n := len(testIdx)
	actual := make([]float64, n)
	var sumAbs, ssRes float64
	for i, ri := range testIdx {
		pred := intercept
		for j, col := range d.cols {
			pred += coefs[j] * col[ri]
		}
		actual[i] = y[ri]
		e := pred - y[ri]
		sumAbs += math.Abs(e)
		ssRes += e * e
	}
	mae = sumAbs / float64(n)
	rmse = math.Sqrt(ssRes / float64(n))

	mean := stat.Mean(actual, nil)
	var ssTot float64
	for _, v := range actual {
		dv := v - mean
		ssTot += dv * dv
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return mae, rmse, 1
		}
		return mae, rmse, 0
	}
	return mae, rmse, 1 - ssRes/ssTot
}

func rankCoefficients(names []string, coefs []float64) []Coefficient {
	out := make([]Coefficient, len(names))
	for i, name := range names {
		out[i] = Coefficient{Name: name, Value: coefs[i]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Value) > math.Abs(out[j].Value)
	})
	return out
}
