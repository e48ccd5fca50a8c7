// Package clean normalizes loaded strike tables: it enforces physical
// validity, imputes missing magnitudes and codes, finalizes categorical
// columns, and removes duplicate detections. Cleaning is the only stage
// that discards rows; everything downstream consumes its output as-is.
package clean

import (
	"math"
	"sort"
	"time"

	"github.com/couchcryptid/lightning-analysis/internal/dataset"
)

// essentialFields are the identity and location columns. A row missing
// any of them carries no usable information and is dropped, not imputed.
var essentialFields = []dataset.Field{
	dataset.FieldTime,
	dataset.FieldLat,
	dataset.FieldLon,
	dataset.FieldRegion,
}

// magnitudeFields are continuous signal columns, imputed with the column
// median when missing.
var magnitudeFields = []dataset.Field{dataset.FieldMDS, dataset.FieldMCG}

// codeFields are integer-coded categorical columns, imputed with the
// column mode and rounded to whole numbers.
var codeFields = []dataset.Field{dataset.FieldStatus, dataset.FieldRegion}

// Report carries the per-rule outcome counts of one cleaning pass.
type Report struct {
	RowsIn  int
	RowsOut int

	NonFinite         map[dataset.Field]int // NaN or infinite cells reset to missing
	DroppedMissingKey int                   // rows missing time, lat, lon, or region
	DroppedOutOfRange int                   // lat or lon outside the valid degree ranges
	DroppedNegative   int                   // rows with a present negative mds or mcg
	Imputed           map[dataset.Field]int // missing cells filled per column
	DuplicatesRemoved int                   // repeated (time, lat, lon, region) rows

	CleanedAt time.Time
}

// Clean applies the cleaning rules in order and returns a fresh table;
// the input is never mutated. The rule order matters: each rule narrows
// the domain the next one works on, so imputation statistics are built
// only from rows that survived validation. Rules for columns absent from
// the schema are skipped. Per-value problems degrade to missing data or
// row drops, never errors; an input that loses every row simply yields
// an empty table.
func Clean(t dataset.Table) (dataset.Table, Report) {
	out := t.Clone()
	rep := Report{
		RowsIn:    out.NumRows(),
		NonFinite: map[dataset.Field]int{},
		Imputed:   map[dataset.Field]int{},
	}

	normalizeNonFinite(&out, &rep)
	dropMissingEssentials(&out, &rep)
	dropOutOfRange(&out, &rep)
	dropNegativeMagnitudes(&out, &rep)
	imputeMissing(&out, &rep)
	finalizeCodes(&out)
	deduplicate(&out, &rep)

	rep.RowsOut = out.NumRows()
	rep.CleanedAt = clock.Now()
	return out, rep
}

// normalizeNonFinite resets NaN and infinite cells to missing. Lenient
// parsing accepts literals like "NaN", and a NaN that reaches the median
// or a correlation would poison the whole statistic.
func normalizeNonFinite(t *dataset.Table, rep *Report) {
	for _, f := range t.Schema {
		if f == dataset.FieldTime {
			continue
		}
		for i := range t.Records {
			v := t.Records[i].Cell(f)
			if v.Valid && (math.IsNaN(v.Float64) || math.IsInf(v.Float64, 0)) {
				t.Records[i].SetCell(f, dataset.Value{})
				rep.NonFinite[f]++
			}
		}
	}
}

func dropMissingEssentials(t *dataset.Table, rep *Report) {
	required := t.Schema.Filter(essentialFields...)
	if len(required) == 0 {
		return
	}
	rep.DroppedMissingKey = filterRows(t, func(rec *dataset.Record) bool {
		for _, f := range required {
			if f == dataset.FieldTime {
				if rec.Time.IsZero() {
					return false
				}
				continue
			}
			if !rec.Cell(f).Valid {
				return false
			}
		}
		return true
	})
}

// dropOutOfRange discards rows with coordinates outside [-90, 90] and
// [-180, 180] degrees. Dropping rather than clamping: a clamped
// coordinate would silently misplace the strike.
func dropOutOfRange(t *dataset.Table, rep *Report) {
	checkLat := t.Schema.Has(dataset.FieldLat)
	checkLon := t.Schema.Has(dataset.FieldLon)
	if !checkLat && !checkLon {
		return
	}
	rep.DroppedOutOfRange = filterRows(t, func(rec *dataset.Record) bool {
		if checkLat && rec.Lat.Valid && (rec.Lat.Float64 < -90 || rec.Lat.Float64 > 90) {
			return false
		}
		if checkLon && rec.Lon.Valid && (rec.Lon.Float64 < -180 || rec.Lon.Float64 > 180) {
			return false
		}
		return true
	})
}

// dropNegativeMagnitudes discards rows carrying a present negative mds or
// mcg. Missing magnitudes are kept and deferred to imputation.
func dropNegativeMagnitudes(t *dataset.Table, rep *Report) {
	fields := t.Schema.Filter(magnitudeFields...)
	if len(fields) == 0 {
		return
	}
	rep.DroppedNegative = filterRows(t, func(rec *dataset.Record) bool {
		for _, f := range fields {
			if v := rec.Cell(f); v.Valid && v.Float64 < 0 {
				return false
			}
		}
		return true
	})
}

// imputeMissing fills missing magnitudes with the column median (robust
// to the skew typical of intensity measures) and missing codes with the
// column mode, falling back to 0 for an all-missing code column.
func imputeMissing(t *dataset.Table, rep *Report) {
	for _, f := range t.Schema.Filter(magnitudeFields...) {
		m, ok := median(validValues(t, f))
		if !ok {
			continue // nothing to build a median from, cells stay missing
		}
		fillMissing(t, f, m, rep)
	}
	for _, f := range t.Schema.Filter(codeFields...) {
		m, ok := mode(validValues(t, f))
		if !ok {
			m = 0
		}
		fillMissing(t, f, m, rep)
	}
}

func fillMissing(t *dataset.Table, f dataset.Field, fill float64, rep *Report) {
	for i := range t.Records {
		if !t.Records[i].Cell(f).Valid {
			t.Records[i].SetCell(f, dataset.Num(fill))
			rep.Imputed[f]++
		}
	}
}

// finalizeCodes rounds region and status to whole numbers. They are
// codes, not measurements, and must not keep fractional artifacts from
// numeric coercion.
func finalizeCodes(t *dataset.Table) {
	for _, f := range t.Schema.Filter(codeFields...) {
		for i := range t.Records {
			if v := t.Records[i].Cell(f); v.Valid {
				t.Records[i].SetCell(f, dataset.Num(math.Round(v.Float64)))
			}
		}
	}
}

// dedupKey identifies one physical strike. Fields absent from the schema
// hold their zero value on every row and so drop out of the comparison.
type dedupKey struct {
	timeNS   int64
	lat, lon float64
	region   float64
}

// deduplicate collapses rows identical on (time, lat, lon, region) to
// their first occurrence. The same discharge ingested twice must not be
// double-counted.
func deduplicate(t *dataset.Table, rep *Report) {
	seen := make(map[dedupKey]struct{}, len(t.Records))
	rep.DuplicatesRemoved = filterRows(t, func(rec *dataset.Record) bool {
		key := dedupKey{
			timeNS: rec.Time.UnixNano(),
			lat:    rec.Lat.Float64,
			lon:    rec.Lon.Float64,
			region: rec.Region.Float64,
		}
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
		return true
	})
}

// filterRows keeps the records satisfying keep, preserving order, and
// returns the number removed.
func filterRows(t *dataset.Table, keep func(*dataset.Record) bool) int {
	kept := t.Records[:0]
	removed := 0
	for i := range t.Records {
		if keep(&t.Records[i]) {
			kept = append(kept, t.Records[i])
		} else {
			removed++
		}
	}
	t.Records = kept
	return removed
}

func validValues(t *dataset.Table, f dataset.Field) []float64 {
	var out []float64
	for i := range t.Records {
		if v := t.Records[i].Cell(f); v.Valid {
			out = append(out, v.Float64)
		}
	}
	return out
}

// median returns the sample median, averaging the central pair for
// even-length samples. ok is false for an empty sample.
func median(vs []float64) (float64, bool) {
	if len(vs) == 0 {
		return 0, false
	}
	sorted := make([]float64, len(vs))
	copy(sorted, vs)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid], true
	}
	return (sorted[mid-1] + sorted[mid]) / 2, true
}

// mode returns the most frequent value, preferring the smallest value on
// ties. ok is false for an empty sample.
func mode(vs []float64) (float64, bool) {
	if len(vs) == 0 {
		return 0, false
	}
	counts := make(map[float64]int, len(vs))
	for _, v := range vs {
		counts[v]++
	}

	best, bestCount := 0.0, 0
	for v, c := range counts {
		if c > bestCount || (c == bestCount && v < best) {
			best, bestCount = v, c
		}
	}
	return best, true
}
