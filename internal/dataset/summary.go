package dataset

import (
	"sort"
	"time"
)

// MissingCounts returns the number of missing cells per schema column.
// A zero timestamp counts as a missing FieldTime cell.
func (t Table) MissingCounts() map[Field]int {
	counts := make(map[Field]int, len(t.Schema))
	for _, f := range t.Schema {
		counts[f] = 0
	}
	for i := range t.Records {
		rec := &t.Records[i]
		for _, f := range t.Schema {
			if f == FieldTime {
				if rec.Time.IsZero() {
					counts[f]++
				}
				continue
			}
			if !rec.Cell(f).Valid {
				counts[f]++
			}
		}
	}
	return counts
}

// Uniques returns the sorted distinct values of a numeric column,
// ignoring missing cells. Absent columns yield nil.
func (t Table) Uniques(f Field) []float64 {
	if !t.Schema.Has(f) {
		return nil
	}
	seen := map[float64]struct{}{}
	for i := range t.Records {
		if v := t.Records[i].Cell(f); v.Valid {
			seen[v.Float64] = struct{}{}
		}
	}
	out := make([]float64, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Float64s(out)
	return out
}

// TimeRange returns the earliest and latest timestamps in the table.
// ok is false when no row carries a timestamp.
func (t Table) TimeRange() (min, max time.Time, ok bool) {
	for i := range t.Records {
		ts := t.Records[i].Time
		if ts.IsZero() {
			continue
		}
		if !ok {
			min, max, ok = ts, ts, true
			continue
		}
		if ts.Before(min) {
			min = ts
		}
		if ts.After(max) {
			max = ts
		}
	}
	return min, max, ok
}

// Head returns the first n records, fewer if the table is shorter.
func (t Table) Head(n int) []Record {
	if n > len(t.Records) {
		n = len(t.Records)
	}
	return t.Records[:n]
}
