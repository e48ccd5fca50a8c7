package clean

import "github.com/couchcryptid/lightning-analysis/internal/dataset"

// AddTimeFeatures expands the timestamp into its six calendar components
// in UTC, always recomputing them even when present in the input. Tables
// without a time column are returned unchanged rather than failing.
func AddTimeFeatures(t dataset.Table) dataset.Table {
	if !t.Schema.Has(dataset.FieldTime) {
		return t
	}

	out := t.Clone()
	for _, f := range dataset.DerivedTimeFields() {
		out.Schema = out.Schema.Add(f)
	}

	for i := range out.Records {
		rec := &out.Records[i]
		if rec.Time.IsZero() {
			for _, f := range dataset.DerivedTimeFields() {
				rec.SetCell(f, dataset.Value{})
			}
			continue
		}
		ts := rec.Time.UTC()
		rec.Year = dataset.Num(float64(ts.Year()))
		rec.Month = dataset.Num(float64(ts.Month()))
		rec.Day = dataset.Num(float64(ts.Day()))
		rec.Hour = dataset.Num(float64(ts.Hour()))
		rec.Minute = dataset.Num(float64(ts.Minute()))
		rec.Second = dataset.Num(float64(ts.Second()))
	}
	return out
}
