package dataset

import (
	"slices"
	"time"
)

// Value is a numeric cell that may be missing. The zero value is missing.
// The Float64/Valid shape follows database/sql null types.
type Value struct {
	Float64 float64
	Valid   bool
}

// Num returns a present cell holding v.
func Num(v float64) Value {
	return Value{Float64: v, Valid: true}
}

// Record is one strike detection. Time is the source timestamp, with the
// zero time marking a missing or unparseable value. All other cells are
// nullable numerics.
type Record struct {
	Time time.Time

	Lat    Value
	Lon    Value
	Region Value
	MDS    Value
	MCG    Value
	Status Value

	Year   Value
	Month  Value
	Day    Value
	Hour   Value
	Minute Value
	Second Value
}

// Cell returns the numeric cell for f. FieldTime has no numeric cell and
// reports missing; read Time directly.
func (r *Record) Cell(f Field) Value {
	switch f {
	case FieldLat:
		return r.Lat
	case FieldLon:
		return r.Lon
	case FieldRegion:
		return r.Region
	case FieldMDS:
		return r.MDS
	case FieldMCG:
		return r.MCG
	case FieldStatus:
		return r.Status
	case FieldYear:
		return r.Year
	case FieldMonth:
		return r.Month
	case FieldDay:
		return r.Day
	case FieldHour:
		return r.Hour
	case FieldMinute:
		return r.Minute
	case FieldSecond:
		return r.Second
	}
	return Value{}
}

// SetCell stores v in the numeric cell for f. FieldTime is not a numeric
// cell and is ignored.
func (r *Record) SetCell(f Field, v Value) {
	switch f {
	case FieldLat:
		r.Lat = v
	case FieldLon:
		r.Lon = v
	case FieldRegion:
		r.Region = v
	case FieldMDS:
		r.MDS = v
	case FieldMCG:
		r.MCG = v
	case FieldStatus:
		r.Status = v
	case FieldYear:
		r.Year = v
	case FieldMonth:
		r.Month = v
	case FieldDay:
		r.Day = v
	case FieldHour:
		r.Hour = v
	case FieldMinute:
		r.Minute = v
	case FieldSecond:
		r.Second = v
	}
}

// Schema is the ordered set of columns present in a table. Stages check
// column presence here rather than probing individual cells, so a table
// loaded from a partial file skips the rules for its absent columns.
type Schema []Field

// Has reports whether f is part of the schema.
func (s Schema) Has(f Field) bool {
	return slices.Contains(s, f)
}

// Filter returns the given fields that are present in the schema,
// preserving the argument order.
func (s Schema) Filter(fields ...Field) []Field {
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		if s.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// Add returns a copy of the schema with f appended when absent.
func (s Schema) Add(f Field) Schema {
	if s.Has(f) {
		return slices.Clone(s)
	}
	out := make(Schema, 0, len(s)+1)
	out = append(out, s...)
	return append(out, f)
}

// Table is an ordered collection of records sharing a schema. Row order
// is preserved through every transformation. Stages never mutate their
// input table; they work on a Clone and return it.
type Table struct {
	Schema  Schema
	Records []Record
}

// NumRows returns the number of records.
func (t Table) NumRows() int {
	return len(t.Records)
}

// Clone returns a deep copy. Records hold no reference types, so copying
// the slices is a full copy.
func (t Table) Clone() Table {
	return Table{
		Schema:  slices.Clone(t.Schema),
		Records: slices.Clone(t.Records),
	}
}

// Column returns the cells of f in row order. FieldTime yields missing
// cells; use Record.Time for timestamps.
func (t Table) Column(f Field) []Value {
	out := make([]Value, len(t.Records))
	for i := range t.Records {
		out[i] = t.Records[i].Cell(f)
	}
	return out
}
