package dataset

// Field identifies a column of a strike table.
type Field string

// Source columns read from input files.
const (
	FieldTime   Field = "time"
	FieldLat    Field = "lat"
	FieldLon    Field = "lon"
	FieldRegion Field = "region"
	FieldMDS    Field = "mds"
	FieldMCG    Field = "mcg"
	FieldStatus Field = "status"
)

// Calendar components derived from FieldTime.
const (
	FieldYear   Field = "year"
	FieldMonth  Field = "month"
	FieldDay    Field = "day"
	FieldHour   Field = "hour"
	FieldMinute Field = "minute"
	FieldSecond Field = "second"
)

// SourceFields returns the loader's column allow-list in canonical order.
// Input columns outside this list are ignored.
func SourceFields() []Field {
	return []Field{FieldTime, FieldLat, FieldLon, FieldRegion, FieldMDS, FieldMCG, FieldStatus}
}

// DerivedTimeFields returns the calendar components expanded from FieldTime.
func DerivedTimeFields() []Field {
	return []Field{FieldYear, FieldMonth, FieldDay, FieldHour, FieldMinute, FieldSecond}
}

func isSourceField(f Field) bool {
	switch f {
	case FieldTime, FieldLat, FieldLon, FieldRegion, FieldMDS, FieldMCG, FieldStatus:
		return true
	}
	return false
}

// isKnownColumn additionally admits the derived calendar columns, so a
// cleaned export loads back with its full schema.
func isKnownColumn(f Field) bool {
	if isSourceField(f) {
		return true
	}
	switch f {
	case FieldYear, FieldMonth, FieldDay, FieldHour, FieldMinute, FieldSecond:
		return true
	}
	return false
}
