// Package dataset models lightning strike detections as an in-memory table.
//
// # Data Source
//
// Strike records arrive as delimited exports from the detection network,
// one row per detected discharge. The loader reads a fixed column subset
// and ignores everything else:
//
//	time, lat, lon, region, mds, mcg, status
//
// # Column Conventions
//
// time:
//
//	Nanoseconds since the Unix epoch, as a decimal integer. Exports that
//	round-tripped through a floating-point column may carry the value in
//	float notation; re-loaded exports written by [WriteCSV] carry RFC3339.
//	All three forms are accepted. Anything else is a missing timestamp,
//	represented by the zero time.
//
// lat, lon:
//
//	Geographic coordinates in degrees. Valid ranges are [-90, 90] and
//	[-180, 180]; the loader does not enforce them, range validation is a
//	cleaning rule.
//
// region:
//
//	Small-integer code for the spatial partition of the detection network
//	that reported the strike. Categorical despite the numeric encoding:
//	region 4 is not "twice" region 2.
//
// mds, mcg:
//
//	Detector signal magnitudes (duration and intensity measures reported
//	by the sensing network). Treated as opaque non-negative continuous
//	quantities; mcg is the conventional regression target.
//
// status:
//
//	Small-integer detection status code. Categorical, like region.
//
// # Missing Data
//
// Every numeric cell is a nullable [Value]. Empty cells and cells that
// fail numeric parsing load as missing rather than failing the read, so
// malformed source rows degrade to missing-data handling instead of
// aborting a run. Structurally short rows (fewer cells than the header)
// are skipped and counted in [Stats].
//
// # Derived Fields
//
// The calendar components year, month, day, hour, minute and second are
// derived from time in UTC by the cleaning stage. They are always
// recomputed, never read from the source file.
package dataset
