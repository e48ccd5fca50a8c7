package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Stats summarizes a load. Structurally short rows are skipped outright;
// per-cell parse failures degrade to missing values and are counted here
// per column.
type Stats struct {
	RowsRead  int           // data rows in the file, excluding the header
	ShortRows int           // rows with fewer cells than the header, skipped
	Malformed map[Field]int // non-empty cells that failed parsing
}

// Load reads a strike table from a CSV file. Only [SourceFields] and
// [DerivedTimeFields] columns are kept; see [Read] for the cell
// conventions.
func Load(path string) (Table, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, Stats{}, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	t, stats, err := Read(f)
	if err != nil {
		return Table{}, Stats{}, fmt.Errorf("read %s: %w", path, err)
	}
	return t, stats, nil
}

// Read parses CSV data into a table. The first row is the header; the
// schema records the allow-listed columns found there, in file order.
// Empty and malformed cells load as missing values, never as errors.
func Read(r io.Reader) (Table, Stats, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // ragged rows are handled below, not rejected

	rows, err := reader.ReadAll()
	if err != nil {
		return Table{}, Stats{}, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return Table{}, Stats{}, fmt.Errorf("missing header row")
	}

	header := rows[0]
	colIdx := map[Field]int{}
	var schema Schema
	for i, h := range header {
		f := Field(strings.TrimSpace(h))
		if !isKnownColumn(f) {
			continue
		}
		if _, ok := colIdx[f]; ok {
			continue // first occurrence wins on duplicate headers
		}
		colIdx[f] = i
		schema = append(schema, f)
	}

	stats := Stats{Malformed: map[Field]int{}}
	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		stats.RowsRead++
		if len(row) < len(header) {
			stats.ShortRows++
			continue
		}

		var rec Record
		for f, i := range colIdx {
			cell := strings.TrimSpace(row[i])
			if f == FieldTime {
				ts, ok := parseTimestamp(cell)
				if !ok {
					stats.Malformed[f]++
				}
				rec.Time = ts
				continue
			}
			v, ok := parseCell(cell)
			if !ok {
				stats.Malformed[f]++
			}
			rec.SetCell(f, v)
		}
		records = append(records, rec)
	}

	return Table{Schema: schema, Records: records}, stats, nil
}

// parseCell leniently parses a numeric cell. The bool reports whether the
// cell was well-formed; empty cells are well-formed missing values.
func parseCell(s string) (Value, bool) {
	if s == "" {
		return Value{}, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Value{}, false
	}
	return Num(v), true
}

// parseTimestamp reads a cell as nanoseconds since the Unix epoch.
// Decimal integers, float notation, and RFC3339 strings as written by
// [WriteCSV] are accepted. The float path truncates any fractional
// nanoseconds.
func parseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, true
	}
	if ns, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(0, ns).UTC(), true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return time.Unix(0, int64(f)).UTC(), true
	}
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts.UTC(), true
	}
	return time.Time{}, false
}

// WriteCSV exports a table in the source format plus any derived columns.
// Missing cells serialize as empty strings, timestamps as RFC3339Nano.
// Parent directories are created as needed.
func WriteCSV(path string, t Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	header := make([]string, len(t.Schema))
	for i, field := range t.Schema {
		header[i] = string(field)
	}
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(t.Schema))
	for i := range t.Records {
		for j, field := range t.Schema {
			row[j] = formatCell(&t.Records[i], field)
		}
		if err := w.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}

func formatCell(rec *Record, f Field) string {
	if f == FieldTime {
		if rec.Time.IsZero() {
			return ""
		}
		return rec.Time.UTC().Format(time.RFC3339Nano)
	}
	v := rec.Cell(f)
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'g', -1, 64)
}
