package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// timeEqual compares timestamps by instant, ignoring monotonic clock and
// location representation.
var timeEqual = cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) })

func TestRead(t *testing.T) {
	t.Run("full header", func(t *testing.T) {
		in := strings.Join([]string{
			"time,lat,lon,region,mds,mcg,status",
			"5000000000,48.1,11.5,2,12.5,33.1,1",
			"6000000000,50.0,8.6,3,,41.0,0",
		}, "\n")

		table, stats, err := Read(strings.NewReader(in))
		require.NoError(t, err)

		assert.Equal(t, Schema{FieldTime, FieldLat, FieldLon, FieldRegion, FieldMDS, FieldMCG, FieldStatus}, table.Schema)
		require.Len(t, table.Records, 2)
		assert.Equal(t, 2, stats.RowsRead)
		assert.Equal(t, 0, stats.ShortRows)
		assert.Empty(t, stats.Malformed)

		first := table.Records[0]
		assert.Equal(t, time.Unix(0, 5_000_000_000).UTC(), first.Time)
		assert.Equal(t, Num(48.1), first.Lat)
		assert.Equal(t, Num(11.5), first.Lon)
		assert.Equal(t, Num(2), first.Region)
		assert.Equal(t, Num(12.5), first.MDS)
		assert.Equal(t, Num(33.1), first.MCG)
		assert.Equal(t, Num(1), first.Status)

		assert.False(t, table.Records[1].MDS.Valid, "empty cell loads as missing")
	})

	t.Run("columns outside the allow-list are ignored", func(t *testing.T) {
		in := "time,sensor_id,lat,lon,region\n5000000000,ABC-1,48.1,11.5,2\n"

		table, _, err := Read(strings.NewReader(in))
		require.NoError(t, err)

		assert.Equal(t, Schema{FieldTime, FieldLat, FieldLon, FieldRegion}, table.Schema)
		assert.Equal(t, Num(48.1), table.Records[0].Lat)
	})

	t.Run("derived calendar columns load back", func(t *testing.T) {
		in := "time,hour,year\n5000000000,14,2025\n"

		table, _, err := Read(strings.NewReader(in))
		require.NoError(t, err)

		assert.Equal(t, Schema{FieldTime, FieldHour, FieldYear}, table.Schema)
		assert.Equal(t, Num(14), table.Records[0].Hour)
		assert.Equal(t, Num(2025), table.Records[0].Year)
	})

	t.Run("absent columns are absent from the schema", func(t *testing.T) {
		in := "time,lat,lon\n5000000000,48.1,11.5\n"

		table, _, err := Read(strings.NewReader(in))
		require.NoError(t, err)

		assert.False(t, table.Schema.Has(FieldRegion))
		assert.False(t, table.Schema.Has(FieldMCG))
		assert.False(t, table.Records[0].Region.Valid)
	})

	t.Run("malformed cells degrade to missing and are counted", func(t *testing.T) {
		in := "time,lat,mcg\nabc,not-a-number,33.1\n5000000000,48.1,oops\n"

		table, stats, err := Read(strings.NewReader(in))
		require.NoError(t, err)

		require.Len(t, table.Records, 2)
		assert.True(t, table.Records[0].Time.IsZero())
		assert.False(t, table.Records[0].Lat.Valid)
		assert.Equal(t, Num(33.1), table.Records[0].MCG)
		assert.False(t, table.Records[1].MCG.Valid)

		assert.Equal(t, 1, stats.Malformed[FieldTime])
		assert.Equal(t, 1, stats.Malformed[FieldLat])
		assert.Equal(t, 1, stats.Malformed[FieldMCG])
	})

	t.Run("empty cells are missing but not malformed", func(t *testing.T) {
		in := "time,lat\n,\n"

		table, stats, err := Read(strings.NewReader(in))
		require.NoError(t, err)

		assert.True(t, table.Records[0].Time.IsZero())
		assert.False(t, table.Records[0].Lat.Valid)
		assert.Empty(t, stats.Malformed)
	})

	t.Run("short rows are skipped", func(t *testing.T) {
		in := "time,lat,lon\n5000000000,48.1,11.5\n6000000000,50.0\n"

		table, stats, err := Read(strings.NewReader(in))
		require.NoError(t, err)

		assert.Len(t, table.Records, 1)
		assert.Equal(t, 2, stats.RowsRead)
		assert.Equal(t, 1, stats.ShortRows)
	})

	t.Run("duplicate header keeps the first column", func(t *testing.T) {
		in := "lat,lat\n1.5,2.5\n"

		table, _, err := Read(strings.NewReader(in))
		require.NoError(t, err)

		assert.Equal(t, Schema{FieldLat}, table.Schema)
		assert.Equal(t, Num(1.5), table.Records[0].Lat)
	})

	t.Run("timestamp formats", func(t *testing.T) {
		tests := []struct {
			name string
			cell string
			want time.Time
		}{
			{"integer nanoseconds", "5000000000", time.Unix(0, 5_000_000_000).UTC()},
			{"float nanoseconds", "5e9", time.Unix(0, 5_000_000_000).UTC()},
			{"rfc3339", "2025-01-01T00:00:00Z", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
			{"junk", "yesterday", time.Time{}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				table, _, err := Read(strings.NewReader("time\n" + tt.cell + "\n"))
				require.NoError(t, err)
				assert.True(t, tt.want.Equal(table.Records[0].Time))
			})
		}
	})

	t.Run("header only yields an empty table", func(t *testing.T) {
		table, stats, err := Read(strings.NewReader("time,lat\n"))
		require.NoError(t, err)
		assert.Zero(t, table.NumRows())
		assert.Zero(t, stats.RowsRead)
	})

	t.Run("empty input is an error", func(t *testing.T) {
		_, _, err := Read(strings.NewReader(""))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "header")
	})
}

func TestLoad_MissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open input")
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	table := Table{
		Schema: Schema{FieldTime, FieldLat, FieldLon, FieldRegion, FieldMDS, FieldMCG, FieldStatus, FieldYear, FieldHour},
		Records: []Record{
			{
				Time: time.Date(2025, 6, 12, 14, 30, 15, 123456789, time.UTC),
				Lat:  Num(48.1), Lon: Num(11.5), Region: Num(2),
				MDS: Num(12.5), MCG: Num(33.125), Status: Num(1),
				Year: Num(2025), Hour: Num(14),
			},
			{
				Time: time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC),
				Lat:  Num(-33.9), Lon: Num(151.2), Region: Num(4),
				MDS: Value{}, MCG: Num(7), Status: Value{},
				Year: Num(2025), Hour: Num(0),
			},
		},
	}

	path := filepath.Join(t.TempDir(), "out", "strikes.csv")
	require.NoError(t, WriteCSV(path, table))

	got, stats, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, stats.Malformed)

	if diff := cmp.Diff(table, got, timeEqual); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteCSV_MissingCells(t *testing.T) {
	table := Table{
		Schema:  Schema{FieldTime, FieldMCG},
		Records: []Record{{Time: time.Time{}, MCG: Value{}}},
	}

	path := filepath.Join(t.TempDir(), "strikes.csv")
	require.NoError(t, WriteCSV(path, table))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "time,mcg\n,\n", string(data))
}
