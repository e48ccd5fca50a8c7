package figures

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/lightning-analysis/internal/analyze"
	"github.com/couchcryptid/lightning-analysis/internal/dataset"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

func renderTable(n int) dataset.Table {
	t := dataset.Table{
		Schema: dataset.Schema{
			dataset.FieldLat, dataset.FieldLon, dataset.FieldRegion,
			dataset.FieldMCG, dataset.FieldHour,
		},
	}
	for i := 0; i < n; i++ {
		t.Records = append(t.Records, dataset.Record{
			Lat:    dataset.Num(40 + float64(i)*0.1),
			Lon:    dataset.Num(-110 + float64(i)*0.1),
			Region: dataset.Num(float64(1 + i%2)),
			MCG:    dataset.Num(50 + float64(i%7)*10),
			Hour:   dataset.Num(float64(i % 24)),
		})
	}
	return t
}

func assertPNG(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(data), len(pngMagic))
	assert.Equal(t, pngMagic, data[:len(pngMagic)])
}

func TestRenderAll(t *testing.T) {
	t.Run("writes every chart for a full table", func(t *testing.T) {
		table := renderTable(40)
		m := analyze.CorrelationMatrix(table)
		dir := filepath.Join(t.TempDir(), "figures")

		written, err := RenderAll(table, m, dir)
		require.NoError(t, err)

		want := []string{
			"strikes_by_region.png",
			"strikes_by_hour.png",
			"strike_locations.png",
			"mcg_histogram.png",
			"correlation_heatmap.png",
			"mcg_by_region.png",
			"mcg_by_hour.png",
		}
		require.Len(t, written, len(want))
		for i, name := range want {
			assert.Equal(t, filepath.Join(dir, name), written[i])
			assertPNG(t, written[i])
		}
	})

	t.Run("skips charts whose columns are absent", func(t *testing.T) {
		table := dataset.Table{Schema: dataset.Schema{dataset.FieldMCG}}
		for i := 0; i < 20; i++ {
			table.Records = append(table.Records, dataset.Record{
				MCG: dataset.Num(float64(10 + i)),
			})
		}
		m := analyze.CorrelationMatrix(table)
		dir := t.TempDir()

		written, err := RenderAll(table, m, dir)
		require.NoError(t, err)

		require.Len(t, written, 2)
		assert.Equal(t, filepath.Join(dir, "mcg_histogram.png"), written[0])
		assert.Equal(t, filepath.Join(dir, "correlation_heatmap.png"), written[1])

		_, err = os.Stat(filepath.Join(dir, "strikes_by_region.png"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("empty inputs write nothing", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "figures")

		written, err := RenderAll(dataset.Table{}, analyze.Matrix{}, dir)
		require.NoError(t, err)
		assert.Empty(t, written)

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})
}
