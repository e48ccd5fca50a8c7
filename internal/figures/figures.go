// Package figures renders the exploratory charts of an analysis run as
// PNG files.
package figures

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/couchcryptid/lightning-analysis/internal/analyze"
	"github.com/couchcryptid/lightning-analysis/internal/dataset"
)

const (
	chartWidth  = 6 * vg.Inch
	chartHeight = 4 * vg.Inch

	histogramBins = 50
)

// RenderAll writes every chart whose input columns are present in the
// table and returns the paths written. Charts with absent columns are
// skipped rather than failing the run.
func RenderAll(t dataset.Table, m analyze.Matrix, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create figures directory: %w", err)
	}

	charts := []struct {
		name  string
		build func() (*plot.Plot, bool, error)
	}{
		{"strikes_by_region.png", func() (*plot.Plot, bool, error) { return strikesByRegion(t) }},
		{"strikes_by_hour.png", func() (*plot.Plot, bool, error) { return strikesByHour(t) }},
		{"strike_locations.png", func() (*plot.Plot, bool, error) { return strikeLocations(t) }},
		{"mcg_histogram.png", func() (*plot.Plot, bool, error) { return magnitudeHistogram(t) }},
		{"correlation_heatmap.png", func() (*plot.Plot, bool, error) { return correlationHeatmap(m) }},
		{"mcg_by_region.png", func() (*plot.Plot, bool, error) { return magnitudeByRegion(t) }},
		{"mcg_by_hour.png", func() (*plot.Plot, bool, error) { return magnitudeByHour(t) }},
	}

	written := make([]string, 0, len(charts))
	for _, c := range charts {
		p, ok, err := c.build()
		if err != nil {
			return written, fmt.Errorf("%s: %w", c.name, err)
		}
		if !ok {
			continue
		}
		path := filepath.Join(dir, c.name)
		if err := p.Save(chartWidth, chartHeight, path); err != nil {
			return written, fmt.Errorf("save %s: %w", c.name, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func strikesByRegion(t dataset.Table) (*plot.Plot, bool, error) {
	if !t.Schema.Has(dataset.FieldRegion) {
		return nil, false, nil
	}
	levels := t.Uniques(dataset.FieldRegion)
	if len(levels) == 0 {
		return nil, false, nil
	}

	index := make(map[float64]int, len(levels))
	labels := make([]string, len(levels))
	for i, level := range levels {
		index[level] = i
		labels[i] = strconv.FormatFloat(level, 'g', -1, 64)
	}
	counts := make(plotter.Values, len(levels))
	for i := range t.Records {
		if v := t.Records[i].Cell(dataset.FieldRegion); v.Valid {
			counts[index[v.Float64]]++
		}
	}

	p := plot.New()
	p.Title.Text = "Strikes by region"
	p.X.Label.Text = "region"
	p.Y.Label.Text = "strikes"

	bars, err := plotter.NewBarChart(counts, vg.Points(24))
	if err != nil {
		return nil, false, err
	}
	bars.Color = plotutil.Color(0)
	p.Add(bars)
	p.NominalX(labels...)
	return p, true, nil
}

func strikesByHour(t dataset.Table) (*plot.Plot, bool, error) {
	if !t.Schema.Has(dataset.FieldHour) {
		return nil, false, nil
	}

	counts := make([]float64, 24)
	for i := range t.Records {
		v := t.Records[i].Cell(dataset.FieldHour)
		if v.Valid && v.Float64 >= 0 && v.Float64 < 24 {
			counts[int(v.Float64)]++
		}
	}
	pts := make(plotter.XYs, len(counts))
	for h, n := range counts {
		pts[h].X = float64(h)
		pts[h].Y = n
	}

	p := plot.New()
	p.Title.Text = "Strikes by hour of day"
	p.X.Label.Text = "hour"
	p.Y.Label.Text = "strikes"

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, false, err
	}
	line.Color = plotutil.Color(1)
	p.Add(line)
	return p, true, nil
}

func strikeLocations(t dataset.Table) (*plot.Plot, bool, error) {
	if !t.Schema.Has(dataset.FieldLat) || !t.Schema.Has(dataset.FieldLon) {
		return nil, false, nil
	}

	hasMag := t.Schema.Has(dataset.FieldMCG)
	xys := make(plotter.XYs, 0, len(t.Records))
	mags := make([]float64, 0, len(t.Records))
	for i := range t.Records {
		lat := t.Records[i].Cell(dataset.FieldLat)
		lon := t.Records[i].Cell(dataset.FieldLon)
		if !lat.Valid || !lon.Valid {
			continue
		}
		mag := 0.0
		if hasMag {
			if v := t.Records[i].Cell(dataset.FieldMCG); v.Valid {
				mag = v.Float64
			}
		}
		xys = append(xys, plotter.XY{X: lon.Float64, Y: lat.Float64})
		mags = append(mags, mag)
	}
	if len(xys) == 0 {
		return nil, false, nil
	}

	p := plot.New()
	p.Title.Text = "Strike locations"
	p.X.Label.Text = "longitude"
	p.Y.Label.Text = "latitude"

	sc, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, false, err
	}
	sc.GlyphStyle.Radius = vg.Points(1.5)
	sc.GlyphStyle.Color = plotutil.Color(2)

	lo, hi := floats.Min(mags), floats.Max(mags)
	if hasMag && hi > lo {
		cm := moreland.Kindlmann()
		cm.SetMin(lo)
		cm.SetMax(hi)
		sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
			col, err := cm.At(mags[i])
			if err != nil {
				col = color.Gray{Y: 128}
			}
			return draw.GlyphStyle{Color: col, Radius: vg.Points(1.5), Shape: draw.CircleGlyph{}}
		}
	}
	p.Add(sc)
	return p, true, nil
}

func magnitudeHistogram(t dataset.Table) (*plot.Plot, bool, error) {
	vals := validColumn(t, dataset.FieldMCG)
	if len(vals) == 0 {
		return nil, false, nil
	}

	p := plot.New()
	p.Title.Text = "Cloud-to-ground magnitude"
	p.X.Label.Text = "mcg"
	p.Y.Label.Text = "strikes"

	h, err := plotter.NewHist(plotter.Values(vals), histogramBins)
	if err != nil {
		return nil, false, err
	}
	h.FillColor = plotutil.Color(3)
	p.Add(h)
	return p, true, nil
}

func correlationHeatmap(m analyze.Matrix) (*plot.Plot, bool, error) {
	if len(m.Fields) == 0 {
		return nil, false, nil
	}

	cm := moreland.SmoothBlueRed()
	cm.SetMin(-1)
	cm.SetMax(1)
	hm := plotter.NewHeatMap(corrGrid{m}, cm.Palette(256))
	hm.Min, hm.Max = -1, 1

	p := plot.New()
	p.Title.Text = "Correlation matrix"
	p.Add(hm)

	names := make([]string, len(m.Fields))
	for i, f := range m.Fields {
		names[i] = string(f)
	}
	p.NominalX(names...)
	p.NominalY(names...)
	return p, true, nil
}

func magnitudeByRegion(t dataset.Table) (*plot.Plot, bool, error) {
	return groupedBoxes(t, dataset.FieldRegion, "Magnitude by region", "region")
}

func magnitudeByHour(t dataset.Table) (*plot.Plot, bool, error) {
	return groupedBoxes(t, dataset.FieldHour, "Magnitude by hour of day", "hour")
}

// groupedBoxes draws a box plot of mcg per distinct value of the
// grouping column.
func groupedBoxes(t dataset.Table, group dataset.Field, title, xLabel string) (*plot.Plot, bool, error) {
	if !t.Schema.Has(group) || !t.Schema.Has(dataset.FieldMCG) {
		return nil, false, nil
	}

	byLevel := make(map[float64]plotter.Values)
	for i := range t.Records {
		g := t.Records[i].Cell(group)
		v := t.Records[i].Cell(dataset.FieldMCG)
		if !g.Valid || !v.Valid {
			continue
		}
		byLevel[g.Float64] = append(byLevel[g.Float64], v.Float64)
	}
	if len(byLevel) == 0 {
		return nil, false, nil
	}

	levels := make([]float64, 0, len(byLevel))
	for level := range byLevel {
		levels = append(levels, level)
	}
	sort.Float64s(levels)

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = "mcg"

	labels := make([]string, 0, len(levels))
	for i, level := range levels {
		box, err := plotter.NewBoxPlot(vg.Points(20), float64(i), byLevel[level])
		if err != nil {
			return nil, false, err
		}
		p.Add(box)
		labels = append(labels, strconv.FormatFloat(level, 'g', -1, 64))
	}
	p.NominalX(labels...)
	return p, true, nil
}

func validColumn(t dataset.Table, f dataset.Field) []float64 {
	if !t.Schema.Has(f) {
		return nil
	}
	vals := make([]float64, 0, len(t.Records))
	for i := range t.Records {
		if v := t.Records[i].Cell(f); v.Valid {
			vals = append(vals, v.Float64)
		}
	}
	return vals
}
