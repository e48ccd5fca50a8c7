package figures

import "github.com/couchcryptid/lightning-analysis/internal/analyze"

// corrGrid adapts a correlation matrix to the heat map's grid
// interface. Undefined entries stay NaN and render as blank cells.
type corrGrid struct {
	m analyze.Matrix
}

func (g corrGrid) Dims() (c, r int) {
	n := len(g.m.Fields)
	return n, n
}

func (g corrGrid) Z(c, r int) float64 { return g.m.Values[r][c] }

func (g corrGrid) X(c int) float64 { return float64(c) }

func (g corrGrid) Y(r int) float64 { return float64(r) }
