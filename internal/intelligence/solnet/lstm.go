package solnet

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// lstmCell is a long short-term memory cell over row vectors, used as the
// query generator inside set2set pooling.  Gate blocks in wih/whh are stacked
// (input, forget, cell, output).
type lstmCell struct {
	wih, whh *mat.Dense
	bih, bhh []float64

	in, hidden int
}

func newLSTMCell(in, hidden int, rng *rand.Rand) *lstmCell {
	limit := 1.0 / math.Sqrt(float64(hidden))
	initDense := func(r, c int) *mat.Dense {
		m := mat.NewDense(r, c, nil)
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				m.Set(i, j, (rng.Float64()*2-1)*limit)
			}
		}
		return m
	}
	initVec := func(n int) []float64 {
		v := make([]float64, n)
		for i := range v {
			v[i] = (rng.Float64()*2 - 1) * limit
		}
		return v
	}
	return &lstmCell{
		wih:    initDense(4*hidden, in),
		whh:    initDense(4*hidden, hidden),
		bih:    initVec(4 * hidden),
		bhh:    initVec(4 * hidden),
		in:     in,
		hidden: hidden,
	}
}

// step advances one row: x has length in, h and cell have length hidden.
// Returns the new hidden and cell states.
func (c *lstmCell) step(x, h, cell []float64) (newH, newC []float64) {
	H := c.hidden

	gates := make([]float64, 4*H)
	for r := 0; r < 4*H; r++ {
		s := c.bih[r] + c.bhh[r]
		for k, xv := range x {
			s += c.wih.At(r, k) * xv
		}
		for k, hv := range h {
			s += c.whh.At(r, k) * hv
		}
		gates[r] = s
	}

	newH = make([]float64, H)
	newC = make([]float64, H)
	for j := 0; j < H; j++ {
		in := sigmoid(gates[j])
		forget := sigmoid(gates[H+j])
		cand := math.Tanh(gates[2*H+j])
		out := sigmoid(gates[3*H+j])
		newC[j] = forget*cell[j] + in*cand
		newH[j] = out * math.Tanh(newC[j])
	}
	return newH, newC
}
