package solnet

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// gruCell is a gated recurrent cell over row vectors.  Weight layout follows
// the common (reset, update, new) gate stacking: wih is (3H, in) and whh is
// (3H, H) with gate blocks in that order.
type gruCell struct {
	wih, whh *mat.Dense
	bih, bhh []float64

	in, hidden int
}

func newGRUCell(in, hidden int, rng *rand.Rand) *gruCell {
	// Uniform(-1/sqrt(H), 1/sqrt(H)) init, matching typical recurrent cells.
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
	return &gruCell{
		wih:    initDense(3*hidden, in),
		whh:    initDense(3*hidden, hidden),
		bih:    initVec(3 * hidden),
		bhh:    initVec(3 * hidden),
		in:     in,
		hidden: hidden,
	}
}

// step computes the next hidden state for one row: x has length in, h has
// length hidden.
func (c *gruCell) step(x, h []float64) []float64 {
	H := c.hidden

	// gi = wih*x + bih ; gh = whh*h + bhh
	gi := make([]float64, 3*H)
	for r := 0; r < 3*H; r++ {
		s := c.bih[r]
		for k, xv := range x {
			s += c.wih.At(r, k) * xv
		}
		gi[r] = s
	}
	gh := make([]float64, 3*H)
	for r := 0; r < 3*H; r++ {
		s := c.bhh[r]
		for k, hv := range h {
			s += c.whh.At(r, k) * hv
		}
		gh[r] = s
	}

	out := make([]float64, H)
	for j := 0; j < H; j++ {
		reset := sigmoid(gi[j] + gh[j])
		update := sigmoid(gi[H+j] + gh[H+j])
		cand := math.Tanh(gi[2*H+j] + reset*gh[2*H+j])
		out[j] = (1-update)*cand + update*h[j]
	}
	return out
}

// forward applies the cell row-wise: x is (N, in), h is (N, hidden).
func (c *gruCell) forward(x, h *mat.Dense) *mat.Dense {
	rows, _ := x.Dims()
	out := mat.NewDense(rows, c.hidden, nil)
	for i := 0; i < rows; i++ {
		out.SetRow(i, c.step(x.RawRowView(i), h.RawRowView(i)))
	}
	return out
}
