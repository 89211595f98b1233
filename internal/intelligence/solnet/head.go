package solnet

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// regressionHead maps the concatenated (solute 2H, solvent 2H, temperature)
// vector to a scalar in normalized target space.  Each hidden layer is
// followed by ReLU and, in training mode, inverted dropout; the output layer
// is linear.
type regressionHead struct {
	layers  []*linear
	out     *linear
	dropout float64
}

func newRegressionHead(cfg *Config, rng *rand.Rand) *regressionHead {
	in := 4*cfg.HiddenDim + 1
	head := &regressionHead{dropout: cfg.Dropout}
	prev := in
	for _, d := range cfg.HeadDims {
		head.layers = append(head.layers, newLinear(prev, d, rng))
		prev = d
	}
	head.out = newLinear(prev, 1, rng)
	return head
}

// forward computes predictions for x of shape (B, 4H+1).  When training is
// true, dropRNG supplies the dropout randomness; in evaluation mode dropout
// is a no-op and the head is deterministic.
func (h *regressionHead) forward(x *mat.Dense, training bool, dropRNG *rand.Rand) []float64 {
	cur := x
	for _, l := range h.layers {
		cur = l.forward(cur)
		reluInPlace(cur)
		if training && h.dropout > 0 {
			keep := 1.0 - h.dropout
			r, c := cur.Dims()
			for i := 0; i < r; i++ {
				row := cur.RawRowView(i)
				for j := 0; j < c; j++ {
					if dropRNG.Float64() < h.dropout {
						row[j] = 0
					} else {
						row[j] /= keep
					}
				}
			}
		}
	}
	final := h.out.forward(cur)
	rows, _ := final.Dims()
	out := make([]float64, rows)
	for i := 0; i < rows; i++ {
		out[i] = final.At(i, 0)
	}
	return out
}
