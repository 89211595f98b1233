package solnet

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// linear is a fully-connected layer computing Y = X*W + b for row-major
// inputs of shape (rows, in).
type linear struct {
	// w is (in, out).
	w *mat.Dense
	// b has length out.
	b []float64

	in, out int
}

// newLinear constructs a layer with Glorot-uniform weights drawn from rng and
// zero biases.
func newLinear(in, out int, rng *rand.Rand) *linear {
	w := mat.NewDense(in, out, nil)
	limit := math.Sqrt(6.0 / float64(in+out))
	for i := 0; i < in; i++ {
		for j := 0; j < out; j++ {
			w.Set(i, j, (rng.Float64()*2-1)*limit)
		}
	}
	return &linear{w: w, b: make([]float64, out), in: in, out: out}
}

// forward applies the layer to x of shape (rows, in).
func (l *linear) forward(x *mat.Dense) *mat.Dense {
	rows, _ := x.Dims()
	y := mat.NewDense(rows, l.out, nil)
	y.Mul(x, l.w)
	for i := 0; i < rows; i++ {
		row := y.RawRowView(i)
		for j := range row {
			row[j] += l.b[j]
		}
	}
	return y
}

// reluInPlace applies max(0, x) elementwise.
func reluInPlace(x *mat.Dense) {
	r, c := x.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if x.At(i, j) < 0 {
				x.Set(i, j, 0)
			}
		}
	}
}

func sigmoid(x float64) float64 { return 1.0 / (1.0 + math.Exp(-x)) }
