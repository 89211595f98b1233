package solnet

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// edgeNetwork maps each edge's feature vector to an (H, H) message operator.
// Two layers with a ReLU between them expand edge_dim through a bottleneck to
// H*H; the bottleneck keeps the parameter count sane for moderate H.
type edgeNetwork struct {
	fc1, fc2 *linear
	hidden   int
}

func newEdgeNetwork(edgeDim, hidden, bottleneck int, rng *rand.Rand) *edgeNetwork {
	return &edgeNetwork{
		fc1:    newLinear(edgeDim, bottleneck, rng),
		fc2:    newLinear(bottleneck, hidden*hidden, rng),
		hidden: hidden,
	}
}

// operators computes one (H, H) matrix per edge from edgeFeatures (E, edge_dim).
func (n *edgeNetwork) operators(edgeFeatures *mat.Dense) []*mat.Dense {
	h := n.fc1.forward(edgeFeatures)
	reluInPlace(h)
	flat := n.fc2.forward(h) // (E, H*H)

	e, _ := flat.Dims()
	ops := make([]*mat.Dense, e)
	for i := 0; i < e; i++ {
		row := flat.RawRowView(i)
		ops[i] = mat.NewDense(n.hidden, n.hidden, row)
	}
	return ops
}
