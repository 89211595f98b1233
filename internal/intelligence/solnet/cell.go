package solnet

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// propagationCell performs one message-passing step with a gated update.
// The same cell (identical weights) is applied at every propagation step;
// depth is a runtime hyperparameter, not a parameter-count multiplier.
type propagationCell struct {
	edgeNet *edgeNetwork
	gru     *gruCell
	hidden  int
}

func newPropagationCell(hidden, edgeDim, bottleneck int, rng *rand.Rand) *propagationCell {
	return &propagationCell{
		edgeNet: newEdgeNetwork(edgeDim, hidden, bottleneck, rng),
		gru:     newGRUCell(hidden, hidden, rng),
		hidden:  hidden,
	}
}

// forward computes updated hidden states.  h is (N, H); edgeIndex holds
// global (source, target) pairs; edgeFeatures is (E, edge_dim) and may be nil
// when the batch has no edges, in which case every aggregate is zero and only
// the gated update runs.
func (c *propagationCell) forward(h *mat.Dense, edgeIndex [][2]int, edgeFeatures *mat.Dense) *mat.Dense {
	n, _ := h.Dims()

	// Sum incoming messages per destination node.  Nodes with no incoming
	// edges keep a zero aggregate.
	agg := mat.NewDense(n, c.hidden, nil)
	if len(edgeIndex) > 0 {
		ops := c.edgeNet.operators(edgeFeatures)
		msg := make([]float64, c.hidden)
		for e, idx := range edgeIndex {
			src, dst := idx[0], idx[1]
			op := ops[e]
			hSrc := h.RawRowView(src)
			for i := 0; i < c.hidden; i++ {
				s := 0.0
				row := op.RawRowView(i)
				for j, hv := range hSrc {
					s += row[j] * hv
				}
				msg[i] = s
			}
			aggRow := agg.RawRowView(dst)
			for i, m := range msg {
				aggRow[i] += m
			}
		}
	}

	return c.gru.forward(agg, h)
}
