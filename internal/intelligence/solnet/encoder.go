package solnet

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// encoder projects raw node features to the hidden width and then applies the
// propagation cell mpSteps times.  One encoder instance serves both solute
// and solvent graphs; the weight sharing regularizes the model and helps it
// generalize to unseen solutes.
type encoder struct {
	nodeProj *linear
	cell     *propagationCell
	mpSteps  int
}

func newEncoder(cfg *Config, rng *rand.Rand) *encoder {
	return &encoder{
		nodeProj: newLinear(cfg.NodeDim, cfg.HiddenDim, rng),
		cell:     newPropagationCell(cfg.HiddenDim, cfg.EdgeDim, cfg.EdgeMLPHidden, rng),
		mpSteps:  cfg.MPSteps,
	}
}

// forward returns per-node hidden states of shape (N_total, H).
func (e *encoder) forward(b *GraphBatch) *mat.Dense {
	h := e.nodeProj.forward(b.NodeFeatures)
	for step := 0; step < e.mpSteps; step++ {
		h = e.cell.forward(h, b.EdgeIndex, b.EdgeFeatures)
	}
	return h
}
