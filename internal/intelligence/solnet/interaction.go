package solnet

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/akash-acog/sol/pkg/errors"
)

// interaction computes per-sample bilinear compatibility between solute and
// solvent atoms and returns interaction-weighted node representations for
// both sides.  It has no learned parameters.
//
// For each sample b: I[b] = Hs[b] * Hv[b]^T, optionally divided by sqrt(H);
// mappedSolute[b] = I[b] * Hv[b] and mappedSolvent[b] = I[b]^T * Hs[b].
// Padding slots are zero before the products and their mapped rows are
// discarded during reflattening, so they cannot leak into any real sample.
type interaction struct {
	hidden int
	scale  bool
}

// forward takes encoded flat hidden states and batch indices for both sides
// and returns the mapped flat representations.  A batch-size mismatch between
// the two sides is a fatal configuration error: it means upstream batching is
// misaligned, and partial computation would silently pair the wrong samples.
func (it *interaction) forward(hs, hv *mat.Dense, solute, solvent *GraphBatch) (mappedS, mappedV *mat.Dense, err error) {
	if solute.NumGraphs != solvent.NumGraphs {
		return nil, nil, errors.Newf(errors.ErrCodeBatchMismatch,
			"solute batch has %d graphs, solvent batch has %d; align batches per sample",
			solute.NumGraphs, solvent.NumGraphs)
	}

	ds, err := toDense(hs, solute.BatchIndex, solute.NumGraphs)
	if err != nil {
		return nil, nil, err
	}
	dv, err := toDense(hv, solvent.BatchIndex, solvent.NumGraphs)
	if err != nil {
		return nil, nil, err
	}

	scale := 1.0
	if it.scale {
		scale = 1.0 / math.Sqrt(float64(it.hidden))
	}

	outS := &denseBatch{
		data:     make([]*mat.Dense, ds.numSamples()),
		mask:     ds.mask,
		maxNodes: ds.maxNodes,
		hidden:   ds.hidden,
	}
	outV := &denseBatch{
		data:     make([]*mat.Dense, dv.numSamples()),
		mask:     dv.mask,
		maxNodes: dv.maxNodes,
		hidden:   dv.hidden,
	}

	for b := 0; b < ds.numSamples(); b++ {
		var inter mat.Dense // (maxNs, maxNv)
		inter.Mul(ds.data[b], dv.data[b].T())
		if it.scale {
			inter.Scale(scale, &inter)
		}

		ms := mat.NewDense(ds.maxNodes, ds.hidden, nil)
		ms.Mul(&inter, dv.data[b])
		outS.data[b] = ms

		mv := mat.NewDense(dv.maxNodes, dv.hidden, nil)
		mv.Mul(inter.T(), ds.data[b])
		outV.data[b] = mv
	}

	return outS.fromDense(solute.BatchIndex), outV.fromDense(solvent.BatchIndex), nil
}
