package solnet

import (
	"gonum.org/v1/gonum/mat"

	"github.com/akash-acog/sol/pkg/errors"
)

// denseBatch is the rectangular view of a flat per-node tensor: one (maxNodes,
// H) matrix per sample, zero-padded past each sample's real node count, plus
// a validity mask.  Padding rows must never contribute to any aggregate that
// survives reflattening.
type denseBatch struct {
	// data[b] is (maxNodes, H).
	data []*mat.Dense
	// mask[b][i] is true for real node slots.
	mask [][]bool

	maxNodes int
	hidden   int
}

// toDense routes each row of flat (N_total, H) into its sample's slot,
// preserving per-sample node order.  batchIndex must be monotonic
// non-decreasing with contiguous ids starting at zero.
func toDense(flat *mat.Dense, batchIndex []int, numGraphs int) (*denseBatch, error) {
	n, h := flat.Dims()
	if len(batchIndex) != n {
		return nil, errors.Newf(errors.ErrCodeDimensionMismatch,
			"batch_index length %d does not match node count %d", len(batchIndex), n)
	}

	sizes := make([]int, numGraphs)
	for k, gi := range batchIndex {
		if gi < 0 || gi >= numGraphs {
			return nil, errors.Newf(errors.ErrCodeDimensionMismatch,
				"batch_index[%d] = %d is out of range [0, %d)", k, gi, numGraphs)
		}
		sizes[gi]++
	}

	maxNodes := 0
	for gi, s := range sizes {
		if s == 0 {
			return nil, errors.Newf(errors.ErrCodeDimensionMismatch,
				"graph %d contributes no nodes", gi)
		}
		if s > maxNodes {
			maxNodes = s
		}
	}

	d := &denseBatch{
		data:     make([]*mat.Dense, numGraphs),
		mask:     make([][]bool, numGraphs),
		maxNodes: maxNodes,
		hidden:   h,
	}
	for b := 0; b < numGraphs; b++ {
		d.data[b] = mat.NewDense(maxNodes, h, nil)
		d.mask[b] = make([]bool, maxNodes)
	}

	cursor := make([]int, numGraphs)
	for k, gi := range batchIndex {
		slot := cursor[gi]
		d.data[gi].SetRow(slot, flat.RawRowView(k))
		d.mask[gi][slot] = true
		cursor[gi]++
	}

	return d, nil
}

// fromDense selects the masked-valid rows back into the flat (N_total, H)
// layout, in the same order toDense consumed them.  It is the exact inverse
// of toDense on valid entries.
func (d *denseBatch) fromDense(batchIndex []int) *mat.Dense {
	flat := mat.NewDense(len(batchIndex), d.hidden, nil)
	cursor := make([]int, len(d.data))
	for k, gi := range batchIndex {
		flat.SetRow(k, d.data[gi].RawRowView(cursor[gi]))
		cursor[gi]++
	}
	return flat
}

// numSamples returns the batch size of the dense view.
func (d *denseBatch) numSamples() int { return len(d.data) }
