package solnet

import (
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func randomFlat(rng *rand.Rand, n, h int) *mat.Dense {
	m := mat.NewDense(n, h, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < h; j++ {
			m.Set(i, j, rng.NormFloat64())
		}
	}
	return m
}

func TestToDense_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	// Three graphs with 2, 4 and 1 nodes.
	batchIndex := []int{0, 0, 1, 1, 1, 1, 2}
	flat := randomFlat(rng, len(batchIndex), 5)

	d, err := toDense(flat, batchIndex, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.maxNodes != 4 {
		t.Fatalf("expected max_nodes 4, got %d", d.maxNodes)
	}

	back := d.fromDense(batchIndex)
	if !mat.EqualApprox(flat, back, 0) {
		t.Error("toDense/fromDense round trip must be exact on valid entries")
	}
}

func TestToDense_MaskMarksRealSlots(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	batchIndex := []int{0, 1, 1}
	flat := randomFlat(rng, 3, 2)

	d, err := toDense(flat, batchIndex, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !d.mask[0][0] || d.mask[0][1] {
		t.Errorf("graph 0 mask wrong: %v", d.mask[0])
	}
	if !d.mask[1][0] || !d.mask[1][1] {
		t.Errorf("graph 1 mask wrong: %v", d.mask[1])
	}

	// Padding slots stay zero.
	if d.data[0].At(1, 0) != 0 || d.data[0].At(1, 1) != 0 {
		t.Error("padding slot must be zero")
	}
}

func TestToDense_RejectsGapInBatchIndex(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	flat := randomFlat(rng, 2, 3)

	// Graph 1 contributes no nodes.
	if _, err := toDense(flat, []int{0, 2}, 3); err == nil {
		t.Error("expected error for graph with no nodes")
	}
}

func TestToDense_RejectsLengthMismatch(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	flat := randomFlat(rng, 3, 3)

	if _, err := toDense(flat, []int{0, 0}, 1); err == nil {
		t.Error("expected error for batch_index shorter than node count")
	}
}
