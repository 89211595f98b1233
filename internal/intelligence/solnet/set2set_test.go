package solnet

import (
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestSet2Set_OutputShape(t *testing.T) {
	h := 8
	s2s := newSet2Set(h, 3, rand.New(rand.NewSource(30)))

	rng := rand.New(rand.NewSource(31))
	batchIndex := []int{0, 0, 0, 1, 1, 2, 2, 2, 2}
	flat := randomFlat(rng, len(batchIndex), h)

	out := s2s.forward(flat, batchIndex, 3)
	r, c := out.Dims()
	if r != 3 || c != 2*h {
		t.Fatalf("output shape (%d, %d), want (3, %d)", r, c, 2*h)
	}
}

func TestSet2Set_PermutationInvariance(t *testing.T) {
	h := 8
	s2s := newSet2Set(h, 3, rand.New(rand.NewSource(32)))

	rng := rand.New(rand.NewSource(33))
	n := 6
	flat := randomFlat(rng, n, h)
	batchIndex := make([]int, n)

	base := s2s.forward(flat, batchIndex, 1)

	// Shuffle node rows; the pooled vector must not move.
	perm := rng.Perm(n)
	shuffled := mat.NewDense(n, h, nil)
	for i, p := range perm {
		shuffled.SetRow(p, flat.RawRowView(i))
	}
	permuted := s2s.forward(shuffled, batchIndex, 1)

	for j := 0; j < 2*h; j++ {
		almostEqual(t, base.At(0, j), permuted.At(0, j), 1e-10, "pooled output under permutation")
	}
}

func TestSet2Set_BatchIsolation(t *testing.T) {
	h := 8
	s2s := newSet2Set(h, 2, rand.New(rand.NewSource(34)))

	rng := rand.New(rand.NewSource(35))
	batchIndex := []int{0, 0, 1, 1, 1}
	flat := randomFlat(rng, len(batchIndex), h)

	batched := s2s.forward(flat, batchIndex, 2)

	solo := mat.DenseCopyOf(flat.Slice(0, 2, 0, h))
	alone := s2s.forward(solo, []int{0, 0}, 1)

	for j := 0; j < 2*h; j++ {
		almostEqual(t, alone.At(0, j), batched.At(0, j), 1e-10, "pooled sample 0 alone vs batched")
	}
}

func TestSet2Set_SingleNodeGraph(t *testing.T) {
	h := 4
	s2s := newSet2Set(h, 2, rand.New(rand.NewSource(36)))

	rng := rand.New(rand.NewSource(37))
	flat := randomFlat(rng, 1, h)

	out := s2s.forward(flat, []int{0}, 1)
	// A single node gets all attention mass; the read is the node itself.
	for j := 0; j < h; j++ {
		almostEqual(t, flat.At(0, j), out.At(0, h+j), 1e-10, "single-node read half")
	}
}
