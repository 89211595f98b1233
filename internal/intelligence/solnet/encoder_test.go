package solnet

import (
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestEncoder_OutputShape(t *testing.T) {
	cfg := testConfig()
	rng := rand.New(rand.NewSource(10))

	for _, steps := range []int{0, 1, 3} {
		c := *cfg
		c.MPSteps = steps
		enc := newEncoder(&c, rand.New(rand.NewSource(11)))

		g := chainGraph(rng, 5, cfg.NodeDim, cfg.EdgeDim)
		b, err := NewGraphBatch([]*MolecularGraph{g}, cfg.NodeDim, cfg.EdgeDim)
		if err != nil {
			t.Fatalf("batch: %v", err)
		}

		h := enc.forward(b)
		r, col := h.Dims()
		if r != 5 || col != cfg.HiddenDim {
			t.Errorf("mp_steps=%d: output shape (%d, %d), want (5, %d)", steps, r, col, cfg.HiddenDim)
		}
	}
}

func TestEncoder_ZeroStepsEqualsProjection(t *testing.T) {
	cfg := testConfig()
	cfg.MPSteps = 0
	enc := newEncoder(cfg, rand.New(rand.NewSource(12)))

	rng := rand.New(rand.NewSource(13))
	g := chainGraph(rng, 4, cfg.NodeDim, cfg.EdgeDim)
	b, err := NewGraphBatch([]*MolecularGraph{g}, cfg.NodeDim, cfg.EdgeDim)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}

	got := enc.forward(b)
	want := enc.nodeProj.forward(b.NodeFeatures)
	if !mat.EqualApprox(want, got, 0) {
		t.Error("with zero propagation steps the encoder must be the bare projection")
	}
}

func TestEncoder_EdgelessGraph(t *testing.T) {
	cfg := testConfig()
	enc := newEncoder(cfg, rand.New(rand.NewSource(14)))

	g := &MolecularGraph{NodeFeatures: [][]float64{make([]float64, cfg.NodeDim)}}
	g.NodeFeatures[0][0] = 1
	b, err := NewGraphBatch([]*MolecularGraph{g}, cfg.NodeDim, cfg.EdgeDim)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}

	h := enc.forward(b)
	r, c := h.Dims()
	if r != 1 || c != cfg.HiddenDim {
		t.Fatalf("edgeless output shape (%d, %d), want (1, %d)", r, c, cfg.HiddenDim)
	}
	// With no incoming edges the aggregate is zero; the gated update still
	// produces finite values.
	for j := 0; j < c; j++ {
		v := h.At(0, j)
		if v != v {
			t.Fatal("NaN in edgeless encoder output")
		}
	}
}

func TestPropagationCell_NoIncomingEdgesKeepsZeroAggregate(t *testing.T) {
	cfg := testConfig()
	cell := newPropagationCell(cfg.HiddenDim, cfg.EdgeDim, cfg.EdgeMLPHidden, rand.New(rand.NewSource(15)))

	rng := rand.New(rand.NewSource(16))
	h := randomFlat(rng, 3, cfg.HiddenDim)

	// Single edge 0->1: nodes 0 and 2 receive no messages, so their update
	// must equal a GRU step on a zero input.
	edgeFeats := randomFlat(rng, 1, cfg.EdgeDim)
	out := cell.forward(h, [][2]int{{0, 1}}, edgeFeats)

	zero := make([]float64, cfg.HiddenDim)
	for _, node := range []int{0, 2} {
		want := cell.gru.step(zero, h.RawRowView(node))
		got := out.RawRowView(node)
		for j := range want {
			almostEqual(t, want[j], got[j], 1e-12, "no-incoming-edge node update")
		}
	}
}
