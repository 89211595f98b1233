package solnet

import (
	"math/rand"
	"testing"

	"github.com/akash-acog/sol/pkg/errors"
)

func TestNewGraphBatch_OffsetsAndBatchIndex(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	g1 := chainGraph(rng, 3, 6, 4) // nodes 0..2, 4 directed edges
	g2 := chainGraph(rng, 2, 6, 4) // nodes 3..4, 2 directed edges

	b, err := NewGraphBatch([]*MolecularGraph{g1, g2}, 6, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if b.NumGraphs != 2 {
		t.Fatalf("expected 2 graphs, got %d", b.NumGraphs)
	}
	if b.NumNodes() != 5 {
		t.Fatalf("expected 5 nodes, got %d", b.NumNodes())
	}
	wantBatch := []int{0, 0, 0, 1, 1}
	for i, gi := range b.BatchIndex {
		if gi != wantBatch[i] {
			t.Fatalf("batch_index[%d] = %d, want %d", i, gi, wantBatch[i])
		}
	}
	if len(b.EdgeIndex) != 6 {
		t.Fatalf("expected 6 directed edges, got %d", len(b.EdgeIndex))
	}
	// g2's first edge (0,1) must be offset to (3,4).
	if b.EdgeIndex[4] != [2]int{3, 4} || b.EdgeIndex[5] != [2]int{4, 3} {
		t.Errorf("second graph's edges not offset: %v %v", b.EdgeIndex[4], b.EdgeIndex[5])
	}
	// Node features carried through in order.
	if b.NodeFeatures.At(3, 0) != g2.NodeFeatures[0][0] {
		t.Error("node features not packed in graph order")
	}
}

func TestNewGraphBatch_RejectsEmptyInputs(t *testing.T) {
	if _, err := NewGraphBatch(nil, 6, 4); err == nil {
		t.Error("expected error for empty graph list")
	}

	empty := &MolecularGraph{}
	_, err := NewGraphBatch([]*MolecularGraph{empty}, 6, 4)
	if !errors.IsCode(err, errors.ErrCodeEmptyMolecule) {
		t.Errorf("expected empty-molecule error, got %v", err)
	}
}

func TestNewGraphBatch_RejectsDimensionMismatch(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	g := chainGraph(rng, 3, 5, 4) // wrong node width

	_, err := NewGraphBatch([]*MolecularGraph{g}, 6, 4)
	if !errors.IsCode(err, errors.ErrCodeDimensionMismatch) {
		t.Errorf("expected dimension-mismatch error, got %v", err)
	}
}

func TestMolecularGraph_Validate_EdgeOutOfRange(t *testing.T) {
	g := &MolecularGraph{
		NodeFeatures: [][]float64{make([]float64, 6), make([]float64, 6)},
		EdgeIndex:    [][2]int{{0, 5}},
		EdgeFeatures: [][]float64{make([]float64, 4)},
	}
	if err := g.Validate(6, 4); err == nil {
		t.Error("expected error for edge endpoint out of range")
	}
}

func TestMolecularGraph_Validate_UnparallelEdgeArrays(t *testing.T) {
	g := &MolecularGraph{
		NodeFeatures: [][]float64{make([]float64, 6), make([]float64, 6)},
		EdgeIndex:    [][2]int{{0, 1}, {1, 0}},
		EdgeFeatures: [][]float64{make([]float64, 4)},
	}
	if err := g.Validate(6, 4); err == nil {
		t.Error("expected error for edge_features shorter than edge_index")
	}
}

func TestNewGraphBatch_EdgelessGraph(t *testing.T) {
	g := &MolecularGraph{NodeFeatures: [][]float64{make([]float64, 6)}}
	b, err := NewGraphBatch([]*MolecularGraph{g}, 6, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.EdgeFeatures != nil {
		t.Error("edgeless batch should have nil edge features")
	}
	if len(b.EdgeIndex) != 0 {
		t.Errorf("expected no edges, got %d", len(b.EdgeIndex))
	}
}
