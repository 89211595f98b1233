package solnet

import (
	"math"
	"math/rand"
	"testing"

	"github.com/akash-acog/sol/pkg/errors"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	m, err := NewModel(testConfig())
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return m
}

func testBatchPair(t *testing.T, rng *rand.Rand, soluteSizes, solventSizes []int) (*GraphBatch, *GraphBatch) {
	t.Helper()
	cfg := testConfig()
	mk := func(sizes []int) *GraphBatch {
		graphs := make([]*MolecularGraph, len(sizes))
		for i, n := range sizes {
			graphs[i] = chainGraph(rng, n, cfg.NodeDim, cfg.EdgeDim)
		}
		b, err := NewGraphBatch(graphs, cfg.NodeDim, cfg.EdgeDim)
		if err != nil {
			t.Fatalf("batch: %v", err)
		}
		return b
	}
	return mk(soluteSizes), mk(solventSizes)
}

func TestModel_Forward_ReturnsOnePredictionPerPair(t *testing.T) {
	m := newTestModel(t)
	rng := rand.New(rand.NewSource(40))
	solute, solvent := testBatchPair(t, rng, []int{3, 4, 2}, []int{2, 3, 5})

	preds, err := m.Forward(solute, solvent, []float64{298.15, 310.0, 273.15})
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if len(preds) != 3 {
		t.Fatalf("expected 3 predictions, got %d", len(preds))
	}
	for i, p := range preds {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			t.Errorf("prediction %d is not finite: %v", i, p)
		}
	}
}

func TestModel_Forward_Deterministic(t *testing.T) {
	m := newTestModel(t)
	rng := rand.New(rand.NewSource(41))
	solute, solvent := testBatchPair(t, rng, []int{4, 3}, []int{2, 2})
	temps := []float64{298.15, 298.15}

	a, err := m.Forward(solute, solvent, temps)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	b, err := m.Forward(solute, solvent, temps)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("prediction %d differs across identical eval-mode calls: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestModel_Forward_BatchIsolation(t *testing.T) {
	m := newTestModel(t)
	rng := rand.New(rand.NewSource(42))

	cfg := testConfig()
	target := chainGraph(rng, 4, cfg.NodeDim, cfg.EdgeDim)
	targetSolvent := chainGraph(rng, 3, cfg.NodeDim, cfg.EdgeDim)
	other1 := chainGraph(rng, 6, cfg.NodeDim, cfg.EdgeDim)
	other2 := chainGraph(rng, 2, cfg.NodeDim, cfg.EdgeDim)

	soloS, err := NewGraphBatch([]*MolecularGraph{target}, cfg.NodeDim, cfg.EdgeDim)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	soloV, err := NewGraphBatch([]*MolecularGraph{targetSolvent}, cfg.NodeDim, cfg.EdgeDim)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	alone, err := m.Forward(soloS, soloV, []float64{298.15})
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}

	batchS, err := NewGraphBatch([]*MolecularGraph{other1, target, other2}, cfg.NodeDim, cfg.EdgeDim)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	batchV, err := NewGraphBatch([]*MolecularGraph{other2, targetSolvent, other1}, cfg.NodeDim, cfg.EdgeDim)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	batched, err := m.Forward(batchS, batchV, []float64{350.0, 298.15, 260.0})
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}

	almostEqual(t, alone[0], batched[1], 1e-9, "sample prediction alone vs mid-batch")
}

func TestModel_Forward_PermutationInvariance(t *testing.T) {
	m := newTestModel(t)
	rng := rand.New(rand.NewSource(43))

	cfg := testConfig()
	solute := chainGraph(rng, 5, cfg.NodeDim, cfg.EdgeDim)
	solvent := chainGraph(rng, 3, cfg.NodeDim, cfg.EdgeDim)

	forward := func(s, v *MolecularGraph) float64 {
		bs, err := NewGraphBatch([]*MolecularGraph{s}, cfg.NodeDim, cfg.EdgeDim)
		if err != nil {
			t.Fatalf("batch: %v", err)
		}
		bv, err := NewGraphBatch([]*MolecularGraph{v}, cfg.NodeDim, cfg.EdgeDim)
		if err != nil {
			t.Fatalf("batch: %v", err)
		}
		preds, err := m.Forward(bs, bv, []float64{298.15})
		if err != nil {
			t.Fatalf("Forward: %v", err)
		}
		return preds[0]
	}

	base := forward(solute, solvent)
	permuted := forward(permuteGraph(solute, rng.Perm(5)), permuteGraph(solvent, rng.Perm(3)))
	almostEqual(t, base, permuted, 1e-9, "prediction under node permutation")
}

func TestModel_Forward_BatchMismatchRejected(t *testing.T) {
	m := newTestModel(t)
	rng := rand.New(rand.NewSource(44))
	solute, solvent := testBatchPair(t, rng, []int{3, 2, 4}, []int{2, 3})

	_, err := m.Forward(solute, solvent, []float64{298.15, 298.15, 298.15})
	if !errors.IsCode(err, errors.ErrCodeBatchMismatch) {
		t.Fatalf("expected batch-mismatch error, got %v", err)
	}
}

func TestModel_Forward_TemperatureCountMismatchRejected(t *testing.T) {
	m := newTestModel(t)
	rng := rand.New(rand.NewSource(45))
	solute, solvent := testBatchPair(t, rng, []int{3, 2}, []int{2, 3})

	_, err := m.Forward(solute, solvent, []float64{298.15})
	if !errors.IsCode(err, errors.ErrCodeBatchMismatch) {
		t.Fatalf("expected batch-mismatch error, got %v", err)
	}
}

func TestModel_Forward_DimensionMismatchRejected(t *testing.T) {
	m := newTestModel(t)
	rng := rand.New(rand.NewSource(46))

	wrong := chainGraph(rng, 3, 9, 4)
	b, err := NewGraphBatch([]*MolecularGraph{wrong}, 9, 4)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	_, other := testBatchPair(t, rng, []int{2}, []int{2})

	_, err = m.Forward(b, other, []float64{298.15})
	if !errors.IsCode(err, errors.ErrCodeDimensionMismatch) {
		t.Fatalf("expected dimension-mismatch error, got %v", err)
	}
}

// Two-atom solute with one bond in each direction, single-atom solvent with
// no edges at all: the zero-edge branch must produce a zero aggregate, not an
// error, and the whole pass must return one scalar.
func TestModel_Forward_ToyEndToEnd(t *testing.T) {
	cfg := &Config{
		ModelVersion:     "toy",
		NodeDim:          6,
		EdgeDim:          4,
		HiddenDim:        4,
		MPSteps:          1,
		S2SSteps:         1,
		EdgeMLPHidden:    8,
		HeadDims:         []int{8},
		Dropout:          0.1,
		ScaleInteraction: true,
	}
	m, err := NewModel(cfg)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}

	solute := &MolecularGraph{
		NodeFeatures: [][]float64{
			{1, 0, 0, 0, 0, 0},
			{0, 1, 0, 0, 0, 0},
		},
		EdgeIndex: [][2]int{{0, 1}, {1, 0}},
		EdgeFeatures: [][]float64{
			{1, 0, 0, 0},
			{1, 0, 0, 0},
		},
	}
	solvent := &MolecularGraph{
		NodeFeatures: [][]float64{{0, 0, 1, 0, 0, 0}},
	}

	bs, err := NewGraphBatch([]*MolecularGraph{solute}, cfg.NodeDim, cfg.EdgeDim)
	if err != nil {
		t.Fatalf("solute batch: %v", err)
	}
	bv, err := NewGraphBatch([]*MolecularGraph{solvent}, cfg.NodeDim, cfg.EdgeDim)
	if err != nil {
		t.Fatalf("solvent batch: %v", err)
	}

	preds, err := m.Forward(bs, bv, []float64{298.15})
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if len(preds) != 1 {
		t.Fatalf("expected 1 prediction, got %d", len(preds))
	}
	if math.IsNaN(preds[0]) || math.IsInf(preds[0], 0) {
		t.Fatalf("toy prediction is not finite: %v", preds[0])
	}
}

func TestNewModel_RejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.HiddenDim = 0
	if _, err := NewModel(cfg); err == nil {
		t.Error("expected error for invalid config")
	}
	if _, err := NewModel(nil); err == nil {
		t.Error("expected error for nil config")
	}
}
