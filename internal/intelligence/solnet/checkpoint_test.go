package solnet

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestCheckpoint_RoundTripPreservesPredictions(t *testing.T) {
	m := newTestModel(t)
	rng := rand.New(rand.NewSource(50))
	solute, solvent := testBatchPair(t, rng, []int{3, 2}, []int{2, 4})
	temps := []float64{298.15, 310.0}

	want, err := m.Forward(solute, solvent, temps)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}

	var buf bytes.Buffer
	if err := m.SaveCheckpoint(&buf); err != nil {
		t.Fatalf("SaveCheckpoint: %v", err)
	}

	// A second model starts from different effective weights only if we
	// perturb it; scribble over one tensor to prove the load restores state.
	m2, err := NewModel(testConfig())
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	m2.enc.nodeProj.w.Set(0, 0, 123.456)

	if err := m2.LoadCheckpoint(bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("LoadCheckpoint: %v", err)
	}

	got, err := m2.Forward(solute, solvent, temps)
	if err != nil {
		t.Fatalf("Forward after load: %v", err)
	}
	for i := range want {
		if want[i] != got[i] {
			t.Errorf("prediction %d not preserved: %v vs %v", i, want[i], got[i])
		}
	}
}

func TestLoadState_RejectsMissingTensor(t *testing.T) {
	m := newTestModel(t)
	state := m.State()
	delete(state, "encoder.node_proj.weight")

	if err := m.LoadState(state); err == nil {
		t.Error("expected error for missing tensor")
	}
}

func TestLoadState_RejectsUnexpectedTensor(t *testing.T) {
	m := newTestModel(t)
	state := m.State()
	state["decoder.secret"] = Tensor{Shape: []int{1}, Data: []float64{0}}

	if err := m.LoadState(state); err == nil {
		t.Error("expected error for unexpected tensor")
	}
}

func TestLoadState_RejectsShapeMismatch(t *testing.T) {
	m := newTestModel(t)
	state := m.State()
	bad := state["encoder.node_proj.bias"]
	bad.Shape = []int{len(bad.Data) + 1}
	bad.Data = append(bad.Data, 0)
	state["encoder.node_proj.bias"] = bad

	if err := m.LoadState(state); err == nil {
		t.Error("expected error for shape mismatch")
	}
}

func TestLoadCheckpoint_RejectsForeignConfig(t *testing.T) {
	m := newTestModel(t)

	other, err := NewModel(LargeConfig())
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	var buf bytes.Buffer
	if err := other.SaveCheckpoint(&buf); err != nil {
		t.Fatalf("SaveCheckpoint: %v", err)
	}

	if err := m.LoadCheckpoint(&buf); err == nil {
		t.Error("expected error loading a checkpoint for a different architecture")
	}
}

func TestLoadCheckpoint_RejectsGarbage(t *testing.T) {
	m := newTestModel(t)
	if err := m.LoadCheckpoint(bytes.NewReader([]byte("not json"))); err == nil {
		t.Error("expected error for malformed checkpoint")
	}
}
