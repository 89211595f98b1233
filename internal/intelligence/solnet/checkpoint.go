package solnet

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/akash-acog/sol/pkg/errors"
)

// Tensor is one named weight in a checkpoint: row-major data with an explicit
// shape.  float64 throughout, so weights round-trip losslessly.
type Tensor struct {
	Shape []int     `json:"shape"`
	Data  []float64 `json:"data"`
}

// Checkpoint is the serialized form of a model's weights.
type Checkpoint struct {
	ModelVersion string            `json:"model_version"`
	Config       *Config           `json:"config"`
	Tensors      map[string]Tensor `json:"tensors"`
}

func denseTensor(m *mat.Dense) Tensor {
	r, c := m.Dims()
	data := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		data = append(data, m.RawRowView(i)...)
	}
	return Tensor{Shape: []int{r, c}, Data: data}
}

func vecTensor(v []float64) Tensor {
	data := make([]float64, len(v))
	copy(data, v)
	return Tensor{Shape: []int{len(v)}, Data: data}
}

func (m *Model) tensorRefs() map[string]interface{} {
	refs := map[string]interface{}{
		"encoder.node_proj.weight": m.enc.nodeProj.w,
		"encoder.node_proj.bias":   m.enc.nodeProj.b,

		"encoder.cell.edge_network.fc1.weight": m.enc.cell.edgeNet.fc1.w,
		"encoder.cell.edge_network.fc1.bias":   m.enc.cell.edgeNet.fc1.b,
		"encoder.cell.edge_network.fc2.weight": m.enc.cell.edgeNet.fc2.w,
		"encoder.cell.edge_network.fc2.bias":   m.enc.cell.edgeNet.fc2.b,

		"encoder.cell.gru.weight_ih": m.enc.cell.gru.wih,
		"encoder.cell.gru.weight_hh": m.enc.cell.gru.whh,
		"encoder.cell.gru.bias_ih":   m.enc.cell.gru.bih,
		"encoder.cell.gru.bias_hh":   m.enc.cell.gru.bhh,

		"set2set_solute.lstm.weight_ih": m.s2sSolute.lstm.wih,
		"set2set_solute.lstm.weight_hh": m.s2sSolute.lstm.whh,
		"set2set_solute.lstm.bias_ih":   m.s2sSolute.lstm.bih,
		"set2set_solute.lstm.bias_hh":   m.s2sSolute.lstm.bhh,

		"set2set_solvent.lstm.weight_ih": m.s2sSolvent.lstm.wih,
		"set2set_solvent.lstm.weight_hh": m.s2sSolvent.lstm.whh,
		"set2set_solvent.lstm.bias_ih":   m.s2sSolvent.lstm.bih,
		"set2set_solvent.lstm.bias_hh":   m.s2sSolvent.lstm.bhh,

		"head.out.weight": m.head.out.w,
		"head.out.bias":   m.head.out.b,
	}
	for i, l := range m.head.layers {
		refs[fmt.Sprintf("head.%d.weight", i)] = l.w
		refs[fmt.Sprintf("head.%d.bias", i)] = l.b
	}
	return refs
}

// State snapshots every weight tensor by name.
func (m *Model) State() map[string]Tensor {
	state := make(map[string]Tensor)
	for name, ref := range m.tensorRefs() {
		switch v := ref.(type) {
		case *mat.Dense:
			state[name] = denseTensor(v)
		case []float64:
			state[name] = vecTensor(v)
		}
	}
	return state
}

// LoadState replaces the model's weights with the named tensors.  Every
// expected tensor must be present with a matching shape; extra tensors are
// rejected so a checkpoint for a different architecture fails loudly.
func (m *Model) LoadState(state map[string]Tensor) error {
	refs := m.tensorRefs()

	for name := range state {
		if _, ok := refs[name]; !ok {
			return errors.Newf(errors.ErrCodeCheckpointInvalid, "unexpected tensor %q", name)
		}
	}

	names := make([]string, 0, len(refs))
	for name := range refs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		t, ok := state[name]
		if !ok {
			return errors.Newf(errors.ErrCodeCheckpointInvalid, "missing tensor %q", name)
		}
		switch v := refs[name].(type) {
		case *mat.Dense:
			r, c := v.Dims()
			if len(t.Shape) != 2 || t.Shape[0] != r || t.Shape[1] != c {
				return errors.Newf(errors.ErrCodeCheckpointInvalid,
					"tensor %q has shape %v, expected [%d %d]", name, t.Shape, r, c)
			}
			if len(t.Data) != r*c {
				return errors.Newf(errors.ErrCodeCheckpointInvalid,
					"tensor %q has %d values, expected %d", name, len(t.Data), r*c)
			}
			for i := 0; i < r; i++ {
				v.SetRow(i, t.Data[i*c:(i+1)*c])
			}
		case []float64:
			if len(t.Shape) != 1 || t.Shape[0] != len(v) {
				return errors.Newf(errors.ErrCodeCheckpointInvalid,
					"tensor %q has shape %v, expected [%d]", name, t.Shape, len(v))
			}
			if len(t.Data) != len(v) {
				return errors.Newf(errors.ErrCodeCheckpointInvalid,
					"tensor %q has %d values, expected %d", name, len(t.Data), len(v))
			}
			copy(v, t.Data)
		}
	}
	return nil
}

// SaveCheckpoint writes the model's weights and configuration as JSON.
func (m *Model) SaveCheckpoint(w io.Writer) error {
	ckpt := Checkpoint{
		ModelVersion: m.cfg.ModelVersion,
		Config:       m.cfg,
		Tensors:      m.State(),
	}
	if err := json.NewEncoder(w).Encode(&ckpt); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode checkpoint")
	}
	return nil
}

// LoadCheckpoint reads a JSON checkpoint and installs its weights.  The
// checkpoint's config, when present, must match the model's dimensions.
func (m *Model) LoadCheckpoint(r io.Reader) error {
	var ckpt Checkpoint
	if err := json.NewDecoder(r).Decode(&ckpt); err != nil {
		return errors.Wrap(err, errors.ErrCodeCheckpointInvalid, "failed to decode checkpoint")
	}
	if ckpt.Config != nil {
		if ckpt.Config.NodeDim != m.cfg.NodeDim ||
			ckpt.Config.EdgeDim != m.cfg.EdgeDim ||
			ckpt.Config.HiddenDim != m.cfg.HiddenDim ||
			ckpt.Config.EdgeMLPHidden != m.cfg.EdgeMLPHidden {
			return errors.Newf(errors.ErrCodeCheckpointInvalid,
				"checkpoint was trained for node_dim=%d edge_dim=%d hidden_dim=%d, model has node_dim=%d edge_dim=%d hidden_dim=%d",
				ckpt.Config.NodeDim, ckpt.Config.EdgeDim, ckpt.Config.HiddenDim,
				m.cfg.NodeDim, m.cfg.EdgeDim, m.cfg.HiddenDim)
		}
	}
	return m.LoadState(ckpt.Tensors)
}
