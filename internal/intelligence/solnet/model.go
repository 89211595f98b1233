package solnet

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/akash-acog/sol/pkg/errors"
)

// initSeed fixes the weight initialization stream so that a freshly
// constructed model is reproducible before a checkpoint is loaded.
const initSeed = 20240117

// Model is the full solubility network.  Construct once, load a checkpoint,
// then treat as immutable; Forward is safe for concurrent use in evaluation
// mode because it never mutates the weights.
type Model struct {
	cfg *Config

	enc        *encoder
	inter      *interaction
	s2sSolute  *set2set
	s2sSolvent *set2set
	head       *regressionHead

	training bool
	dropRNG  *rand.Rand
}

// NewModel constructs a model with freshly initialized weights for cfg.
// Production use loads trained weights via LoadCheckpoint afterwards.
func NewModel(cfg *Config) (*Model, error) {
	if cfg == nil {
		return nil, errors.New(errors.ErrCodeValidation, "model config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(initSeed))
	return &Model{
		cfg:        cfg,
		enc:        newEncoder(cfg, rng),
		inter:      &interaction{hidden: cfg.HiddenDim, scale: cfg.ScaleInteraction},
		s2sSolute:  newSet2Set(cfg.HiddenDim, cfg.S2SSteps, rng),
		s2sSolvent: newSet2Set(cfg.HiddenDim, cfg.S2SSteps, rng),
		head:       newRegressionHead(cfg, rng),
		dropRNG:    rand.New(rand.NewSource(initSeed + 1)),
	}, nil
}

// Config returns the model's hyperparameters.
func (m *Model) Config() *Config { return m.cfg }

// SetTraining toggles training mode.  Dropout is active only while training;
// evaluation mode is the default and makes Forward deterministic.
func (m *Model) SetTraining(training bool) { m.training = training }

// Forward predicts one normalized LogS value per solute/solvent pair.
// Temperatures are in Kelvin, one per pair.  The solute batch, solvent batch
// and temperature slice must agree on the batch size; a mismatch is a fatal
// configuration error signalling misaligned batching upstream.
func (m *Model) Forward(solute, solvent *GraphBatch, temperatures []float64) ([]float64, error) {
	if solute == nil || solvent == nil {
		return nil, errors.New(errors.ErrCodeBadRequest, "solute and solvent batches are required")
	}
	if err := m.checkBatch(solute); err != nil {
		return nil, err
	}
	if err := m.checkBatch(solvent); err != nil {
		return nil, err
	}
	if solute.NumGraphs != solvent.NumGraphs {
		return nil, errors.Newf(errors.ErrCodeBatchMismatch,
			"solute batch has %d graphs, solvent batch has %d", solute.NumGraphs, solvent.NumGraphs)
	}
	if len(temperatures) != solute.NumGraphs {
		return nil, errors.Newf(errors.ErrCodeBatchMismatch,
			"batch has %d pairs but %d temperatures", solute.NumGraphs, len(temperatures))
	}

	hs := m.enc.forward(solute)
	hv := m.enc.forward(solvent)

	mappedS, mappedV, err := m.inter.forward(hs, hv, solute, solvent)
	if err != nil {
		return nil, err
	}

	soluteVec := m.s2sSolute.forward(mappedS, solute.BatchIndex, solute.NumGraphs)
	solventVec := m.s2sSolvent.forward(mappedV, solvent.BatchIndex, solvent.NumGraphs)

	b := solute.NumGraphs
	width := 4*m.cfg.HiddenDim + 1
	final := mat.NewDense(b, width, nil)
	for i := 0; i < b; i++ {
		row := final.RawRowView(i)
		copy(row[:2*m.cfg.HiddenDim], soluteVec.RawRowView(i))
		copy(row[2*m.cfg.HiddenDim:4*m.cfg.HiddenDim], solventVec.RawRowView(i))
		row[width-1] = temperatures[i]
	}

	return m.head.forward(final, m.training, m.dropRNG), nil
}

// checkBatch verifies that a batch's feature widths match the configuration.
func (m *Model) checkBatch(b *GraphBatch) error {
	n, nodeDim := b.NodeFeatures.Dims()
	if n == 0 {
		return errors.New(errors.ErrCodeEmptyMolecule, "batch contains no nodes")
	}
	if nodeDim != m.cfg.NodeDim {
		return errors.Newf(errors.ErrCodeDimensionMismatch,
			"batch node features have width %d, model expects %d", nodeDim, m.cfg.NodeDim)
	}
	if b.EdgeFeatures != nil {
		if _, edgeDim := b.EdgeFeatures.Dims(); edgeDim != m.cfg.EdgeDim {
			return errors.Newf(errors.ErrCodeDimensionMismatch,
				"batch edge features have width %d, model expects %d", edgeDim, m.cfg.EdgeDim)
		}
	}
	if len(b.BatchIndex) != n {
		return errors.Newf(errors.ErrCodeDimensionMismatch,
			"batch_index length %d does not match node count %d", len(b.BatchIndex), n)
	}
	return nil
}
