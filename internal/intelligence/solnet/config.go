// Package solnet implements the temperature-conditioned solubility network:
// a gated message-passing encoder shared between solute and solvent graphs, a
// cross-graph bilinear interaction stage, set2set pooling, and a regression
// head producing normalized LogS values.
//
// The forward pass is a pure function of the inputs and the loaded weights.
// All tensor math runs in-process on float64 via gonum.
package solnet

import (
	"github.com/akash-acog/sol/pkg/errors"
)

// Config holds all hyperparameters of the network.  Dimensions are fixed at
// construction; graphs fed to the model must match NodeDim and EdgeDim.
type Config struct {
	ModelVersion string `json:"model_version" yaml:"model_version"`

	NodeDim   int `json:"node_dim" yaml:"node_dim"`
	EdgeDim   int `json:"edge_dim" yaml:"edge_dim"`
	HiddenDim int `json:"hidden_dim" yaml:"hidden_dim"`

	// MPSteps is the number of weight-tied propagation steps.  Zero is legal
	// and reduces the encoder to the bare linear projection.
	MPSteps int `json:"mp_steps" yaml:"mp_steps"`

	// S2SSteps is the number of set2set processing steps per pooling instance.
	S2SSteps int `json:"s2s_steps" yaml:"s2s_steps"`

	// EdgeMLPHidden is the bottleneck width of the edge network.  A direct
	// edge_dim to H*H layer would be parameter-prohibitive for moderate H.
	EdgeMLPHidden int `json:"edge_mlp_hidden" yaml:"edge_mlp_hidden"`

	// HeadDims are the hidden widths of the regression head.
	HeadDims []int `json:"head_dims" yaml:"head_dims"`

	// Dropout is the regularization rate applied after each head
	// nonlinearity, active only in training mode.
	Dropout float64 `json:"dropout" yaml:"dropout"`

	// ScaleInteraction divides interaction scores by sqrt(HiddenDim) so their
	// magnitude stays bounded as the hidden width grows.
	ScaleInteraction bool `json:"scale_interaction" yaml:"scale_interaction"`
}

// DefaultConfig returns the baseline hyperparameter set.
func DefaultConfig() *Config {
	return &Config{
		ModelVersion:     "solnet-v1",
		NodeDim:          35,
		EdgeDim:          10,
		HiddenDim:        48,
		MPSteps:          3,
		S2SSteps:         3,
		EdgeMLPHidden:    128,
		HeadDims:         []int{256, 128, 64},
		Dropout:          0.15,
		ScaleInteraction: true,
	}
}

// WithChargesConfig returns the baseline set widened by one node feature for
// the partial-charge channel.
func WithChargesConfig() *Config {
	cfg := DefaultConfig()
	cfg.ModelVersion = "solnet-v1-charges"
	cfg.NodeDim = 36
	return cfg
}

// LargeConfig returns the high-capacity preset used when the baseline
// underfits.  It assumes partial-charge features.
func LargeConfig() *Config {
	return &Config{
		ModelVersion:     "solnet-v1-large",
		NodeDim:          36,
		EdgeDim:          10,
		HiddenDim:        192,
		MPSteps:          5,
		S2SSteps:         4,
		EdgeMLPHidden:    256,
		HeadDims:         []int{512, 256, 128},
		Dropout:          0.05,
		ScaleInteraction: true,
	}
}

// ConfigForPreset maps a preset name to its Config.  Recognised names are
// "default", "large" and "with_charges"; the empty string means "default".
func ConfigForPreset(name string) (*Config, error) {
	switch name {
	case "", "default":
		return DefaultConfig(), nil
	case "with_charges":
		return WithChargesConfig(), nil
	case "large":
		return LargeConfig(), nil
	default:
		return nil, errors.Newf(errors.ErrCodeBadRequest, "unknown model preset %q", name)
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.NodeDim <= 0 {
		return errors.New(errors.ErrCodeValidation, "node_dim must be positive")
	}
	if c.EdgeDim <= 0 {
		return errors.New(errors.ErrCodeValidation, "edge_dim must be positive")
	}
	if c.HiddenDim <= 0 {
		return errors.New(errors.ErrCodeValidation, "hidden_dim must be positive")
	}
	if c.MPSteps < 0 {
		return errors.New(errors.ErrCodeValidation, "mp_steps must not be negative")
	}
	if c.S2SSteps <= 0 {
		return errors.New(errors.ErrCodeValidation, "s2s_steps must be positive")
	}
	if c.EdgeMLPHidden <= 0 {
		return errors.New(errors.ErrCodeValidation, "edge_mlp_hidden must be positive")
	}
	if len(c.HeadDims) == 0 {
		return errors.New(errors.ErrCodeValidation, "head_dims must contain at least one width")
	}
	for _, d := range c.HeadDims {
		if d <= 0 {
			return errors.New(errors.ErrCodeValidation, "head_dims entries must be positive")
		}
	}
	if c.Dropout < 0 || c.Dropout >= 1 {
		return errors.New(errors.ErrCodeValidation, "dropout must be in [0, 1)")
	}
	return nil
}
