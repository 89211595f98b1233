package prediction

import (
	"context"
	"io"

	"github.com/akash-acog/sol/internal/config"
	"github.com/akash-acog/sol/internal/infrastructure/monitoring/logging"
	"github.com/akash-acog/sol/internal/intelligence/featurize"
	"github.com/akash-acog/sol/internal/intelligence/solnet"
	"github.com/akash-acog/sol/pkg/errors"
)

// CheckpointSource supplies serialized model weights. The storage package
// provides filesystem- and MinIO-backed implementations.
type CheckpointSource interface {
	Fetch(ctx context.Context) (io.ReadCloser, error)
}

// BuildPredictor constructs the featurizer and model a service instance
// needs, loading weights when a source is given. A nil source yields a
// randomly initialized model, which is only useful for smoke tests.
func BuildPredictor(ctx context.Context, modelCfg config.ModelConfig, featCfg config.FeaturizerConfig, source CheckpointSource, logger logging.Logger) (*solnet.Model, *featurize.Featurizer, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	netCfg, err := solnet.ConfigForPreset(modelCfg.Preset)
	if err != nil {
		return nil, nil, err
	}
	model, err := solnet.NewModel(netCfg)
	if err != nil {
		return nil, nil, err
	}

	if source != nil {
		rc, err := source.Fetch(ctx)
		if err != nil {
			return nil, nil, errors.Wrap(err, errors.ErrCodeModelNotLoaded,
				"failed to fetch model checkpoint")
		}
		defer rc.Close()
		if err := model.LoadCheckpoint(rc); err != nil {
			return nil, nil, err
		}
		logger.Info("model checkpoint loaded",
			logging.String("preset", modelCfg.Preset),
			logging.String("version", model.Config().ModelVersion))
	} else {
		logger.Warn("no checkpoint source configured, model weights are random",
			logging.String("preset", modelCfg.Preset))
	}

	feat := &featurize.Featurizer{
		PartialCharges: featCfg.PartialCharges,
		MaxAtoms:       featCfg.MaxAtoms,
	}
	if feat.NodeDim() != model.Config().NodeDim {
		return nil, nil, errors.Newf(errors.ErrCodeDimensionMismatch,
			"featurizer produces %d-dim nodes but preset %q expects %d",
			feat.NodeDim(), modelCfg.Preset, model.Config().NodeDim)
	}
	return model, feat, nil
}
