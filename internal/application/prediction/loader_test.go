package prediction

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akash-acog/sol/internal/config"
	"github.com/akash-acog/sol/internal/intelligence/solnet"
	"github.com/akash-acog/sol/pkg/errors"
)

type bytesSource struct {
	data []byte
	err  error
}

func (s *bytesSource) Fetch(context.Context) (io.ReadCloser, error) {
	if s.err != nil {
		return nil, s.err
	}
	return io.NopCloser(bytes.NewReader(s.data)), nil
}

func TestBuildPredictor_Presets(t *testing.T) {
	t.Parallel()

	model, feat, err := BuildPredictor(context.Background(),
		config.ModelConfig{Preset: "default"}, config.FeaturizerConfig{}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 48, model.Config().HiddenDim)
	assert.Equal(t, 35, feat.NodeDim())

	model, feat, err = BuildPredictor(context.Background(),
		config.ModelConfig{Preset: "with_charges"},
		config.FeaturizerConfig{PartialCharges: true}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 36, model.Config().NodeDim)
	assert.Equal(t, 36, feat.NodeDim())

	_, _, err = BuildPredictor(context.Background(),
		config.ModelConfig{Preset: "nope"}, config.FeaturizerConfig{}, nil, nil)
	require.Error(t, err)
}

func TestBuildPredictor_FeaturizerModelMismatch(t *testing.T) {
	t.Parallel()

	_, _, err := BuildPredictor(context.Background(),
		config.ModelConfig{Preset: "default"},
		config.FeaturizerConfig{PartialCharges: true}, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDimensionMismatch))
}

func TestBuildPredictor_LoadsCheckpoint(t *testing.T) {
	t.Parallel()

	origin, err := solnet.NewModel(solnet.DefaultConfig())
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, origin.SaveCheckpoint(&buf))

	model, _, err := BuildPredictor(context.Background(),
		config.ModelConfig{Preset: "default"}, config.FeaturizerConfig{},
		&bytesSource{data: buf.Bytes()}, nil)
	require.NoError(t, err)
	assert.Equal(t, origin.Config().HiddenDim, model.Config().HiddenDim)
}

func TestBuildPredictor_SourceFailure(t *testing.T) {
	t.Parallel()

	_, _, err := BuildPredictor(context.Background(),
		config.ModelConfig{Preset: "default"}, config.FeaturizerConfig{},
		&bytesSource{err: errors.Unavailable("object store down")}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeModelNotLoaded))

	_, _, err = BuildPredictor(context.Background(),
		config.ModelConfig{Preset: "default"}, config.FeaturizerConfig{},
		&bytesSource{data: []byte("not a checkpoint")}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCheckpointInvalid))
}
