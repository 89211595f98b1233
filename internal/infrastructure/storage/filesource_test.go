package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akash-acog/sol/pkg/errors"
)

func TestFileSource_Fetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":"test"}`), 0o644))

	src, err := NewFileSource(path)
	require.NoError(t, err)

	rc, err := src.Fetch(context.Background())
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"test"}`, string(data))
}

func TestFileSource_Missing(t *testing.T) {
	src, err := NewFileSource(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)

	_, err = src.Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestNewFileSource_EmptyPath(t *testing.T) {
	_, err := NewFileSource("")
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}
