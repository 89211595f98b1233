// Package storage provides checkpoint sources for the prediction service.
package storage

import (
	"context"
	"io"
	"os"

	"github.com/akash-acog/sol/pkg/errors"
)

// FileSource reads a model checkpoint from the local filesystem.
type FileSource struct {
	path string
}

// NewFileSource binds a source to a checkpoint file path.
func NewFileSource(path string) (*FileSource, error) {
	if path == "" {
		return nil, errors.InvalidParam("checkpoint path is required")
	}
	return &FileSource{path: path}, nil
}

// Fetch opens the checkpoint file. The caller closes the returned reader.
func (s *FileSource) Fetch(_ context.Context) (io.ReadCloser, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(err, errors.ErrCodeNotFound, "checkpoint file not found: "+s.path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to open checkpoint file")
	}
	return f, nil
}
