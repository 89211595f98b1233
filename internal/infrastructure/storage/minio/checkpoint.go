package minio

import (
	"context"
	"io"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/akash-acog/sol/internal/infrastructure/monitoring/logging"
	"github.com/akash-acog/sol/pkg/errors"
)

// CheckpointStore reads and writes model checkpoints under a single object
// key. It satisfies the prediction service's CheckpointSource interface.
type CheckpointStore struct {
	client *Client
	key    string
	logger logging.Logger
}

// NewCheckpointStore binds a store to one object key, e.g.
// "checkpoints/solnet-default.json".
func NewCheckpointStore(client *Client, key string, log logging.Logger) (*CheckpointStore, error) {
	if client == nil {
		return nil, errors.InvalidParam("minio client is required")
	}
	if key == "" {
		return nil, errors.InvalidParam("checkpoint object key is required")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &CheckpointStore{
		client: client,
		key:    key,
		logger: log.Named("checkpoint-store"),
	}, nil
}

// Fetch opens the checkpoint object for reading. The caller closes the
// returned reader.
func (s *CheckpointStore) Fetch(ctx context.Context) (io.ReadCloser, error) {
	if s.client.isClosed() {
		return nil, ErrClientClosed
	}

	// GetObject is lazy, so stat first to surface a missing object now
	// instead of on the first read.
	info, err := s.client.api.StatObject(ctx, s.client.bucket, s.key, minio.StatObjectOptions{})
	if err != nil {
		if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
			return nil, errors.Wrap(err, errors.ErrCodeNotFound, "checkpoint object not found: "+s.key)
		}
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to stat checkpoint object")
	}

	obj, err := s.client.api.GetObject(ctx, s.client.bucket, s.key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to open checkpoint object")
	}

	s.logger.Info("fetching checkpoint",
		logging.String("key", s.key),
		logging.Int64("size", info.Size))
	return obj, nil
}

// Put uploads a checkpoint, replacing any previous object at the key.
// size may be -1 when unknown.
func (s *CheckpointStore) Put(ctx context.Context, r io.Reader, size int64) error {
	if s.client.isClosed() {
		return ErrClientClosed
	}

	start := time.Now()
	info, err := s.client.api.PutObject(ctx, s.client.bucket, s.key, r, size, minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to upload checkpoint")
	}

	s.logger.Info("checkpoint uploaded",
		logging.String("key", s.key),
		logging.Int64("size", info.Size),
		logging.Duration("elapsed", time.Since(start)))
	return nil
}
