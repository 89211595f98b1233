package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"golang.org/x/sync/errgroup"

	"github.com/akash-acog/sol/internal/config"
	"github.com/akash-acog/sol/internal/infrastructure/monitoring/logging"
	apperrors "github.com/akash-acog/sol/pkg/errors"
)

// ReaderInterface abstracts kafka.Reader for testing.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// JobHandler processes one batch job. A returned error triggers a retry.
type JobHandler func(ctx context.Context, job JobPayload) error

// Consumer pulls batch jobs from the request topic and hands them to a
// handler. Jobs that exhaust their retries go to the dead-letter topic and
// are then committed, so a poison message cannot wedge the partition.
type Consumer struct {
	reader      ReaderInterface
	deadLetter  WriterInterface
	handler     JobHandler
	concurrency int
	maxRetries  int
	backoff     time.Duration
	logger      logging.Logger
}

// NewConsumer builds a consumer group reader over the request topic.
func NewConsumer(kcfg config.KafkaConfig, wcfg config.WorkerConfig, handler JobHandler, log logging.Logger) (*Consumer, error) {
	if len(kcfg.Brokers) == 0 {
		return nil, apperrors.InvalidParam("kafka brokers are required")
	}
	if handler == nil {
		return nil, apperrors.InvalidParam("job handler is required")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}

	groupID := kcfg.GroupID
	if groupID == "" {
		groupID = "sol-workers"
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        kcfg.Brokers,
		GroupID:        groupID,
		Topic:          TopicPredictionRequests,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // explicit commits, after handling
	})

	deadLetter := &kafka.Writer{
		Addr:         kafka.TCP(kcfg.Brokers...),
		Topic:        TopicDeadLetter,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}

	return newConsumer(reader, deadLetter, wcfg, handler, log), nil
}

func newConsumer(reader ReaderInterface, deadLetter WriterInterface, wcfg config.WorkerConfig, handler JobHandler, log logging.Logger) *Consumer {
	concurrency := wcfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	maxRetries := wcfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	backoff := wcfg.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}
	return &Consumer{
		reader:      reader,
		deadLetter:  deadLetter,
		handler:     handler,
		concurrency: concurrency,
		maxRetries:  maxRetries,
		backoff:     backoff,
		logger:      log.Named("kafka.consumer"),
	}
}

// Run consumes until the context is cancelled. It blocks.
func (c *Consumer) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < c.concurrency; i++ {
		g.Go(func() error { return c.loop(ctx) })
	}
	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (c *Consumer) loop(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			return err
		}
		c.process(ctx, msg)
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("commit failed", logging.Err(err))
		}
	}
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	job, err := decodeJob(msg.Value)
	if err != nil {
		c.logger.Warn("malformed job, sending to dead letter", logging.Err(err))
		c.toDeadLetter(ctx, msg)
		return
	}

	attempts := c.maxRetries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		err = c.handler(ctx, job)
		if err == nil {
			c.logger.Info("job completed",
				logging.String("job_id", job.JobID),
				logging.Int("requests", len(job.Requests)))
			return
		}
		c.logger.Warn("job failed",
			logging.String("job_id", job.JobID),
			logging.Int("attempt", attempt),
			logging.Err(err))
		if attempt < attempts {
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.backoff * time.Duration(attempt)):
			}
		}
	}

	c.logger.Error("job exhausted retries, sending to dead letter",
		logging.String("job_id", job.JobID),
		logging.Err(err))
	c.toDeadLetter(ctx, msg)
}

func (c *Consumer) toDeadLetter(ctx context.Context, msg kafka.Message) {
	dead := kafka.Message{Key: msg.Key, Value: msg.Value, Headers: msg.Headers}
	if err := c.deadLetter.WriteMessages(ctx, dead); err != nil {
		c.logger.Error("dead letter publish failed", logging.Err(err))
	}
}

func decodeJob(raw []byte) (JobPayload, error) {
	var env EventEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return JobPayload{}, err
	}
	var job JobPayload
	if err := json.Unmarshal(env.Payload, &job); err != nil {
		return JobPayload{}, err
	}
	return job, nil
}

// Close releases the reader and the dead-letter writer.
func (c *Consumer) Close() error {
	rerr := c.reader.Close()
	derr := c.deadLetter.Close()
	if rerr != nil {
		return rerr
	}
	return derr
}
