package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/akash-acog/sol/internal/config"
	"github.com/akash-acog/sol/internal/infrastructure/monitoring/logging"
	"github.com/akash-acog/sol/pkg/errors"
	ptypes "github.com/akash-acog/sol/pkg/types/prediction"
)

var ErrProducerClosed = errors.New(errors.ErrCodeInternal, "kafka producer is closed")

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes prediction events and worker jobs. It satisfies the
// prediction service's Publisher interface.
type Producer struct {
	writer       WriterInterface
	topic        string
	requestTopic string
	writeTimeout time.Duration
	logger       logging.Logger
	closed       atomic.Bool
}

// NewProducer builds a producer from service configuration.
func NewProducer(cfg config.KafkaConfig, log logging.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.InvalidParam("kafka brokers are required")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}

	batchSize := cfg.BatchSize
	if batchSize == 0 {
		batchSize = 100
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = 10 * time.Second
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		BatchSize:    batchSize,
		BatchTimeout: time.Second,
		WriteTimeout: writeTimeout,
		RequiredAcks: kafka.RequireOne,
	}

	topic := cfg.PredictionTopic
	if topic == "" {
		topic = TopicPredictions
	}

	return &Producer{
		writer:       writer,
		topic:        topic,
		requestTopic: TopicPredictionRequests,
		writeTimeout: writeTimeout,
		logger:       log.Named("kafka.producer"),
	}, nil
}

// PublishPredictions emits one enveloped message per completed prediction,
// keyed by solute SMILES so one solute's history lands on one partition.
func (p *Producer) PublishPredictions(ctx context.Context, events []ptypes.Event) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, len(events))
	for i, ev := range events {
		env, err := newEnvelope(eventTypePrediction, ev)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode prediction event")
		}
		raw, err := json.Marshal(env)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode event envelope")
		}
		msgs[i] = kafka.Message{
			Topic: p.topic,
			Key:   []byte(ev.SoluteSMILES),
			Value: raw,
			Time:  time.Unix(0, ev.UnixMillis*int64(time.Millisecond)),
		}
	}

	ctx, cancel := context.WithTimeout(ctx, p.writeTimeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to publish prediction events")
	}
	p.logger.Debug("published prediction events", logging.Int("count", len(events)))
	return nil
}

// SubmitJob enqueues a batch job for the offline worker.
func (p *Producer) SubmitJob(ctx context.Context, job JobPayload) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	if len(job.Requests) == 0 {
		return errors.InvalidParam("job has no requests")
	}
	if job.JobID == "" {
		return errors.InvalidParam("job id is required")
	}

	env, err := newEnvelope(eventTypeJob, job)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode job")
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode job envelope")
	}

	ctx, cancel := context.WithTimeout(ctx, p.writeTimeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic: p.requestTopic,
		Key:   []byte(job.JobID),
		Value: raw,
	}); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to submit job")
	}
	p.logger.Info("job submitted",
		logging.String("job_id", job.JobID),
		logging.Int("requests", len(job.Requests)))
	return nil
}

// Close is idempotent.
func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := p.writer.Close()
	if err != nil {
		p.logger.Error("close failed", logging.Err(err))
		return err
	}
	p.logger.Info("closed")
	return nil
}
