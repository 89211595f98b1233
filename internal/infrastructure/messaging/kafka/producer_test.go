package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akash-acog/sol/internal/config"
	"github.com/akash-acog/sol/internal/infrastructure/monitoring/logging"
	apperrors "github.com/akash-acog/sol/pkg/errors"
	ptypes "github.com/akash-acog/sol/pkg/types/prediction"
)

type fakeWriter struct {
	messages []kafkago.Message
	writeErr error
	closed   bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func newTestProducer(w WriterInterface) *Producer {
	return &Producer{
		writer:       w,
		topic:        TopicPredictions,
		requestTopic: TopicPredictionRequests,
		writeTimeout: 100 * time.Millisecond,
		logger:       logging.NewNopLogger(),
	}
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer(config.KafkaConfig{}, logging.NewNopLogger())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidParam))
}

func TestPublishPredictions(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w)

	events := []ptypes.Event{
		{ID: "ev-1", SoluteSMILES: "CCO", SolventSMILES: "O", TemperatureK: 298.15, PredictedLogS: -0.5, ModelVersion: "test"},
		{ID: "ev-2", SoluteSMILES: "c1ccccc1", SolventSMILES: "O", TemperatureK: 310, PredictedLogS: -2.1, ModelVersion: "test"},
	}
	require.NoError(t, p.PublishPredictions(context.Background(), events))
	require.Len(t, w.messages, 2)

	msg := w.messages[0]
	assert.Equal(t, TopicPredictions, msg.Topic)
	assert.Equal(t, "CCO", string(msg.Key))

	var env EventEnvelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.Equal(t, eventTypePrediction, env.EventType)
	assert.Equal(t, envelopeSource, env.Source)
	assert.Equal(t, schemaVersion, env.SchemaVersion)
	assert.NotEmpty(t, env.EventID)

	var ev ptypes.Event
	require.NoError(t, json.Unmarshal(env.Payload, &ev))
	assert.Equal(t, events[0], ev)
}

func TestPublishPredictions_Empty(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w)
	require.NoError(t, p.PublishPredictions(context.Background(), nil))
	assert.Empty(t, w.messages)
}

func TestSubmitJob(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w)

	job := JobPayload{
		JobID: "job-1",
		Requests: []ptypes.Request{
			{SoluteSMILES: "CCO", SolventSMILES: "O", TemperatureK: 298.15},
		},
	}
	require.NoError(t, p.SubmitJob(context.Background(), job))
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, TopicPredictionRequests, msg.Topic)
	assert.Equal(t, "job-1", string(msg.Key))

	decoded, err := decodeJob(msg.Value)
	require.NoError(t, err)
	assert.Equal(t, job, decoded)
}

func TestSubmitJob_Validation(t *testing.T) {
	p := newTestProducer(&fakeWriter{})

	err := p.SubmitJob(context.Background(), JobPayload{JobID: "job-1"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidParam))

	err = p.SubmitJob(context.Background(), JobPayload{
		Requests: []ptypes.Request{{SoluteSMILES: "C", SolventSMILES: "O", TemperatureK: 298}},
	})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidParam))
}

func TestProducer_Close(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
	require.NoError(t, p.Close()) // idempotent

	err := p.PublishPredictions(context.Background(), []ptypes.Event{{SoluteSMILES: "C"}})
	assert.ErrorIs(t, err, ErrProducerClosed)
}
