package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akash-acog/sol/internal/config"
	"github.com/akash-acog/sol/internal/infrastructure/monitoring/logging"
	ptypes "github.com/akash-acog/sol/pkg/types/prediction"
)

type fakeReader struct {
	mu        sync.Mutex
	queue     []kafkago.Message
	committed []kafkago.Message
	closed    bool
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	f.mu.Lock()
	if len(f.queue) > 0 {
		msg := f.queue[0]
		f.queue = f.queue[1:]
		f.mu.Unlock()
		return msg, nil
	}
	f.mu.Unlock()
	<-ctx.Done()
	return kafkago.Message{}, ctx.Err()
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.committed = append(f.committed, msgs...)
	return nil
}

func (f *fakeReader) Close() error {
	f.closed = true
	return nil
}

func jobMessage(t *testing.T, job JobPayload) kafkago.Message {
	t.Helper()
	env, err := newEnvelope(eventTypeJob, job)
	require.NoError(t, err)
	raw, err := json.Marshal(env)
	require.NoError(t, err)
	return kafkago.Message{Key: []byte(job.JobID), Value: raw}
}

func runConsumer(t *testing.T, c *Consumer, reader *fakeReader, want int) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.Run(ctx)
	}()

	deadline := time.After(2 * time.Second)
	for {
		reader.mu.Lock()
		n := len(reader.committed)
		reader.mu.Unlock()
		if n >= want {
			break
		}
		select {
		case <-deadline:
			cancel()
			t.Fatalf("timed out waiting for %d commits, got %d", want, n)
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done
}

func TestConsumer_HandlesJob(t *testing.T) {
	reader := &fakeReader{}
	dead := &fakeWriter{}

	var mu sync.Mutex
	var handled []JobPayload
	handler := func(_ context.Context, job JobPayload) error {
		mu.Lock()
		defer mu.Unlock()
		handled = append(handled, job)
		return nil
	}

	job := JobPayload{
		JobID:    "job-1",
		Requests: []ptypes.Request{{SoluteSMILES: "CCO", SolventSMILES: "O", TemperatureK: 298.15}},
	}
	reader.queue = append(reader.queue, jobMessage(t, job))

	c := newConsumer(reader, dead, config.WorkerConfig{Concurrency: 1, RetryBackoff: time.Millisecond}, handler, logging.NewNopLogger())
	runConsumer(t, c, reader, 1)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, handled, 1)
	assert.Equal(t, job, handled[0])
	assert.Empty(t, dead.messages)
}

func TestConsumer_RetriesThenSucceeds(t *testing.T) {
	reader := &fakeReader{}
	dead := &fakeWriter{}

	var mu sync.Mutex
	attempts := 0
	handler := func(_ context.Context, _ JobPayload) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	}

	job := JobPayload{JobID: "job-2", Requests: []ptypes.Request{{SoluteSMILES: "C", SolventSMILES: "O", TemperatureK: 300}}}
	reader.queue = append(reader.queue, jobMessage(t, job))

	c := newConsumer(reader, dead, config.WorkerConfig{Concurrency: 1, MaxRetries: 3, RetryBackoff: time.Millisecond}, handler, logging.NewNopLogger())
	runConsumer(t, c, reader, 1)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, attempts)
	assert.Empty(t, dead.messages)
}

func TestConsumer_DeadLetterAfterExhaustedRetries(t *testing.T) {
	reader := &fakeReader{}
	dead := &fakeWriter{}

	var mu sync.Mutex
	attempts := 0
	handler := func(_ context.Context, _ JobPayload) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		return errors.New("permanent")
	}

	job := JobPayload{JobID: "job-3", Requests: []ptypes.Request{{SoluteSMILES: "C", SolventSMILES: "O", TemperatureK: 300}}}
	msg := jobMessage(t, job)
	reader.queue = append(reader.queue, msg)

	c := newConsumer(reader, dead, config.WorkerConfig{Concurrency: 1, MaxRetries: 2, RetryBackoff: time.Millisecond}, handler, logging.NewNopLogger())
	runConsumer(t, c, reader, 1)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, attempts) // 1 initial + 2 retries
	require.Len(t, dead.messages, 1)
	assert.Equal(t, msg.Value, dead.messages[0].Value)
	assert.Len(t, reader.committed, 1) // poison message still committed
}

func TestConsumer_MalformedMessageGoesToDeadLetter(t *testing.T) {
	reader := &fakeReader{}
	dead := &fakeWriter{}

	handler := func(_ context.Context, _ JobPayload) error {
		t.Fatal("handler must not run for malformed messages")
		return nil
	}

	reader.queue = append(reader.queue, kafkago.Message{Value: []byte("not json")})

	c := newConsumer(reader, dead, config.WorkerConfig{Concurrency: 1}, handler, logging.NewNopLogger())
	runConsumer(t, c, reader, 1)

	require.Len(t, dead.messages, 1)
	assert.Equal(t, []byte("not json"), dead.messages[0].Value)
}

func TestConsumer_Close(t *testing.T) {
	reader := &fakeReader{}
	dead := &fakeWriter{}
	c := newConsumer(reader, dead, config.WorkerConfig{}, func(context.Context, JobPayload) error { return nil }, logging.NewNopLogger())

	require.NoError(t, c.Close())
	assert.True(t, reader.closed)
	assert.True(t, dead.closed)
}
