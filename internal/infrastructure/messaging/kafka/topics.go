// Package kafka publishes prediction events and feeds the batch worker.
package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	ptypes "github.com/akash-acog/sol/pkg/types/prediction"
)

// Topic constants.
const (
	// TopicPredictions carries completed predictions for downstream
	// analytics.
	TopicPredictions = "solubility.predictions"
	// TopicPredictionRequests carries batch jobs for the offline worker.
	TopicPredictionRequests = "solubility.requests"
	// TopicDeadLetter receives jobs that exhausted their retries.
	TopicDeadLetter = "solubility.dead_letter"
)

// EventEnvelope standardizes messages on every topic.
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	SchemaVersion string          `json:"schema_version"`
	Payload       json.RawMessage `json:"payload"`
}

const (
	eventTypePrediction = "solubility.prediction.completed"
	eventTypeJob        = "solubility.prediction.requested"
	schemaVersion       = "1"
	envelopeSource      = "sol"
)

// JobPayload is one worker job: a batch of prediction requests.
type JobPayload struct {
	JobID    string           `json:"job_id"`
	Requests []ptypes.Request `json:"requests"`
}

func newEnvelope(eventType string, payload interface{}) (*EventEnvelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &EventEnvelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		Source:        envelopeSource,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: schemaVersion,
		Payload:       raw,
	}, nil
}
