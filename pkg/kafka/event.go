package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/infLocus/Crowdsourced-Review-Platform/pkg/logger"
)

// EnvelopeVersion is the envelope layout this build writes and accepts.
const EnvelopeVersion = 1

// ErrMalformedEvent marks a message no amount of retrying can handle. The
// consumer dead-letters it on first sight.
var ErrMalformedEvent = errors.New("malformed event")

// Event is the envelope every message on the bus carries. AggregateID doubles
// as the partition key, so events for one business stay ordered.
type Event struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	Version       int             `json:"version"`
	Timestamp     time.Time       `json:"timestamp"`
	Source        string          `json:"source"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent wraps data in an envelope keyed by aggregateID. The request's
// correlation id, if ctx carries one, travels with the event.
func NewEvent(ctx context.Context, eventType, aggregateType, aggregateID, source string, data any) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", eventType, err)
	}

	return &Event{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		Version:       EnvelopeVersion,
		Timestamp:     time.Now().UTC(),
		Source:        source,
		CorrelationID: logger.CorrelationIDFromContext(ctx),
		Data:          raw,
	}, nil
}

// Key is the partition key for the event.
func (e *Event) Key() []byte {
	return []byte(e.AggregateID)
}

// Validate reports whether the envelope can be routed to a handler.
func (e *Event) Validate() error {
	switch {
	case e.EventID == "":
		return fmt.Errorf("%w: missing event_id", ErrMalformedEvent)
	case e.EventType == "":
		return fmt.Errorf("%w: missing event_type", ErrMalformedEvent)
	case e.AggregateID == "":
		return fmt.Errorf("%w: missing aggregate_id", ErrMalformedEvent)
	case e.Version < 1 || e.Version > EnvelopeVersion:
		return fmt.Errorf("%w: unsupported version %d", ErrMalformedEvent, e.Version)
	}
	return nil
}

// Marshal encodes the envelope as JSON.
func (e *Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// DecodeEvent parses and validates an envelope read off the wire.
func DecodeEvent(b []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}

// DecodeData decodes the payload of e as a T.
func DecodeData[T any](e *Event) (T, error) {
	var data T
	if err := json.Unmarshal(e.Data, &data); err != nil {
		return data, fmt.Errorf("%w: %s payload: %v", ErrMalformedEvent, e.EventType, err)
	}
	return data, nil
}
